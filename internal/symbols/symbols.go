package symbols

import (
    "sort"
    "strings"
)

// Class tells which upstream family can price a symbol.
type Class string

const (
    Equity Class = "equity"
    Crypto Class = "crypto"
)

// quoteSuffixes lists the quote currencies that mark a pair as crypto.
// Longer suffixes come first so USDT wins over USD.
var quoteSuffixes = []string{"USDT", "USDC", "USD", "BTC", "ETH", "BNB"}

// Normalize trims and upper-cases a symbol.
func Normalize(sym string) string {
    return strings.ToUpper(strings.TrimSpace(sym))
}

// Classify reports Crypto when the symbol ends in a known quote currency
// and still has a base asset in front of it (case-insensitive).
func Classify(sym string) Class {
    s := Normalize(sym)
    if _, ok := QuoteSuffix(s); ok { return Crypto }
    return Equity
}

// QuoteSuffix returns the matched quote currency of a crypto pair.
func QuoteSuffix(sym string) (string, bool) {
    s := Normalize(sym)
    for _, q := range quoteSuffixes {
        if strings.HasSuffix(s, q) && len(s) > len(q) {
            return q, true
        }
    }
    return "", false
}

// Pair renders a crypto pair as "BASE / QUOTE"; other symbols are returned normalized.
func Pair(sym string) string {
    s := Normalize(sym)
    q, ok := QuoteSuffix(s)
    if !ok { return s }
    return s[:len(s)-len(q)] + " / " + q
}

// Distinct collapses symbols to their normalized form, drops empties and
// returns them sorted so runs are reproducible.
func Distinct(in []string) []string {
    seen := make(map[string]struct{}, len(in))
    out := make([]string, 0, len(in))
    for _, s := range in {
        n := Normalize(s)
        if n == "" { continue }
        if _, dup := seen[n]; dup { continue }
        seen[n] = struct{}{}
        out = append(out, n)
    }
    sort.Strings(out)
    return out
}
