package provider

import (
    "context"
    "errors"
    "math"
    "time"

    "pricealerts/internal/symbols"
)

// ErrNoPrice is returned when an upstream answered but carried no usable price.
var ErrNoPrice = errors.New("no usable price")

// Quote is the normalized shape returned by all providers.
// A nil Price means the symbol is unresolved.
type Quote struct {
    Symbol        string        `json:"symbol"`
    Price         *float64      `json:"price,omitempty"`
    ChangePercent *float64      `json:"change_percent,omitempty"`
    Class         symbols.Class `json:"class"`
    Source        string        `json:"source"`
    ReceivedAt    time.Time     `json:"received_at"`
}

// Resolved reports whether q carries a finite, strictly positive price.
func (q Quote) Resolved() bool {
    return UsablePrice(q.Price)
}

// UsablePrice is the rule every provider applies before accepting a price.
func UsablePrice(p *float64) bool {
    if p == nil { return false }
    v := *p
    return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

type Provider interface {
    Name() string
    Fetch(ctx context.Context, symbol string) (Quote, error)
}
