package provider

import (
    "context"
    "sync"

    "github.com/rs/zerolog"
    "golang.org/x/sync/errgroup"
    "pricealerts/internal/symbols"
)

// Resolver routes a symbol to the provider chain for its class.
// Failures are logged and reported as unresolved; they never surface
// as errors.
type Resolver struct {
    Crypto         Provider
    Equity         Provider
    MaxConcurrency int
    Log            zerolog.Logger
}

func (r *Resolver) chainFor(sym string) Provider {
    if symbols.Classify(sym) == symbols.Crypto { return r.Crypto }
    return r.Equity
}

// Resolve returns the quote for symbol and whether it carries a usable price.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (Quote, bool) {
    sym := symbols.Normalize(symbol)
    if sym == "" { return Quote{}, false }
    class := symbols.Classify(sym)
    p := r.chainFor(sym)
    if p == nil {
        r.Log.Warn().Str("symbol", sym).Str("class", string(class)).Msg("no provider chain for symbol class")
        return Quote{Symbol: sym, Class: class}, false
    }
    q, err := p.Fetch(ctx, sym)
    if err != nil || !q.Resolved() {
        r.Log.Debug().Err(err).Str("symbol", sym).Str("chain", p.Name()).Msg("quote unresolved")
        return Quote{Symbol: sym, Class: class}, false
    }
    q.Symbol = sym
    q.Class = class
    return q, true
}

// ResolveAll resolves symbols concurrently and returns only the resolved
// ones, keyed by normalized symbol.
func (r *Resolver) ResolveAll(ctx context.Context, syms []string) map[string]Quote {
    distinct := symbols.Distinct(syms)
    out := make(map[string]Quote, len(distinct))
    var mu sync.Mutex

    g, gctx := errgroup.WithContext(ctx)
    if r.MaxConcurrency > 0 { g.SetLimit(r.MaxConcurrency) }
    for _, sym := range distinct {
        g.Go(func() error {
            q, ok := r.Resolve(gctx, sym)
            if !ok { return nil }
            mu.Lock()
            out[sym] = q
            mu.Unlock()
            return nil
        })
    }
    _ = g.Wait()
    return out
}
