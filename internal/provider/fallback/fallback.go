package fallback

import (
    "context"
    "errors"
    "fmt"
    "time"

    "pricealerts/internal/provider"
)

// Chain tries providers in order and returns the first usable quote.
// Each attempt gets its own timeout so one slow upstream cannot eat
// the budget of the next.
type Chain struct {
    name      string
    providers []provider.Provider
    timeout   time.Duration
}

// New builds a chain. Nil providers are dropped, which lets callers pass
// optional sources unconditionally.
func New(name string, timeout time.Duration, ps ...provider.Provider) *Chain {
    c := &Chain{name: name, timeout: timeout}
    for _, p := range ps {
        if p != nil { c.providers = append(c.providers, p) }
    }
    return c
}

func (c *Chain) Name() string { return c.name }

// Len reports how many providers the chain will try.
func (c *Chain) Len() int { return len(c.providers) }

func (c *Chain) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
    if len(c.providers) == 0 {
        return provider.Quote{}, fmt.Errorf("%s: no providers configured", c.name)
    }
    var errs []error
    for _, p := range c.providers {
        if err := ctx.Err(); err != nil {
            errs = append(errs, err)
            break
        }
        q, err := c.try(ctx, p, symbol)
        if err == nil { return q, nil }
        errs = append(errs, err)
    }
    return provider.Quote{}, fmt.Errorf("%s %s: all providers failed: %w", c.name, symbol, errors.Join(errs...))
}

func (c *Chain) try(ctx context.Context, p provider.Provider, symbol string) (provider.Quote, error) {
    if c.timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, c.timeout)
        defer cancel()
    }
    q, err := p.Fetch(ctx, symbol)
    if err != nil { return provider.Quote{}, err }
    if !q.Resolved() { return provider.Quote{}, fmt.Errorf("%s %s: %w", p.Name(), symbol, provider.ErrNoPrice) }
    if q.Source == "" { q.Source = p.Name() }
    return q, nil
}
