package coalesce

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
	"pricealerts/internal/provider"
)

// Provider collapses concurrent fetches of the same symbol into one
// upstream call. Nothing is cached once the call returns, so every
// sweep still sees a fresh price.
type Provider struct {
	P       provider.Provider
	Timeout time.Duration // bounds the shared call; <= 0 means one minute
	sf      singleflight.Group
}

func New(p provider.Provider, timeout time.Duration) *Provider {
	return &Provider{P: p, Timeout: timeout}
}

func (c *Provider) Name() string { return c.P.Name() }

// Fetch joins an in-flight call for symbol when there is one. The shared
// call does not inherit the leader's cancellation, so one caller going
// away never fails the others; each caller still returns as soon as its
// own ctx ends.
func (c *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	ch := c.sf.DoChan(symbol, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout())
		defer cancel()
		return c.P.Fetch(sctx, symbol)
	})
	select {
	case <-ctx.Done():
		return provider.Quote{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return provider.Quote{}, res.Err
		}
		return res.Val.(provider.Quote), nil
	}
}

func (c *Provider) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return time.Minute
}
