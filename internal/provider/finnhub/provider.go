package finnhub

import (
	"context"
	"fmt"
	"time"

	"pricealerts/internal/provider"
	"pricealerts/internal/symbols"
)

// Provider adapts FinnhubAPIClient to provider.Provider.
type Provider struct {
	name   string
	client *FinnhubAPIClient
}

// NewProvider wraps client; name defaults to "Finnhub".
func NewProvider(name string, client *FinnhubAPIClient) *Provider {
	if name == "" {
		name = "Finnhub"
	}
	return &Provider{name: name, client: client}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
	sym := symbols.Normalize(symbol)
	if !p.client.HasToken() {
		return provider.Quote{}, fmt.Errorf("%s: api token not configured", p.name)
	}
	q, err := p.client.GetQuote(ctx, sym)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("%s %s: %w", p.name, sym, err)
	}
	if !provider.UsablePrice(q.Current) {
		return provider.Quote{}, fmt.Errorf("%s %s: %w", p.name, sym, provider.ErrNoPrice)
	}
	ts := q.Time()
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return provider.Quote{
		Symbol:        sym,
		Price:         q.Current,
		ChangePercent: q.ChangePercent,
		Class:         symbols.Equity,
		Source:        p.name,
		ReceivedAt:    ts,
	}, nil
}
