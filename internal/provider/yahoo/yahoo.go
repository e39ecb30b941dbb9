package yahoo

import (
    "context"
    "fmt"
    "net/url"
    "strings"
    "time"

    "pricealerts/internal/httpx"
    "pricealerts/internal/provider"
    "pricealerts/internal/symbols"
)

const DefaultURL = "https://query1.finance.yahoo.com"

// Config controls the Yahoo Finance quote provider.
type Config struct {
    Name    string
    URL     string            // base URL; /v7/finance/quote is appended
}

// Provider reads the public v7 quote endpoint. It needs no key, which
// makes it the last resort for equities.
type Provider struct {
    cfg    Config
    client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
    if cfg.Name == "" { cfg.Name = "Yahoo" }
    if cfg.URL == "" { cfg.URL = DefaultURL }
    cfg.URL = strings.TrimRight(cfg.URL, "/")
    return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
    sym := symbols.Normalize(symbol)
    u, err := url.Parse(p.cfg.URL + "/v7/finance/quote")
    if err != nil { return provider.Quote{}, err }
    q := u.Query()
    q.Set("symbols", sym)
    u.RawQuery = q.Encode()

    var body apiResponse
    if err := p.client.GetJSON(ctx, u.String(), &body); err != nil {
        return provider.Quote{}, fmt.Errorf("%s: %w", p.cfg.Name, err)
    }
    if len(body.QuoteResponse.Result) == 0 {
        return provider.Quote{}, fmt.Errorf("%s %s: %w", p.cfg.Name, sym, provider.ErrNoPrice)
    }
    r := body.QuoteResponse.Result[0]
    if !provider.UsablePrice(r.RegularMarketPrice) {
        return provider.Quote{}, fmt.Errorf("%s %s: %w", p.cfg.Name, sym, provider.ErrNoPrice)
    }
    return provider.Quote{
        Symbol:        sym,
        Price:         r.RegularMarketPrice,
        ChangePercent: r.RegularMarketChangePercent,
        Class:         symbols.Equity,
        Source:        p.cfg.Name,
        ReceivedAt:    parseEpochMaybeMillis(r.RegularMarketTime, time.Now().UTC()),
    }, nil
}

// Response model of /v7/finance/quote, trimmed to the fields we read.
type apiResponse struct {
    QuoteResponse struct {
        Result []result `json:"result"`
        Error  any      `json:"error"`
    } `json:"quoteResponse"`
}

type result struct {
    Symbol                     string   `json:"symbol"`
    RegularMarketPrice         *float64 `json:"regularMarketPrice"`
    RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
    RegularMarketTime          int64    `json:"regularMarketTime"`
}

func parseEpochMaybeMillis(v int64, fallback time.Time) time.Time {
    if v <= 0 { return fallback }
    if v > 1_000_000_000_000 { // ms
        return time.UnixMilli(v).UTC()
    }
    return time.Unix(v, 0).UTC()
}
