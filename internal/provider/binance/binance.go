package binance

import (
    "context"
    "fmt"
    "net/url"
    "strconv"
    "strings"
    "time"

    "pricealerts/internal/httpx"
    "pricealerts/internal/provider"
    "pricealerts/internal/symbols"
)

const (
    PrimaryURL = "https://api.binance.com"
    MirrorURL  = "https://data-api.binance.vision"
)

type Config struct {
    Name    string
    URL     string // base URL, the ticker path is appended
}

// Provider reads the 24h rolling ticker of a spot pair.
type Provider struct {
    cfg    Config
    client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
    if cfg.Name == "" { cfg.Name = "Binance" }
    if cfg.URL == "" { cfg.URL = PrimaryURL }
    cfg.URL = strings.TrimRight(cfg.URL, "/")
    return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
    sym := symbols.Normalize(symbol)
    u := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", p.cfg.URL, url.QueryEscape(sym))

    var t ticker
    if err := p.client.GetJSON(ctx, u, &t); err != nil {
        return provider.Quote{}, fmt.Errorf("%s: %w", p.cfg.Name, err)
    }
    price, ok := parseDecimal(t.LastPrice)
    if !ok || !provider.UsablePrice(&price) {
        return provider.Quote{}, fmt.Errorf("%s %s: %w", p.cfg.Name, sym, provider.ErrNoPrice)
    }
    q := provider.Quote{
        Symbol:     sym,
        Price:      &price,
        Class:      symbols.Crypto,
        Source:     p.cfg.Name,
        ReceivedAt: parseEpochMaybeMillis(t.CloseTime, time.Now().UTC()),
    }
    if pct, ok := parseDecimal(t.PriceChangePercent); ok { q.ChangePercent = &pct }
    return q, nil
}

// ticker is the subset of /api/v3/ticker/24hr the adapter reads.
// Binance encodes decimals as strings.
type ticker struct {
    Symbol             string `json:"symbol"`
    LastPrice          string `json:"lastPrice"`
    PriceChangePercent string `json:"priceChangePercent"`
    CloseTime          int64  `json:"closeTime"`
}

func parseDecimal(s string) (float64, bool) {
    s = strings.TrimSpace(s)
    if s == "" { return 0, false }
    v, err := strconv.ParseFloat(s, 64)
    if err != nil { return 0, false }
    return v, true
}

func parseEpochMaybeMillis(v int64, fallback time.Time) time.Time {
    if v <= 0 { return fallback }
    if v > 1_000_000_000_000 { // ms
        return time.UnixMilli(v).UTC()
    }
    return time.Unix(v, 0).UTC()
}
