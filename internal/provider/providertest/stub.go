// Package providertest holds in-memory providers for tests.
package providertest

import (
    "context"
    "fmt"
    "sync"
    "time"

    "pricealerts/internal/provider"
    "pricealerts/internal/symbols"
)

// Stub answers from a fixed price table. Symbols missing from Prices
// fail with provider.ErrNoPrice; symbols in Errs fail with that error.
type Stub struct {
    ID     string
    Prices map[string]float64
    Change map[string]float64
    Errs   map[string]error
    Delay  time.Duration

    mu    sync.Mutex
    calls map[string]int
}

func (s *Stub) Name() string { return s.ID }

func (s *Stub) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
    s.mu.Lock()
    if s.calls == nil { s.calls = map[string]int{} }
    s.calls[symbol]++
    s.mu.Unlock()

    if s.Delay > 0 {
        t := time.NewTimer(s.Delay)
        defer t.Stop()
        select {
        case <-ctx.Done():
            return provider.Quote{}, ctx.Err()
        case <-t.C:
        }
    }
    if err, ok := s.Errs[symbol]; ok {
        return provider.Quote{}, fmt.Errorf("%s %s: %w", s.ID, symbol, err)
    }
    p, ok := s.Prices[symbol]
    if !ok || !provider.UsablePrice(&p) {
        return provider.Quote{}, fmt.Errorf("%s %s: %w", s.ID, symbol, provider.ErrNoPrice)
    }
    q := provider.Quote{Symbol: symbol, Price: &p, Class: symbols.Classify(symbol), Source: s.ID, ReceivedAt: time.Now().UTC()}
    if c, ok := s.Change[symbol]; ok { q.ChangePercent = &c }
    return q, nil
}

// Calls reports how many times symbol was fetched.
func (s *Stub) Calls(symbol string) int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.calls[symbol]
}

// Total reports the number of fetches across all symbols.
func (s *Stub) Total() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    n := 0
    for _, c := range s.calls { n += c }
    return n
}
