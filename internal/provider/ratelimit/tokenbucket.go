package ratelimit

import (
    "context"
    "sync"
    "time"

    "pricealerts/internal/provider"
)

// TokenBucket refills at perSec tokens per second up to burst tokens.
// It starts full.
type TokenBucket struct {
    perSec float64
    burst  float64

    mu     sync.Mutex
    avail  float64
    refill time.Time
}

func NewTokenBucket(perSec float64, burst int) *TokenBucket {
    if perSec <= 0 { perSec = 1e-7 }
    if burst <= 0 { burst = 1 }
    return &TokenBucket{perSec: perSec, burst: float64(burst), avail: float64(burst), refill: time.Now()}
}

// take consumes a token if one is available at now and returns zero;
// otherwise it returns how long until the next token.
func (tb *TokenBucket) take(now time.Time) time.Duration {
    tb.mu.Lock()
    defer tb.mu.Unlock()
    if dt := now.Sub(tb.refill).Seconds(); dt > 0 {
        tb.avail = min(tb.burst, tb.avail+dt*tb.perSec)
        tb.refill = now
    }
    if tb.avail >= 1 {
        tb.avail--
        return 0
    }
    d := time.Duration((1 - tb.avail) / tb.perSec * float64(time.Second))
    return max(d, time.Millisecond)
}

// Wait blocks until a token is taken or ctx is done.
func (tb *TokenBucket) Wait(ctx context.Context) error {
    for {
        d := tb.take(time.Now())
        if d == 0 { return nil }
        t := time.NewTimer(d)
        select {
        case <-ctx.Done():
            t.Stop()
            return ctx.Err()
        case <-t.C:
        }
    }
}

// TokenBucketProvider gates P with TB. A nil TB passes calls through.
type TokenBucketProvider struct {
    P  provider.Provider
    TB *TokenBucket
}

func (t *TokenBucketProvider) Name() string { return t.P.Name() }

func (t *TokenBucketProvider) Fetch(ctx context.Context, symbol string) (provider.Quote, error) {
    if t.TB != nil {
        if err := t.TB.Wait(ctx); err != nil { return provider.Quote{}, err }
    }
    return t.P.Fetch(ctx, symbol)
}

// Wrap limits p to rps calls per second with the given burst.
// rps <= 0 returns p unchanged.
func Wrap(p provider.Provider, rps float64, burst int) provider.Provider {
    if rps <= 0 { return p }
    return &TokenBucketProvider{P: p, TB: NewTokenBucket(rps, burst)}
}
