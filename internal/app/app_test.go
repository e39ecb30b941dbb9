package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"pricealerts/internal/alert"
	"pricealerts/internal/config"
	"pricealerts/internal/store/memstore"
)

func upstreams(t *testing.T) config.Quotes {
	t.Helper()
	bin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
			return
		}
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"64000.50","priceChangePercent":"1.25","closeTime":1735689600000}`))
	}))
	t.Cleanup(bin.Close)

	yh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbols") != "AAPL" {
			_, _ = w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
			return
		}
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":151.2,"regularMarketChangePercent":-0.4,"regularMarketTime":1735689600}],"error":null}}`))
	}))
	t.Cleanup(yh.Close)

	q := config.Default().Quotes
	q.BinanceURL = bin.URL
	q.BinanceMirrorURL = ""
	q.YahooURL = yh.URL
	q.YahooMinIntervalMs = 0
	q.FinnhubAPIKey = ""
	return q
}

func TestBuildResolverRoutesByClass(t *testing.T) {
	r := BuildResolver(upstreams(t), zerolog.Nop())

	got := r.ResolveAll(context.Background(), []string{"btcusdt", "AAPL", "NOPE"})
	require.Len(t, got, 2)
	require.Equal(t, "Binance", got["BTCUSDT"].Source)
	require.InDelta(t, 64000.5, *got["BTCUSDT"].Price, 1e-9)
	require.Equal(t, "Yahoo", got["AAPL"].Source)
	require.InDelta(t, 151.2, *got["AAPL"].Price, 1e-9)
}

func TestOpenWithoutBackendsSweepsInMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Quotes = upstreams(t)
	cfg.Mongo.URI = ""
	cfg.Redis.Addr = ""

	ctx := context.Background()
	a, err := Open(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close(ctx)) })

	mem, ok := a.Store.(*memstore.Store)
	require.True(t, ok)
	mem.Put(alert.Alert{UserID: "u1", Symbol: "AAPL", Type: alert.TypePrice,
		Condition: alert.GreaterThan, Threshold: 150, Frequency: alert.Once, Active: true})
	mem.Put(alert.Alert{UserID: "u1", Symbol: "BTCUSDT", Type: alert.TypePrice,
		Condition: alert.LessThan, Threshold: 50000, Frequency: alert.Once, Active: true})

	res, err := a.Sweeper.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.Alerts)
	require.Equal(t, 2, res.Resolved)
	require.Equal(t, 1, res.Triggered)

	list, err := a.Inbox.ListNotifications(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "AAPL", list[0].Symbol)
}
