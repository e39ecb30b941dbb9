// Package app wires configuration into the running components.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"pricealerts/internal/config"
	"pricealerts/internal/httpx"
	"pricealerts/internal/lease"
	"pricealerts/internal/provider"
	"pricealerts/internal/provider/binance"
	"pricealerts/internal/provider/coalesce"
	"pricealerts/internal/provider/fallback"
	"pricealerts/internal/provider/finnhub"
	"pricealerts/internal/provider/ratelimit"
	"pricealerts/internal/provider/yahoo"
	"pricealerts/internal/store"
	"pricealerts/internal/store/memstore"
	"pricealerts/internal/store/mongostore"
	"pricealerts/internal/sweep"
)

type App struct {
	Config   config.Config
	Log      zerolog.Logger
	Store    store.Store
	Inbox    store.NotificationReader
	Resolver *provider.Resolver
	Sweeper  *sweep.Orchestrator

	closers []func(context.Context) error
}

// BuildResolver assembles the crypto and equity provider chains.
func BuildResolver(q config.Quotes, log zerolog.Logger) *provider.Resolver {
	hc := httpx.New(q.Timeout())

	crypto := fallback.New("crypto", q.Timeout(),
		binance.New(binance.Config{Name: "Binance", URL: q.BinanceURL}, hc),
		optional(q.BinanceMirrorURL != "", func() provider.Provider {
			return binance.New(binance.Config{Name: "BinanceMirror", URL: q.BinanceMirrorURL}, hc)
		}),
	)

	var fh provider.Provider
	if q.FinnhubAPIKey == "" {
		log.Warn().Msg("finnhub api key not set, equities resolve through yahoo only")
	} else {
		client, err := finnhub.NewFinnhubAPIClient(q.FinnhubAPIKey,
			finnhub.WithBaseURL(q.FinnhubURL),
			finnhub.WithHTTPClient(hc.HTTP),
			finnhub.WithHeader(http.Header{"User-Agent": []string{hc.UserAgent}}),
		)
		if err != nil {
			log.Error().Err(err).Msg("finnhub client")
		} else {
			fh = ratelimit.Wrap(finnhub.NewProvider("Finnhub", client), q.FinnhubRPS, q.FinnhubBurst)
		}
	}
	yh := optional(q.YahooURL != "", func() provider.Provider {
		var p provider.Provider = yahoo.New(yahoo.Config{Name: "Yahoo", URL: q.YahooURL}, hc)
		if iv := q.YahooMinInterval(); iv > 0 {
			p = &ratelimit.MinInterval{P: p, Interval: iv}
		}
		return p
	})
	equity := fallback.New("equity", q.Timeout(), fh, yh)
	if equity.Len() == 0 {
		log.Warn().Msg("no equity quote source configured")
	}

	return &provider.Resolver{
		Crypto:         coalesce.New(crypto, time.Duration(crypto.Len())*q.Timeout()),
		Equity:         coalesce.New(equity, time.Duration(equity.Len())*q.Timeout()),
		MaxConcurrency: q.MaxConcurrency,
		Log:            log.With().Str("component", "resolver").Logger(),
	}
}

func optional(ok bool, build func() provider.Provider) provider.Provider {
	if !ok {
		return nil
	}
	return build()
}

// Open connects the stores and builds the sweep orchestrator. Without a
// MongoDB URI it falls back to an in-memory store.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, Resolver: BuildResolver(cfg.Quotes, log)}

	if cfg.Mongo.URI == "" {
		log.Warn().Msg("mongo uri not set, using in-memory store")
		mem := memstore.New()
		a.Store, a.Inbox = mem, mem
	} else {
		ms, err := mongostore.Connect(ctx, mongostore.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout(),
		}, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ms.Close)
		if cfg.Mongo.EnsureIndexes {
			if err := ms.EnsureIndexes(ctx); err != nil {
				log.Warn().Err(err).Msg("ensure indexes")
			}
		}
		a.Store, a.Inbox = ms, ms
	}

	var locker lease.Locker = lease.Noop{}
	if cfg.Redis.Addr != "" {
		rl, err := lease.NewRedis(ctx, lease.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rl.Close() })
		locker = rl
	}

	a.Sweeper = &sweep.Orchestrator{
		Store:              a.Store,
		Quotes:             a.Resolver,
		Lease:              locker,
		LeaseTTL:           cfg.Sweep.LeaseTTL(),
		PersistConcurrency: cfg.Sweep.PersistConcurrency,
		Log:                log.With().Str("component", "sweep").Logger(),
	}
	return a, nil
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
