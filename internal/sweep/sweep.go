// Package sweep runs one pass over every active alert: load, price,
// evaluate, persist.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"pricealerts/internal/alert"
	"pricealerts/internal/lease"
	"pricealerts/internal/provider"
	"pricealerts/internal/store"
	"pricealerts/internal/symbols"
)

// LeaseKey names the cross-replica sweep lease.
const LeaseKey = "sweep"

// QuoteResolver prices a batch of symbols; unresolved symbols are absent
// from the result.
type QuoteResolver interface {
	ResolveAll(ctx context.Context, syms []string) map[string]provider.Quote
}

type Orchestrator struct {
	Store              store.Store
	Quotes             QuoteResolver
	Lease              lease.Locker
	LeaseTTL           time.Duration
	PersistConcurrency int
	// InsertTimeout bounds the notification insert that follows a claim.
	InsertTimeout time.Duration
	Log           zerolog.Logger
	Now           func() time.Time
}

type Result struct {
	RunID     string        `json:"run_id"`
	Skipped   bool          `json:"skipped,omitempty"`
	Alerts    int           `json:"alerts"`
	Symbols   int           `json:"symbols"`
	Resolved  int           `json:"resolved"`
	Triggered int           `json:"triggered"`
	Throttled int           `json:"throttled"`
	Conflicts int           `json:"conflicts"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

type callerKey struct{}

// WithCaller tags ctx with the user that asked for an on-demand sweep.
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// Caller returns the user set by WithCaller, if any.
func Caller(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey{}).(string)
	return id, ok && id != ""
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// Run performs one sweep. The only error it returns is a failure to load
// alerts; quote and per-alert persistence failures are logged and counted.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString(), StartedAt: o.now()}
	logCtx := o.Log.With().Str("run_id", res.RunID)
	if uid, ok := Caller(ctx); ok {
		logCtx = logCtx.Str("user_id", uid)
	}
	log := logCtx.Logger()

	if o.Lease != nil {
		release, ok, err := o.Lease.TryAcquire(ctx, LeaseKey, o.leaseTTL())
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("sweep lease unavailable, continuing without it")
		case !ok:
			log.Info().Msg("another sweep holds the lease, skipping")
			res.Skipped = true
			return finish(res, start), nil
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					log.Warn().Err(err).Msg("release sweep lease")
				}
			}()
		}
	}

	alerts, err := o.Store.LoadActiveAlerts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load active alerts")
		return finish(res, start), fmt.Errorf("load active alerts: %w", err)
	}
	res.Alerts = len(alerts)
	if len(alerts) == 0 {
		log.Debug().Msg("no active alerts")
		return finish(res, start), nil
	}

	syms := make([]string, 0, len(alerts))
	for _, a := range alerts {
		syms = append(syms, a.Symbol)
	}
	quotes := o.Quotes.ResolveAll(ctx, syms)
	res.Symbols = len(symbols.Distinct(syms))
	res.Resolved = len(quotes)

	ev := alert.Evaluate(alerts, quotes, o.now())
	res.Throttled = ev.Throttled

	var triggered, conflicts, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if o.PersistConcurrency > 0 {
		g.SetLimit(o.PersistConcurrency)
	}
	for _, t := range ev.Triggers {
		g.Go(func() error {
			switch err := o.persist(gctx, t); {
			case err == nil:
				triggered.Add(1)
			case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound):
				conflicts.Add(1)
				log.Info().Err(err).Str("alert_id", t.Alert.ID).Msg("alert changed since load, skipped")
			default:
				failed.Add(1)
				log.Error().Err(err).Str("alert_id", t.Alert.ID).Str("symbol", t.Draft.Symbol).Msg("persist trigger")
			}
			return nil
		})
	}
	_ = g.Wait()

	res.Triggered = int(triggered.Load())
	res.Conflicts = int(conflicts.Load())
	res.Failed = int(failed.Load())
	res = finish(res, start)
	log.Info().
		Int("alerts", res.Alerts).
		Int("symbols", res.Symbols).
		Int("resolved", res.Resolved).
		Int("triggered", res.Triggered).
		Int("throttled", res.Throttled).
		Int("conflicts", res.Conflicts).
		Int("failed", res.Failed).
		Dur("took", res.Duration).
		Msg("sweep done")
	return res, nil
}

// persist claims the alert first so that only one sweep can record a
// notification for a given baseline. Once the claim holds, the insert no
// longer follows ctx: a cancelled caller would otherwise leave the alert
// consumed with nothing recorded.
func (o *Orchestrator) persist(ctx context.Context, t alert.Trigger) error {
	if err := o.Store.UpdateAlert(ctx, t.Alert.ID, t.Update); err != nil {
		return err
	}
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.insertTimeout())
	defer cancel()
	if _, err := o.Store.InsertNotification(ictx, t.Draft); err != nil {
		return fmt.Errorf("alert %s claimed but notification not stored: %w", t.Alert.ID, err)
	}
	return nil
}

func finish(res Result, start time.Time) Result {
	res.Duration = time.Since(start)
	return res
}

func (o *Orchestrator) leaseTTL() time.Duration {
	if o.LeaseTTL > 0 {
		return o.LeaseTTL
	}
	return 4 * time.Minute
}

func (o *Orchestrator) insertTimeout() time.Duration {
	if o.InsertTimeout > 0 {
		return o.InsertTimeout
	}
	return 10 * time.Second
}
