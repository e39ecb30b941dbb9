package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"pricealerts/internal/sweep"
)

// Runner is the sweep entry point.
type Runner interface {
	Run(ctx context.Context) (sweep.Result, error)
}

type Config struct {
	Cron       string
	RunOnStart bool
	Timeout    time.Duration
}

// Scheduler fires sweeps on a cron expression (UTC). A tick that arrives
// while the previous sweep is still running is dropped.
type Scheduler struct {
	cron    *gocron.Scheduler
	runner  Runner
	timeout time.Duration
	onStart bool
	log     zerolog.Logger
	running sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func New(runner Runner, cfg Config, log zerolog.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    gocron.NewScheduler(time.UTC),
		runner:  runner,
		timeout: cfg.Timeout,
		onStart: cfg.RunOnStart,
		log:     log.With().Str("component", "scheduler").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
	if _, err := s.cron.Cron(cfg.Cron).Do(s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule sweep %q: %w", cfg.Cron, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.StartAsync()
	if s.onStart {
		go s.tick()
	}
	s.log.Info().Time("next_run", s.NextRun()).Msg("scheduler started")
}

// Stop halts future ticks and cancels a sweep in flight.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.cancel()
	s.log.Info().Msg("scheduler stopped")
}

// NextRun reports when the sweep fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.cron.NextRun()
	return next
}

func (s *Scheduler) tick() {
	if !s.running.TryLock() {
		s.log.Warn().Msg("previous sweep still running, tick dropped")
		return
	}
	defer s.running.Unlock()
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.runner.Run(ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled sweep failed")
	}
}
