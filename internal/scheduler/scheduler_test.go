package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"pricealerts/internal/sweep"
)

type countingRunner struct {
	runs     atomic.Int32
	deadline atomic.Bool
}

func (c *countingRunner) Run(ctx context.Context) (sweep.Result, error) {
	c.runs.Add(1)
	_, ok := ctx.Deadline()
	c.deadline.Store(ok)
	return sweep.Result{}, nil
}

func TestRunOnStartFiresImmediately(t *testing.T) {
	r := &countingRunner{}
	// yearly expression so only the start-up run can fire during the test
	s, err := New(r, Config{Cron: "0 0 1 1 *", RunOnStart: true, Timeout: time.Minute}, zerolog.Nop())
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return r.runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.True(t, r.deadline.Load())
}

func TestWithoutRunOnStartWaitsForTick(t *testing.T) {
	r := &countingRunner{}
	s, err := New(r, Config{Cron: "0 0 1 1 *"}, zerolog.Nop())
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, r.runs.Load())
}

func TestInvalidCron(t *testing.T) {
	_, err := New(&countingRunner{}, Config{Cron: "every five minutes"}, zerolog.Nop())
	require.Error(t, err)
}
