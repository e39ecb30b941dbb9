package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"pricealerts/internal/api"
	"pricealerts/internal/app"
	"pricealerts/internal/scheduler"
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled sweeps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		},
	}
}

// serve blocks until ctx is cancelled or the listener fails.
func serve(ctx context.Context, e *env) error {
	cfg, log := e.cfg, e.log

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLogged(log, a.Close)

	if !e.debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("jwt secret not set, authenticated routes will reject every request")
	}
	router := api.NewRouter(api.Deps{
		Sweeper:        a.Sweeper,
		Inbox:          a.Inbox,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		JWTIssuer:      cfg.Auth.Issuer,
		RequestTimeout: cfg.Server.RequestTimeout(),
		Log:            log.With().Str("component", "api").Logger(),
	})

	if cfg.Schedule.Enabled {
		sched, err := scheduler.New(a.Sweeper, scheduler.Config{
			Cron:       cfg.Schedule.Cron,
			RunOnStart: cfg.Schedule.RunOnStart,
			Timeout:    cfg.Schedule.SweepTimeout(),
		}, log)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
