package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"pricealerts/internal/app"
)

func newSweepCmd(e *env) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one sweep and print its result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout <= 0 {
				timeout = e.cfg.Schedule.SweepTimeout()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			a, err := app.Open(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer closeLogged(e.log, a.Close)

			res, err := a.Sweeper.Run(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "sweep deadline (default: schedule.sweep_timeout_sec)")
	return cmd
}
