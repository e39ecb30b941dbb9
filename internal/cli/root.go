// Package cli provides the alertsweep command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"pricealerts/internal/config"
	"pricealerts/internal/logging"
)

const Version = "0.3.0"

// env carries what every subcommand needs once flags are parsed.
type env struct {
	cfgPath string
	debug   bool
	logOut  io.Writer

	cfg config.Config
	log zerolog.Logger
}

// NewRootCmd builds the command tree. Logs go to logOut (stderr when nil);
// command output goes to the command's out writer.
func NewRootCmd(logOut io.Writer) *cobra.Command {
	if logOut == nil {
		logOut = os.Stderr
	}
	e := &env{logOut: logOut}

	root := &cobra.Command{
		Use:   "alertsweep",
		Short: "Price alert sweeper",
		Long: `alertsweep evaluates user price alerts against live quotes and
records a notification for every alert whose condition holds.

Run 'alertsweep serve' for the scheduled service with its HTTP API, or
'alertsweep sweep' for a single pass.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load()
		},
	}

	root.PersistentFlags().StringVar(&e.cfgPath, "config", "", "config file (default: ./config.{yaml,json,toml})")
	root.PersistentFlags().BoolVar(&e.debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(e), newSweepCmd(e), newQuoteCmd(e))
	return root
}

func (e *env) load() error {
	cfg, err := config.Load(e.cfgPath)
	if err != nil {
		return err
	}
	if e.debug {
		cfg.Log.Level = "debug"
	}
	e.cfg = cfg
	e.log = logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}, e.logOut)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// closeLogged releases backends on the way out; a failure is only logged.
func closeLogged(log zerolog.Logger, closeFn func(context.Context) error) {
	if err := closeFn(context.Background()); err != nil {
		log.Warn().Err(err).Msg("close backends")
	}
}
