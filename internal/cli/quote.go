package cli

import (
	"github.com/spf13/cobra"
	"pricealerts/internal/app"
	"pricealerts/internal/provider"
)

func newQuoteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "quote SYMBOL...",
		Short:   "Resolve symbols through the configured provider chains",
		Example: "  alertsweep quote AAPL BTCUSDT",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := app.BuildResolver(e.cfg.Quotes, e.log)
			out := make([]provider.Quote, 0, len(args))
			for _, sym := range args {
				q, _ := r.Resolve(cmd.Context(), sym)
				out = append(out, q)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"quotes": out})
		},
	}
}
