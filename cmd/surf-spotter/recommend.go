package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
	"github.com/ngmaloney/surf-spotter/internal/ui"
)

func newRecommendCmd(c *cli) *cobra.Command {
	var (
		filters filterFlags
		asJSON  bool
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <address>",
		Short: "Print ranked surf spots for a starting address",
		Example: `  surf-spotter recommend "Rua Augusta, Lisboa" --max-hours 3
  surf-spotter recommend "Bilbao" --color-by price --days 5 --explain`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := filters.options()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := newApp(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			runCtx, cancel := context.WithTimeout(ctx, c.cfg.Pipeline.RequestTimeout)
			defer cancel()

			address := strings.Join(args, " ")
			rec, err := a.pipeline.Run(runCtx, address, opts)
			if pipeline.IsOriginUnresolved(err) {
				return fmt.Errorf("no starting point: %w", err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}

			var summaries map[string]string
			if explain {
				summaries = make(map[string]string, len(rec.Spots))
				for _, s := range rec.Spots {
					readings := make([]models.ForecastReading, len(s.Forecasts))
					for i, f := range s.Forecasts {
						readings[i] = f.ForecastReading
					}
					summaries[s.Spot.Name] = a.forecast.Summarize(ctx, s.Spot, readings)
				}
			}

			fmt.Fprintln(out, ui.RenderRecommendation(rec, summaries))
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full recommendation as JSON")
	cmd.Flags().BoolVar(&explain, "explain", false, "add a short forecast summary per spot")
	return cmd
}
