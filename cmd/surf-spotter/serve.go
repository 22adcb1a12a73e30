package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ngmaloney/surf-spotter/internal/api"
	"github.com/ngmaloney/surf-spotter/internal/logging"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			srv := api.NewServer(api.Config{
				Addr:           addr,
				RequestTimeout: c.cfg.Pipeline.RequestTimeout,
				CORSOrigins:    c.cfg.Server.CORSOrigins,
				RateLimit:      c.cfg.Server.RateLimit,
				CacheStats:     a.cache.Stats,
			}, a.pipeline, a.catalog)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logging.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
