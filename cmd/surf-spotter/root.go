package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ngmaloney/surf-spotter/internal/config"
	"github.com/ngmaloney/surf-spotter/internal/logging"
)

// cli holds state shared by every subcommand
type cli struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "surf-spotter",
		Short: "Rank nearby surf spots by forecast and travel cost",
		Long: `Surf Spotter geocodes your starting address, prices the drive to every
spot in its catalog, reads each spot's surf forecast and ranks the spots
worth the trip over the next few days.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.cfgFile)
			if err != nil {
				return err
			}
			if c.logLevel != "" {
				cfg.Logging.Level = c.logLevel
			}
			logging.Init(logging.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cmd.ErrOrStderr(),
			})
			c.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", fmt.Sprintf("config file (default $%s or ./surf-spotter.yaml)", config.PathEnvVar))
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newRecommendCmd(c),
		newTUICmd(c),
		newServeCmd(c),
		newCatalogCmd(c),
	)
	return rootCmd
}
