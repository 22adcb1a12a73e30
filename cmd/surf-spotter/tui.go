package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/surf-spotter/internal/ui"
)

func newTUICmd(c *cli) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Search surf spots interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := filters.options()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			model := ui.NewModel(a.pipeline, a.forecast, opts, c.cfg.Pipeline.RequestTimeout)
			p := tea.NewProgram(model, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	filters.register(cmd)
	return cmd
}
