package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/surf-spotter/internal/catalog"
	"github.com/ngmaloney/surf-spotter/internal/geo"
	"github.com/ngmaloney/surf-spotter/internal/models"
)

func newCatalogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the surf spot catalog",
	}
	cmd.AddCommand(
		newCatalogImportCmd(c),
		newCatalogListCmd(c),
		newCatalogExportCmd(c),
	)
	return cmd
}

func newCatalogImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json|file.shp>",
		Short: "Import spots from JSON or an ESRI point shapefile",
		Long: `Import spots from a JSON array of spot profiles or from an ESRI point
shapefile. Spots are matched on name and city; existing spots are updated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.catalog.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d spots from %s\n", n, args[0])
			return nil
		},
	}
}

func newCatalogExportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.shp>",
		Short: "Export spots with coordinates as an ESRI point shapefile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			spots, err := a.catalog.LoadSpots(cmd.Context())
			if err != nil {
				return err
			}
			n, err := catalog.WriteShapefile(args[0], spots)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d of %d spots to %s\n", n, len(spots), args[0])
			return nil
		},
	}
}

func newCatalogListCmd(c *cli) *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog spots",
		Long: `List catalog spots. With --lat and --lon each spot shows its
straight-line distance from that point.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var from *models.Location
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				loc := models.Location{Latitude: lat, Longitude: lon}
				if !loc.Valid() {
					return fmt.Errorf("invalid coordinates %s", loc)
				}
				from = &loc
			}

			a, err := newApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			spots, err := a.catalog.LoadSpots(cmd.Context())
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				Headers("Spot", "City", "Type", "Faces", "Swell (m)", "Season", "Straight line").
				StyleFunc(func(row, col int) lipgloss.Style {
					s := lipgloss.NewStyle().Padding(0, 1)
					if row == table.HeaderRow {
						return s.Bold(true)
					}
					return s
				})
			for _, s := range spots {
				distance := "-"
				if from != nil && s.Location != nil {
					distance = fmt.Sprintf("%.0f km", geo.HaversineKm(*from, *s.Location))
				}
				r := s.SwellCompat.IdealSizeRangeM
				t.Row(s.Name, s.City, s.Type, s.Orientation, fmt.Sprintf("%.1f-%.1f", r.Min, r.Max), s.BestSeason, distance)
			}

			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			fmt.Fprintf(cmd.OutOrStdout(), "%d spots\n", len(spots))
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude to measure distance from")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude to measure distance from")
	return cmd
}
