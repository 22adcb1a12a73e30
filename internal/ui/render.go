package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
)

// RenderRecommendation renders a recommendation as a coloured table, one row
// per spot in ranking order. Summaries, keyed by spot name, are printed
// below the table when present.
func RenderRecommendation(rec *pipeline.Recommendation, summaries map[string]string) string {
	var sections []string

	origin := rec.Origin.FormattedAddress
	sections = append(sections,
		titleStyle.Render("Surf spots from "+origin),
		mutedStyle.Render(fmt.Sprintf("%d spots · coloured by %s · %d day window",
			len(rec.Spots), rec.Options.ColorCriterion, rec.Options.HorizonDays)),
	)
	if rec.Partial {
		sections = append(sections, errorStyle.Render("Request timed out: showing the spots finished in time"))
	}
	if len(rec.Spots) == 0 {
		sections = append(sections, "", mutedStyle.Render("No spots match the filters"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	bands := make([]models.ColorBand, len(rec.Spots))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("#", "Spot", "Distance", "Drive", "Price", "Best day", "Data").
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Bold(true).Foreground(colorPrimary)
			case col == 1 && row < len(bands):
				return base.Inherit(bandStyle(bands[row]))
			}
			return base
		})

	for i, r := range rec.Spots {
		bands[i] = r.ColorBand
		distance, drive, price := "?", "?", "?"
		if r.Route != nil {
			rc := r.Route.Rounded()
			distance = fmt.Sprintf("%.1f km", rc.DistanceKm)
			drive = fmt.Sprintf("%.1f h", rc.DurationHours)
			price = fmt.Sprintf("€%.2f", rc.TotalPriceEUR)
		}
		best := "-"
		if b, ok := r.BestDay(); ok {
			best = fmt.Sprintf("%s %.1f", b.Date.Format("Mon 02"), b.DailyRating)
		}
		t.Row(fmt.Sprint(i+1), spotLabel(r.Spot), distance, drive, price, best, string(r.Provenance()))
	}
	sections = append(sections, t.Render())

	for _, r := range rec.Spots {
		if text := summaries[r.Spot.Name]; text != "" {
			sections = append(sections, "", labelStyle.Render(spotLabel(r.Spot)), text)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDetail renders one spot: route, rated days and summary
func renderDetail(r models.SpotResult, summary string, loadingSummary bool) string {
	var lines []string

	lines = append(lines,
		bandStyle(r.ColorBand).Render("● "+spotLabel(r.Spot)),
		mutedStyle.Render(fmt.Sprintf("%s · faces %s · best in %s", r.Spot.Type, r.Spot.Orientation, r.Spot.BestSeason)),
	)

	lines = append(lines, sectionHeaderStyle.Render("ROUTE"))
	if r.Route == nil {
		reason := r.RouteIssue
		if reason == "" {
			reason = "route unknown"
		}
		lines = append(lines, mutedStyle.Render(reason))
	} else {
		rc := r.Route.Rounded()
		lines = append(lines,
			fmt.Sprintf("%s %s", labelStyle.Render("Distance:"), valueStyle.Render(fmt.Sprintf("%.1f km (%.1f h)", rc.DistanceKm, rc.DurationHours))),
			fmt.Sprintf("%s %s", labelStyle.Render("Cost:"), valueStyle.Render(fmt.Sprintf("€%.2f fuel + €%.2f tolls = €%.2f", rc.FuelCostEUR, rc.TollCostEUR, rc.TotalPriceEUR))),
		)
	}

	lines = append(lines, sectionHeaderStyle.Render("FORECAST"))
	if r.ForecastIssue != "" {
		lines = append(lines, mutedStyle.Render(r.ForecastIssue))
	}
	for _, f := range r.Forecasts {
		lines = append(lines, renderDay(f))
	}

	lines = append(lines, sectionHeaderStyle.Render("SUMMARY"))
	switch {
	case loadingSummary:
		lines = append(lines, mutedStyle.Render("Summarizing..."))
	case summary != "":
		lines = append(lines, lipgloss.NewStyle().Width(72).Render(summary))
	default:
		lines = append(lines, mutedStyle.Render("No summary"))
	}

	return strings.Join(lines, "\n")
}

func renderDay(f models.RatedForecast) string {
	date := labelStyle.Render(f.Date.Format("Mon Jan 2"))
	if !f.Available() {
		return fmt.Sprintf("  %s  %s", date, mutedStyle.Render(f.Explanation))
	}
	line := fmt.Sprintf("  %s  rating %.1f  %.1f-%.1f m @ %.0fs, wind %s %.0f m/s, %s tide",
		date, f.DailyRating,
		f.WaveHeightM.Min, f.WaveHeightM.Max, f.WavePeriodS,
		f.WindDirection, f.WindSpeedMS, f.TideState)
	if f.Provenance == models.ProvenanceSynthetic {
		return syntheticStyle.Render(line + " (estimate)")
	}
	return line
}

func spotLabel(s models.SpotProfile) string {
	if s.City == "" || s.City == s.Name {
		return s.Name
	}
	return s.Name + ", " + s.City
}
