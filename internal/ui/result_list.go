package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// resultItem wraps a SpotResult for use in a list
type resultItem struct {
	result models.SpotResult
}

// FilterValue implements list.Item
func (r resultItem) FilterValue() string {
	return r.result.Spot.Name + " " + r.result.Spot.City
}

// Title implements list.DefaultItem
func (r resultItem) Title() string {
	title := r.result.Spot.Name
	if r.result.Spot.City != "" {
		title += ", " + r.result.Spot.City
	}
	return bandStyle(r.result.ColorBand).Render("●") + " " + title
}

// Description implements list.DefaultItem
func (r resultItem) Description() string {
	parts := []string{formatRoute(r.result)}
	if best, ok := r.result.BestDay(); ok {
		parts = append(parts, fmt.Sprintf("best %s %.1f", best.Date.Format("Mon"), best.DailyRating))
	} else {
		parts = append(parts, "no forecast")
	}
	parts = append(parts, string(r.result.Provenance()))
	return strings.Join(parts, " · ")
}

// createResultList creates a list.Model from pipeline results
func createResultList(results []models.SpotResult, width, height int) list.Model {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Surf Spots"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)

	return l
}

// formatRoute renders a route with display rounding
func formatRoute(r models.SpotResult) string {
	if r.Route == nil {
		return "route unknown"
	}
	rc := r.Route.Rounded()
	return fmt.Sprintf("%.1f km · %.1f h · €%.2f", rc.DistanceKm, rc.DurationHours, rc.TotalPriceEUR)
}
