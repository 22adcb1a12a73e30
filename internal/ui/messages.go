package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
)

// Message types for async operations

// recommendationMsg is sent when a pipeline run completes
type recommendationMsg struct {
	rec *pipeline.Recommendation
	err error
}

// summaryMsg carries the narrative summary of one spot
type summaryMsg struct {
	spot string
	text string
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}

// runRecommendation runs the pipeline in the background
func runRecommendation(r Recommender, address string, opts pipeline.Options, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		rec, err := r.Run(ctx, address, opts)
		return recommendationMsg{rec: rec, err: err}
	}
}

// summarizeSpot fetches the narrative summary for a result
func summarizeSpot(s Summarizer, result models.SpotResult, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		readings := make([]models.ForecastReading, len(result.Forecasts))
		for i, f := range result.Forecasts {
			readings[i] = f.ForecastReading
		}
		return summaryMsg{spot: result.Spot.Name, text: s.Summarize(ctx, result.Spot, readings)}
	}
}
