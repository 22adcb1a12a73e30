package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

var (
	// Color palette
	colorPrimary = lipgloss.Color("#00BFFF") // Deep sky blue
	colorDanger  = lipgloss.Color("#FF6B6B") // Red
	colorOrange  = lipgloss.Color("#FF8C42")
	colorWarning = lipgloss.Color("#FFD93D") // Yellow for synthetic data
	colorSuccess = lipgloss.Color("#6BCF7F") // Green
	colorMuted   = lipgloss.Color("#6C757D") // Gray
	colorBorder  = lipgloss.Color("#4A90E2") // Border blue

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	// Content styles
	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	syntheticStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	// Help text style
	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 0)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Padding(0, 1).
				MarginTop(1)

	searchBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			Width(64)
)

// bandColor maps a colour band onto the palette
func bandColor(b models.ColorBand) lipgloss.Color {
	switch b {
	case models.BandGreen:
		return colorSuccess
	case models.BandOrange:
		return colorOrange
	case models.BandRed:
		return colorDanger
	}
	return colorMuted
}

// bandStyle renders text in the spot's band colour
func bandStyle(b models.ColorBand) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(bandColor(b)).Bold(true)
}
