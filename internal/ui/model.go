package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
)

// Recommender runs one recommendation request
type Recommender interface {
	Run(ctx context.Context, originAddress string, opts pipeline.Options) (*pipeline.Recommendation, error)
}

// Summarizer writes a short narrative of a spot's forecast window
type Summarizer interface {
	Summarize(ctx context.Context, spot models.SpotProfile, readings []models.ForecastReading) string
}

// AppState represents the current state of the application
type AppState int

const (
	StateSearch  AppState = iota // Enter the origin address
	StateLoading                 // Pipeline running
	StateResults                 // Ranked list of spots
	StateDetail                  // One spot's route, forecast and summary
	StateError                   // Error state
)

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int
	err    error

	// Search
	searchInput textinput.Model
	searchQuery string // Last search query
	spinner     spinner.Model

	// Pipeline
	recommender Recommender
	summarizer  Summarizer
	options     pipeline.Options
	timeout     time.Duration

	// Data
	rec         *pipeline.Recommendation
	resultList  list.Model
	selected    *models.SpotResult
	summaries   map[string]string
	summarizing bool
}

// NewModel creates a new application model. opts are the filters applied to
// every search; timeout bounds each pipeline run.
func NewModel(recommender Recommender, summarizer Summarizer, opts pipeline.Options, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter your starting address (e.g. Rua Augusta, Lisboa)..."
	ti.Focus()
	ti.CharLimit = 120
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		state:       StateSearch,
		searchInput: ti,
		spinner:     s,
		recommender: recommender,
		summarizer:  summarizer,
		options:     opts,
		timeout:     timeout,
		summaries:   make(map[string]string),
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle window size
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		if m.state == StateResults || m.state == StateDetail {
			m.resultList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil
	}

	// Handle custom messages
	switch msg := msg.(type) {
	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case recommendationMsg:
		if msg.err != nil {
			var unresolved *models.OriginUnresolvedError
			if errors.As(msg.err, &unresolved) {
				m.err = fmt.Errorf("could not find %q: %s", m.searchQuery, unresolved.Reason)
			} else {
				m.err = fmt.Errorf("recommendation failed: %w", msg.err)
			}
			m.state = StateError
			return m, nil
		}
		m.rec = msg.rec
		m.summaries = make(map[string]string)
		m.resultList = createResultList(msg.rec.Spots, m.width-4, m.height-6)
		m.state = StateResults
		return m, nil

	case summaryMsg:
		m.summaries[msg.spot] = msg.text
		if m.selected != nil && m.selected.Spot.Name == msg.spot {
			m.summarizing = false
		}
		return m, nil
	}

	// Handle keyboard input
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		// Global keys
		if keyMsg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if keyMsg.String() == "q" && m.state != StateSearch {
			return m, tea.Quit
		}

		// State-specific handling
		switch m.state {
		case StateSearch:
			return m.handleSearchInput(keyMsg)

		case StateResults:
			return m.handleResultList(msg)

		case StateDetail:
			if keyMsg.Type == tea.KeyEsc || keyMsg.Type == tea.KeyBackspace || keyMsg.String() == "b" {
				m.state = StateResults
				m.selected = nil
				m.summarizing = false
				return m, nil
			}
			if keyMsg.String() == "s" {
				return m.newSearch()
			}
			return m, nil

		case StateError:
			// Any key returns to search (except quit keys)
			m.state = StateSearch
			m.err = nil
			m.searchInput.Focus()
			return m, textinput.Blink
		}
	}

	// Update appropriate component based on state
	switch m.state {
	case StateLoading:
		m.spinner, cmd = m.spinner.Update(msg)
	case StateSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case StateResults:
		m.resultList, cmd = m.resultList.Update(msg)
	}

	return m, cmd
}

// handleSearchInput handles keyboard input in search state
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Handle Enter key
	if msg.Type == tea.KeyEnter {
		query := m.searchInput.Value()
		if query == "" {
			return m, nil
		}
		m.searchQuery = query
		m.err = nil
		m.state = StateLoading
		return m, tea.Batch(
			m.spinner.Tick,
			runRecommendation(m.recommender, query, m.options, m.timeout),
		)
	}

	// Update text input
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleResultList handles keyboard input in the results state
func (m Model) handleResultList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEnter {
			if item, ok := m.resultList.SelectedItem().(resultItem); ok {
				result := item.result
				m.selected = &result
				m.state = StateDetail
				if _, done := m.summaries[result.Spot.Name]; done || m.summarizer == nil {
					return m, nil
				}
				m.summarizing = true
				return m, summarizeSpot(m.summarizer, result, m.timeout)
			}
		}
		// 's' or Esc to go back to search
		if keyMsg.String() == "s" || keyMsg.Type == tea.KeyEsc {
			return m.newSearch()
		}
	}

	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m Model) newSearch() (tea.Model, tea.Cmd) {
	m.state = StateSearch
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.rec = nil
	m.selected = nil
	m.summarizing = false
	return m, textinput.Blink
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateSearch:
		return m.viewSearch()
	case StateLoading:
		return m.viewLoading()
	case StateResults:
		return m.viewResults()
	case StateDetail:
		return m.viewDetail()
	case StateError:
		return m.viewError()
	}

	return ""
}

// viewError renders the error view
func (m Model) viewError() string {
	title := errorStyle.Render("✗ Error")

	errorMsg := "An unknown error occurred"
	if m.err != nil {
		errorMsg = m.err.Error()
	}

	help := helpStyle.Render("Press any key to return to search • Q: Quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", errorMsg, "", help)
}

// viewSearch renders the search view
func (m Model) viewSearch() string {
	title := titleStyle.Render("🏄 Surf Spotter")
	subtitle := mutedStyle.Render("Where to surf in the next few days, and what it costs to get there")

	searchBox := searchBoxStyle.Render(m.searchInput.View())

	filters := mutedStyle.Render(describeOptions(m.options))
	help := helpStyle.Render("Press Enter to search • Ctrl+C to quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", searchBox, "", filters, help)
}

// viewLoading renders the loading view
func (m Model) viewLoading() string {
	return fmt.Sprintf("%s Finding surf spots near %s...\n\n%s",
		m.spinner.View(),
		m.searchQuery,
		mutedStyle.Render("Geocoding, routing and reading forecasts"))
}

// viewResults renders the ranked spot list
func (m Model) viewResults() string {
	var sections []string
	sections = append(sections, m.resultList.View())
	if m.rec != nil && m.rec.Partial {
		sections = append(sections, errorStyle.Render("Timed out: showing the spots finished in time"))
	}
	if m.rec != nil && len(m.rec.Spots) == 0 {
		sections = append(sections, mutedStyle.Render("No spots match the filters"))
	}
	sections = append(sections, helpStyle.Render("↑/↓: Navigate • Enter: Details • S/Esc: New search • Q: Quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// viewDetail renders the selected spot
func (m Model) viewDetail() string {
	if m.selected == nil {
		return "No spot selected"
	}
	body := renderDetail(*m.selected, m.summaries[m.selected.Spot.Name], m.summarizing)
	help := helpStyle.Render("B/Esc: Back to list • S: New search • Q: Quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, help)
}

func describeOptions(o pipeline.Options) string {
	price, hours := "any price", "any drive"
	if o.MaxPriceEUR > 0 {
		price = fmt.Sprintf("≤ €%.0f", o.MaxPriceEUR)
	}
	if o.MaxDriveHours > 0 {
		hours = fmt.Sprintf("≤ %.1f h", o.MaxDriveHours)
	}
	criterion := o.ColorCriterion
	if criterion == "" {
		criterion = models.ColorByDistance
	}
	return fmt.Sprintf("Filters: %s · %s · coloured by %s", price, hours, criterion)
}
