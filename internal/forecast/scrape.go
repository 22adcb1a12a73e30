package forecast

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/time/rate"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/transport"
)

// DefaultScrapeURL is the break index of the forecast website
const DefaultScrapeURL = "https://www.surf-forecast.com/breaks"

// ScrapeSource reads the per-spot forecast table of a surf forecast website.
// The page holds one table row per variable, one cell per time slot:
//
//	<tr data-row-name="time"><td data-date="2026-10-19">06h</td>...</tr>
//	<tr data-row-name="wave-height"><td>1.4</td>...</tr>
//
// Rows read are time, wave-height (m), periods (s), wind (km/h),
// wind-direction and tide.
type ScrapeSource struct {
	baseURL string
	client  *transport.Client
	breaker *transport.Breaker[[]byte]
	now     func() time.Time
}

// NewScrapeSource creates a source limited to ratePerSec page loads per second
func NewScrapeSource(baseURL, userAgent string, ratePerSec float64, timeout time.Duration) *ScrapeSource {
	client := transport.NewClient("forecast-scrape", userAgent, timeout)
	if ratePerSec > 0 {
		client.Limiter = rate.NewLimiter(rate.Limit(ratePerSec), 2)
	}
	return &ScrapeSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		breaker: transport.NewBreaker[[]byte]("forecast-scrape", time.Minute),
		now:     time.Now,
	}
}

// Fetch loads and parses the spot's forecast page
func (s *ScrapeSource) Fetch(ctx context.Context, spot models.SpotProfile, horizonDays int) ([]models.ForecastReading, error) {
	if spot.ForecastSourceID == "" {
		return nil, fmt.Errorf("spot %q has no forecast source id", spot.Name)
	}

	pageURL := fmt.Sprintf("%s/%s/forecasts/latest", s.baseURL, url.PathEscape(spot.ForecastSourceID))
	body, err := s.breaker.Execute(func() ([]byte, error) {
		return s.client.Get(ctx, pageURL, http.Header{"Accept": {"text/html"}})
	})
	if err != nil {
		return nil, fmt.Errorf("fetching forecast page: %w", err)
	}

	days, err := parseForecastPage(body)
	if err != nil {
		return nil, err
	}

	out := make([]models.ForecastReading, 0, horizonDays)
	for _, d := range window(s.now(), horizonDays) {
		k := d.Format(dateLayout)
		slots, listed := days.slots[k]
		switch {
		case !listed:
			out = append(out, models.UnavailableReading(d, "date not covered by forecast page"))
		case len(slots) == 0:
			out = append(out, models.UnavailableReading(d, "incomplete forecast data"))
		default:
			out = append(out, dailyReading(d, slots))
		}
	}
	return out, nil
}

// slot is one complete time column of the forecast table
type slot struct {
	waveM   float64
	periodS float64
	windKmh float64
	windDir string
	tide    models.TideState
}

type pageDays struct {
	slots map[string][]slot // date -> complete slots; listed dates may be empty
}

type cell struct {
	text string
	date string
}

var numberRegex = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// parseForecastPage extracts the complete slots per date. A page without a
// forecast table is malformed.
func parseForecastPage(body []byte) (*pageDays, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing forecast page: %w: %w", models.ErrMalformedProviderResponse, err)
	}

	rows := make(map[string][]cell)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			if name := attr(n, "data-row-name"); name != "" {
				if _, seen := rows[name]; !seen {
					rows[name] = rowCells(n)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	times := rows["time"]
	if len(times) == 0 {
		return nil, fmt.Errorf("forecast page has no time row: %w", models.ErrMalformedProviderResponse)
	}

	days := &pageDays{slots: make(map[string][]slot)}
	date := ""
	for i, t := range times {
		// only the first slot of a day carries the date
		if t.date != "" {
			d, err := time.Parse(dateLayout, t.date)
			if err != nil {
				continue
			}
			date = d.Format(dateLayout)
		}
		if date == "" {
			continue
		}
		if _, ok := days.slots[date]; !ok {
			days.slots[date] = nil
		}
		if s, ok := slotAt(rows, i); ok {
			days.slots[date] = append(days.slots[date], s)
		}
	}
	return days, nil
}

// slotAt reads column i; ok is false when any variable is missing or invalid
func slotAt(rows map[string][]cell, i int) (slot, bool) {
	var s slot
	var ok bool
	if s.waveM, ok = numberAt(rows["wave-height"], i); !ok {
		return s, false
	}
	if s.periodS, ok = numberAt(rows["periods"], i); !ok || s.periodS == 0 {
		return s, false
	}
	if s.windKmh, ok = numberAt(rows["wind"], i); !ok {
		return s, false
	}

	dirs := rows["wind-direction"]
	if i >= len(dirs) || models.CompassIndex(dirs[i].text) < 0 {
		return s, false
	}
	s.windDir = models.NormalizeDirection(dirs[i].text)

	tides := rows["tide"]
	if i >= len(tides) {
		return s, false
	}
	if s.tide, ok = models.ParseTideState(tides[i].text); !ok {
		return s, false
	}
	return s, true
}

func numberAt(cells []cell, i int) (float64, bool) {
	if i >= len(cells) {
		return 0, false
	}
	m := numberRegex.FindString(cells[i].text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// dailyReading aggregates a day's slots
func dailyReading(date time.Time, slots []slot) models.ForecastReading {
	wave := models.WaveHeight{Min: slots[0].waveM, Max: slots[0].waveM}
	var waveSum, periodSum, windSum float64
	dirs := make([]string, 0, len(slots))
	tides := make([]string, 0, len(slots))

	for _, s := range slots {
		wave.Min = min(wave.Min, s.waveM)
		wave.Max = max(wave.Max, s.waveM)
		waveSum += s.waveM
		periodSum += s.periodS
		windSum += s.windKmh
		dirs = append(dirs, s.windDir)
		tides = append(tides, string(s.tide))
	}
	n := float64(len(slots))
	wave.Avg = waveSum / n

	return models.ForecastReading{
		Date:          date,
		WaveHeightM:   wave,
		WavePeriodS:   periodSum / n,
		WindSpeedMS:   windSum / n / 3.6,
		WindDirection: mostCommon(dirs),
		TideState:     models.TideState(mostCommon(tides)),
		Provenance:    models.ProvenanceMeasured,
	}
}

// mostCommon returns the most frequent value; ties go to the first to reach the count
func mostCommon(values []string) string {
	counts := make(map[string]int, len(values))
	best, bestN := "", 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}

func rowCells(tr *html.Node) []cell {
	var cells []cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, cell{text: strings.TrimSpace(textContent(c)), date: attr(c, "data-date")})
		}
	}
	return cells
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
