package forecast

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/transport"
)

const DefaultGenerativeURL = "https://api.openai.com/v1/chat/completions"

// GenerativeFallback asks an OpenAI-compatible chat completion endpoint for
// plausible conditions
type GenerativeFallback struct {
	url    string
	model  string
	apiKey string
	client *transport.Client
	now    func() time.Time
}

// NewGenerativeFallback creates a fallback for the given endpoint and model
func NewGenerativeFallback(url, model, apiKey, userAgent string, timeout time.Duration) *GenerativeFallback {
	if url == "" {
		url = DefaultGenerativeURL
	}
	return &GenerativeFallback{
		url:    url,
		model:  model,
		apiKey: apiKey,
		client: transport.NewClient("generative", userAgent, timeout),
		now:    time.Now,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const forecastInstructions = `You are a surf forecaster. Reply with a JSON array only, one object per requested date, with keys: ` +
	`date (YYYY-MM-DD), wave_min, wave_max, wave_avg (meters), period (seconds), wind_speed (m/s), ` +
	`wind_direction (16-point compass), tide (low, rising, high or falling). Never use zero values.`

// Synthesize asks the model for a typical forecast of the spot's window
func (g *GenerativeFallback) Synthesize(ctx context.Context, spot models.SpotProfile, horizonDays int) ([]models.ForecastReading, error) {
	days := window(g.now(), horizonDays)
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Format(dateLayout)
	}

	prompt := fmt.Sprintf("Spot: %s\nDates: %s\nGive the most plausible conditions for these dates given the spot's climate and season.",
		describeSpot(spot), strings.Join(dates, ", "))

	reply, err := g.complete(ctx, forecastInstructions, prompt)
	if err != nil {
		return nil, err
	}
	return ParseForecastReply(reply, days)
}

// Summarize asks the model for a two sentence summary of the readings
func (g *GenerativeFallback) Summarize(ctx context.Context, spot models.SpotProfile, readings []models.ForecastReading) (string, error) {
	data, err := json.Marshal(readings)
	if err != nil {
		return "", fmt.Errorf("encoding readings: %w", err)
	}
	prompt := fmt.Sprintf("Spot: %s\nForecast: %s\nSummarize the surf outlook in at most two sentences and name the best day.",
		describeSpot(spot), data)

	reply, err := g.complete(ctx, "You are a concise surf forecaster.", prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (g *GenerativeFallback) complete(ctx context.Context, system, prompt string) (string, error) {
	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	header := http.Header{}
	if g.apiKey != "" {
		header.Set("Authorization", "Bearer "+g.apiKey)
	}

	body, err := g.client.PostJSON(ctx, g.url, req, header)
	if err != nil {
		return "", fmt.Errorf("generative request: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding generative response: %w: %w", models.ErrMalformedProviderResponse, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("generative response has no content: %w", models.ErrMalformedProviderResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func describeSpot(spot models.SpotProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s), %s break facing %s", spot.Name, spot.City, spot.Type, spot.Orientation)
	if spot.Location != nil {
		fmt.Fprintf(&b, " at %s", spot.Location)
	}
	if spot.BestSeason != "" {
		fmt.Fprintf(&b, ", best in %s", spot.BestSeason)
	}
	return b.String()
}
