package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

const importJSON = `[
  {
    "name": " Mundaka ",
    "city": "Mundaka",
    "location": {"latitude": 43.4075, "longitude": -2.6983},
    "forecast_source_id": "Mundaka",
    "type": "river mouth",
    "orientation": "north",
    "swell_compat": {"ideal_size_range_m": {"min": 1.5, "max": 4}, "ideal_direction": "northwest", "quality": 1},
    "wind_compat": {"best_direction": ["s", "South-West"], "quality": 0.9},
    "tide_behavior": {"Low Tide": 1, "incoming": 0.7, "ebb": 0.8}
  }
]`

func TestDecodeJSON_Normalizes(t *testing.T) {
	spots, err := DecodeJSON(strings.NewReader(importJSON))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if len(spots) != 1 {
		t.Fatalf("got %d spots, want 1", len(spots))
	}

	s := spots[0]
	if s.Name != "Mundaka" {
		t.Errorf("Name = %q, want trimmed", s.Name)
	}
	if s.Orientation != "N" {
		t.Errorf("Orientation = %q, want N", s.Orientation)
	}
	if s.SwellCompat.IdealDirection != "NW" {
		t.Errorf("IdealDirection = %q, want NW", s.SwellCompat.IdealDirection)
	}
	if got := strings.Join(s.WindCompat.BestDirection, ","); got != "S,SW" {
		t.Errorf("BestDirection = %q, want S,SW", got)
	}
	want := models.TideBehavior{models.TideLow: 1, models.TideRising: 0.7, models.TideFalling: 0.8}
	if len(s.TideBehavior) != len(want) {
		t.Fatalf("TideBehavior = %v, want %v", s.TideBehavior, want)
	}
	for state, q := range want {
		if s.TideBehavior[state] != q {
			t.Errorf("TideBehavior[%s] = %v, want %v", state, s.TideBehavior[state], q)
		}
	}
	if err := Validate(s); err != nil {
		t.Errorf("normalized spot fails validation: %v", err)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	if _, err := DecodeJSON(strings.NewReader(`{"name": "not an array"}`)); err == nil {
		t.Error("DecodeJSON() expected error for non-array input")
	}
}

func TestImportFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spots.json")
	if err := os.WriteFile(path, []byte(importJSON), 0644); err != nil {
		t.Fatal(err)
	}

	repo := newTestRepo(t)
	n, err := repo.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d, want 1", n)
	}
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "spots.csv"))
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("ReadFile() error = %v, want unsupported", err)
	}
}
