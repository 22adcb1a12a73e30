package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// DecodeJSON reads a JSON array of spot profiles
func DecodeJSON(r io.Reader) ([]models.SpotProfile, error) {
	var spots []models.SpotProfile
	if err := json.NewDecoder(r).Decode(&spots); err != nil {
		return nil, fmt.Errorf("decoding spots: %w", err)
	}
	for i := range spots {
		normalize(&spots[i])
	}
	return spots, nil
}

// ReadFile reads spots from a .json file or an ESRI point shapefile
func ReadFile(path string) ([]models.SpotProfile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return DecodeJSON(f)
	case ".shp":
		return ReadShapefile(path)
	}
	return nil, fmt.Errorf("unsupported catalog file %s (want .json or .shp)", path)
}

// ImportFile reads path and saves its spots, returning how many were stored
func (r *Repository) ImportFile(ctx context.Context, path string) (int, error) {
	spots, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	return r.SaveSpots(ctx, spots)
}

// normalize canonicalizes the free-text fields of an imported profile
func normalize(s *models.SpotProfile) {
	s.Name = strings.TrimSpace(s.Name)
	s.City = strings.TrimSpace(s.City)
	s.ForecastSourceID = strings.TrimSpace(s.ForecastSourceID)
	s.Orientation = models.NormalizeDirection(s.Orientation)
	s.SwellCompat.IdealDirection = models.NormalizeDirection(s.SwellCompat.IdealDirection)
	for i, d := range s.WindCompat.BestDirection {
		s.WindCompat.BestDirection[i] = models.NormalizeDirection(d)
	}
	if len(s.TideBehavior) > 0 {
		tb := make(models.TideBehavior, len(s.TideBehavior))
		for state, q := range s.TideBehavior {
			if parsed, ok := models.ParseTideState(string(state)); ok {
				tb[parsed] = q
			} else {
				tb[state] = q
			}
		}
		s.TideBehavior = tb
	}
}
