package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/ngmaloney/surf-spotter/internal/logging"
	"github.com/ngmaloney/surf-spotter/internal/models"
)

//go:embed seed.json
var seedJSON []byte

// SeedSpots returns the built-in catalog of European spots
func SeedSpots() ([]models.SpotProfile, error) {
	return DecodeJSON(bytes.NewReader(seedJSON))
}

// Provision fills an empty catalog with the built-in spots. A catalog that
// already holds spots is left untouched.
func Provision(ctx context.Context, repo *Repository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	spots, err := SeedSpots()
	if err != nil {
		return fmt.Errorf("decoding seed catalog: %w", err)
	}
	saved, err := repo.SaveSpots(ctx, spots)
	if err != nil {
		return fmt.Errorf("saving seed catalog: %w", err)
	}

	logging.Info().Int("spots", saved).Msg("provisioned spot catalog")
	return nil
}
