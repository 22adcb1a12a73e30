package catalog

import (
	"fmt"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/validation"
)

// Validate checks a profile against its struct rules before it enters the
// catalog. Every failed field is reported.
func Validate(s models.SpotProfile) error {
	if err := validation.ValidateStruct(&s); err != nil {
		return fmt.Errorf("spot %q: %w", s.Name, err)
	}
	return nil
}
