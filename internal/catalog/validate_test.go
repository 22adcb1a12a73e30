package catalog

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ngmaloney/surf-spotter/internal/models"
	"github.com/ngmaloney/surf-spotter/internal/validation"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.SpotProfile)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*models.SpotProfile) {},
		},
		{
			name:    "blank name",
			mutate:  func(s *models.SpotProfile) { s.Name = "  " },
			wantErr: "name must not be blank",
		},
		{
			name:    "nan latitude",
			mutate:  func(s *models.SpotProfile) { s.Location.Latitude = math.NaN() },
			wantErr: "location.latitude must be a valid latitude",
		},
		{
			name: "no coordinates and no city",
			mutate: func(s *models.SpotProfile) {
				s.Location = nil
				s.City = ""
			},
			wantErr: "city is required when location is missing",
		},
		{
			name:    "negative swell size",
			mutate:  func(s *models.SpotProfile) { s.SwellCompat.IdealSizeRangeM.Min = -0.5 },
			wantErr: "swell_compat.ideal_size_range_m.min must be at least 0",
		},
		{
			name:    "longitude out of range",
			mutate:  func(s *models.SpotProfile) { s.Location.Longitude = 190 },
			wantErr: "location.longitude must be a valid longitude",
		},
		{
			name:    "unknown orientation",
			mutate:  func(s *models.SpotProfile) { s.Orientation = "sideways" },
			wantErr: "orientation must be a compass point",
		},
		{
			name:   "long direction names",
			mutate: func(s *models.SpotProfile) { s.WindCompat.BestDirection = []string{"east", "North-East"} },
		},
		{
			name:   "no coordinates but city",
			mutate: func(s *models.SpotProfile) { s.Location = nil },
		},
		{
			name:    "inverted swell range",
			mutate:  func(s *models.SpotProfile) { s.SwellCompat.IdealSizeRangeM = models.SizeRange{Min: 3, Max: 1} },
			wantErr: "swell_compat.ideal_size_range_m.max must be greater than or equal to min",
		},
		{
			name:    "swell quality above one",
			mutate:  func(s *models.SpotProfile) { s.SwellCompat.Quality = 1.5 },
			wantErr: "swell_compat.quality must be at most 1",
		},
		{
			name:    "negative wind quality",
			mutate:  func(s *models.SpotProfile) { s.WindCompat.Quality = -0.1 },
			wantErr: "wind_compat.quality must be at least 0",
		},
		{
			name:    "unknown wind direction",
			mutate:  func(s *models.SpotProfile) { s.WindCompat.BestDirection = []string{"E", "UP"} },
			wantErr: `wind_compat.best_direction[1] must be a compass point, got "UP"`,
		},
		{
			name:    "unknown tide state",
			mutate:  func(s *models.SpotProfile) { s.TideBehavior["slack"] = 0.5 },
			wantErr: "tide_behavior[slack] must be one of: low rising high falling",
		},
		{
			name:    "tide quality out of range",
			mutate:  func(s *models.SpotProfile) { s.TideBehavior[models.TideHigh] = 2 },
			wantErr: "tide_behavior[high] must be at most 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testProfile("Coxos", "Ericeira", 39.0035, -9.4263)
			tt.mutate(&s)

			err := Validate(s)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	s := testProfile("Coxos", "Ericeira", 39.0035, -9.4263)
	s.SwellCompat.Quality = 2
	s.TideBehavior[models.TideLow] = -1

	err := Validate(s)
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want a *validation.RequestValidationError", err)
	}
	got := map[string]string{}
	for _, fe := range verr.Errors() {
		got[fe.Field()] = fe.Tag()
	}
	if got["swell_compat.quality"] != "max" || got["tide_behavior[low]"] != "min" {
		t.Errorf("field errors = %v", got)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	s := testProfile("", "Ericeira", 39.0035, -9.4263)
	s.SwellCompat.Quality = 2
	s.WindCompat.Quality = 2

	err := Validate(s)
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{"name must not be blank", "swell_compat.quality", "wind_compat.quality"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
