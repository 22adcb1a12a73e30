package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// Repository stores spot profiles in sqlite. Loaded profiles are memoized
// until the next save.
type Repository struct {
	db *sql.DB

	mu     sync.Mutex
	loaded []models.SpotProfile
}

// NewRepository creates a repository over an opened database
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LoadSpots returns every spot in insertion order
func (r *Repository) LoadSpots(ctx context.Context) ([]models.SpotProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded != nil {
		return r.loaded, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, city, latitude, longitude, forecast_source_id, type,
		       orientation, best_season, swell_compat, wind_compat, tide_behavior
		FROM spots
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying spots: %w", err)
	}
	defer rows.Close()

	spots := make([]models.SpotProfile, 0)
	for rows.Next() {
		var s models.SpotProfile
		var lat, lon sql.NullFloat64
		var swell, wind, tide string

		if err := rows.Scan(&s.Name, &s.City, &lat, &lon, &s.ForecastSourceID, &s.Type,
			&s.Orientation, &s.BestSeason, &swell, &wind, &tide); err != nil {
			return nil, fmt.Errorf("scanning spot: %w", err)
		}
		if lat.Valid && lon.Valid {
			s.Location = &models.Location{Latitude: lat.Float64, Longitude: lon.Float64}
		}
		if err := json.Unmarshal([]byte(swell), &s.SwellCompat); err != nil {
			return nil, fmt.Errorf("decoding swell profile of %s: %w", s.Name, err)
		}
		if err := json.Unmarshal([]byte(wind), &s.WindCompat); err != nil {
			return nil, fmt.Errorf("decoding wind profile of %s: %w", s.Name, err)
		}
		if err := json.Unmarshal([]byte(tide), &s.TideBehavior); err != nil {
			return nil, fmt.Errorf("decoding tide profile of %s: %w", s.Name, err)
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spots: %w", err)
	}

	r.loaded = spots
	return spots, nil
}

// SaveSpots validates and upserts spots by (name, city) in one transaction.
// Nothing is written if any spot is invalid.
func (r *Repository) SaveSpots(ctx context.Context, spots []models.SpotProfile) (int, error) {
	for _, s := range spots {
		if err := Validate(s); err != nil {
			return 0, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO spots (
			name, city, latitude, longitude, forecast_source_id, type,
			orientation, best_season, swell_compat, wind_compat, tide_behavior
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name, city) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			forecast_source_id = excluded.forecast_source_id,
			type = excluded.type,
			orientation = excluded.orientation,
			best_season = excluded.best_season,
			swell_compat = excluded.swell_compat,
			wind_compat = excluded.wind_compat,
			tide_behavior = excluded.tide_behavior
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range spots {
		swell, err := json.Marshal(s.SwellCompat)
		if err != nil {
			return 0, fmt.Errorf("encoding swell profile of %s: %w", s.Name, err)
		}
		wind, err := json.Marshal(s.WindCompat)
		if err != nil {
			return 0, fmt.Errorf("encoding wind profile of %s: %w", s.Name, err)
		}
		tide, err := json.Marshal(s.TideBehavior)
		if err != nil {
			return 0, fmt.Errorf("encoding tide profile of %s: %w", s.Name, err)
		}

		var lat, lon sql.NullFloat64
		if s.Location != nil {
			lat = sql.NullFloat64{Float64: s.Location.Latitude, Valid: true}
			lon = sql.NullFloat64{Float64: s.Location.Longitude, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, s.Name, s.City, lat, lon, s.ForecastSourceID, s.Type,
			s.Orientation, s.BestSeason, string(swell), string(wind), string(tide)); err != nil {
			return 0, fmt.Errorf("saving spot %s: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing spots: %w", err)
	}

	r.mu.Lock()
	r.loaded = nil
	r.mu.Unlock()
	return len(spots), nil
}

// Count returns the number of stored spots
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM spots").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting spots: %w", err)
	}
	return n, nil
}
