package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ngmaloney/surf-spotter/internal/cache"
	"github.com/ngmaloney/surf-spotter/internal/catalog"
	"github.com/ngmaloney/surf-spotter/internal/config"
	"github.com/ngmaloney/surf-spotter/internal/database"
	"github.com/ngmaloney/surf-spotter/internal/forecast"
	"github.com/ngmaloney/surf-spotter/internal/geocoding"
	"github.com/ngmaloney/surf-spotter/internal/logging"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
	"github.com/ngmaloney/surf-spotter/internal/routing"
)

// app is the wired set of components behind every subcommand
type app struct {
	db       *sql.DB
	cache    *cache.Cache
	catalog  *catalog.Repository
	forecast *forecast.Resolver
	pipeline *pipeline.Pipeline
}

// newApp opens the catalog, seeding it on first use, and wires the
// providers into a pipeline. All providers share one request cache.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	repo := catalog.NewRepository(db)
	if err := catalog.Provision(ctx, repo); err != nil {
		db.Close()
		return nil, fmt.Errorf("provisioning catalog: %w", err)
	}

	c := cache.New()
	backoff := cfg.Pipeline.RetryBackoff
	p := cfg.Providers

	geocoder := geocoding.NewGeocoder(
		geocoding.NewNominatimProvider(p.Nominatim.URL, p.Nominatim.UserAgent, p.Nominatim.RatePerSecond, p.Nominatim.Timeout),
		c, backoff)

	routes := routing.NewCalculator(
		routing.NewOSRMProvider(p.OSRM.URL, p.Nominatim.UserAgent, p.OSRM.Timeout),
		cfg.Costs, c, backoff)

	var fallback forecast.Fallback
	if p.Generative.Enabled() {
		fallback = forecast.NewGenerativeFallback(p.Generative.URL, p.Generative.Model, p.Generative.APIKey,
			p.Nominatim.UserAgent, p.Generative.Timeout)
		logging.Debug().Str("model", p.Generative.Model).Msg("using generative forecast fallback")
	} else {
		fallback = forecast.NewClimateSynthesizer()
		logging.Debug().Msg("using climatology forecast fallback")
	}
	resolver := forecast.NewResolver(
		forecast.NewScrapeSource(p.Scrape.URL, p.Nominatim.UserAgent, p.Scrape.RatePerSecond, p.Scrape.Timeout),
		fallback, c, cfg.Cache.ForecastTTL, backoff)

	return &app{
		db:       db,
		cache:    c,
		catalog:  repo,
		forecast: resolver,
		pipeline: pipeline.New(geocoder, routes, resolver, repo, cfg.Pipeline.Workers, cfg.Pipeline.HorizonDays),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
