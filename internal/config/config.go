// Package config loads surf-spotter settings. Values are layered: built-in
// defaults, then an optional YAML file, then SURFSPOT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/ngmaloney/surf-spotter/internal/database"
	"github.com/ngmaloney/surf-spotter/internal/forecast"
	"github.com/ngmaloney/surf-spotter/internal/geocoding"
	"github.com/ngmaloney/surf-spotter/internal/pipeline"
	"github.com/ngmaloney/surf-spotter/internal/routing"
)

const (
	// EnvPrefix starts every environment override. Nested keys use "__":
	// SURFSPOT_COSTS__FUEL_PRICE_EUR_PER_L=1.8
	EnvPrefix = "SURFSPOT_"

	// PathEnvVar names the YAML file when --config is not given
	PathEnvVar = "SURFSPOT_CONFIG"
)

// DefaultPaths are tried in order when no config file is named
var DefaultPaths = []string{
	"surf-spotter.yaml",
	"surf-spotter.yml",
}

// Config is the complete application configuration
type Config struct {
	Costs     routing.Costs   `koanf:"costs"`
	Cache     CacheConfig     `koanf:"cache"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Providers ProvidersConfig `koanf:"providers"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Server    ServerConfig    `koanf:"server"`
}

type CacheConfig struct {
	ForecastTTL time.Duration `koanf:"forecast_ttl"`
}

type PipelineConfig struct {
	Workers        int           `koanf:"workers"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	HorizonDays    int           `koanf:"horizon_days"`
	RetryBackoff   time.Duration `koanf:"retry_backoff"`
}

type ProvidersConfig struct {
	Nominatim  NominatimConfig  `koanf:"nominatim"`
	OSRM       OSRMConfig       `koanf:"osrm"`
	Scrape     ScrapeConfig     `koanf:"scrape"`
	Generative GenerativeConfig `koanf:"generative"`
}

type NominatimConfig struct {
	URL           string        `koanf:"url"`
	UserAgent     string        `koanf:"user_agent"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Timeout       time.Duration `koanf:"timeout"`
}

type OSRMConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type ScrapeConfig struct {
	URL           string        `koanf:"url"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Timeout       time.Duration `koanf:"timeout"`
}

// GenerativeConfig points at an OpenAI-compatible chat completions endpoint.
// Without an API key forecasts fall back to the climatology model.
type GenerativeConfig struct {
	URL     string        `koanf:"url"`
	Model   string        `koanf:"model"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// Enabled reports whether the generative fallback can be used
func (g GenerativeConfig) Enabled() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ServerConfig configures the HTTP API. RateLimit is requests per minute per
// client IP; 0 disables limiting.
type ServerConfig struct {
	Addr        string   `koanf:"addr"`
	CORSOrigins []string `koanf:"cors_origins"`
	RateLimit   int      `koanf:"rate_limit"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Costs: routing.DefaultCosts(),
		Cache: CacheConfig{
			ForecastTTL: forecast.DefaultTTL,
		},
		Pipeline: PipelineConfig{
			Workers:        8,
			RequestTimeout: 60 * time.Second,
			HorizonDays:    pipeline.DefaultHorizonDays,
			RetryBackoff:   500 * time.Millisecond,
		},
		Providers: ProvidersConfig{
			Nominatim: NominatimConfig{
				URL:           geocoding.DefaultNominatimURL,
				UserAgent:     geocoding.DefaultUserAgent,
				RatePerSecond: 1, // Nominatim usage policy
				Timeout:       10 * time.Second,
			},
			OSRM: OSRMConfig{
				URL:     routing.DefaultOSRMURL,
				Timeout: 10 * time.Second,
			},
			Scrape: ScrapeConfig{
				URL:           forecast.DefaultScrapeURL,
				RatePerSecond: 2,
				Timeout:       15 * time.Second,
			},
			Generative: GenerativeConfig{
				URL:     forecast.DefaultGenerativeURL,
				Model:   "gpt-4o-mini",
				Timeout: 30 * time.Second,
			},
		},
		Database: DatabaseConfig{
			Path: database.DBPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			RateLimit:   60,
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// SURFSPOT_CONFIG variable and then DefaultPaths are tried, and a missing
// file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	defaults := Defaults()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Layer 2: config file
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey maps SURFSPOT_PIPELINE__HORIZON_DAYS to pipeline.horizon_days.
// SURFSPOT_CONFIG only names the file and is skipped.
func envKey(name string) string {
	if name == PathEnvVar {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Costs.ConsumptionPer100Km < 0 {
		errs = append(errs, errors.New("costs.consumption_l_per_100km must not be negative"))
	}
	if c.Costs.FuelPricePerLiter < 0 {
		errs = append(errs, errors.New("costs.fuel_price_eur_per_l must not be negative"))
	}
	if c.Costs.TollRatePerKm < 0 {
		errs = append(errs, errors.New("costs.toll_rate_eur_per_km must not be negative"))
	}
	if c.Pipeline.Workers < 1 {
		errs = append(errs, fmt.Errorf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers))
	}
	if c.Pipeline.HorizonDays < 1 || c.Pipeline.HorizonDays > pipeline.MaxHorizonDays {
		errs = append(errs, fmt.Errorf("pipeline.horizon_days must be in [1,%d], got %d",
			pipeline.MaxHorizonDays, c.Pipeline.HorizonDays))
	}
	if c.Pipeline.RetryBackoff < 0 {
		errs = append(errs, errors.New("pipeline.retry_backoff must not be negative"))
	}
	if c.Cache.ForecastTTL < 0 {
		errs = append(errs, errors.New("cache.forecast_ttl must not be negative"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
