package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

var validate = validator.New()

// AppConfig is the configuration of the aggregation service.
type AppConfig struct {
	Port string `envconfig:"PORT" default:"8080" validate:"required,numeric"`

	OpenWeatherAPIKey  string `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	OpenWeatherBaseURL string `envconfig:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5" validate:"required,url"`

	// UpstreamTimeout of zero leaves the transport default (no client timeout).
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"0s" validate:"gte=0"`
	// UpstreamMaxRetries of zero means a single attempt per upstream call.
	UpstreamMaxRetries int `envconfig:"UPSTREAM_MAX_RETRIES" default:"0" validate:"gte=0,lte=5"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	LogConfig
}

// LogConfig controls application logging.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
}

// ClientConfig is the configuration of the terminal client.
type ClientConfig struct {
	ServiceURL string `envconfig:"SKYCAST_URL" default:"http://localhost:8080" validate:"required,url"`

	Geocoder        string `envconfig:"GEOCODER" default:"openweather" validate:"oneof=openweather google"`
	GeocoderAPIKey  string `envconfig:"GEOCODER_API_KEY"`
	GeocoderBaseURL string `envconfig:"GEOCODER_BASE_URL" default:"https://api.openweathermap.org/geo/1.0" validate:"required,url"`

	DefaultCity string `envconfig:"DEFAULT_CITY" default:"Chennai" validate:"required"`
	Unit        string `envconfig:"UNIT" default:"F" validate:"oneof=C F"`
	Theme       string `envconfig:"THEME" default:"dark" validate:"oneof=dark light"`
	Timezone    string `envconfig:"TIMEZONE" default:"Asia/Kolkata" validate:"required"`

	// RefreshInterval of zero disables periodic refresh.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"0s" validate:"gte=0"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"0s" validate:"gte=0"`
	ClearOnError    bool          `envconfig:"CLEAR_ON_ERROR" default:"false"`

	LogConfig

	zone *time.Location
}

// Zone returns the location resolved from Timezone.
func (c *ClientConfig) Zone() *time.Location {
	if c.zone == nil {
		return time.UTC
	}
	return c.zone
}

// Load reads the service configuration from the environment.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads the client configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.zone = loc
	return cfg, nil
}
