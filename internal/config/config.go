package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s" validate:"gt=0"`

	// Incident source configuration.
	SourceBaseURL     string        `envconfig:"SOURCE_BASE_URL" default:"https://data.police.uk/api/crimes-street/all-crime" validate:"url"`
	SourceTimeout     time.Duration `envconfig:"SOURCE_TIMEOUT" default:"15s" validate:"gt=0"`
	DefaultMonthsBack int           `envconfig:"DEFAULT_MONTHS_BACK" default:"3" validate:"min=1,max=12"`
	TileParallelism   int           `envconfig:"TILE_PARALLELISM" default:"4" validate:"min=1,max=16"`

	// Place resolution configuration.
	GoogleMapsAPIKey string        `envconfig:"GOOGLE_MAPS_API_KEY"`
	GeocodeEnabled   bool          `envconfig:"GEOCODE_ENABLED"`
	GeocodeTimeout   time.Duration `envconfig:"GEOCODE_TIMEOUT" default:"5s" validate:"gt=0"`

	// Archive publishing configuration.
	ArchiveEnabled    bool     `envconfig:"ARCHIVE_ENABLED"`
	KafkaBrokers      []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaArchiveTopic string   `envconfig:"KAFKA_ARCHIVE_TOPIC" default:"incident-archive"`
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	// An API key implies geocoding unless GEOCODE_ENABLED says otherwise.
	if _, set := os.LookupEnv("GEOCODE_ENABLED"); !set {
		cfg.GeocodeEnabled = cfg.GoogleMapsAPIKey != ""
	}

	if cfg.GeocodeEnabled && cfg.GoogleMapsAPIKey == "" {
		return nil, errors.New("GEOCODE_ENABLED is true but GOOGLE_MAPS_API_KEY is not set")
	}
	if cfg.ArchiveEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("ARCHIVE_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.ArchiveEnabled && cfg.KafkaArchiveTopic == "" {
		return nil, errors.New("ARCHIVE_ENABLED is true but KAFKA_ARCHIVE_TOPIC is empty")
	}

	return &cfg, nil
}
