package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/weather-alert-feed/internal/domain"
)

// Config holds all service settings, populated from environment variables and
// an optional regions file.
type Config struct {
	// Feed selection. These can be reloaded at runtime via LoadRegions.
	APIHost     string
	Lang        string
	Regions     []domain.RegionSpec
	RegionsFile string

	UpdateInterval       time.Duration
	DisplayInterval      time.Duration
	AnimationSpeed       time.Duration
	ShowNoAlertsMsg      bool
	ShowFetchErrors      bool // terminal UI: note unavailable regions under the status line
	PeriodicSync         bool
	SyncInterval         time.Duration
	FetchTimeout         time.Duration
	MaxConcurrentFetches int
	UserAgent            string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string // terminal UI only; the service logs to stdout
	ShutdownTimeout time.Duration

	// Presentation events sink.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// env holds the feed selection from the environment, before any regions
	// file was applied.
	env FeedSettings
}

// RegionsFile is the YAML document pointed to by REGIONS_FILE.
//
//	lang: fr
//	api_host: weather.gc.ca
//	regions:
//	  - code: on61
//	  - code: qc147
type RegionsFile struct {
	Lang    string              `yaml:"lang" validate:"omitempty,max=16"`
	APIHost string              `yaml:"api_host" validate:"omitempty,max=253"`
	Regions []domain.RegionSpec `yaml:"regions" validate:"dive"`
}

// FeedSettings is the subset of configuration that a "config changed" event
// replaces.
type FeedSettings struct {
	APIHost string
	Lang    string
	Regions []domain.RegionSpec
}

var validate = validator.New()

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIHost:     sharedcfg.EnvOrDefault("API_HOST", "weather.gc.ca"),
		Lang:        sharedcfg.EnvOrDefault("ALERT_LANG", "en"),
		Regions:     domain.ParseRegionCodes(os.Getenv("REGIONS")),
		RegionsFile: os.Getenv("REGIONS_FILE"),
		UserAgent:   sharedcfg.EnvOrDefault("USER_AGENT", "weather-alert-feed/1.0 (+https://github.com/couchcryptid/weather-alert-feed)"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         sharedcfg.EnvOrDefault("LOG_FILE", filepath.Join(os.TempDir(), "weather-alerts-tui.log")),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "weather-alerts"),
	}
	if cfg.UpdateInterval, err = parseDuration("UPDATE_INTERVAL", "60s"); err != nil {
		return nil, err
	}
	if cfg.DisplayInterval, err = parseDuration("DISPLAY_INTERVAL", "5s"); err != nil {
		return nil, err
	}
	if cfg.SyncInterval, err = parseDuration("SYNC_INTERVAL", "10m"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = parseDuration("FETCH_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	// Zero disables the transition.
	animationSpeed, err := time.ParseDuration(sharedcfg.EnvOrDefault("ANIMATION_SPEED", "1s"))
	if err != nil || animationSpeed < 0 {
		return nil, errors.New("invalid ANIMATION_SPEED")
	}
	cfg.AnimationSpeed = animationSpeed

	if cfg.ShowNoAlertsMsg, err = parseBool("SHOW_NO_ALERTS_MSG"); err != nil {
		return nil, err
	}
	if cfg.ShowFetchErrors, err = parseBool("SHOW_FETCH_ERRORS"); err != nil {
		return nil, err
	}
	if cfg.PeriodicSync, err = parseBool("PERIODIC_SYNC"); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED"); err != nil {
		return nil, err
	}

	if cfg.MaxConcurrentFetches, err = parseNonNegativeInt("MAX_CONCURRENT_FETCHES"); err != nil {
		return nil, err
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	cfg.env = cfg.Feed()
	if cfg.RegionsFile != "" {
		settings, err := cfg.LoadRegions()
		if err != nil {
			return nil, err
		}
		cfg.apply(settings)
	}

	return cfg, nil
}

// Feed returns the current feed selection.
func (c *Config) Feed() FeedSettings {
	return FeedSettings{APIHost: c.APIHost, Lang: c.Lang, Regions: c.Regions}
}

// LoadRegions re-reads the regions file, falling back to the environment
// values for anything the file leaves unset. Without a regions file it returns
// the current feed settings unchanged.
func (c *Config) LoadRegions() (FeedSettings, error) {
	if c.RegionsFile == "" {
		return c.Feed(), nil
	}
	settings := c.env
	if settings.APIHost == "" && settings.Lang == "" && settings.Regions == nil {
		settings = c.Feed()
	}

	data, err := os.ReadFile(c.RegionsFile)
	if err != nil {
		return FeedSettings{}, fmt.Errorf("read REGIONS_FILE: %w", err)
	}
	var f RegionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return FeedSettings{}, fmt.Errorf("decode REGIONS_FILE: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return FeedSettings{}, fmt.Errorf("validate REGIONS_FILE: %w", err)
	}

	if f.Lang != "" {
		settings.Lang = f.Lang
	}
	if f.APIHost != "" {
		settings.APIHost = f.APIHost
	}
	if f.Regions != nil {
		settings.Regions = f.Regions
	}
	return settings, nil
}

func (c *Config) apply(s FeedSettings) {
	c.APIHost = s.APIHost
	c.Lang = s.Lang
	c.Regions = s.Regions
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseNonNegativeInt(key string) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
