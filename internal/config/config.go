package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	DatabaseURL    string
	RedisURL       string
	EventTimezone  string
	DefaultVariant string
	ReportCacheTTL time.Duration

	// The live tracker and the post-event report use deliberately different
	// on-time tolerances; both are tunable, neither is derived from the other.
	LiveToleranceMinutes   int
	ReportToleranceMinutes int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Location resolves the configured event timezone.
func (c Config) Location() (*time.Location, error) {
	if c.EventTimezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.EventTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid event timezone %q: %w", c.EventTimezone, err)
	}
	return loc, nil
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RUNSHEET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Runsheet API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("event.timezone", "UTC")
	v.SetDefault("schedule.default_variant", "official")
	v.SetDefault("report.cache_ttl", "30s")
	v.SetDefault("tolerance.live_minutes", 5)
	v.SetDefault("tolerance.report_minutes", 3)

	ttlString := v.GetString("report.cache_ttl")
	if ttlString == "" {
		ttlString = "30s"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		EventTimezone:          v.GetString("event.timezone"),
		DefaultVariant:         v.GetString("schedule.default_variant"),
		ReportCacheTTL:         ttl,
		LiveToleranceMinutes:   v.GetInt("tolerance.live_minutes"),
		ReportToleranceMinutes: v.GetInt("tolerance.report_minutes"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.LiveToleranceMinutes <= 0 {
		cfg.LiveToleranceMinutes = 5
	}

	if cfg.ReportToleranceMinutes <= 0 {
		cfg.ReportToleranceMinutes = 3
	}

	return cfg, nil
}
