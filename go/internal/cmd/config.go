package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/internal/events"
	"github.com/purplehaze/glorynews/go/internal/ladder"
	"github.com/purplehaze/glorynews/go/internal/news"
	"github.com/purplehaze/glorynews/go/internal/ratelimit"
	"github.com/purplehaze/glorynews/go/internal/sources"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		// forced refreshes allowed per client per minute
		RefreshPerMinute int `yaml:"refresh_per_minute"`
		RefreshBurst     int `yaml:"refresh_burst"`
	} `yaml:"server"`

	Cache struct {
		LocalMaxAge  time.Duration `yaml:"local_max_age"`
		SharedMaxAge time.Duration `yaml:"shared_max_age"`
		RedisURL     string        `yaml:"redis_url"`
		KeyPrefix    string        `yaml:"key_prefix"`
	} `yaml:"cache"`

	Events struct {
		Enabled bool          `yaml:"enabled"`
		NATS    events.Config `yaml:"nats"`
	} `yaml:"events"`

	Database struct {
		Enabled   bool `yaml:"enabled"`
		Retention int  `yaml:"retention"`
	} `yaml:"database"`

	Team struct {
		Aliases []string `yaml:"aliases"`
	} `yaml:"team"`

	Ladder    ladder.Config             `yaml:"ladder"`
	News      news.Config               `yaml:"news"`
	RateLimit ratelimit.Config          `yaml:"rate_limit"`
	Retry     clients.RetryConfig       `yaml:"retry"`
	Sources   map[string]SourceOverride `yaml:"sources"`

	path string
}

// SourceOverride adjusts one entry of the built-in source registry
type SourceOverride struct {
	Active   *bool  `yaml:"active"`
	Priority *int   `yaml:"priority"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	SeasonID string `yaml:"season_id"`
}

func defaultConfig() *Config {
	var config Config
	config.Log.Level = "info"
	config.Server.Port = "8080"
	config.Server.AllowedOrigins = []string{"*"}
	config.Server.RefreshPerMinute = 2
	config.Server.RefreshBurst = 1
	config.Cache.LocalMaxAge = 5 * time.Minute
	config.Cache.SharedMaxAge = 15 * time.Minute
	config.Cache.KeyPrefix = "glorynews:"
	config.Events.NATS = events.DefaultConfig()
	config.Database.Retention = ladder.DefaultSnapshotRetention
	config.Team.Aliases = sources.DefaultTeamAliases
	config.Ladder = ladder.DefaultConfig()
	config.News = news.DefaultConfig()
	config.RateLimit = ratelimit.DefaultConfig()
	config.Retry = clients.DefaultRetryConfig()
	config.Sources = make(map[string]SourceOverride)
	return &config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// loadConfig reads path on top of the defaults. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	config.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", path).Msg("config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	for key := range config.Sources {
		if !clients.ValidateExternalSource(clients.ExternalSource(key)) {
			return nil, fmt.Errorf("failed to load config: unknown source %q", key)
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) applyEnv() {
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvAsBool("LOG_PRETTY", c.Log.Pretty)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Cache.RedisURL = getEnv("REDIS_URL", c.Cache.RedisURL)
	c.Database.Enabled = getEnvAsBool("DB_ENABLED", c.Database.Enabled)
	c.Database.Retention = getEnvAsInt("DB_SNAPSHOT_RETENTION", c.Database.Retention)

	if url := os.Getenv("NATS_URL"); url != "" {
		c.Events.Enabled = true
		c.Events.NATS.URL = url
	}

	if c.Sources == nil {
		c.Sources = make(map[string]SourceOverride)
	}
	c.overrideSecret(clients.ExternalSourceSportsAPI, "SPORTS_API_KEY", "")
	c.overrideSecret(clients.ExternalSourceSportRadar, "SPORTRADAR_API_KEY", "SPORTRADAR_SEASON_ID")
}

func (c *Config) overrideSecret(source clients.ExternalSource, keyEnv, seasonEnv string) {
	override := c.Sources[string(source)]
	override.APIKey = getEnv(keyEnv, override.APIKey)
	if seasonEnv != "" {
		override.SeasonID = getEnv(seasonEnv, override.SeasonID)
	}
	c.Sources[string(source)] = override
}

// registry returns the built-in sources with overrides applied
func (c *Config) registry() map[clients.ExternalSource]clients.ExternalSourceConfig {
	all := clients.GetExternalSources()
	for key, override := range c.Sources {
		source := clients.ExternalSource(key)
		sc, ok := all[source]
		if !ok {
			continue
		}
		if override.Active != nil {
			sc.Active = *override.Active
		}
		if override.Priority != nil {
			sc.Priority = *override.Priority
		}
		all[source] = sc
	}
	return all
}

func (c *Config) override(source clients.ExternalSource) SourceOverride {
	return c.Sources[string(source)]
}

func setupLogging(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
