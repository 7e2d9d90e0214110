package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Medium   MediumConfig   `yaml:"medium"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Notify   NotifyConfig   `yaml:"notify"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// MediumConfig configures the upstream Medium endpoints.
type MediumConfig struct {
	FeedURL         string `yaml:"feed_url"`
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	RequestTimeout  string `yaml:"request_timeout"`
}

// ParseRequestTimeout returns the upstream request timeout as time.Duration.
func (m MediumConfig) ParseRequestTimeout() time.Duration {
	d, err := time.ParseDuration(m.RequestTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ScheduleConfig configures the three ingestion timers.
type ScheduleConfig struct {
	DiscoveryInterval string `yaml:"discovery_interval"`
	DetailsInterval   string `yaml:"details_interval"`
	ClapsInterval     string `yaml:"claps_interval"`
	ClapsMinGap       string `yaml:"claps_min_gap"`
}

// ParseDiscoveryInterval returns the discovery interval as time.Duration.
func (s ScheduleConfig) ParseDiscoveryInterval() time.Duration {
	d, err := time.ParseDuration(s.DiscoveryInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// ParseDetailsInterval returns the details refresh interval as time.Duration.
func (s ScheduleConfig) ParseDetailsInterval() time.Duration {
	d, err := time.ParseDuration(s.DetailsInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// ParseClapsInterval returns the clap refresh interval as time.Duration.
func (s ScheduleConfig) ParseClapsInterval() time.Duration {
	d, err := time.ParseDuration(s.ClapsInterval)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// ParseClapsMinGap returns the clap refresh debounce gap as time.Duration.
func (s ScheduleConfig) ParseClapsMinGap() time.Duration {
	d, err := time.ParseDuration(s.ClapsMinGap)
	if err != nil {
		return 14 * time.Minute
	}
	return d
}

// NotifyConfig configures announcement destinations for new submissions.
type NotifyConfig struct {
	DiscordWebhookURL string `yaml:"discord_webhook_url"`
	WebhookURL        string `yaml:"webhook_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./leaderboard.db"},
		Medium: MediumConfig{
			FeedURL:         "https://medium.com/feed/my-fair-lighthouse/tagged/mfl-contest",
			GraphQLEndpoint: "https://medium.com/_/graphql",
			RequestTimeout:  "30s",
		},
		Schedule: ScheduleConfig{
			DiscoveryInterval: "1h",
			DetailsInterval:   "24h",
			ClapsInterval:     "15m",
			ClapsMinGap:       "14m",
		},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LEADERBOARD_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LEADERBOARD_FEED_URL"); v != "" {
		cfg.Medium.FeedURL = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Notify.DiscordWebhookURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
