package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./leaderboard.db", cfg.Database.Path)
	assert.Equal(t, "https://medium.com/_/graphql", cfg.Medium.GraphQLEndpoint)
	assert.Equal(t, time.Hour, cfg.Schedule.ParseDiscoveryInterval())
	assert.Equal(t, 24*time.Hour, cfg.Schedule.ParseDetailsInterval())
	assert.Equal(t, 15*time.Minute, cfg.Schedule.ParseClapsInterval())
	assert.Equal(t, 14*time.Minute, cfg.Schedule.ParseClapsMinGap())
	assert.Equal(t, 30*time.Second, cfg.Medium.ParseRequestTimeout())
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/other.db
schedule:
  claps_interval: 5m
server:
  port: 9999
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Minute, cfg.Schedule.ParseClapsInterval())
	assert.Equal(t, 9999, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, time.Hour, cfg.Schedule.ParseDiscoveryInterval())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LEADERBOARD_DB_PATH", "/tmp/env.db")
	t.Setenv("LEADERBOARD_FEED_URL", "https://example.com/feed")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.example/hook")
	t.Setenv("PORT", "3000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, "https://example.com/feed", cfg.Medium.FeedURL)
	assert.Equal(t, "https://discord.example/hook", cfg.Notify.DiscordWebhookURL)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestBadDurationFallsBack(t *testing.T) {
	cfg := Default()
	cfg.Schedule.ClapsInterval = "whenever"
	assert.Equal(t, 15*time.Minute, cfg.Schedule.ParseClapsInterval())
}
