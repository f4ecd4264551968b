package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, cfg.HTTP.HomepageTimeout())
	assert.Equal(t, 5*time.Second, cfg.HTTP.ProbeTimeout())
	assert.Equal(t, 200*time.Millisecond, cfg.HTTP.ProbeDelay())
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.TTL())
	assert.Equal(t, 200000, cfg.Cache.MaxBodyChars)
	assert.Equal(t, "csv", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)

	assert.InDelta(t, 5.0, cfg.Scoring.MinScore, 0.001)
	assert.InDelta(t, 3.0, cfg.Scoring.BuilderPenalty, 0.001)
	assert.True(t, cfg.Scoring.RequireDevSignal)
	assert.True(t, cfg.Scoring.RequireTeamSignal)
	assert.Contains(t, cfg.Scoring.Weights, "api")
	assert.Contains(t, cfg.Scoring.DevSignals, "sdk")
	assert.Contains(t, cfg.Scoring.TeamSignals, "per seat")

	require.NotEmpty(t, cfg.Scoring.PricingModels)
	assert.Equal(t, "per_seat", cfg.Scoring.PricingModels[0].Name)

	assert.Contains(t, cfg.Domains.MultiTenantSuffixes, "github.io")
	assert.Contains(t, cfg.Domains.Skip, "news.ycombinator.com")
	assert.Contains(t, cfg.Domains.RepoHosts, "github.com")
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
http:
  homepage_timeout_ms: 3000
scoring:
  min_score: 7
store:
  driver: postgres
  dsn: postgres://leads@localhost/leads
server:
  port: 9090
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.HTTP.HomepageTimeout())
	assert.InDelta(t, 7.0, cfg.Scoring.MinScore, 0.001)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.HTTP.ProbeTimeout())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LEADS_SERVER_PORT", "7001")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty user agent", func(c *Config) { c.HTTP.UserAgent = "" }},
		{"zero homepage timeout", func(c *Config) { c.HTTP.HomepageTimeoutMs = 0 }},
		{"negative probe delay", func(c *Config) { c.HTTP.ProbeDelayMs = -1 }},
		{"empty cache dir", func(c *Config) { c.Cache.Dir = "" }},
		{"zero ttl", func(c *Config) { c.Cache.TTLHours = 0 }},
		{"unknown store driver", func(c *Config) { c.Store.Driver = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres"; c.Store.DSN = "" }},
		{"csv without paths", func(c *Config) { c.Store.KeptPath = "" }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"no weights", func(c *Config) { c.Scoring.Weights = nil }},
		{"negative builder penalty", func(c *Config) { c.Scoring.BuilderPenalty = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestScorerConfigConversion(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	sc := cfg.Scoring.ScorerConfig()
	assert.Equal(t, cfg.Scoring.Weights, sc.Weights)
	assert.Equal(t, cfg.Scoring.MinScore, sc.MinScore)
	assert.Len(t, sc.PricingModels, len(cfg.Scoring.PricingModels))
}
