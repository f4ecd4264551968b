// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/TimAnthonyAlexander/leads/internal/score"
)

// Config captures every knob of the enrichment pipeline. All values can come
// from the YAML config file or LEADS_* environment variables.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Sources SourcesConfig `mapstructure:"sources"`
	Store   StoreConfig   `mapstructure:"store"`
	Server  ServerConfig  `mapstructure:"server"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Domains DomainsConfig `mapstructure:"domains"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// HTTPConfig governs outbound fetch behavior.
type HTTPConfig struct {
	UserAgent         string `mapstructure:"user_agent"`
	HomepageTimeoutMs int    `mapstructure:"homepage_timeout_ms"`
	ProbeTimeoutMs    int    `mapstructure:"probe_timeout_ms"`
	ProbeDelayMs      int    `mapstructure:"probe_delay_ms"`
}

// HomepageTimeout returns the primary-fetch timeout as a duration.
func (c HTTPConfig) HomepageTimeout() time.Duration {
	return time.Duration(c.HomepageTimeoutMs) * time.Millisecond
}

// ProbeTimeout returns the subpage-probe timeout as a duration.
func (c HTTPConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMs) * time.Millisecond
}

// ProbeDelay returns the politeness delay between uncached probes.
func (c HTTPConfig) ProbeDelay() time.Duration {
	return time.Duration(c.ProbeDelayMs) * time.Millisecond
}

// CacheConfig controls the on-disk probe cache.
type CacheConfig struct {
	Dir          string `mapstructure:"dir"`
	TTLHours     int    `mapstructure:"ttl_hours"`
	MaxBodyChars int    `mapstructure:"max_body_chars"`
}

// TTL returns the cache freshness window.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// SourcesConfig locates the newline-delimited URL list files. The source tag
// of each candidate is the list file's base name.
type SourcesConfig struct {
	Dir string `mapstructure:"dir"`
}

// StoreConfig selects the lead store backend.
type StoreConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	KeptPath     string `mapstructure:"kept_path"`
	FilteredPath string `mapstructure:"filtered_path"`
}

// ServerConfig controls serve mode.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ScoringConfig mirrors score.Config plus the orchestrator-level builder
// penalty.
type ScoringConfig struct {
	Weights           map[string]float64   `mapstructure:"weights"`
	DevSignals        []string             `mapstructure:"dev_signals"`
	TeamSignals       []string             `mapstructure:"team_signals"`
	LaunchKeywords    []string             `mapstructure:"launch_keywords"`
	PricingModels     []score.PricingModel `mapstructure:"pricing_models"`
	MinScore          float64              `mapstructure:"min_score"`
	RequireDevSignal  bool                 `mapstructure:"require_dev_signal"`
	RequireTeamSignal bool                 `mapstructure:"require_team_cue"`
	BuilderPenalty    float64              `mapstructure:"builder_penalty"`
}

// ScorerConfig converts to the score package's config.
func (c ScoringConfig) ScorerConfig() score.Config {
	return score.Config{
		Weights:           c.Weights,
		DevSignals:        c.DevSignals,
		TeamSignals:       c.TeamSignals,
		LaunchKeywords:    c.LaunchKeywords,
		PricingModels:     c.PricingModels,
		MinScore:          c.MinScore,
		RequireDevSignal:  c.RequireDevSignal,
		RequireTeamSignal: c.RequireTeamSignal,
	}
}

// DomainsConfig holds the static hostname tables.
type DomainsConfig struct {
	MultiTenantSuffixes []string `mapstructure:"multi_tenant_suffixes"`
	Skip                []string `mapstructure:"skip"`
	Builder             []string `mapstructure:"builder"`
	RepoHosts           []string `mapstructure:"repo_hosts"`
	ResolveExclude      []string `mapstructure:"resolve_exclude"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces required values and sane limits.
func (c Config) Validate() error {
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	if c.HTTP.HomepageTimeoutMs <= 0 {
		return fmt.Errorf("http.homepage_timeout_ms must be > 0")
	}
	if c.HTTP.ProbeTimeoutMs <= 0 {
		return fmt.Errorf("http.probe_timeout_ms must be > 0")
	}
	if c.HTTP.ProbeDelayMs < 0 {
		return fmt.Errorf("http.probe_delay_ms must be >= 0")
	}
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir must be set")
	}
	if c.Cache.TTLHours <= 0 {
		return fmt.Errorf("cache.ttl_hours must be > 0")
	}
	if c.Sources.Dir == "" {
		return fmt.Errorf("sources.dir must be set")
	}
	switch c.Store.Driver {
	case "csv":
		if c.Store.KeptPath == "" || c.Store.FilteredPath == "" {
			return fmt.Errorf("store.kept_path and store.filtered_path must be set for the csv driver")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("store.driver must be csv or postgres, got %q", c.Store.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if len(c.Scoring.Weights) == 0 {
		return fmt.Errorf("scoring.weights must not be empty")
	}
	if c.Scoring.BuilderPenalty < 0 {
		return fmt.Errorf("scoring.builder_penalty must be >= 0")
	}
	return nil
}
