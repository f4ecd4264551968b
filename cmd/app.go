// Package cmd defines and implements the CLI commands for the leads
// executable.
package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TimAnthonyAlexander/leads/internal/config"
	"github.com/TimAnthonyAlexander/leads/internal/enrich"
	"github.com/TimAnthonyAlexander/leads/internal/fetch"
	"github.com/TimAnthonyAlexander/leads/internal/identity"
	"github.com/TimAnthonyAlexander/leads/internal/leads"
	"github.com/TimAnthonyAlexander/leads/internal/logging"
	"github.com/TimAnthonyAlexander/leads/internal/score"
)

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// App is the service bundle commands pull from the context. An interface so
// tests can inject a fake.
type App interface {
	Close()
	Logger() *zap.Logger
	Config() config.Config
	Store() leads.Store
	Pipeline() *enrich.Pipeline
}

// newApp is the application factory, replaceable in tests.
var newApp = func(ctx context.Context, cfgFile string) (App, error) {
	return buildApp(ctx, cfgFile)
}

type pipelineApp struct {
	cfg    config.Config
	logger *zap.Logger
	store  leads.Store
	pipe   *enrich.Pipeline
}

func buildApp(ctx context.Context, cfgFile string) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	resolver := identity.NewResolver(identity.Config{
		MultiTenantSuffixes: cfg.Domains.MultiTenantSuffixes,
		SkipDomains:         cfg.Domains.Skip,
		BuilderDomains:      cfg.Domains.Builder,
		RepoHosts:           cfg.Domains.RepoHosts,
	})
	client := fetch.NewCollyClient(cfg.HTTP.UserAgent, logger)
	cache := fetch.NewCache(cfg.Cache.Dir, cfg.Cache.TTL(), cfg.Cache.MaxBodyChars, logger)
	prober := fetch.NewProber(client, cache, cfg.HTTP.ProbeTimeout(), cfg.HTTP.ProbeDelay(), logger)

	scorer, err := score.New(cfg.Scoring.ScorerConfig())
	if err != nil {
		store.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("build scorer: %w", err)
	}

	pipe := enrich.New(resolver, client, prober, scorer, store, logger, enrich.Options{
		HomepageTimeout: cfg.HTTP.HomepageTimeout(),
		BuilderPenalty:  cfg.Scoring.BuilderPenalty,
		LaunchKeywords:  cfg.Scoring.LaunchKeywords,
		ResolveExclude:  cfg.Domains.ResolveExclude,
	})

	return &pipelineApp{cfg: cfg, logger: logger, store: store, pipe: pipe}, nil
}

func buildStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (leads.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		store, err := leads.NewPostgresStore(ctx, cfg.Store.DSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return leads.NewCSVStore(cfg.Store.KeptPath, cfg.Store.FilteredPath, logger), nil
	}
}

func (a *pipelineApp) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Store close failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *pipelineApp) Logger() *zap.Logger        { return a.logger }
func (a *pipelineApp) Config() config.Config      { return a.cfg }
func (a *pipelineApp) Store() leads.Store         { return a.store }
func (a *pipelineApp) Pipeline() *enrich.Pipeline { return a.pipe }
