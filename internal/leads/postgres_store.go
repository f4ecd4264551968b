package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgxPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore persists the lead tables in PostgreSQL. It is the network
// alternative to the CSV store for installs that want the accumulative set
// queryable; the external CSV tables are still produced by `leads export`.
type PostgresStore struct {
	pool   pgxPool
	logger *zap.Logger
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS kept_leads (
	canonical            TEXT PRIMARY KEY,
	discovered_at        TIMESTAMPTZ NOT NULL,
	source               TEXT NOT NULL,
	url                  TEXT NOT NULL,
	title                TEXT NOT NULL DEFAULT '',
	value_prop           TEXT NOT NULL DEFAULT '',
	http_status          INT NOT NULL DEFAULT 0,
	score                DOUBLE PRECISION NOT NULL DEFAULT 0,
	has_pricing          BOOLEAN NOT NULL DEFAULT FALSE,
	has_docs             BOOLEAN NOT NULL DEFAULT FALSE,
	has_signup           BOOLEAN NOT NULL DEFAULT FALSE,
	has_changelog        BOOLEAN NOT NULL DEFAULT FALSE,
	has_api              BOOLEAN NOT NULL DEFAULT FALSE,
	has_webhook          BOOLEAN NOT NULL DEFAULT FALSE,
	has_cli              BOOLEAN NOT NULL DEFAULT FALSE,
	has_sdk              BOOLEAN NOT NULL DEFAULT FALSE,
	team_cue             TEXT NOT NULL DEFAULT '',
	pricing_model        TEXT NOT NULL DEFAULT '',
	has_careers          BOOLEAN NOT NULL DEFAULT FALSE,
	team_size            TEXT NOT NULL DEFAULT '',
	freshness            INT NOT NULL DEFAULT 0,
	launch_context       TEXT NOT NULL DEFAULT '',
	emails               TEXT[] NOT NULL DEFAULT '{}',
	email_confidence     TEXT NOT NULL DEFAULT '',
	contact_channels     TEXT[] NOT NULL DEFAULT '{}',
	personalization_hook TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS filtered_leads (
	LIKE kept_leads INCLUDING DEFAULTS,
	filter_reason TEXT NOT NULL DEFAULT ''
);`

const insertColumns = `canonical, discovered_at, source, url, title, value_prop, http_status, score,
	has_pricing, has_docs, has_signup, has_changelog, has_api, has_webhook, has_cli, has_sdk,
	team_cue, pricing_model, has_careers, team_size, freshness, launch_context,
	emails, email_confidence, contact_channels, personalization_hook`

// NewPostgresStore connects to dsn, verifies the connection, and ensures the
// lead tables exist.
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{pool: pool, logger: logger}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Load returns every kept lead ordered by discovery time.
func (s *PostgresStore) Load(ctx context.Context) ([]Lead, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+insertColumns+` FROM kept_leads ORDER BY discovered_at`)
	if err != nil {
		return nil, fmt.Errorf("query kept_leads: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		err := rows.Scan(
			&l.Canonical, &l.DiscoveredAt, &l.Source, &l.URL, &l.Title, &l.ValueProp,
			&l.HTTPStatus, &l.Score,
			&l.HasPricing, &l.HasDocs, &l.HasSignup, &l.HasChangelog,
			&l.HasAPI, &l.HasWebhook, &l.HasCLI, &l.HasSDK,
			&l.TeamCue, &l.PricingModel, &l.HasCareers, &l.TeamSize,
			&l.Freshness, &l.LaunchContext,
			&l.Emails, &l.EmailConfidence, &l.ContactChannels, &l.Hook,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kept_leads: %w", err)
	}
	return out, nil
}

// WriteKept replaces the kept table with the given set.
func (s *PostgresStore) WriteKept(ctx context.Context, kept []Lead) error {
	return s.replaceTable(ctx, "kept_leads", kept, false)
}

// WriteFiltered replaces the filtered table with this run's rejects.
func (s *PostgresStore) WriteFiltered(ctx context.Context, filtered []Lead) error {
	return s.replaceTable(ctx, "filtered_leads", filtered, true)
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) replaceTable(ctx context.Context, table string, set []Lead, withReason bool) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE `+table); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	for _, l := range set {
		cols := insertColumns
		placeholders := "$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26"
		args := []any{
			l.Canonical, l.DiscoveredAt, l.Source, l.URL, l.Title, l.ValueProp,
			l.HTTPStatus, l.Score,
			l.HasPricing, l.HasDocs, l.HasSignup, l.HasChangelog,
			l.HasAPI, l.HasWebhook, l.HasCLI, l.HasSDK,
			l.TeamCue, l.PricingModel, l.HasCareers, l.TeamSize,
			l.Freshness, l.LaunchContext,
			l.Emails, l.EmailConfidence, l.ContactChannels, l.Hook,
		}
		if withReason {
			cols += ", filter_reason"
			placeholders += ",$27"
			args = append(args, string(l.FilterReason))
		}
		query := `INSERT INTO ` + table + ` (` + cols + `) VALUES (` + placeholders + `)`
		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	s.logger.Debug("Replaced lead table",
		zap.String("table", table),
		zap.Int("rows", len(set)),
	)
	return nil
}
