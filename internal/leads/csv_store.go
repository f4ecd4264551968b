package leads

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// listSeparator joins multi-value cells (emails, contact channels) inside a
// single CSV field.
const listSeparator = "|"

// columns is the canonical header of both lead tables. Load skips rows with
// fewer fields than this so that legacy exports with a shorter schema do not
// abort a run.
var columns = []string{
	"discovered_at",
	"source",
	"url",
	"canonical",
	"title",
	"value_prop",
	"http_status",
	"score",
	"has_pricing",
	"has_docs",
	"has_signup",
	"has_changelog",
	"has_api",
	"has_webhook",
	"has_cli",
	"has_sdk",
	"team_cue",
	"pricing_model",
	"has_careers",
	"team_size",
	"freshness",
	"launch_context",
	"emails",
	"email_confidence",
	"contact_channels",
	"personalization_hook",
	"filter_reason",
}

// Columns returns the canonical table header shared by every lead sink.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Record flattens l into the canonical column order.
func Record(l Lead) []string {
	return encodeRow(l)
}

// CSVStore persists the lead tables as delimited text files with a header
// row. Writes are atomic (temp file plus rename).
type CSVStore struct {
	keptPath     string
	filteredPath string
	logger       *zap.Logger
}

// NewCSVStore returns a store writing the kept and filtered tables to the
// given paths.
func NewCSVStore(keptPath, filteredPath string, logger *zap.Logger) *CSVStore {
	return &CSVStore{
		keptPath:     keptPath,
		filteredPath: filteredPath,
		logger:       logger,
	}
}

// Load reads the kept table. A missing file yields an empty set; malformed
// rows are skipped, not fatal.
func (s *CSVStore) Load(ctx context.Context) ([]Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}
	f, err := os.Open(s.keptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.keptPath, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.keptPath, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]Lead, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < len(columns) {
			s.logger.Warn("Skipping short lead row",
				zap.Int("row", i+2),
				zap.Int("fields", len(row)),
			)
			continue
		}
		out = append(out, decodeRow(row))
	}
	return out, nil
}

// WriteKept replaces the kept table.
func (s *CSVStore) WriteKept(ctx context.Context, kept []Lead) error {
	return s.writeTable(ctx, s.keptPath, kept)
}

// WriteFiltered replaces the filtered table.
func (s *CSVStore) WriteFiltered(ctx context.Context, filtered []Lead) error {
	return s.writeTable(ctx, s.filteredPath, filtered)
}

// Close is a no-op for the CSV store.
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) writeTable(ctx context.Context, path string, set []Lead) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write(columns)
	for _, lead := range set {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(encodeRow(lead))
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write table %s: %w", path, writeErr)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("replace table %s: %w", path, err)
	}
	return nil
}

func encodeRow(l Lead) []string {
	return []string{
		l.DiscoveredAt.UTC().Format(time.RFC3339),
		l.Source,
		l.URL,
		l.Canonical,
		l.Title,
		l.ValueProp,
		strconv.Itoa(l.HTTPStatus),
		strconv.FormatFloat(l.Score, 'f', -1, 64),
		strconv.FormatBool(l.HasPricing),
		strconv.FormatBool(l.HasDocs),
		strconv.FormatBool(l.HasSignup),
		strconv.FormatBool(l.HasChangelog),
		strconv.FormatBool(l.HasAPI),
		strconv.FormatBool(l.HasWebhook),
		strconv.FormatBool(l.HasCLI),
		strconv.FormatBool(l.HasSDK),
		l.TeamCue,
		l.PricingModel,
		strconv.FormatBool(l.HasCareers),
		l.TeamSize,
		strconv.Itoa(l.Freshness),
		l.LaunchContext,
		strings.Join(l.Emails, listSeparator),
		l.EmailConfidence,
		strings.Join(l.ContactChannels, listSeparator),
		l.Hook,
		string(l.FilterReason),
	}
}

func decodeRow(row []string) Lead {
	discovered, _ := time.Parse(time.RFC3339, row[0])
	status, _ := strconv.Atoi(row[6])
	score, _ := strconv.ParseFloat(row[7], 64)
	freshness, _ := strconv.Atoi(row[20])

	return Lead{
		DiscoveredAt:    discovered,
		Source:          row[1],
		URL:             row[2],
		Canonical:       row[3],
		Title:           row[4],
		ValueProp:       row[5],
		HTTPStatus:      status,
		Score:           score,
		HasPricing:      parseBool(row[8]),
		HasDocs:         parseBool(row[9]),
		HasSignup:       parseBool(row[10]),
		HasChangelog:    parseBool(row[11]),
		HasAPI:          parseBool(row[12]),
		HasWebhook:      parseBool(row[13]),
		HasCLI:          parseBool(row[14]),
		HasSDK:          parseBool(row[15]),
		TeamCue:         row[16],
		PricingModel:    row[17],
		HasCareers:      parseBool(row[18]),
		TeamSize:        row[19],
		Freshness:       freshness,
		LaunchContext:   row[21],
		Emails:          splitList(row[22]),
		EmailConfidence: row[23],
		ContactChannels: splitList(row[24]),
		Hook:            row[25],
		FilterReason:    FilterReason(row[26]),
	}
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
