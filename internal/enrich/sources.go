// Package enrich drives the pipeline: it loads candidates, resolves
// identities, fetches and probes pages, scores them, and routes every
// candidate to the kept or filtered table.
package enrich

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/TimAnthonyAlexander/leads/internal/identity"
	"github.com/TimAnthonyAlexander/leads/internal/leads"
)

// LoadCandidates reads every .txt file under dir, one absolute URL per line.
// The file's base name becomes the source tag. Lines that do not parse as
// http(s) URLs are skipped; an unreadable directory degrades to an empty
// candidate set so a scheduled run still completes as an empty diff.
func LoadCandidates(dir string, logger *zap.Logger) []leads.Candidate {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil || len(paths) == 0 {
		logger.Warn("No source files found", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	var out []leads.Candidate
	for _, path := range paths {
		source := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		urls, err := readURLList(path)
		if err != nil {
			logger.Warn("Skipping unreadable source file", zap.String("path", path), zap.Error(err))
			continue
		}
		for _, u := range urls {
			out = append(out, leads.Candidate{URL: u, Source: source})
		}
		logger.Info("Loaded source file",
			zap.String("source", source),
			zap.Int("candidates", len(urls)),
		)
	}
	return out
}

func readURLList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if identity.HostOf(line) == "" {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
