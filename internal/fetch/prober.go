package fetch

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TimAnthonyAlexander/leads/internal/metrics"
)

// ProbePaths is the fixed ordered list of informational subpaths probed for
// every enriched candidate.
var ProbePaths = []string{
	"pricing",
	"docs",
	"documentation",
	"api",
	"changelog",
	"contact",
	"about",
	"team",
	"careers",
	"legal",
	"privacy",
}

// ProbeResult pairs a probed subpath with its fetch outcome.
type ProbeResult struct {
	Path   string
	Result Result
}

// Prober fetches the subpage set through the cache, pausing between network
// fetches for politeness. Cached hits skip the pause so reprocessing-heavy
// runs stay fast.
type Prober struct {
	client  Client
	cache   *Cache
	timeout time.Duration
	delay   time.Duration
	logger  *zap.Logger
	pause   func(ctx context.Context, d time.Duration)
}

// NewProber wires a prober over the given client and cache.
func NewProber(client Client, cache *Cache, timeout, delay time.Duration, logger *zap.Logger) *Prober {
	return &Prober{
		client:  client,
		cache:   cache,
		timeout: timeout,
		delay:   delay,
		logger:  logger,
		pause:   sleepContext,
	}
}

// Probe fetches every probe path relative to baseURL, reusing cached entries
// keyed by identity.
func (p *Prober) Probe(ctx context.Context, identityKey, baseURL string) []ProbeResult {
	base, err := url.Parse(baseURL)
	if err != nil {
		p.logger.Debug("Unprobeable base URL", zap.String("url", baseURL), zap.Error(err))
		return nil
	}

	out := make([]ProbeResult, 0, len(ProbePaths))
	for _, path := range ProbePaths {
		if ctx.Err() != nil {
			break
		}
		res := p.fetchCached(ctx, identityKey, path, base)
		out = append(out, ProbeResult{Path: path, Result: res})
		if !res.FromCache {
			p.pause(ctx, p.delay)
		}
	}
	return out
}

func (p *Prober) fetchCached(ctx context.Context, identityKey, path string, base *url.URL) Result {
	if res, ok := p.cache.Get(identityKey, path); ok {
		metrics.CacheHitsTotal.Inc()
		return res
	}
	metrics.CacheMissesTotal.Inc()

	target := *base
	target.Path = "/" + strings.Trim(path, "/")
	target.RawQuery = ""
	target.Fragment = ""

	res := p.client.Fetch(ctx, target.String(), p.timeout)
	if res.StatusCode >= 200 && res.StatusCode < 400 {
		p.cache.Put(identityKey, path, res)
	}
	return res
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
