// Package fetch performs the pipeline's bounded HTTP fetches: a colly-backed
// client, a TTL-expiring on-disk probe cache, and the subpage prober.
package fetch

import (
	"context"
	"time"
)

// Result is the outcome of one fetch. Failures of any kind (timeout, network
// error, non-text response) degrade to a zero Result; absence of data is
// never fatal to the pipeline.
type Result struct {
	StatusCode int
	Body       string
	FromCache  bool
}

// OK reports whether the fetch produced a usable page.
func (r Result) OK() bool {
	return r.StatusCode != 0 && r.Body != ""
}

// Client fetches a single URL with a per-request timeout.
type Client interface {
	Fetch(ctx context.Context, rawURL string, timeout time.Duration) Result
}
