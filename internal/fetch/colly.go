package fetch

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/TimAnthonyAlexander/leads/internal/metrics"
)

// CollyClient implements Client on top of a colly collector. Redirects are
// followed; robots.txt is not consulted since every fetch targets a page the
// prospect published for visitors.
type CollyClient struct {
	userAgent string
	base      *colly.Collector
	logger    *zap.Logger
}

// NewCollyClient builds a client sending the given identifying user agent.
func NewCollyClient(userAgent string, logger *zap.Logger) *CollyClient {
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &CollyClient{
		userAgent: userAgent,
		base:      c,
		logger:    logger,
	}
}

// Fetch issues one GET. Any failure, including an unparseable or non-text
// response, returns a zero Result.
func (c *CollyClient) Fetch(ctx context.Context, rawURL string, timeout time.Duration) Result {
	metrics.FetchesTotal.Inc()

	collector := c.base.Clone()
	if c.userAgent != "" {
		collector.UserAgent = c.userAgent
	}
	if timeout <= 0 {
		timeout = 7 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	var (
		result   Result
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		if !textContent(r.Headers.Get("Content-Type")) {
			return
		}
		result = Result{
			StatusCode: r.StatusCode,
			Body:       string(r.Body),
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		metrics.FetchErrorsTotal.Inc()
		c.logger.Debug("Fetch canceled", zap.String("url", rawURL), zap.Error(ctx.Err()))
		return Result{}
	case err := <-done:
		if err == nil {
			err = fetchErr
		}
		if err != nil {
			metrics.FetchErrorsTotal.Inc()
			c.logger.Debug("Fetch failed", zap.String("url", rawURL), zap.Error(err))
			return Result{}
		}
	}
	return result
}

// textContent accepts HTML-ish payloads; binary responses carry no signals.
func textContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text") || strings.Contains(ct, "xml") || strings.Contains(ct, "json")
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          64,
		IdleConnTimeout:       90 * time.Second,
	}
}
