package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TimAnthonyAlexander/leads/internal/enrich"
)

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	server := NewServer(RunnerFunc(func(context.Context) (enrich.Stats, error) {
		return enrich.Stats{}, nil
	}), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	server := NewServer(RunnerFunc(func(context.Context) (enrich.Stats, error) {
		return enrich.Stats{}, nil
	}), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "leads_fetches_total")
}

func TestServer_TriggerRun_ReturnsStats(t *testing.T) {
	t.Parallel()

	server := NewServer(RunnerFunc(func(context.Context) (enrich.Stats, error) {
		return enrich.Stats{RunID: "run-xyz", NewKept: 2}, nil
	}), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/runs", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "run-xyz")
	require.Contains(t, rec.Body.String(), `"new_kept":2`)
}

func TestServer_TriggerRun_ConflictWhileRunning(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	server := NewServer(RunnerFunc(func(context.Context) (enrich.Stats, error) {
		close(started)
		<-release
		return enrich.Stats{}, nil
	}), zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/runs", nil)
		server.Handler().ServeHTTP(httptest.NewRecorder(), req)
	}()

	<-started
	req := httptest.NewRequest(http.MethodPost, "/runs", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	wg.Wait()
}

func TestServer_TriggerRun_RunError(t *testing.T) {
	t.Parallel()

	server := NewServer(RunnerFunc(func(context.Context) (enrich.Stats, error) {
		return enrich.Stats{}, context.DeadlineExceeded
	}), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/runs", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
