package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TimAnthonyAlexander/leads/internal/fetch"
	"github.com/TimAnthonyAlexander/leads/internal/identity"
	"github.com/TimAnthonyAlexander/leads/internal/leads"
	"github.com/TimAnthonyAlexander/leads/internal/score"
)

type stubClient struct {
	pages map[string]fetch.Result
	calls []string
}

func (c *stubClient) Fetch(_ context.Context, rawURL string, _ time.Duration) fetch.Result {
	c.calls = append(c.calls, rawURL)
	if res, ok := c.pages[rawURL]; ok {
		return res
	}
	return fetch.Result{}
}

func page(body string) fetch.Result {
	return fetch.Result{StatusCode: 200, Body: body}
}

func testResolver() *identity.Resolver {
	return identity.NewResolver(identity.Config{
		MultiTenantSuffixes: []string{"github.io", "vercel.app"},
		SkipDomains:         []string{"news.ycombinator.com", "producthunt.com", "github.com"},
		BuilderDomains:      []string{"wixsite.com"},
		RepoHosts:           []string{"github.com"},
	})
}

func testScorer(t *testing.T) *score.Scorer {
	t.Helper()
	s, err := score.New(score.Config{
		Weights: map[string]float64{
			"api":      2,
			"cli":      2,
			"sdk":      2,
			"docs":     1,
			"per seat": 2,
			"sso":      2,
			"casino":   -5,
		},
		DevSignals:     []string{"api", "cli", "sdk", "docs"},
		TeamSignals:    []string{"per seat", "sso"},
		LaunchKeywords: []string{"beta", "launching"},
		PricingModels: []score.PricingModel{
			{Name: "per_seat", Patterns: []string{"per seat", "per user"}},
			{Name: "freemium", Patterns: []string{"free plan"}},
		},
		MinScore:          5,
		RequireDevSignal:  true,
		RequireTeamSignal: true,
	})
	require.NoError(t, err)
	return s
}

func testPipeline(t *testing.T, client *stubClient, store leads.Store) *Pipeline {
	t.Helper()
	logger := zap.NewNop()
	cache := fetch.NewCache(t.TempDir(), time.Hour, 1000, logger)
	prober := fetch.NewProber(client, cache, time.Second, 0, logger)
	return New(testResolver(), client, prober, testScorer(t), store, logger, Options{
		HomepageTimeout: time.Second,
		BuilderPenalty:  3,
		LaunchKeywords:  []string{"beta", "launching"},
		ResolveExclude:  []string{"twitter.com", "linkedin.com", "github.com"},
	})
}

func TestRunKeepsStrongCandidate(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{
		"https://servercompass.app/launch": page(`<html><head><title>ServerCompass</title></head>
			<body><h1>Fleet dashboards for busy ops teams</h1>
			<p>API and CLI included. Pricing is per seat.</p>
			<p>hello@servercompass.app</p></body></html>`),
	}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	stats, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://servercompass.app/launch", Source: "showhn"},
	})
	require.NoError(t, err)

	require.Len(t, store.Kept, 1)
	lead := store.Kept[0]
	assert.Equal(t, "servercompass.app", lead.Canonical)
	assert.Equal(t, "showhn", lead.Source)
	assert.Equal(t, "ServerCompass", lead.Title)
	assert.Equal(t, "per_seat", lead.PricingModel)
	assert.Equal(t, "per seat", lead.TeamCue)
	assert.True(t, lead.Kept())
	assert.GreaterOrEqual(t, lead.Score, 5.0)
	assert.Contains(t, lead.Emails, "hello@servercompass.app")
	assert.NotEmpty(t, lead.Hook)

	assert.Equal(t, 1, stats.NewKept)
	assert.Equal(t, 1, stats.TotalKept)
	assert.Equal(t, 1, stats.PerSource["showhn"])
	assert.InDelta(t, lead.Score, stats.TopScore, 0.001)
}

func TestRunFallsBackToIdentityHomepage(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{
		"https://acme.dev": page("<title>Acme</title> api cli per seat"),
	}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	_, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://acme.dev/dead-path-404", Source: "manual"},
	})
	require.NoError(t, err)

	require.Len(t, store.Kept, 1)
	assert.Equal(t, "acme.dev", store.Kept[0].Canonical)
}

func TestRunDeduplicatesAgainstPriorLeads(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{}}
	store := leads.NewMemoryStore()
	store.Kept = []leads.Lead{{
		DiscoveredAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		URL:          "https://example.com",
		Canonical:    "example.com",
		Source:       "manual",
	}}
	p := testPipeline(t, client, store)

	stats, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://www.example.com/about", Source: "manual"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DedupSkips)
	assert.Empty(t, client.calls)
	require.Len(t, store.Kept, 1)
	// Prior discovery timestamp is preserved verbatim.
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), store.Kept[0].DiscoveredAt)
}

func TestRunIsIdempotent(t *testing.T) {
	pages := map[string]fetch.Result{
		"https://acme.dev": page("<title>Acme</title> api cli per seat"),
	}
	store := leads.NewMemoryStore()
	cands := []leads.Candidate{{URL: "https://acme.dev", Source: "manual"}}

	first := testPipeline(t, &stubClient{pages: pages}, store)
	_, err := first.Run(context.Background(), cands)
	require.NoError(t, err)
	require.Len(t, store.Kept, 1)
	discovered := store.Kept[0].DiscoveredAt

	second := testPipeline(t, &stubClient{pages: pages}, store)
	stats, err := second.Run(context.Background(), cands)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DedupSkips)
	assert.Zero(t, stats.NewKept)
	require.Len(t, store.Kept, 1)
	assert.Equal(t, discovered, store.Kept[0].DiscoveredAt)
}

func TestRunSuppressesInRunDuplicates(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{
		"https://acme.dev":   page("<title>Acme</title> api cli per seat"),
		"https://acme.dev/x": page("<title>Acme</title> api cli per seat"),
	}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	stats, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://acme.dev", Source: "a"},
		{URL: "https://acme.dev/x", Source: "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DedupSkips)
	assert.Len(t, store.Kept, 1)
}

func TestRunMultiTenantSubdomainsAreDistinct(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{
		"https://a.vercel.app": page("<title>A</title> api cli per seat"),
		"https://b.vercel.app": page("<title>B</title> api cli per seat"),
	}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	stats, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://a.vercel.app", Source: "manual"},
		{URL: "https://b.vercel.app", Source: "manual"},
	})
	require.NoError(t, err)

	assert.Zero(t, stats.DedupSkips)
	require.Len(t, store.Kept, 2)
	assert.Equal(t, "a.vercel.app", store.Kept[0].Canonical)
	assert.Equal(t, "b.vercel.app", store.Kept[1].Canonical)
}

func TestRunChasesRepoLink(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{
		"https://github.com/acme/tool": page(`<html><body>
			<a href="https://github.com/acme/tool/issues">Issues</a>
			<a href="https://twitter.com/acmetool">Twitter</a>
			<a href="https://acme.dev">Website</a></body></html>`),
		"https://acme.dev": page("<title>Acme</title> api cli per seat"),
	}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	stats, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://github.com/acme/tool", Source: "showhn"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.RepoLinksChased)
	assert.Equal(t, 1, stats.AggregatorSkips)
	require.Len(t, store.Kept, 1)
	kept := store.Kept[0]
	assert.Equal(t, "acme.dev", kept.Canonical)
	// The injected candidate inherits the repo candidate's source tag.
	assert.Equal(t, "showhn", kept.Source)

	require.NotEmpty(t, store.Filtered)
	assert.Equal(t, leads.FilterAggregator, store.Filtered[0].FilterReason)
	assert.Equal(t, "https://github.com/acme/tool", store.Filtered[0].URL)
}

func TestRunBuilderPenaltyRewritesReason(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{
		// Score 6 before the penalty of 3, 3 after: below the minimum of 5.
		"https://shop.wixsite.com/store": page("<title>Shop</title> api cli per seat"),
	}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	stats, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://shop.wixsite.com/store", Source: "manual"},
	})
	require.NoError(t, err)

	assert.Zero(t, stats.NewKept)
	require.Len(t, store.Filtered, 1)
	assert.Equal(t, leads.FilterBuilderPlatform, store.Filtered[0].FilterReason)
	assert.InDelta(t, 3.0, store.Filtered[0].Score, 0.001)
}

func TestRunBuilderStrongEnoughIsKept(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{
		// Score 9 before the penalty, 6 after: still above the minimum.
		"https://shop.wixsite.com/store": page("<title>Shop</title> api cli sdk docs per seat"),
	}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	_, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://shop.wixsite.com/store", Source: "manual"},
	})
	require.NoError(t, err)

	require.Len(t, store.Kept, 1)
	assert.InDelta(t, 6.0, store.Kept[0].Score, 0.001)
}

func TestRunFilterReasonOrdering(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{
		// Score 1: fails the threshold before the missing-signal checks.
		"https://weak.dev": page("<title>Weak</title> docs"),
	}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	_, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://weak.dev", Source: "manual"},
	})
	require.NoError(t, err)

	require.Len(t, store.Filtered, 1)
	assert.Equal(t, leads.FilterBelowThreshold, store.Filtered[0].FilterReason)
}

func TestRunPurgesMiscategorizedPriorLeads(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{}}
	store := leads.NewMemoryStore()
	store.Kept = []leads.Lead{
		{URL: "https://news.ycombinator.com/item?id=1", Canonical: "news.ycombinator.com", Source: "showhn"},
		{URL: "https://acme.dev", Canonical: "acme.dev", Source: "manual"},
	}
	p := testPipeline(t, client, store)

	stats, err := p.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PurgedLeads)
	require.Len(t, store.Kept, 1)
	assert.Equal(t, "acme.dev", store.Kept[0].Canonical)
	require.Len(t, store.Filtered, 1)
	assert.Equal(t, leads.FilterAggregator, store.Filtered[0].FilterReason)
}

func TestRunCountsFetchFailures(t *testing.T) {
	client := &stubClient{pages: map[string]fetch.Result{}}
	store := leads.NewMemoryStore()
	p := testPipeline(t, client, store)

	stats, err := p.Run(context.Background(), []leads.Candidate{
		{URL: "https://unreachable.dev", Source: "manual"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FetchFailures)
	assert.Empty(t, store.Kept)
	assert.Empty(t, store.Filtered)
	// Original URL plus the https identity fallback.
	assert.Equal(t, []string{"https://unreachable.dev", "https://unreachable.dev"}, client.calls)
}
