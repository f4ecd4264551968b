package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TimAnthonyAlexander/leads/internal/extract"
	"github.com/TimAnthonyAlexander/leads/internal/fetch"
	"github.com/TimAnthonyAlexander/leads/internal/identity"
	"github.com/TimAnthonyAlexander/leads/internal/leads"
	"github.com/TimAnthonyAlexander/leads/internal/metrics"
	"github.com/TimAnthonyAlexander/leads/internal/score"
)

// Options carry the orchestrator-level tuning knobs.
type Options struct {
	HomepageTimeout time.Duration
	BuilderPenalty  float64
	LaunchKeywords  []string
	// ResolveExclude lists hosts never accepted as repo-link resolution
	// targets (social platforms, the repo hosts themselves).
	ResolveExclude []string
}

// Pipeline is the enrichment orchestrator. One candidate is processed fully
// before the next; network fetches are the only suspension points.
type Pipeline struct {
	resolver *identity.Resolver
	client   fetch.Client
	prober   *fetch.Prober
	scorer   *score.Scorer
	store    leads.Store
	logger   *zap.Logger
	opts     Options

	resolveExclude map[string]struct{}
	now            func() time.Time
}

// New wires a Pipeline over its collaborators.
func New(resolver *identity.Resolver, client fetch.Client, prober *fetch.Prober, scorer *score.Scorer, store leads.Store, logger *zap.Logger, opts Options) *Pipeline {
	exclude := make(map[string]struct{}, len(opts.ResolveExclude))
	for _, d := range opts.ResolveExclude {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			exclude[d] = struct{}{}
		}
	}
	return &Pipeline{
		resolver:       resolver,
		client:         client,
		prober:         prober,
		scorer:         scorer,
		store:          store,
		logger:         logger,
		opts:           opts,
		resolveExclude: exclude,
		now:            time.Now,
	}
}

// Run executes one full pipeline pass over the given candidates and persists
// both output tables. Only store failures abort the run; every per-candidate
// failure is counted and skipped.
func (p *Pipeline) Run(ctx context.Context, cands []leads.Candidate) (Stats, error) {
	stats := newStats(uuid.NewString(), p.now().UTC())
	p.logger.Info("Run starting",
		zap.String("run_id", stats.RunID),
		zap.Int("candidates", len(cands)),
	)

	prior, err := p.store.Load(ctx)
	if err != nil {
		return stats, fmt.Errorf("load prior leads: %w", err)
	}
	retained, purged := p.purgeMiscategorized(prior)
	stats.PurgedLeads = len(purged)

	index := make(map[string]struct{}, len(retained))
	for _, l := range retained {
		index[l.Canonical] = struct{}{}
	}

	var newKept []leads.Lead
	filtered := purged

	queue := newWorkQueue(cands)
	for {
		item, ok := queue.next()
		if !ok || ctx.Err() != nil {
			break
		}
		cand := item.cand
		stats.PerSource[cand.Source]++

		host := identity.HostOf(cand.URL)
		if host == "" {
			p.logger.Debug("Dropping unparseable candidate", zap.String("url", cand.URL))
			continue
		}

		class := p.resolver.Classify(host)
		if class == identity.ClassSkip {
			if p.resolver.IsRepoHost(host) && !item.injected {
				if target := p.resolveRepoLink(ctx, cand.URL, host); target != "" {
					queue.push(workItem{cand: leads.Candidate{URL: target, Source: cand.Source}, injected: true})
					stats.RepoLinksChased++
					p.logger.Info("Resolved repo link",
						zap.String("repo", cand.URL),
						zap.String("target", target),
					)
				}
			}
			stats.AggregatorSkips++
			stats.countFiltered(leads.FilterAggregator)
			filtered = append(filtered, p.aggregatorLead(cand, host))
			metrics.LeadsFilteredTotal.Inc()
			continue
		}

		canonical := p.resolver.Canonical(host)
		if _, seen := index[canonical]; seen {
			stats.DedupSkips++
			metrics.DedupSkipsTotal.Inc()
			continue
		}
		index[canonical] = struct{}{}

		lead, ok := p.enrich(ctx, cand, canonical, class)
		if !ok {
			stats.FetchFailures++
			p.logger.Debug("Dropping unfetchable candidate", zap.String("url", cand.URL))
			continue
		}

		if lead.Kept() {
			newKept = append(newKept, lead)
			metrics.LeadsKeptTotal.Inc()
			p.logger.Info("Kept lead",
				zap.String("canonical", lead.Canonical),
				zap.Float64("score", lead.Score),
			)
		} else {
			filtered = append(filtered, lead)
			stats.countFiltered(lead.FilterReason)
			metrics.LeadsFilteredTotal.Inc()
		}
	}

	kept := append(retained, newKept...)
	if err := p.store.WriteKept(ctx, kept); err != nil {
		return stats, fmt.Errorf("write kept leads: %w", err)
	}
	if err := p.store.WriteFiltered(ctx, filtered); err != nil {
		return stats, fmt.Errorf("write filtered leads: %w", err)
	}

	stats.finalize(newKept, len(kept), p.now().UTC())
	p.logger.Info("Run finished",
		zap.String("run_id", stats.RunID),
		zap.Int("new_kept", stats.NewKept),
		zap.Int("total_kept", stats.TotalKept),
		zap.Int("dedup_skips", stats.DedupSkips),
		zap.Int("fetch_failures", stats.FetchFailures),
	)
	return stats, nil
}

// purgeMiscategorized drops prior leads whose hostname now classifies as
// skip. Their identities become eligible for reprocessing and the purged
// rows land in this run's filtered table.
func (p *Pipeline) purgeMiscategorized(prior []leads.Lead) (retained, purged []leads.Lead) {
	for _, l := range prior {
		host := identity.HostOf(l.URL)
		if host == "" {
			host = l.Canonical
		}
		if p.resolver.Classify(host) == identity.ClassSkip {
			l.FilterReason = leads.FilterAggregator
			purged = append(purged, l)
			continue
		}
		retained = append(retained, l)
	}
	return retained, purged
}

// enrich runs fetch, probe, extract, and score for one candidate. The false
// return means fetch-failed: no usable homepage body from either the
// original URL or the https identity fallback.
func (p *Pipeline) enrich(ctx context.Context, cand leads.Candidate, canonical string, class identity.Class) (leads.Lead, bool) {
	res := p.client.Fetch(ctx, cand.URL, p.opts.HomepageTimeout)
	baseURL := cand.URL
	if !res.OK() || res.Body == "" {
		baseURL = "https://" + canonical
		res = p.client.Fetch(ctx, baseURL, p.opts.HomepageTimeout)
	}
	if !res.OK() || res.Body == "" {
		return leads.Lead{}, false
	}

	probes := p.prober.Probe(ctx, canonical, baseURL)
	sig := extract.FromHTML(res.Body)

	var combined strings.Builder
	combined.WriteString(res.Body)
	for _, pr := range probes {
		if pr.Result.OK() {
			combined.WriteString("\n")
			combined.WriteString(pr.Result.Body)
		}
	}
	combined.WriteString("\n")
	combined.WriteString(sig.Title)
	text := combined.String()

	outcome := p.scorer.Score(text)
	scoreValue := outcome.Score
	passed := outcome.Passed
	reason := outcome.FilterReason
	if class == identity.ClassBuilder {
		scoreValue -= p.opts.BuilderPenalty
		passed, reason = p.scorer.Decide(scoreValue, outcome.Buckets)
		if !passed && reason == leads.FilterBelowThreshold {
			reason = leads.FilterBuilderPlatform
		}
	}

	discoveredAt := p.now().UTC()
	freshness, launchContext := extract.Freshness(extract.FreshnessInput{
		DiscoveredAt:   discoveredAt,
		Now:            discoveredAt,
		Source:         cand.Source,
		SourceURL:      cand.URL,
		CombinedText:   text,
		LaunchKeywords: p.opts.LaunchKeywords,
	})

	emails := extract.Emails(text)
	teamCue := ""
	if len(outcome.Buckets.Team) > 0 {
		teamCue = outcome.Buckets.Team[0]
	}

	lead := leads.Lead{
		DiscoveredAt: discoveredAt,
		Source:       cand.Source,
		URL:          cand.URL,
		Canonical:    canonical,
		Title:        sig.Title,
		ValueProp:    sig.ValueProp,
		HTTPStatus:   res.StatusCode,
		Score:        scoreValue,

		HasPricing:   outcome.Flags.Pricing,
		HasDocs:      outcome.Flags.Docs,
		HasSignup:    outcome.Flags.Signup,
		HasChangelog: outcome.Flags.Changelog,
		HasAPI:       outcome.Flags.API,
		HasWebhook:   outcome.Flags.Webhook,
		HasCLI:       outcome.Flags.CLI,
		HasSDK:       outcome.Flags.SDK,

		TeamCue:       teamCue,
		PricingModel:  outcome.PricingModel,
		HasCareers:    extract.HasCareers(text),
		TeamSize:      sig.TeamSize,
		Freshness:     freshness,
		LaunchContext: launchContext,

		Emails:          emails,
		EmailConfidence: extract.Confidence(emails),
		ContactChannels: sig.ContactChannels,

		FilterReason: reason,
	}
	if passed {
		lead.FilterReason = leads.FilterNone
	}
	lead.Hook = personalizationHook(lead, outcome.Buckets)
	return lead, true
}

// aggregatorLead is the thin filtered row recorded for a skip-classified
// candidate. No fetch happens, so only identity fields are populated.
func (p *Pipeline) aggregatorLead(cand leads.Candidate, host string) leads.Lead {
	return leads.Lead{
		DiscoveredAt: p.now().UTC(),
		Source:       cand.Source,
		URL:          cand.URL,
		Canonical:    p.resolver.Canonical(host),
		TeamSize:     "0",
		FilterReason: leads.FilterAggregator,
	}
}

// resolveRepoLink fetches a repository page and returns the first outbound
// link pointing somewhere other than the repo host or the excluded set. One
// hop only; the returned URL re-enters the queue as an injected candidate.
func (p *Pipeline) resolveRepoLink(ctx context.Context, rawURL, host string) string {
	res := p.client.Fetch(ctx, rawURL, p.opts.HomepageTimeout)
	if !res.OK() || res.Body == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if err != nil {
		return ""
	}

	repoDomain := p.resolver.RegistrableDomain(host)
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		linkHost := identity.HostOf(href)
		if linkHost == "" {
			return true
		}
		linkDomain := p.resolver.RegistrableDomain(linkHost)
		if linkDomain == repoDomain || p.excluded(linkHost, linkDomain) {
			return true
		}
		found = href
		return false
	})
	return found
}

func (p *Pipeline) excluded(host, domain string) bool {
	if _, ok := p.resolveExclude[host]; ok {
		return true
	}
	if _, ok := p.resolveExclude[domain]; ok {
		return true
	}
	for entry := range p.resolveExclude {
		if strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}

// personalizationHook builds the one-line opener for outreach from the
// strongest available signal.
func personalizationHook(l leads.Lead, b score.Buckets) string {
	name := l.Title
	if name == "" {
		name = l.Canonical
	}
	switch {
	case l.ValueProp != "":
		return fmt.Sprintf("Came across %s and liked the pitch: %q", name, l.ValueProp)
	case len(b.Dev) > 0:
		return fmt.Sprintf("Came across %s and noticed the %s story", name, b.Dev[0])
	default:
		return fmt.Sprintf("Came across %s via %s", name, l.Source)
	}
}
