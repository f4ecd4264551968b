// Package score implements the weighted ICP scorer: a configurable
// token-weight table matched against combined page text, signal bucket
// classification, capability flags, pricing-model detection, and the
// keep/filter decision.
package score

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/TimAnthonyAlexander/leads/internal/leads"
)

// Config holds the scoring tables. All tokens are lowercase words or short
// phrases; weights may be negative.
type Config struct {
	Weights        map[string]float64
	DevSignals     []string
	TeamSignals    []string
	LaunchKeywords []string
	PricingModels  []PricingModel

	MinScore          float64
	RequireDevSignal  bool
	RequireTeamSignal bool
}

// PricingModel is one ordered pattern group; the first group with any
// substring hit names the lead's pricing model.
type PricingModel struct {
	Name     string   `mapstructure:"name"`
	Patterns []string `mapstructure:"patterns"`
}

// Buckets classifies matched tokens. A token lands in exactly one bucket;
// bucket membership never adds score beyond the token's single weight.
type Buckets struct {
	Dev      []string
	Team     []string
	Launch   []string
	Negative []string
}

// Flags are the fixed capability booleans reported on every lead,
// independent of the weighted-token mechanism.
type Flags struct {
	Pricing   bool
	Docs      bool
	Signup    bool
	Changelog bool
	API       bool
	Webhook   bool
	CLI       bool
	SDK       bool
}

// Outcome is the scorer's verdict for one candidate's combined text.
type Outcome struct {
	Score        float64
	Buckets      Buckets
	Passed       bool
	FilterReason leads.FilterReason
	PricingModel string
	Flags        Flags
}

// Scorer matches a compiled token table against text. Pure; safe for reuse
// across candidates.
type Scorer struct {
	cfg      Config
	tokens   []string
	patterns map[string]*regexp.Regexp
	dev      map[string]struct{}
	team     map[string]struct{}
	launch   map[string]struct{}
	flags    map[string]*regexp.Regexp
}

// flagKeywords drive the capability booleans; keys match the Flags fields.
var flagKeywords = map[string][]string{
	"pricing":   {"pricing", "plans"},
	"docs":      {"docs", "documentation"},
	"signup":    {"sign up", "signup", "get started", "create account"},
	"changelog": {"changelog", "release notes", "what's new"},
	"api":       {"api"},
	"webhook":   {"webhook", "webhooks"},
	"cli":       {"cli"},
	"sdk":       {"sdk"},
}

// New compiles the configured tables into a Scorer.
func New(cfg Config) (*Scorer, error) {
	s := &Scorer{
		cfg:      cfg,
		patterns: make(map[string]*regexp.Regexp, len(cfg.Weights)),
		dev:      toSet(cfg.DevSignals),
		team:     toSet(cfg.TeamSignals),
		launch:   toSet(cfg.LaunchKeywords),
		flags:    make(map[string]*regexp.Regexp, len(flagKeywords)),
	}

	for token := range cfg.Weights {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		re, err := tokenPattern(token)
		if err != nil {
			return nil, fmt.Errorf("compile token %q: %w", token, err)
		}
		s.tokens = append(s.tokens, token)
		s.patterns[token] = re
	}
	sort.Strings(s.tokens)

	for name, keywords := range flagKeywords {
		alts := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			alts = append(alts, regexp.QuoteMeta(kw))
		}
		re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("compile flag %q: %w", name, err)
		}
		s.flags[name] = re
	}
	return s, nil
}

// Score evaluates text against the token table. Deterministic: token order
// is fixed at compile time, so identical input always yields the identical
// outcome.
func (s *Scorer) Score(text string) Outcome {
	out := Outcome{PricingModel: s.pricingModel(text)}

	for _, token := range s.tokens {
		if !s.patterns[token].MatchString(text) {
			continue
		}
		weight := s.cfg.Weights[token]
		out.Score += weight
		switch {
		case contains(s.dev, token):
			out.Buckets.Dev = append(out.Buckets.Dev, token)
		case contains(s.team, token):
			out.Buckets.Team = append(out.Buckets.Team, token)
		case weight < 0:
			out.Buckets.Negative = append(out.Buckets.Negative, token)
		case contains(s.launch, token):
			out.Buckets.Launch = append(out.Buckets.Launch, token)
		}
	}

	out.Flags = Flags{
		Pricing:   s.flags["pricing"].MatchString(text),
		Docs:      s.flags["docs"].MatchString(text),
		Signup:    s.flags["signup"].MatchString(text),
		Changelog: s.flags["changelog"].MatchString(text),
		API:       s.flags["api"].MatchString(text),
		Webhook:   s.flags["webhook"].MatchString(text),
		CLI:       s.flags["cli"].MatchString(text),
		SDK:       s.flags["sdk"].MatchString(text),
	}

	out.Passed, out.FilterReason = s.Decide(out.Score, out.Buckets)
	return out
}

// Decide applies the pass/fail chain in strict order: threshold first, then
// dev signal, then team cue. The first failing check names the filter
// reason. Exposed separately so the orchestrator can re-decide after the
// builder-platform penalty.
func (s *Scorer) Decide(scoreValue float64, b Buckets) (bool, leads.FilterReason) {
	if scoreValue < s.cfg.MinScore {
		return false, leads.FilterBelowThreshold
	}
	if s.cfg.RequireDevSignal && len(b.Dev) == 0 {
		return false, leads.FilterNoDevSignal
	}
	if s.cfg.RequireTeamSignal && len(b.Team) == 0 {
		return false, leads.FilterNoTeamCue
	}
	return true, leads.FilterNone
}

// MinScore exposes the configured threshold for the builder-penalty check.
func (s *Scorer) MinScore() float64 {
	return s.cfg.MinScore
}

func (s *Scorer) pricingModel(text string) string {
	lower := strings.ToLower(text)
	for _, model := range s.cfg.PricingModels {
		for _, pattern := range model.Patterns {
			if pattern == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return model.Name
			}
		}
	}
	return ""
}

// tokenPattern compiles a whole-word, case-insensitive matcher for a token
// or phrase.
func tokenPattern(token string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(token) + `\b`)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func contains(set map[string]struct{}, token string) bool {
	_, ok := set[token]
	return ok
}
