// Package leads defines the core data model shared across the enrichment
// pipeline: candidates flowing in, leads flowing out, and the Store that
// persists them between runs.
package leads

import "time"

// FilterReason explains why a lead landed in the filtered table. A lead is
// kept exactly when its FilterReason is empty.
type FilterReason string

// Filter reasons persisted in the filtered-leads table.
const (
	FilterNone            FilterReason = ""
	FilterAggregator      FilterReason = "aggregator"
	FilterBuilderPlatform FilterReason = "builder_platform"
	FilterBelowThreshold  FilterReason = "below_threshold"
	FilterNoDevSignal     FilterReason = "no_dev_signal"
	FilterNoTeamCue       FilterReason = "no_team_cue"
)

// Candidate is one discovered URL plus the source that produced it. It only
// exists for the duration of a pipeline run.
type Candidate struct {
	URL    string
	Source string
}

// Lead is the persisted record for one canonical identity. DiscoveredAt is
// set once when the identity is first enriched and preserved verbatim across
// all later runs.
type Lead struct {
	DiscoveredAt time.Time
	Source       string
	URL          string
	Canonical    string
	Title        string
	ValueProp    string
	HTTPStatus   int
	Score        float64

	HasPricing   bool
	HasDocs      bool
	HasSignup    bool
	HasChangelog bool
	HasAPI       bool
	HasWebhook   bool
	HasCLI       bool
	HasSDK       bool

	TeamCue       string
	PricingModel  string
	HasCareers    bool
	TeamSize      string
	Freshness     int
	LaunchContext string

	Emails          []string
	EmailConfidence string
	ContactChannels []string
	Hook            string

	FilterReason FilterReason
}

// Kept reports whether the lead belongs in the kept table.
func (l Lead) Kept() bool {
	return l.FilterReason == FilterNone
}
