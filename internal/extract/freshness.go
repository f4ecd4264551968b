package extract

import (
	"strings"
	"time"
)

// Launch-context labels, from strongest signal to weakest.
const (
	ContextShowHN      = "Show HN"
	ContextProductHunt = "Product Hunt launch"
	ContextBeta        = "Beta"
	ContextNew         = "New"
)

// FreshnessInput carries everything the freshness heuristic looks at. Age is
// measured from the harvester's own discovery timestamp, not any notion of
// the content's publish date.
type FreshnessInput struct {
	DiscoveredAt   time.Time
	Now            time.Time
	Source         string
	SourceURL      string
	CombinedText   string
	LaunchKeywords []string
}

// Freshness scores 0-5 how recently a candidate appears to have launched and
// picks the launch-context label.
func Freshness(in FreshnessInput) (int, string) {
	score := 0

	age := in.Now.Sub(in.DiscoveredAt)
	switch {
	case age <= 7*24*time.Hour:
		score += 3
	case age <= 14*24*time.Hour:
		score += 2
	case age <= 30*24*time.Hour:
		score++
	}

	showHN := launchFeedOrigin(in.Source, in.SourceURL, "hn", "ycombinator")
	productHunt := launchFeedOrigin(in.Source, in.SourceURL, "producthunt", "producthunt.com")
	if showHN || productHunt {
		score++
	}

	lower := strings.ToLower(in.CombinedText)
	betaLanguage := false
	for _, kw := range in.LaunchKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			score++
			betaLanguage = true
		}
	}

	if score > 5 {
		score = 5
	}

	context := ContextNew
	switch {
	case showHN:
		context = ContextShowHN
	case productHunt:
		context = ContextProductHunt
	case betaLanguage:
		context = ContextBeta
	}
	return score, context
}

func launchFeedOrigin(source, sourceURL string, tagHint, urlHint string) bool {
	if strings.Contains(strings.ToLower(source), tagHint) {
		return true
	}
	return strings.Contains(strings.ToLower(sourceURL), urlHint)
}
