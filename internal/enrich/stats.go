package enrich

import (
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/TimAnthonyAlexander/leads/internal/leads"
)

// Stats summarizes one pipeline run. Serve mode returns it as JSON; batch
// mode renders it as a table on stderr.
type Stats struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	PerSource        map[string]int `json:"per_source"`
	DedupSkips       int            `json:"dedup_skips"`
	AggregatorSkips  int            `json:"aggregator_skips"`
	RepoLinksChased  int            `json:"repo_links_chased"`
	FetchFailures    int            `json:"fetch_failures"`
	FilteredByReason map[string]int `json:"filtered_by_reason"`
	PurgedLeads      int            `json:"purged_leads"`

	NewKept   int     `json:"new_kept"`
	TotalKept int     `json:"total_kept"`
	TopScore  float64 `json:"top_score"`
	AvgScore  float64 `json:"avg_score"`
}

func newStats(runID string, startedAt time.Time) Stats {
	return Stats{
		RunID:            runID,
		StartedAt:        startedAt,
		PerSource:        make(map[string]int),
		FilteredByReason: make(map[string]int),
	}
}

func (s *Stats) countFiltered(reason leads.FilterReason) {
	s.FilteredByReason[string(reason)]++
}

// finalize computes the score aggregates over this run's newly kept leads.
func (s *Stats) finalize(newKept []leads.Lead, totalKept int, finishedAt time.Time) {
	s.FinishedAt = finishedAt
	s.NewKept = len(newKept)
	s.TotalKept = totalKept
	if len(newKept) == 0 {
		return
	}
	var sum float64
	for _, l := range newKept {
		sum += l.Score
		if l.Score > s.TopScore {
			s.TopScore = l.Score
		}
	}
	s.AvgScore = sum / float64(len(newKept))
}

// Render returns the run summary as a text table.
func (s Stats) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Run " + s.RunID)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})

	for _, source := range sortedKeys(s.PerSource) {
		tw.AppendRow(table.Row{"candidates: " + source, s.PerSource[source]})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"dedup skips", s.DedupSkips})
	tw.AppendRow(table.Row{"aggregator skips", s.AggregatorSkips})
	tw.AppendRow(table.Row{"repo links chased", s.RepoLinksChased})
	tw.AppendRow(table.Row{"fetch failures", s.FetchFailures})
	tw.AppendRow(table.Row{"purged leads", s.PurgedLeads})
	for _, reason := range sortedKeys(s.FilteredByReason) {
		tw.AppendRow(table.Row{"filtered: " + reason, s.FilteredByReason[reason]})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"new kept", s.NewKept})
	tw.AppendRow(table.Row{"total kept", s.TotalKept})
	tw.AppendRow(table.Row{"top score", fmt.Sprintf("%.1f", s.TopScore)})
	tw.AppendRow(table.Row{"avg score", fmt.Sprintf("%.1f", s.AvgScore)})
	tw.AppendRow(table.Row{"duration", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String()})

	return tw.Render()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
