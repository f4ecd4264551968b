package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TimAnthonyAlexander/leads/internal/leads"
)

func TestStatsFinalize(t *testing.T) {
	t.Parallel()

	s := newStats("run-1", time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC))
	s.finalize([]leads.Lead{{Score: 6}, {Score: 10}}, 5, time.Date(2025, 11, 3, 12, 0, 30, 0, time.UTC))

	assert.Equal(t, 2, s.NewKept)
	assert.Equal(t, 5, s.TotalKept)
	assert.InDelta(t, 10.0, s.TopScore, 0.001)
	assert.InDelta(t, 8.0, s.AvgScore, 0.001)
}

func TestStatsFinalizeEmptyRun(t *testing.T) {
	t.Parallel()

	s := newStats("run-2", time.Now())
	s.finalize(nil, 3, time.Now())

	assert.Zero(t, s.NewKept)
	assert.Zero(t, s.TopScore)
	assert.Zero(t, s.AvgScore)
}

func TestStatsRender(t *testing.T) {
	t.Parallel()

	s := newStats("run-3", time.Now())
	s.PerSource["showhn"] = 4
	s.countFiltered(leads.FilterBelowThreshold)
	s.finalize([]leads.Lead{{Score: 7}}, 1, time.Now())

	out := s.Render()
	assert.Contains(t, out, "run-3")
	assert.Contains(t, out, "showhn")
	assert.Contains(t, out, "below_threshold")
	assert.Contains(t, out, "new kept")
}
