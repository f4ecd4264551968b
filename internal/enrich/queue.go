package enrich

import "github.com/TimAnthonyAlexander/leads/internal/leads"

// workItem is one queued candidate. Injected items came out of repo-link
// resolution and never trigger a second resolution hop.
type workItem struct {
	cand     leads.Candidate
	injected bool
}

// workQueue is a FIFO that accepts new items while being drained, so repo
// resolution can feed discovered URLs back into the same run.
type workQueue struct {
	items []workItem
}

func newWorkQueue(cands []leads.Candidate) *workQueue {
	q := &workQueue{items: make([]workItem, 0, len(cands))}
	for _, c := range cands {
		q.items = append(q.items, workItem{cand: c})
	}
	return q
}

func (q *workQueue) push(it workItem) {
	q.items = append(q.items, it)
}

func (q *workQueue) next() (workItem, bool) {
	if len(q.items) == 0 {
		return workItem{}, false
	}
	it := q.items[0]
	q.items = q.items[1:]
	return it, true
}
