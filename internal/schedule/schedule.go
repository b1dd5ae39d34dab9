// Package schedule implements a deadline-ordered callback scheduler for
// timed simulation effects (break returns, delayed interventions). It is
// polled once per tick; there are no sleeps or background timers, so
// delayed effects stay deterministic and testable.
package schedule

import "container/heap"

// #region entry

type entry struct {
	fireAt float64 // simulated seconds
	seq    int     // insertion order, breaks deadline ties deterministically
	fn     func()
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].fireAt != h[j].fireAt {
		return h[i].fireAt < h[j].fireAt
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// #endregion entry

// #region scheduler

// Scheduler is a min-heap of deadline callbacks keyed by simulated time.
type Scheduler struct {
	heap entryHeap
	seq  int
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// At registers fn to fire once the simulation clock reaches fireAt.
// Entries with equal deadlines fire in registration order.
func (s *Scheduler) At(fireAt float64, fn func()) {
	s.seq++
	heap.Push(&s.heap, &entry{fireAt: fireAt, seq: s.seq, fn: fn})
}

// Fire runs every callback whose deadline is <= now, in deadline order.
// Callbacks may register new entries; entries scheduled at or before now
// fire within the same call.
func (s *Scheduler) Fire(now float64) int {
	fired := 0
	for s.heap.Len() > 0 && s.heap[0].fireAt <= now {
		e := heap.Pop(&s.heap).(*entry)
		e.fn()
		fired++
	}
	return fired
}

// Pending returns the number of callbacks not yet fired.
func (s *Scheduler) Pending() int {
	return s.heap.Len()
}

// NextDeadline returns the earliest pending deadline; ok is false when the
// scheduler is empty.
func (s *Scheduler) NextDeadline() (float64, bool) {
	if s.heap.Len() == 0 {
		return 0, false
	}
	return s.heap[0].fireAt, true
}

// #endregion scheduler
