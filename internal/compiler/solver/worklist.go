package solver

import "github.com/unknot-dev/unknot/internal/compiler/types"

// WorkList holds obligations pending expansion. Insertion deduplicates by
// structural equality against everything ever enqueued, not just what is
// currently pending; an obligation is expanded at most once per invocation.
// Consumption is last-in-first-out.
type WorkList struct {
	pending []types.Obligation
	seen    map[string]bool
}

// NewWorkList creates an empty work list
func NewWorkList() *WorkList {
	return &WorkList{seen: make(map[string]bool)}
}

// Push enqueues an obligation unless it was already enqueued at some point.
// Returns whether the obligation was accepted.
func (w *WorkList) Push(ob types.Obligation) bool {
	key := ob.Key()
	if w.seen[key] {
		return false
	}
	w.seen[key] = true
	w.pending = append(w.pending, ob)
	return true
}

// Pop removes and returns the most recently pushed pending obligation
func (w *WorkList) Pop() (types.Obligation, bool) {
	if len(w.pending) == 0 {
		return types.Obligation{}, false
	}
	ob := w.pending[len(w.pending)-1]
	w.pending = w.pending[:len(w.pending)-1]
	return ob, true
}

// Len returns the number of pending obligations
func (w *WorkList) Len() int {
	return len(w.pending)
}
