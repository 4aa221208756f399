// Package orchestrator drives the fleet of sandboxed workers: it pops
// ranked packages off a shared queue, round-trips each through a worker's
// stdin/stdout, and uploads the resulting transcript to storage.
package orchestrator

import (
	"sync"

	"github.com/ubfleet/ubfleet/internal/pkgid"
)

// Queue is the mutex-guarded pending-package list every worker goroutine
// pops from. Contention only happens at Pop; no worker ever pushes back
// onto it, so a plain slice with a single mutex is sufficient.
type Queue struct {
	mu    sync.Mutex
	items []pkgid.Package
}

// NewQueue takes ownership of items in the order given; callers that care
// about pop order should pass the result of OrderForPop.
func NewQueue(items []pkgid.Package) *Queue {
	return &Queue{items: items}
}

// Pop removes and returns the next package, or reports ok=false when empty.
func (q *Queue) Pop() (pkgid.Package, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return pkgid.Package{}, false
	}
	next := q.items[0]
	q.items = q.items[1:]
	return next, true
}

// Len reports the number of packages still pending.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// OrderForPop arranges ranked (assumed sorted by pkgid.SortByRank, highest
// downloads first) into the order the queue should pop it in. Unless rev is
// set, the list is reversed so the most-downloaded packages are the last
// ones popped, keeping the biggest crates in flight at steady state; rev
// inverts that, popping the biggest crates first.
func OrderForPop(ranked []pkgid.Package, rev bool) []pkgid.Package {
	out := make([]pkgid.Package, len(ranked))
	copy(out, ranked)
	if rev {
		return out
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
