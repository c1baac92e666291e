package inflight

import "sync/atomic"

// Guard enforces "at most one operation in flight" for a staging
// session. The original workflow relied on disabling the triggering
// control while a lookup or commit was outstanding; here the exclusion
// is owned by the core so rapid scanner input or a double-clicked
// commit cannot overlap.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire claims the guard. It returns false when another operation
// is already in flight.
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release frees the guard for the next operation.
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether an operation currently holds the guard.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
