package search

import "context"

// Guard tracks outstanding dispatches and fences them off on teardown.
//
// Fencing bumps the epoch. Every dispatch is stamped with the epoch it was
// issued under, and the gate refuses outcomes from an older epoch, so a
// fenced dispatch can never be presented even though CurrentID is unchanged.
type Guard struct {
	epoch       uint64
	outstanding map[RequestID]context.CancelFunc
}

// NewGuard creates an empty guard
func NewGuard() *Guard {
	return &Guard{
		outstanding: make(map[RequestID]context.CancelFunc),
	}
}

// Epoch returns the current fence generation
func (g *Guard) Epoch() uint64 {
	return g.epoch
}

// Track registers a dispatch together with the cancel func of its context
func (g *Guard) Track(id RequestID, cancel context.CancelFunc) {
	g.outstanding[id] = cancel
}

// Done releases a finished dispatch. Unknown ids are ignored.
func (g *Guard) Done(id RequestID) {
	if cancel, ok := g.outstanding[id]; ok {
		cancel()
		delete(g.outstanding, id)
	}
}

// Supersede cancels the contexts of every dispatch older than current. The
// providers may keep running; cancellation is only a hint. Returns the
// number of dispatches released.
func (g *Guard) Supersede(current RequestID) int {
	n := 0
	for id, cancel := range g.outstanding {
		if id < current {
			cancel()
			delete(g.outstanding, id)
			n++
		}
	}
	return n
}

// CancelAll fences every outstanding dispatch and returns how many there were
func (g *Guard) CancelAll() int {
	n := len(g.outstanding)
	for id, cancel := range g.outstanding {
		cancel()
		delete(g.outstanding, id)
	}
	g.epoch++
	return n
}

// Outstanding returns the number of dispatches that may still be presented
func (g *Guard) Outstanding() int {
	return len(g.outstanding)
}
