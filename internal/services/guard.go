package services

import "sync"

// Guard is a non-blocking single-flight mutex: at most one mutating
// operation may hold it, and a second attempt while held is rejected
// immediately rather than queued or blocked.
type Guard struct {
	mu   sync.Mutex
	busy bool
}

// TryAcquire takes the guard if it is free. It never blocks.
func (g *Guard) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

// Release frees the guard. Only the holder calls this.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
}

// Busy reports whether an operation currently holds the guard.
func (g *Guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}
