// Package lifecycle guards process exit while mutating operations
// are in flight. An operation acquires a token for its duration and
// releases it on every exit path; graceful shutdown waits for all
// tokens before tearing resources down.
package lifecycle

import (
	"context"
	"sync"
)

// Keeper hands out exit-prevention tokens.
type Keeper struct {
	mu     sync.Mutex
	active int
	idle   chan struct{}
}

func NewKeeper() *Keeper {
	idle := make(chan struct{})
	close(idle)
	return &Keeper{idle: idle}
}

// Token represents one held exit prevention. Release is idempotent;
// each token decrements the keeper exactly once.
type Token struct {
	keeper *Keeper
	once   sync.Once
}

// Acquire takes a token. The process is considered busy until every
// outstanding token is released.
func (k *Keeper) Acquire() *Token {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.active == 0 {
		k.idle = make(chan struct{})
	}
	k.active++
	return &Token{keeper: k}
}

func (t *Token) Release() {
	t.once.Do(func() {
		k := t.keeper
		k.mu.Lock()
		defer k.mu.Unlock()
		k.active--
		if k.active == 0 {
			close(k.idle)
		}
	})
}

// Active reports whether any token is outstanding.
func (k *Keeper) Active() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.active > 0
}

// Wait blocks until all tokens are released or the context expires.
// Returns the context error on timeout so shutdown can proceed anyway.
func (k *Keeper) Wait(ctx context.Context) error {
	k.mu.Lock()
	idle := k.idle
	k.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
