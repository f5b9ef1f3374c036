package strategy

import (
	"errors"
	"sync"
)

// ErrCancelled is returned by AwaitResume and the strategies when a transfer
// is aborted on request. It marks a user-initiated stop, not a failure.
var ErrCancelled = errors.New("download cancelled")

// Token carries the cooperative pause/cancel signals for one download. The
// manager owns the writes; strategies only observe. Cancellation also
// unblocks any pause wait, so a paused worker stops promptly.
type Token struct {
	mu        sync.Mutex
	cond      *sync.Cond
	paused    bool
	cancelled bool
	done      chan struct{}
}

// NewToken creates a token in the running (not paused, not cancelled) state.
func NewToken() *Token {
	t := &Token{done: make(chan struct{})}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Pause requests that the transfer block at its next poll point.
func (t *Token) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

// Resume releases a paused transfer.
func (t *Token) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
	t.cond.Broadcast()
}

// Cancel aborts the transfer. It is idempotent and wakes any pause wait.
func (t *Token) Cancel() {
	t.mu.Lock()
	if t.cancelled {
		t.mu.Unlock()
		return
	}
	t.cancelled = true
	close(t.done)
	t.mu.Unlock()
	t.cond.Broadcast()
}

// IsPaused reports whether a pause is currently requested.
func (t *Token) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// IsCancelled reports whether the transfer was cancelled.
func (t *Token) IsCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Done returns a channel closed on cancellation, for plumbing into contexts.
func (t *Token) Done() <-chan struct{} {
	return t.done
}

// AwaitResume blocks while the token is paused. It returns ErrCancelled if
// the token is cancelled before or while waiting, nil once resumed.
func (t *Token) AwaitResume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.paused && !t.cancelled {
		t.cond.Wait()
	}
	if t.cancelled {
		return ErrCancelled
	}
	return nil
}
