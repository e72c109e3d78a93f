package engine

import (
	"sync"
	"sync/atomic"
)

// Token is a one-shot cancellation flag shared between whoever requests a run
// to stop and the run itself. A fresh Token is made for every run.
type Token struct {
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
}

// NewToken returns a token that is not cancelled.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel sets the token. It is safe to call more than once and from any
// goroutine.
func (t *Token) Cancel() {
	t.once.Do(func() {
		t.cancelled.Store(true)
		close(t.done)
	})
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}

// Done returns a channel that is closed once the token is cancelled.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
