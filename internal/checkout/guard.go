package checkout

import (
	"errors"
	"sync"
)

// ErrSubmitInProgress is returned when a session already has a payment
// submission in flight.
var ErrSubmitInProgress = errors.New("payment submission already in progress")

// SubmitGuard allows one in-flight submission per session.
type SubmitGuard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewSubmitGuard() *SubmitGuard {
	return &SubmitGuard{inflight: make(map[string]struct{})}
}

// Acquire marks the session busy. The returned release func must be called
// once the submission finishes, whatever its outcome.
func (g *SubmitGuard) Acquire(sessionID string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[sessionID]; busy {
		return nil, ErrSubmitInProgress
	}
	g.inflight[sessionID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inflight, sessionID)
			g.mu.Unlock()
		})
	}, nil
}
