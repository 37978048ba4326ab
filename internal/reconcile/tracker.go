package reconcile

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/quotewise/quotewise-backend/pkg/errors"
)

// ErrStaleRequest is returned when a newer run of the same session superseded this one.
var ErrStaleRequest = pkgerrors.New(pkgerrors.CodeStaleRequest, "request superseded by a newer one")

const (
	pruneThreshold = 1024
	defaultMaxIdle = 24 * time.Hour
)

// Token identifies one run of a session.
type Token struct {
	Session    string
	Generation uint64
}

type sessionState struct {
	generation uint64
	cancel     context.CancelFunc
	view       *Result
	touched    time.Time
}

// Tracker issues per-session generation tokens. Only the latest token of a
// session may commit its result.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
	now      func() time.Time
	maxIdle  time.Duration
}

// NewTracker builds an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string]*sessionState),
		now:      time.Now,
		maxIdle:  defaultMaxIdle,
	}
}

func (t *Tracker) state(session string) *sessionState {
	st, ok := t.sessions[session]
	if !ok {
		st = &sessionState{}
		t.sessions[session] = st
	}
	st.touched = t.now()
	return st
}

// Begin starts a new run for session, cancelling the context of any run
// still in flight. The returned context is cancelled when a newer run begins.
func (t *Tracker) Begin(ctx context.Context, session string) (context.Context, Token) {
	runCtx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sessions) >= pruneThreshold {
		t.pruneLocked()
	}
	st := t.state(session)
	if st.cancel != nil {
		st.cancel()
	}
	st.generation++
	st.cancel = cancel
	return runCtx, Token{Session: session, Generation: st.generation}
}

// Check returns ErrStaleRequest when tok is no longer the session's latest run.
func (t *Tracker) Check(tok Token) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.sessions[tok.Session]
	if !ok || st.generation != tok.Generation {
		return ErrStaleRequest
	}
	return nil
}

// Commit stores result as the session's view if tok is still current.
func (t *Tracker) Commit(tok Token, result *Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.sessions[tok.Session]
	if !ok || st.generation != tok.Generation {
		return ErrStaleRequest
	}
	result.Generation = tok.Generation
	st.view = result
	st.touched = t.now()
	return nil
}

// Finish releases the run's context. Safe to call for stale tokens.
func (t *Tracker) Finish(tok Token) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.sessions[tok.Session]
	if !ok || st.generation != tok.Generation || st.cancel == nil {
		return
	}
	st.cancel()
	st.cancel = nil
}

// View returns the last committed result of session.
func (t *Tracker) View(session string) (*Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.sessions[session]
	if !ok || st.view == nil {
		return nil, false
	}
	st.touched = t.now()
	return st.view, true
}

// Reset drops the session's view and invalidates any run in flight.
func (t *Tracker) Reset(session string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.sessions[session]
	if !ok {
		return
	}
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.generation++
	st.view = nil
}

// Prune removes sessions idle for longer than the tracker's idle limit and
// returns how many were removed.
func (t *Tracker) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pruneLocked()
}

func (t *Tracker) pruneLocked() int {
	cutoff := t.now().Add(-t.maxIdle)
	removed := 0
	for session, st := range t.sessions {
		if st.cancel == nil && st.touched.Before(cutoff) {
			delete(t.sessions, session)
			removed++
		}
	}
	return removed
}
