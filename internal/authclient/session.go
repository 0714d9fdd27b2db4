package authclient

import (
	"context"
	"sync"
)

// State is the lifecycle of the CSRF session.
type State int

// Session states.
const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Session tracks whether the CSRF cookie has been fetched.
// Uninitialized → Initializing → Ready | Failed. A failed or reset session initializes again on the next EnsureReady.
type Session struct {
	init func(ctx context.Context) error

	mu    sync.Mutex
	state State
	err   error
	done  chan struct{}
}

// NewSession creates a session that runs init to become ready.
func NewSession(init func(ctx context.Context) error) *Session {
	return &Session{init: init}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EnsureReady initializes the session if needed. Concurrent callers share one
// initialization; callers arriving while it runs wait for its outcome.
func (s *Session) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return nil
	case StateInitializing:
		done := s.done
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state == StateReady {
			return nil
		}
		return s.err
	}

	s.state = StateInitializing
	s.err = nil
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	err := s.init(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.err = err
	} else {
		s.state = StateReady
	}
	close(done)
	s.mu.Unlock()
	return err
}

// Reset forgets a ready or failed session so the next EnsureReady fetches a fresh token.
// A running initialization is left alone.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInitializing {
		s.state = StateUninitialized
		s.err = nil
	}
}
