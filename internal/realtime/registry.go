package realtime

import (
	"errors"
	"sync"
)

// ErrScopeClosed is returned when tracking a subscription in a released scope.
var ErrScopeClosed = errors.New("subscription scope closed")

// Registry groups live subscriptions by the session that opened them, so a
// sign-out can cancel every one of them before the session is revoked.
type Registry struct {
	mu     sync.Mutex
	scopes map[string]map[*Scope]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string]map[*Scope]struct{})}
}

// Open returns a new scope for sessionID. Callers must Close it when the
// owning connection ends.
func (r *Registry) Open(sessionID string) *Scope {
	sc := &Scope{
		registry:  r,
		sessionID: sessionID,
		subs:      make(map[string]*Subscription),
		done:      make(chan struct{}),
	}
	r.mu.Lock()
	if r.scopes[sessionID] == nil {
		r.scopes[sessionID] = make(map[*Scope]struct{})
	}
	r.scopes[sessionID][sc] = struct{}{}
	r.mu.Unlock()
	return sc
}

// Release closes every scope of sessionID and returns the number of
// subscriptions it cancelled.
func (r *Registry) Release(sessionID string) int {
	r.mu.Lock()
	scopes := r.scopes[sessionID]
	delete(r.scopes, sessionID)
	r.mu.Unlock()

	n := 0
	for sc := range scopes {
		n += sc.close()
	}
	return n
}

// Active returns the number of subscriptions tracked for sessionID.
func (r *Registry) Active(sessionID string) int {
	r.mu.Lock()
	scopes := make([]*Scope, 0, len(r.scopes[sessionID]))
	for sc := range r.scopes[sessionID] {
		scopes = append(scopes, sc)
	}
	r.mu.Unlock()

	n := 0
	for _, sc := range scopes {
		n += sc.Len()
	}
	return n
}

func (r *Registry) forget(sc *Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	scopes := r.scopes[sc.sessionID]
	delete(scopes, sc)
	if len(scopes) == 0 {
		delete(r.scopes, sc.sessionID)
	}
}

// Scope is the set of subscriptions opened by one connection of a session.
type Scope struct {
	registry  *Registry
	sessionID string

	mu     sync.Mutex
	subs   map[string]*Subscription
	closed bool
	done   chan struct{}
}

// Track adds sub to the scope, replacing and cancelling a subscription with the same ID.
// When the scope is already closed, sub is cancelled and ErrScopeClosed returned.
func (s *Scope) Track(sub *Subscription) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return ErrScopeClosed
	}
	prev := s.subs[sub.ID]
	s.subs[sub.ID] = sub
	s.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return nil
}

// Cancel stops the subscription with the given ID. It reports whether one was found.
func (s *Scope) Cancel(id string) bool {
	s.mu.Lock()
	sub, ok := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()
	if ok {
		sub.Cancel()
	}
	return ok
}

// Len returns the number of tracked subscriptions.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Done is closed when the scope is closed or its session released.
func (s *Scope) Done() <-chan struct{} {
	return s.done
}

// Close cancels every tracked subscription and detaches the scope from the registry.
func (s *Scope) Close() int {
	s.registry.forget(s)
	return s.close()
}

func (s *Scope) close() int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	close(s.done)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	return len(subs)
}
