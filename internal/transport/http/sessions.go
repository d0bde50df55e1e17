package http

import (
	"sync"

	"github.com/aconic-ni/customspayapp/internal/resolution"
	"github.com/aconic-ni/customspayapp/internal/search"
)

// callerState is one caller's server-side state: the active search session
// and the resolved-alert tracker scoped to it. The mutex serializes session
// mutations from concurrent requests by the same caller.
type callerState struct {
	mu      sync.Mutex
	session *search.Session
	tracker *resolution.Tracker
}

// SessionRegistry keeps one callerState per caller email. Each caller has at
// most one active search session; a fresh search replaces the previous one.
type SessionRegistry struct {
	mu         sync.Mutex
	callers    map[string]*callerState
	newTracker func() *resolution.Tracker
}

func NewSessionRegistry(newTracker func() *resolution.Tracker) *SessionRegistry {
	return &SessionRegistry{
		callers:    make(map[string]*callerState),
		newTracker: newTracker,
	}
}

// state returns the caller's state, creating it on first use.
func (r *SessionRegistry) state(email string) *callerState {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.callers[email]
	if !ok {
		cs = &callerState{tracker: r.newTracker()}
		r.callers[email] = cs
	}
	return cs
}
