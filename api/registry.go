package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/plexbot/pkg/conversation"
)

// Registry holds the controllers of the mounted chat views. Nothing is
// persisted; deleting a session discards its history.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

type entry struct {
	ctl      *conversation.Controller
	lastSeen time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create builds a controller under a fresh id.
func (r *Registry) Create(completer conversation.Completer, opts ...conversation.Option) *conversation.Controller {
	id := uuid.NewString()
	ctl := conversation.New(completer, append([]conversation.Option{conversation.WithID(id)}, opts...)...)

	r.mu.Lock()
	r.sessions[id] = &entry{ctl: ctl, lastSeen: r.now()}
	r.mu.Unlock()

	return ctl
}

// Get returns the controller for id and marks the session as seen.
func (r *Registry) Get(id string) (*conversation.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.ctl, true
}

// Delete removes the session and reports whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Evict removes sessions not seen for longer than idle and returns their
// ids. Busy sessions are kept until their turn settles.
func (r *Registry) Evict(idle time.Duration) []string {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, e := range r.sessions {
		if e.lastSeen.After(cutoff) || e.ctl.Busy() {
			continue
		}
		delete(r.sessions, id)
		evicted = append(evicted, id)
	}
	return evicted
}

// Len returns the number of mounted sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
