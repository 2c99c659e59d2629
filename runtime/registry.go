package runtime

import (
	"group-lab/contract"
	"sync"

	"github.com/google/uuid"
)

type Set map[string]struct{}

// Registry maps observers to their sink and groups to the observers
// watching them.
type Registry struct {
	mu       sync.RWMutex
	Sessions map[string]contract.EventSink // observer -> sink
	Watchers map[uuid.UUID]Set             // group -> observers
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions: make(map[string]contract.EventSink),
		Watchers: make(map[uuid.UUID]Set),
	}
}

// GetSinksForGroup resolves the observers of a group into their sinks.
// Returns nil if nobody watches the group.
func (r *Registry) GetSinksForGroup(groupID uuid.UUID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	observers, ok := r.Watchers[groupID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for observerID := range observers {
		if sink, exists := r.Sessions[observerID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// Subscribe registers the observer's sink and attaches it to a group.
// The last sink registered for an observer wins.
func (r *Registry) Subscribe(observerID string, groupID uuid.UUID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sessions[observerID] = sink

	if _, ok := r.Watchers[groupID]; !ok {
		r.Watchers[groupID] = make(Set)
	}
	r.Watchers[groupID][observerID] = struct{}{}
}

// Unsubscribe detaches the observer from a group. Empty groups are dropped;
// the session is dropped once the observer watches nothing.
func (r *Registry) Unsubscribe(observerID string, groupID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if observers, ok := r.Watchers[groupID]; ok {
		delete(observers, observerID)
		if len(observers) == 0 {
			delete(r.Watchers, groupID)
		}
	}
	for _, observers := range r.Watchers {
		if _, ok := observers[observerID]; ok {
			return
		}
	}
	delete(r.Sessions, observerID)
}
