// Package presence holds the in-memory online set: which live connection is
// bound to which identity. It is the only shared mutable structure in the
// relay and is never persisted.
package presence

import (
	"sync"

	"chat-relay/domain"
)

type Registry struct {
	mu      sync.RWMutex
	entries map[string]domain.PresenceEntry // keyed by connection id
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]domain.PresenceEntry),
	}
}

// Put installs or replaces the entry for a connection. Entries are small
// value copies, so no caller ever shares mutable state with the registry.
func (r *Registry) Put(entry domain.PresenceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ConnectionID] = entry
}

// Remove drops exactly the given connection's entry and leaves every other
// entry untouched, including other connections of the same identity.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, connectionID)
}

func (r *Registry) Find(connectionID string) (domain.PresenceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[connectionID]
	return entry, ok
}

// Snapshot returns a consistent point-in-time copy of the online set.
// Concurrent Put/Remove after the snapshot cannot affect the returned slice.
func (r *Registry) Snapshot() []domain.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]domain.PresenceEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		snapshot = append(snapshot, entry)
	}
	return snapshot
}
