package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which users currently hold live connections. It holds
// non-owning references; the hub owns client lifetimes.
//
// Invariant: a user ID key exists iff it has at least one live connection.
// Entries are deleted eagerly when the last connection goes away, so churny
// connect/disconnect cycles never grow the map.
type Registry struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

// Add registers a client under its user ID and reports whether it is the
// user's first live connection. The map mutation completes before Add
// returns, so an IsOnline call racing with a connect never observes a stale
// offline state.
func (r *Registry) Add(c *Client) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.connections[c.UserID]
	if !ok {
		clients = make(map[*Client]struct{})
		r.connections[c.UserID] = clients
	}
	clients[c] = struct{}{}
	return !ok
}

// Remove deregisters a client. It reports whether the client was actually
// present (false on a duplicate close, making deregistration idempotent) and
// whether it was the user's last connection.
func (r *Registry) Remove(c *Client) (removed, last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, ok := r.connections[c.UserID]
	if !ok {
		return false, false
	}
	if _, ok := clients[c]; !ok {
		return false, false
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(r.connections, c.UserID)
		return true, true
	}
	return true, false
}

// IsOnline reports whether the user holds at least one live connection.
func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.connections[userID]
	return ok
}

// ConnectionsFor returns a snapshot of the user's live connections. Absent
// users yield an empty slice, never an error.
func (r *Registry) ConnectionsFor(userID uuid.UUID) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.connections[userID]))
	for c := range r.connections[userID] {
		clients = append(clients, c)
	}
	return clients
}

// Snapshot returns every live connection across all users. Broadcasts
// iterate this stable copy, so structural changes mid-broadcast cannot skip
// or duplicate clients.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var clients []*Client
	for _, set := range r.connections {
		for c := range set {
			clients = append(clients, c)
		}
	}
	return clients
}

// OnlineDoctorCount reports how many distinct doctors hold live connections.
func (r *Registry) OnlineDoctorCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, set := range r.connections {
		for c := range set {
			if c.IsDoctor() {
				count++
			}
			break
		}
	}
	return count
}
