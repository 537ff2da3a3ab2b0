// Package registry tracks which users currently hold live transport
// sessions. Its occupancy is the authoritative presence signal: a user is
// online exactly while their entry holds at least one session. The registry
// is an owned component wired through DI, never a package global, so tests
// construct isolated instances.
package registry

import (
	"sync"
	"time"

	"github.com/chatwire/realtime-service/internal/domain/model"
)

// Registrar is the gateway consumed by the fanout and presence layers.
type Registrar interface {
	Add(userID string, s *Session)
	Remove(userID string, s *Session) bool
	SessionsFor(userID string) []*Session
	IsOnline(userID string) bool
	Stats() model.RegistryStats
	CloseAll()
}

// Registry maps user identity to that user's live sessions. A single RWMutex
// serializes all occupancy changes, which keeps the add/remove/offline-edge
// logic effectively single-writer across connection goroutines.
type Registry struct {
	mu        sync.RWMutex
	cells     map[string]*cell
	startedAt time.Time
}

var _ Registrar = (*Registry)(nil)

func New() *Registry {
	return &Registry{
		cells:     make(map[string]*cell),
		startedAt: time.Now(),
	}
}

// Add attaches a session to the user's live set, creating the entry on first
// session. Re-adding the same session handle overwrites in place, so delivery
// is never attempted twice for one handle.
func (r *Registry) Add(userID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cells[userID]
	if !ok {
		c = newCell()
		r.cells[userID] = c
	}
	c.attach(s)
}

// Remove detaches the session and deletes the entry when it empties —
// emptiness is exactly the offline signal, so no hollow entries are kept.
// It reports true only when this call removed the user's last session.
// Removing an absent session is a no-op: disconnect handling may race with
// other cleanup and must be safe to call redundantly.
func (r *Registry) Remove(userID string, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cells[userID]
	if !ok {
		return false
	}
	removed, empty := c.detach(s.ID())
	if empty {
		delete(r.cells, userID)
	}
	return removed && empty
}

// SessionsFor returns a snapshot of the user's live sessions for fanout.
// Callers must not mutate the registry through it.
func (r *Registry) SessionsFor(userID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cells[userID]
	if !ok {
		return nil
	}
	return c.snapshot()
}

// IsOnline reports registry occupancy, the sole source of truth for
// presence. Any separately stored status field is display cache only.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cells[userID]
	return ok
}

// Stats snapshots occupancy for the operational endpoint.
func (r *Registry) Stats() model.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := 0
	for _, c := range r.cells {
		sessions += len(c.sessions)
	}
	return model.RegistryStats{
		OnlineUsers:  len(r.cells),
		LiveSessions: sessions,
		Uptime:       time.Since(r.startedAt),
	}
}

// CloseAll closes every live session and clears the mapping. Used on
// graceful shutdown; no presence events are emitted for the mass close.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	cells := r.cells
	r.cells = make(map[string]*cell)
	r.mu.Unlock()

	for _, c := range cells {
		for _, s := range c.sessions {
			s.Close()
		}
	}
}
