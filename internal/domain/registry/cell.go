package registry

import "github.com/google/uuid"

// cell groups the live sessions of a single user. It exists if and only if
// the user has at least one authenticated session; the registry deletes it
// the moment it empties. Locking lives in the Registry, not here.
type cell struct {
	sessions map[uuid.UUID]*Session
}

func newCell() *cell {
	return &cell{sessions: make(map[uuid.UUID]*Session)}
}

func (c *cell) attach(s *Session) {
	c.sessions[s.ID()] = s
}

// detach removes the session if present. removed reports whether anything
// changed, empty whether the cell is now without sessions.
func (c *cell) detach(id uuid.UUID) (removed, empty bool) {
	if _, ok := c.sessions[id]; ok {
		delete(c.sessions, id)
		removed = true
	}
	return removed, len(c.sessions) == 0
}

// snapshot copies the current session set so fanout can iterate without
// holding the registry lock across transport sends.
func (c *cell) snapshot() []*Session {
	out := make([]*Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, s)
	}
	return out
}
