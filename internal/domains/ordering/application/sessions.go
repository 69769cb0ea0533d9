package application

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-gin-pos-server/internal/domains/ordering/ports"
)

// Sessions tracks the open order sessions of this terminal process.
type Sessions struct {
	catalog  ports.Catalog
	settings ports.Settings
	newID    func() string
	now      func() time.Time

	mu   sync.RWMutex
	byID map[string]*Session
}

func NewSessions(catalog ports.Catalog, settings ports.Settings) *Sessions {
	return &Sessions{
		catalog:  catalog,
		settings: settings,
		newID:    uuid.NewString,
		now:      time.Now,
		byID:     map[string]*Session{},
	}
}

// SetClock overrides the activity clock. Tests only.
func (r *Sessions) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Open starts a session with an empty order for employee.
func (r *Sessions) Open(employee string) *Session {
	session := newSession(r.newID(), employee, r.catalog, r.settings)
	session.touch(r.now())
	r.mu.Lock()
	r.byID[session.ID()] = session
	r.mu.Unlock()
	return session
}

func (r *Sessions) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.touch(r.now())
	return session, nil
}

// Close discards the session and its order.
func (r *Sessions) Close(id string) error {
	r.mu.Lock()
	session, ok := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	session.Clear()
	return nil
}

// RepriceAll recomputes every open order, used when the tax rate changes.
func (r *Sessions) RepriceAll() {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.byID))
	for _, session := range r.byID {
		sessions = append(sessions, session)
	}
	r.mu.RUnlock()
	for _, session := range sessions {
		session.Reprice()
	}
}

// PurgeIdle closes sessions not used since cutoff and reports how many went.
// A session with a checkout in flight is kept.
func (r *Sessions) PurgeIdle(cutoff time.Time) int {
	r.mu.Lock()
	var idle []*Session
	for id, session := range r.byID {
		if session.idleSince(cutoff) {
			idle = append(idle, session)
			delete(r.byID, id)
		}
	}
	r.mu.Unlock()
	for _, session := range idle {
		session.Clear()
	}
	return len(idle)
}

func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
