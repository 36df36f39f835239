// Package session keys running games to browsers. Each session owns one
// game controller, so the loading gate and restart epoch are per-player.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"splynt/game"
)

const cookieName = "splynt_session"

// idleTTL is how long an untouched session survives before pruning.
const idleTTL = 2 * time.Hour

// Session is one browser's running game.
type Session struct {
	ID         string
	Controller *game.Controller
	lastSeen   time.Time
}

// Manager tracks sessions by cookie ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	clock    func() time.Time
}

// NewManager returns an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		clock:    time.Now,
	}
}

// Start creates a session owning the given controller and sets its cookie
// on the response.
func (m *Manager) Start(w http.ResponseWriter, ctrl *game.Controller) *Session {
	id := newID()
	s := &Session{ID: id, Controller: ctrl, lastSeen: m.clock()}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// Get returns the request's session, or nil if the browser has none.
func (m *Manager) Get(r *http.Request) *Session {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[cookie.Value]
	if !ok {
		return nil
	}
	s.lastSeen = m.clock()
	return s
}

// End removes the request's session, if any.
func (m *Manager) End(r *http.Request) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return
	}
	m.mu.Lock()
	delete(m.sessions, cookie.Value)
	m.mu.Unlock()
}

// Prune drops sessions idle past the TTL and reports how many were removed.
func (m *Manager) Prune() int {
	cutoff := m.clock().Add(-idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func newID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
