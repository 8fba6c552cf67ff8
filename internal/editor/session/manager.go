// Package session keeps the open editing sessions. Every session owns an
// isolated workspace: its own state store, executor and history.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"floorplan-editor/internal/editor/service"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	Workspace *service.Workspace `json:"-"`
}

// ============================================================
// Session Manager
// ============================================================

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session // session id -> session
	opts     []service.Option
	now      func() time.Time
}

// NewManager creates a manager whose sessions get workspaces built with opts.
func NewManager(opts ...service.Option) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
		now:      time.Now,
	}
}

// Open starts a new session with an empty plan.
func (m *Manager) Open() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: m.now().UTC(),
		Workspace: service.NewWorkspace(m.opts...),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// List returns the open sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
