package repo

import (
	"sync"

	"VoteBot/model"
)

// SessionStore holds the conversation state of every chat room.
type SessionStore interface {
	// Get returns the room's session, creating it on first use.
	Get(room string) *model.Session
	Put(room string, s *model.Session)
}

// MemorySessionStore keeps sessions in process memory.
//
// The mutex only protects the map. A session is not locked while a message
// is handled, so two concurrent messages to the same room race and the last
// write wins.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*model.Session)}
}

func (m *MemorySessionStore) Get(room string) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[room]
	if !ok {
		s = model.NewSession()
		m.sessions[room] = s
	}
	return s
}

func (m *MemorySessionStore) Put(room string, s *model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[room] = s
}
