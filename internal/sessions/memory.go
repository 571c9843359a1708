package sessions

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// MemoryStore is the default in-process [Store].
//
// Expired sessions are reaped lazily on access; the relay runs no background
// tasks.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

type memorySession struct {
	token     *oauth2.Token
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore whose sessions live for ttl after their last write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	m.mu.RLock()
	session, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if m.now().After(session.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return nil, nil
	}

	return session.token, nil
}

func (m *MemoryStore) Put(ctx context.Context, sessionID string, token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = memorySession{
		token:     token,
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}
