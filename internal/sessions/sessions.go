// package sessions stores the per-session Spotify credential.
//
// A session owns exactly one credential; nothing else retains a copy, so the
// stored token and the valid token cannot diverge. Sessions are ephemeral and
// expire after a TTL, they are not durable token storage.
package sessions

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

// Store defines credential storage keyed by session ID.
//
// Get returns (nil, nil) when no session exists for the ID; absence is an
// expected outcome the caller must handle, not an error.
type Store interface {
	Get(ctx context.Context, sessionID string) (*oauth2.Token, error)
	Put(ctx context.Context, sessionID string, token *oauth2.Token) error
	Delete(ctx context.Context, sessionID string) error
}

// KeyedMutex provides per-key locking.
//
// The expiry check plus possible refresh and store write must run as a single
// atomic unit per session, otherwise two concurrent requests can both observe
// an expired credential and race duplicate refresh exchanges.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the lock for key and returns the function releasing it.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
