package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotRegistered is returned when a token has no registry entry.
	ErrNotRegistered = errors.New("session: token not registered")
	// ErrRevoked is returned for tokens explicitly revoked by logout. The
	// tombstone outlives the entry so a still-valid signature cannot
	// resurrect a logged-out session.
	ErrRevoked = errors.New("session: token revoked")
)

// Entry is the identity a registered token resolves to.
type Entry struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
}

// Registry is the authoritative set of non-revoked tokens. Lookup must be
// cheap; Revoke must take effect immediately so logout beats natural expiry.
type Registry interface {
	Put(ctx context.Context, token string, e Entry, ttl time.Duration) error
	Get(ctx context.Context, token string) (*Entry, error)
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	// RevokeAllForUser revokes every registered session of one user, e.g.
	// after the user record is removed.
	RevokeAllForUser(ctx context.Context, userID uint, ttl time.Duration) error
}

// MemoryRegistry keeps sessions in-process. Entries and tombstones are
// dropped lazily when their deadline passes.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	revoked map[string]time.Time
}

type memoryEntry struct {
	e        Entry
	deadline time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]memoryEntry),
		revoked: make(map[string]time.Time),
	}
}

func (m *MemoryRegistry) Put(_ context.Context, token string, e Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if dl, ok := m.revoked[token]; ok && time.Now().Before(dl) {
		return ErrRevoked
	}
	delete(m.revoked, token)
	m.entries[token] = memoryEntry{e: e, deadline: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryRegistry) Get(_ context.Context, token string) (*Entry, error) {
	m.mu.RLock()
	dl, dead := m.revoked[token]
	me, ok := m.entries[token]
	m.mu.RUnlock()
	if dead {
		if time.Now().Before(dl) {
			return nil, ErrRevoked
		}
		m.mu.Lock()
		delete(m.revoked, token)
		m.mu.Unlock()
	}
	if !ok {
		return nil, ErrNotRegistered
	}
	if time.Now().After(me.deadline) {
		m.mu.Lock()
		delete(m.entries, token)
		m.mu.Unlock()
		return nil, ErrNotRegistered
	}
	e := me.e
	return &e, nil
}

// forget drops an entry without leaving a tombstone, as if it had never
// been registered.
func (m *MemoryRegistry) forget(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
	return nil
}

func (m *MemoryRegistry) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
	m.revoked[token] = time.Now().Add(ttl)
	return nil
}

func (m *MemoryRegistry) RevokeAllForUser(_ context.Context, userID uint, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	deadline := time.Now().Add(ttl)
	for token, me := range m.entries {
		if me.e.UserID == userID {
			delete(m.entries, token)
			m.revoked[token] = deadline
		}
	}
	return nil
}
