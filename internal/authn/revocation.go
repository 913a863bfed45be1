package authn

import (
	"context"
	"sync"
	"time"
)

// RevocationList is the set of refresh token ids that have been logged out.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevocationList keeps revoked ids in process. It only suits a single
// instance; entries are dropped once the token would have expired anyway.
type MemoryRevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{entries: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevocationList) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.entries {
		if exp.Before(now) {
			delete(m.entries, id)
		}
	}
	m.entries[jti] = expiresAt
	return nil
}

func (m *MemoryRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[jti]
	return ok, nil
}
