package store

import (
	"context"
	"sync"

	"github.com/layer-3/portal/core"
	"github.com/layer-3/portal/ports"
)

// MemorySessionStore implements SessionStore with a map.
// This is primarily intended for tests and for callers outside a browser.
type MemorySessionStore struct {
	mu     sync.RWMutex
	data   map[string]string
	writes []string

	// SetErr, when non-nil, is returned by Set after the refresh entry is written
	SetErr error
}

// NewMemorySessionStore creates an empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{data: make(map[string]string, 2)}
}

// NewMemorySessionStoreWith creates an in-memory store holding the given
// credentials, possibly only one of them
func NewMemorySessionStoreWith(pair core.CredentialPair) *MemorySessionStore {
	s := NewMemorySessionStore()
	if pair.Access != "" {
		s.data[core.AccessTokenKey] = pair.Access
	}
	if pair.Refresh != "" {
		s.data[core.RefreshTokenKey] = pair.Refresh
	}
	return s
}

var _ ports.SessionStore = (*MemorySessionStore)(nil)

// Get returns the stored credentials
func (s *MemorySessionStore) Get(ctx context.Context) (core.CredentialPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pair := core.CredentialPair{
		Access:  s.data[core.AccessTokenKey],
		Refresh: s.data[core.RefreshTokenKey],
	}
	return pair, pair.Complete()
}

// Set stores refresh then access
func (s *MemorySessionStore) Set(ctx context.Context, pair core.CredentialPair) error {
	if !pair.Complete() {
		return core.ErrStoreFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[core.RefreshTokenKey] = pair.Refresh
	s.writes = append(s.writes, core.RefreshTokenKey)
	if s.SetErr != nil {
		return s.SetErr
	}
	s.data[core.AccessTokenKey] = pair.Access
	s.writes = append(s.writes, core.AccessTokenKey)

	return nil
}

// Clear removes both entries
func (s *MemorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, core.AccessTokenKey)
	delete(s.data, core.RefreshTokenKey)

	return nil
}

// Writes returns the keys written so far, in order
func (s *MemorySessionStore) Writes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.writes...)
}
