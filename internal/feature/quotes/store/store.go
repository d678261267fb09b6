// Package store implements the in-process quote store: the single source of
// truth for the latest known quote per symbol, with freshness metadata.
package store

import (
	"sync"
	"time"

	"finmonitor_backend/internal/feature/quotes/domain/entity"
)

const (
	// DefaultTTL is the freshness target: entries younger than this are served
	// without touching the upstream.
	DefaultTTL = 30 * time.Second
	// DefaultMaxStaleness bounds memory: entries unseen for longer are evicted.
	DefaultMaxStaleness = 24 * time.Hour
)

// Store is a keyed cache of the latest quote per symbol.
//
// Reads take the read lock only; writes replace a symbol's entry wholesale,
// so readers never observe a half-written quote. FetchedAt is non-decreasing
// per symbol: a late-arriving older fetch never clobbers a newer entry.
type Store struct {
	ttl          time.Duration
	maxStaleness time.Duration

	mu      sync.RWMutex
	entries map[string]entity.Quote
}

// NewStore creates a quote store. Non-positive durations fall back to defaults.
func NewStore(ttl, maxStaleness time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxStaleness <= 0 {
		maxStaleness = DefaultMaxStaleness
	}
	return &Store{
		ttl:          ttl,
		maxStaleness: maxStaleness,
		entries:      make(map[string]entity.Quote),
	}
}

// Get returns the cached quote for symbol, if any, regardless of age.
func (s *Store) Get(symbol string) (entity.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.entries[symbol]
	return q, ok
}

// GetFresh returns the cached quote only when it is within the TTL.
func (s *Store) GetFresh(symbol string) (entity.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.entries[symbol]
	if !ok || time.Since(q.FetchedAt) >= s.ttl {
		return entity.Quote{}, false
	}
	return q, true
}

// Set atomically replaces the entry for q.Symbol.
// An entry with a newer FetchedAt is never overwritten by an older one.
func (s *Store) Set(q entity.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[q.Symbol]; ok && cur.FetchedAt.After(q.FetchedAt) {
		return
	}
	s.entries[q.Symbol] = q
}

// Evict drops entries older than the max-staleness window and reports how many
// were removed. Called periodically by the refresh scheduler.
func (s *Store) Evict() int {
	cutoff := time.Now().Add(-s.maxStaleness)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for sym, q := range s.entries {
		if q.FetchedAt.Before(cutoff) {
			delete(s.entries, sym)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached symbols.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
