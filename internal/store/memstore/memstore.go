// Package memstore is an in-process Store implementation backed by a
// mutex-guarded map. It is used by package-level unit tests and by
// single-instance deployments with no durability requirement.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hzerrad/cronsched/internal/store"
)

type key struct {
	name       string
	intendedAt time.Time
}

// Store is an in-memory store.Store. The zero value is not usable; use
// New.
type Store struct {
	mu       sync.Mutex
	byKey    map[key]string // (name, intendedAt) -> id
	byID     map[string]*store.HistoryRecord
	ttl      time.Duration
	ttlSet   bool
	uniqueOn bool
}

// New returns an empty memstore.Store.
func New() *Store {
	return &Store{
		byKey: make(map[key]string),
		byID:  make(map[string]*store.HistoryRecord),
	}
}

func (s *Store) InsertHistory(ctx context.Context, rec store.HistoryRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()

	k := key{rec.Name, rec.IntendedAt}
	if _, exists := s.byKey[k]; exists {
		return "", store.ErrDuplicateKey
	}

	id := uuid.NewString()
	rec.ID = id
	s.byKey[k] = id
	s.byID[id] = &rec
	return id, nil
}

func (s *Store) UpdateHistory(ctx context.Context, id string, finishedAt time.Time, result, execErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil
	}
	rec.FinishedAt = &finishedAt
	rec.Result = result
	rec.Error = execErr
	return nil
}

func (s *Store) FindRecent(ctx context.Context, name string, limit int) ([]store.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()

	var matched []store.HistoryRecord
	for _, rec := range s.byID {
		if rec.Name == name {
			matched = append(matched, *rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartedAt.After(matched[j].StartedAt) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) CreateUniqueIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniqueOn = true // uniqueness is always enforced by byKey; this is a no-op marker
	return nil
}

func (s *Store) CreateTtlIndex(ctx context.Context, seconds int) error {
	if seconds < 300 {
		return store.ErrTTLTooShort
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = time.Duration(seconds) * time.Second
	s.ttlSet = true
	return nil
}

func (s *Store) Close(ctx context.Context) error { return nil }

// evictExpiredLocked drops records older than the configured TTL. Must
// be called with s.mu held.
func (s *Store) evictExpiredLocked() {
	if !s.ttlSet {
		return
	}
	cutoff := time.Now().Add(-s.ttl)
	for id, rec := range s.byID {
		if rec.StartedAt.Before(cutoff) {
			delete(s.byID, id)
			delete(s.byKey, key{rec.Name, rec.IntendedAt})
		}
	}
}
