// Package store defines the record-store contract that the Coordinator
// uses both as a distributed lease (unique insert on (name, intendedAt))
// and as a persisted execution history.
package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// HistoryRecord is one firing's persisted record. IntendedAt must carry
// only second precision; callers truncate before calling InsertHistory.
type HistoryRecord struct {
	ID         string
	Name       string
	IntendedAt time.Time
	StartedAt  time.Time
	FinishedAt *time.Time
	Result     string
	Error      string
}

// ErrDuplicateKey is returned by InsertHistory when a record already
// exists for (Name, IntendedAt) — the signal that another instance has
// already leased this firing.
var ErrDuplicateKey = errors.New("store: duplicate key")

// ErrTTLTooShort is returned by CreateTtlIndex when seconds is below the
// 300s floor.
var ErrTTLTooShort = errors.New("store: ttl below 300s minimum")

// Store is the record-store contract shared by every backend.
type Store interface {
	// InsertHistory atomically inserts rec keyed on (Name, IntendedAt).
	// Returns ErrDuplicateKey if a record already exists for that pair.
	InsertHistory(ctx context.Context, rec HistoryRecord) (id string, err error)

	// UpdateHistory updates the record identified by id with the
	// firing's outcome.
	UpdateHistory(ctx context.Context, id string, finishedAt time.Time, result, execErr string) error

	// FindRecent returns up to limit records for name, newest-first by
	// StartedAt.
	FindRecent(ctx context.Context, name string, limit int) ([]HistoryRecord, error)

	// CreateUniqueIndex ensures the (intendedAt, name) uniqueness
	// invariant is enforced by the backend. Idempotent.
	CreateUniqueIndex(ctx context.Context) error

	// CreateTtlIndex ensures records expire seconds after StartedAt.
	// Idempotent. Returns ErrTTLTooShort if seconds < 300.
	CreateTtlIndex(ctx context.Context, seconds int) error

	// Close releases any underlying connection.
	Close(ctx context.Context) error
}

var (
	sharedMu    sync.Mutex
	sharedStore = map[string]Store{}
)

// Shared returns the process-wide Store registered under name, creating
// it via factory on first use. This mirrors keeping a single collection
// handle per process rather than reopening a connection per Registry.
func Shared(name string, factory func() (Store, error)) (Store, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if s, ok := sharedStore[name]; ok {
		return s, nil
	}
	s, err := factory()
	if err != nil {
		return nil, err
	}
	sharedStore[name] = s
	return s, nil
}

// ResetShared clears the process-wide cache. Intended for tests.
func ResetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedStore = map[string]Store{}
}
