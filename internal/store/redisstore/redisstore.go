// Package redisstore implements store.Store on top of Redis, using an
// atomic SET NX as the distributed lease primitive (the unique pair
// (name, intendedAt) is folded into a single Redis key so the
// not-exists check and the write happen as one operation) and a hash
// per job for the execution history, with key expiry as TTL.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hzerrad/cronsched/internal/store"
)

// leaseScript performs the unique-insert: it sets the lease key only if
// absent, and if that succeeds also pushes the record id onto the job's
// recent-executions list, trimmed to maxPerJob.
var leaseScript = redis.NewScript(`
	local leaseKey = KEYS[1]
	local listKey = KEYS[2]
	local recordKey = KEYS[3]
	local id = ARGV[1]
	local recordJSON = ARGV[2]
	local ttlSeconds = tonumber(ARGV[3])
	local maxPerJob = tonumber(ARGV[4])

	local ok = redis.call('SET', leaseKey, id, 'NX')
	if not ok then
		return 0
	end

	redis.call('SET', recordKey, recordJSON)
	redis.call('LPUSH', listKey, id)
	redis.call('LTRIM', listKey, 0, maxPerJob - 1)

	if ttlSeconds > 0 then
		redis.call('EXPIRE', leaseKey, ttlSeconds)
		redis.call('EXPIRE', recordKey, ttlSeconds)
		redis.call('EXPIRE', listKey, ttlSeconds)
	end

	return 1
`)

type record struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	IntendedAt time.Time  `json:"intendedAt"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Result     string     `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Store is a store.Store backed by Redis.
type Store struct {
	client    *redis.Client
	prefix    string
	maxPerJob int
	ttl       time.Duration
	ttlSet    bool
}

// Options configures a Store.
type Options struct {
	// Prefix namespaces every key. Default "cronsched:".
	Prefix string
	// MaxPerJob bounds the per-job recent-executions list. Default 100.
	MaxPerJob int
}

// New wraps an existing Redis client.
func New(client *redis.Client, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = "cronsched:"
	}
	if opts.MaxPerJob <= 0 {
		opts.MaxPerJob = 100
	}
	return &Store{client: client, prefix: opts.Prefix, maxPerJob: opts.MaxPerJob}
}

func (s *Store) leaseKey(name string, intendedAt time.Time) string {
	return fmt.Sprintf("%slease:%s:%d", s.prefix, name, intendedAt.Unix())
}

func (s *Store) listKey(name string) string {
	return s.prefix + "list:" + name
}

func (s *Store) recordKey(id string) string {
	return s.prefix + "record:" + id
}

func (s *Store) InsertHistory(ctx context.Context, rec store.HistoryRecord) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	intendedAt := rec.IntendedAt.Truncate(time.Second)

	doc := record{ID: id, Name: rec.Name, IntendedAt: intendedAt, StartedAt: rec.StartedAt}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	ttlSeconds := int64(0)
	if s.ttlSet {
		ttlSeconds = int64(s.ttl.Seconds())
	}

	keys := []string{s.leaseKey(rec.Name, intendedAt), s.listKey(rec.Name), s.recordKey(id)}
	res, err := leaseScript.Run(ctx, s.client, keys, id, string(data), ttlSeconds, s.maxPerJob).Result()
	if err != nil {
		return "", err
	}
	if acquired, _ := res.(int64); acquired == 0 {
		return "", store.ErrDuplicateKey
	}
	return id, nil
}

func (s *Store) UpdateHistory(ctx context.Context, id string, finishedAt time.Time, result, execErr string) error {
	key := s.recordKey(id)
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return err
	}

	var doc record
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return err
	}
	doc.FinishedAt = &finishedAt
	doc.Result = result
	doc.Error = execErr

	updated, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return err
	}
	if ttl > 0 {
		return s.client.Set(ctx, key, updated, ttl).Err()
	}
	return s.client.Set(ctx, key, updated, 0).Err()
}

func (s *Store) FindRecent(ctx context.Context, name string, limit int) ([]store.HistoryRecord, error) {
	if limit <= 0 {
		limit = s.maxPerJob
	}
	ids, err := s.client.LRange(ctx, s.listKey(name), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	result := make([]store.HistoryRecord, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, s.recordKey(id)).Result()
		if err != nil {
			continue // expired or missing; skip rather than fail the whole query
		}
		var doc record
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			continue
		}
		result = append(result, store.HistoryRecord{
			ID:         doc.ID,
			Name:       doc.Name,
			IntendedAt: doc.IntendedAt,
			StartedAt:  doc.StartedAt,
			FinishedAt: doc.FinishedAt,
			Result:     doc.Result,
			Error:      doc.Error,
		})
	}
	return result, nil
}

// CreateUniqueIndex is a no-op: the lease key scheme in InsertHistory
// already makes (name, intendedAt) unique by construction.
func (s *Store) CreateUniqueIndex(ctx context.Context) error { return nil }

func (s *Store) CreateTtlIndex(ctx context.Context, seconds int) error {
	if seconds < 300 {
		return store.ErrTTLTooShort
	}
	s.ttl = time.Duration(seconds) * time.Second
	s.ttlSet = true
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Close()
}
