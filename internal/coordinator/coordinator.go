// Package coordinator runs a single job firing end to end: it acquires
// a distributed lease on (name, intendedAt) when the job is persisted,
// executes the job, records the outcome, and routes failures to the
// job's error callback — all without letting any one firing's failure
// propagate out of the scheduling loop.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/hzerrad/cronsched/internal/executor"
	"github.com/hzerrad/cronsched/internal/logging"
	"github.com/hzerrad/cronsched/internal/store"
)

// Entry is the subset of a registered job's configuration the
// coordinator needs to run one firing.
type Entry struct {
	Name    string
	Job     executor.Job
	Persist bool
	Timeout time.Duration
	OnError func(err error, intendedAt time.Time)
}

// Coordinator fires jobs against a shared record store.
type Coordinator struct {
	store  store.Store
	logger logging.Logger
}

// New returns a Coordinator backed by s, logging through logger (nil
// defaults to a no-op logger).
func New(s store.Store, logger logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Coordinator{store: s, logger: logger}
}

// Fire runs entry for the firing intended at intendedAt. intendedAt is
// truncated to second precision before being used as a lease key, per
// the uniqueness invariant. Fire never returns an error: every failure
// mode is logged and absorbed so a single firing's failure cannot stop
// the scheduling loop.
func (c *Coordinator) Fire(ctx context.Context, entry Entry, intendedAt time.Time) {
	intendedAt = intendedAt.Truncate(time.Second)

	var leaseID string
	if entry.Persist {
		id, ok := c.acquireLease(ctx, entry.Name, intendedAt)
		if !ok {
			return
		}
		leaseID = id
	}

	result := executor.Execute(ctx, entry.Job, intendedAt, entry.Name, executor.Options{
		Timeout: entry.Timeout,
		OnTimeout: func(d time.Duration) {
			c.logger.Warn("job timed out", map[string]any{"name": entry.Name, "timeout": entry.Timeout.String()})
		},
	})

	if entry.Persist && leaseID != "" {
		c.recordOutcome(ctx, leaseID, entry.Name, result)
	}

	if !result.Success {
		c.invokeOnError(entry, result.Error, intendedAt)
	}
}

// acquireLease inserts the lease record. It returns ("", false) when
// the firing should be skipped (duplicate lease or a store error).
func (c *Coordinator) acquireLease(ctx context.Context, name string, intendedAt time.Time) (string, bool) {
	id, err := c.store.InsertHistory(ctx, store.HistoryRecord{
		Name:       name,
		IntendedAt: intendedAt,
		StartedAt:  time.Now(),
	})
	if err == nil {
		return id, true
	}
	if err == store.ErrDuplicateKey {
		c.logger.Debug("skipping, already running elsewhere", map[string]any{"name": name})
		return "", false
	}
	c.logger.Error("store error during lease acquisition", map[string]any{"name": name, "error": err.Error()})
	return "", false
}

func (c *Coordinator) recordOutcome(ctx context.Context, leaseID, name string, result executor.Result) {
	resultStr, errStr := "", ""
	if result.Success {
		resultStr = fmt.Sprintf("%v", result.Result)
	} else if result.Error != nil {
		errStr = result.Error.Error()
	}

	if err := c.store.UpdateHistory(ctx, leaseID, time.Now(), resultStr, errStr); err != nil {
		c.logger.Error("store error recording outcome", map[string]any{"name": name, "error": err.Error()})
	}
}

func (c *Coordinator) invokeOnError(entry Entry, jobErr error, intendedAt time.Time) {
	if entry.OnError == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("onError callback panicked", map[string]any{"name": entry.Name, "panic": fmt.Sprintf("%v", r)})
		}
	}()
	entry.OnError(jobErr, intendedAt)
}
