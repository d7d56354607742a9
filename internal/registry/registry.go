// Package registry is the Registry & Lifecycle component: it holds the
// set of configured jobs, drives each through the Timer Engine into the
// Coordinator, and exposes the start/pause/stop state machine along
// with status, health, and metrics introspection.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hzerrad/cronsched/internal/coordinator"
	"github.com/hzerrad/cronsched/internal/executor"
	"github.com/hzerrad/cronsched/internal/logging"
	"github.com/hzerrad/cronsched/internal/schedule"
	"github.com/hzerrad/cronsched/internal/store"
	"github.com/hzerrad/cronsched/internal/timer"
)

// ErrJobAlreadyExists is returned by Add for a duplicate name.
var ErrJobAlreadyExists = errors.New("registry: job already exists")

// ErrJobNotFound is returned by operations referencing an unknown name.
var ErrJobNotFound = errors.New("registry: job not found")

// JobConfig configures one registered job. Persist defaults to true per
// spec, but Go's bool zero value can't distinguish "left unset" from
// "explicitly false" on a struct literal, so the default is applied by
// NewJobConfig rather than by Add — a caller building JobConfig{} by
// hand must set Persist explicitly.
type JobConfig struct {
	Name     string
	Schedule schedule.Schedule
	Job      executor.Job
	Persist  bool
	Timeout  time.Duration
	OnError  func(err error, intendedAt time.Time)
}

// NewJobConfig returns a JobConfig with Persist defaulted to true, the
// spec's documented default for jobs constructed through the normal
// entry point.
func NewJobConfig(name string, sched schedule.Schedule, job executor.Job) JobConfig {
	return JobConfig{Name: name, Schedule: sched, Job: job, Persist: true}
}

// Options configures a Registry.
type Options struct {
	Store                  store.Store
	Logger                 logging.Logger
	UTC                    bool
	CollectionTTL          int // seconds; 0 disables TTL, <300 is rejected with a warning
	MaxConsecutiveFailures int
}

type jobEntry struct {
	config      JobConfig
	timerHandle *timer.Handle
	paused      bool
	inFlight    atomic.Int64

	// scheduleMu guards the three fields below, which are updated from
	// the timer engine's OnSchedule/OnError hooks. Those hooks can fire
	// synchronously out of timer.ScheduleRecurring, which itself is
	// called by scheduleLocked while r.mu is already held (Start/Add/
	// ResumeJob) — a dedicated lock keeps that path off r.mu so it can't
	// self-deadlock.
	scheduleMu   sync.Mutex
	lastNextRun  time.Time
	hasNextRun   bool
	invalidCause error
}

// Registry manages the lifecycle of a set of scheduled jobs.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*jobEntry
	running bool

	store       store.Store
	logger      logging.Logger
	utc         bool
	ttlSeconds  int
	maxFailures int
	coord       *coordinator.Coordinator

	storeInitOnce sync.Once
	storeInitErr  error

	totalRunning atomic.Int64
}

// New creates a Registry in the idle state.
func New(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{
		entries:     make(map[string]*jobEntry),
		store:       opts.Store,
		logger:      logger,
		utc:         opts.UTC,
		ttlSeconds:  opts.CollectionTTL,
		maxFailures: opts.MaxConsecutiveFailures,
		coord:       coordinator.New(opts.Store, logger),
	}
}

// Add registers config. If the registry is running and the job is not
// paused, it is scheduled immediately.
func (r *Registry) Add(config JobConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if config.Name == "" {
		return fmt.Errorf("registry: job name is required")
	}
	if _, exists := r.entries[config.Name]; exists {
		return ErrJobAlreadyExists
	}

	entry := &jobEntry{config: config}
	r.entries[config.Name] = entry

	if r.running {
		r.scheduleLocked(entry)
	}
	return nil
}

// Remove cancels name's timer and drops it.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return ErrJobNotFound
	}
	if entry.timerHandle != nil {
		entry.timerHandle.Cancel()
	}
	delete(r.entries, name)
	return nil
}

// PauseJob cancels name's timer and marks it paused.
func (r *Registry) PauseJob(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return ErrJobNotFound
	}
	entry.paused = true
	if entry.timerHandle != nil {
		entry.timerHandle.Cancel()
		entry.timerHandle = nil
	}
	return nil
}

// ResumeJob clears name's paused flag and reschedules it if the
// registry is running.
func (r *Registry) ResumeJob(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[name]
	if !ok {
		return ErrJobNotFound
	}
	entry.paused = false
	if r.running {
		r.scheduleLocked(entry)
	}
	return nil
}

// IsJobPaused returns false for unknown names, per spec.
func (r *Registry) IsJobPaused(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[name]
	return ok && entry.paused
}

// Start initializes the store (exactly once across this Registry's
// lifetime) and schedules every non-paused entry, transitioning to
// running. Idempotent.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}

	if err := r.initStore(ctx); err != nil {
		r.mu.Unlock()
		return err
	}

	r.running = true
	for _, entry := range r.entries {
		if !entry.paused {
			r.scheduleLocked(entry)
		}
	}
	r.mu.Unlock()

	r.logger.Info("registry started", map[string]any{"jobCount": r.jobCount()})
	return nil
}

func (r *Registry) initStore(ctx context.Context) error {
	r.storeInitOnce.Do(func() {
		if r.store == nil {
			return
		}
		if err := r.store.CreateUniqueIndex(ctx); err != nil {
			r.storeInitErr = err
			return
		}
		if r.ttlSeconds == 0 {
			return
		}
		if r.ttlSeconds < 300 {
			r.logger.Warn("collection TTL below 300s minimum, skipping TTL index", map[string]any{"ttlSeconds": r.ttlSeconds})
			return
		}
		if err := r.store.CreateTtlIndex(ctx, r.ttlSeconds); err != nil {
			r.storeInitErr = err
		}
	})
	return r.storeInitErr
}

// Pause cancels every timer and keeps all entries, transitioning to
// idle.
func (r *Registry) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauseLocked()
}

func (r *Registry) pauseLocked() {
	for _, entry := range r.entries {
		if entry.timerHandle != nil {
			entry.timerHandle.Cancel()
			entry.timerHandle = nil
		}
	}
	r.running = false
}

// Stop pauses, then clears every entry.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pauseLocked()
	r.entries = make(map[string]*jobEntry)
}

// GracefulShutdown pauses, then waits up to timeout for in-flight
// executions to finish, logging how many remain on expiry.
func (r *Registry) GracefulShutdown(ctx context.Context, timeout time.Duration) error {
	r.Pause()

	deadline := time.Now().Add(timeout)
	for {
		remaining := r.totalRunning.Load()
		if remaining == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			r.logger.Warn("graceful shutdown timed out with jobs still in flight", map[string]any{"remaining": remaining})
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// scheduleLocked arms the Timer Engine for entry. Caller must hold r.mu.
func (r *Registry) scheduleLocked(entry *jobEntry) {
	name := entry.config.Name
	nextFn := func(now time.Time) (time.Time, error) {
		return schedule.NextAfter(entry.config.Schedule, now, r.utc)
	}

	entry.timerHandle = timer.ScheduleRecurring(nextFn,
		func(intendedAt time.Time) {
			r.totalRunning.Add(1)
			entry.inFlight.Add(1)
			defer func() {
				entry.inFlight.Add(-1)
				r.totalRunning.Add(-1)
			}()
			r.coord.Fire(context.Background(), coordinator.Entry{
				Name:    name,
				Job:     entry.config.Job,
				Persist: entry.config.Persist,
				Timeout: entry.config.Timeout,
				OnError: entry.config.OnError,
			}, intendedAt)
		},
		timer.RecurringOptions{
			MaxConsecutiveFailures: r.maxFailures,
			OnSchedule: func(nextRun time.Time) {
				entry.scheduleMu.Lock()
				entry.lastNextRun = nextRun
				entry.hasNextRun = true
				entry.invalidCause = nil
				entry.scheduleMu.Unlock()
			},
			OnError: func(err error) {
				entry.scheduleMu.Lock()
				entry.invalidCause = err
				entry.scheduleMu.Unlock()
				r.logger.Error("scheduling failure", map[string]any{"name": name, "error": err.Error()})
			},
			OnCircuitBreak: func(err error) {
				r.logger.Error("circuit breaker tripped, job will no longer be scheduled", map[string]any{"name": name, "error": err.Error()})
			},
		},
	)
}

// NextScheduledAt returns the Router's next instant for name, or
// (zero, false) if name is absent or its schedule is currently
// invalid.
func (r *Registry) NextScheduledAt(name string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return time.Time{}, false
	}
	next, err := schedule.NextAfter(entry.config.Schedule, time.Now(), r.utc)
	if err != nil {
		return time.Time{}, false
	}
	return next, true
}

// Stats summarizes a job's recent execution history.
type Stats struct {
	TotalRuns       int
	SuccessCount    int
	ErrorCount      int
	AverageDuration time.Duration
}

// JobStatus is the synthesized status of one registered job.
type JobStatus struct {
	Name        string
	IsScheduled bool
	IsPaused    bool
	NextRunAt   *time.Time
	LastRun     *store.HistoryRecord
	Stats       Stats
}

// GetJobStatus synthesizes name's status from the Registry's in-memory
// state plus up to the 100 most recent history rows.
func (r *Registry) GetJobStatus(ctx context.Context, name string) (*JobStatus, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	if !ok {
		r.mu.RUnlock()
		return nil, ErrJobNotFound
	}
	isScheduled := entry.timerHandle != nil
	isPaused := entry.paused
	r.mu.RUnlock()

	status := &JobStatus{Name: name, IsScheduled: isScheduled, IsPaused: isPaused}

	if next, ok := r.NextScheduledAt(name); ok {
		status.NextRunAt = &next
	}

	if r.store == nil {
		return status, nil
	}

	records, err := r.store.FindRecent(ctx, name, 100)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		last := records[0]
		status.LastRun = &last
	}
	status.Stats = computeStats(records)
	return status, nil
}

// GetAllJobStatuses returns GetJobStatus for every registered job.
func (r *Registry) GetAllJobStatuses(ctx context.Context) (map[string]*JobStatus, error) {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	result := make(map[string]*JobStatus, len(names))
	for _, name := range names {
		status, err := r.GetJobStatus(ctx, name)
		if err != nil {
			return nil, err
		}
		result[name] = status
	}
	return result, nil
}

func computeStats(records []store.HistoryRecord) Stats {
	var stats Stats
	var totalDuration time.Duration
	var completed int

	for _, rec := range records {
		if rec.FinishedAt == nil {
			continue
		}
		stats.TotalRuns++
		if rec.Error == "" {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}
		totalDuration += rec.FinishedAt.Sub(rec.StartedAt)
		completed++
	}
	if completed > 0 {
		stats.AverageDuration = totalDuration / time.Duration(completed)
	}
	return stats
}

// HealthSnapshot is the result of HealthCheck.
type HealthSnapshot struct {
	Healthy bool
	Issues  []string
}

// HealthCheck reports jobs missing a timer while running, and jobs
// whose next instant cannot currently be computed.
func (r *Registry) HealthCheck() HealthSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var issues []string
	for name, entry := range r.entries {
		if r.running && !entry.paused && entry.timerHandle == nil {
			issues = append(issues, fmt.Sprintf("job %q has no active timer while the registry is running", name))
		}
		if _, err := schedule.NextAfter(entry.config.Schedule, time.Now(), r.utc); err != nil {
			issues = append(issues, fmt.Sprintf("job %q's next instant cannot be computed: %v", name, err))
		}
	}
	sort.Strings(issues)
	return HealthSnapshot{Healthy: len(issues) == 0, Issues: issues}
}

// Metrics is the snapshot returned by GetMetrics.
type Metrics struct {
	IsRunning         bool
	JobCount          int
	ScheduledJobCount int
	PausedJobCount    int
	RunningJobCount   int
}

// GetMetrics returns aggregate counts over the current entry set.
func (r *Registry) GetMetrics() Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := Metrics{IsRunning: r.running, JobCount: len(r.entries)}
	for _, entry := range r.entries {
		if entry.timerHandle != nil {
			m.ScheduledJobCount++
		}
		if entry.paused {
			m.PausedJobCount++
		}
	}
	m.RunningJobCount = int(r.totalRunning.Load())
	return m
}

func (r *Registry) jobCount() int {
	return len(r.entries)
}
