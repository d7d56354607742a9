// Package cronsched is a distributed cron scheduler: multiple instances
// of a process can share one JobConfig set and one history store, and
// only one instance will execute any given (job, instant) pair, by the
// unique-pair lease the store enforces rather than a TTL lock.
//
// Cron wraps internal/registry.Registry behind the public surface; the
// schedule shapes (Interval, Daily, Cron) are re-exported from
// internal/schedule so callers never import an internal package.
package cronsched

import (
	"context"
	"time"

	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/executor"
	"github.com/hzerrad/cronsched/internal/logging"
	"github.com/hzerrad/cronsched/internal/registry"
	"github.com/hzerrad/cronsched/internal/schedule"
	"github.com/hzerrad/cronsched/internal/scheduling"
	"github.com/hzerrad/cronsched/internal/store"
)

// Unit is the time unit an Interval schedule is expressed in.
type Unit = scheduling.Unit

const (
	UnitSeconds = scheduling.UnitSeconds
	UnitMinutes = scheduling.UnitMinutes
	UnitHours   = scheduling.UnitHours
	UnitDays    = scheduling.UnitDays
)

// Schedule is the tagged union of supported schedule shapes.
type Schedule = schedule.Schedule

// Interval is a fixed-period schedule (e.g. every 5 minutes).
type Interval = schedule.Interval

// Daily is a once-a-day, time-of-day schedule.
type Daily = schedule.Daily

// CronExpr is a parsed five-field cron expression.
type CronExpr = schedule.Cron

// Job is the function a scheduled entry executes. intendedAt is the
// instant the run was scheduled for, not the instant Handler actually
// started running.
type Job = executor.Job

// JobConfig configures one registered job.
type JobConfig = registry.JobConfig

// NewJobConfig returns a JobConfig with Persist defaulted to true.
func NewJobConfig(name string, sched Schedule, job Job) JobConfig {
	return registry.NewJobConfig(name, sched, job)
}

// NewInterval builds an Interval schedule of every unit, e.g.
// NewInterval(5, cronsched.UnitMinutes). Set aligned to snap firings to
// a unit boundary instead of drifting from the schedule's start time.
func NewInterval(every int, unit Unit, aligned bool) Interval {
	return schedule.Interval{Interval: scheduling.Interval{Every: every, Unit: unit, Aligned: aligned}}
}

// NewDaily builds a Daily schedule firing once a day at the "HH:MM"
// time of day.
func NewDaily(at string) Daily {
	return schedule.Daily{Daily: scheduling.Daily{At: at}}
}

// NewCron parses a five-field cron expression (minute hour dom month
// dow) into a Schedule, using the default English-locale parser.
func NewCron(expression string) (CronExpr, error) {
	return schedule.NewCron(cronx.NewParser(), expression)
}

// NewCronWithLocale parses expression using a locale-specific month and
// day-of-week symbol table (see internal/cronx for supported locales).
func NewCronWithLocale(locale, expression string) (CronExpr, error) {
	return schedule.NewCron(cronx.NewParserWithLocale(locale), expression)
}

// Store is the history/lease backend a Cron persists executions to.
type Store = store.Store

// HistoryRecord is one recorded job execution.
type HistoryRecord = store.HistoryRecord

// Options configures a new Cron.
type Options struct {
	// Store backs the distributed lease and execution history. Required
	// for jobs with Persist: true (the default); a Cron with a nil Store
	// can only run jobs explicitly marked Persist: false.
	Store Store

	// Logger receives structured lifecycle and failure events. Defaults
	// to a no-op logger.
	Logger logging.Logger

	// UTC, when true, evaluates every schedule's "now" in UTC rather
	// than the process's local zone.
	UTC bool

	// CollectionTTL, in seconds, bounds how long history rows survive in
	// Store. Zero disables the TTL index; values below 300 are rejected
	// with a logged warning and the index is skipped rather than erroring.
	CollectionTTL int

	// MaxConsecutiveFailures trips the Timer Engine's circuit breaker
	// for a job after this many consecutive nextAfter computation
	// failures (0 or a negative value selects the default of 3).
	MaxConsecutiveFailures int
}

// Cron is a set of scheduled jobs sharing one lifecycle and one history
// store.
type Cron struct {
	reg *registry.Registry
}

// New creates a Cron in the idle state. Call Start to begin scheduling.
func New(opts Options) *Cron {
	return &Cron{reg: registry.New(registry.Options{
		Store:                  opts.Store,
		Logger:                 opts.Logger,
		UTC:                    opts.UTC,
		CollectionTTL:          opts.CollectionTTL,
		MaxConsecutiveFailures: opts.MaxConsecutiveFailures,
	})}
}

// Add registers config. If the Cron is running and the job is not
// paused, it is scheduled immediately.
func (c *Cron) Add(config JobConfig) error {
	return c.reg.Add(config)
}

// Every is a convenience method equivalent to Add with a drifting
// (non-aligned) Interval schedule and Persist defaulted to true.
func (c *Cron) Every(every int, unit Unit, name string, job Job) error {
	return c.Add(NewJobConfig(name, NewInterval(every, unit, false), job))
}

// Daily is a convenience method equivalent to Add with a Daily schedule
// at the "HH:MM" time of day and Persist defaulted to true.
func (c *Cron) Daily(at, name string, job Job) error {
	return c.Add(NewJobConfig(name, NewDaily(at), job))
}

// Cron is a convenience method equivalent to Add with a parsed cron
// expression and Persist defaulted to true.
func (c *Cron) Cron(expression, name string, job Job) error {
	sched, err := NewCron(expression)
	if err != nil {
		return err
	}
	return c.Add(NewJobConfig(name, sched, job))
}

// Remove cancels name's timer and drops it from the Cron.
func (c *Cron) Remove(name string) error {
	return c.reg.Remove(name)
}

// PauseJob cancels name's timer without removing it; ResumeJob
// reschedules it.
func (c *Cron) PauseJob(name string) error {
	return c.reg.PauseJob(name)
}

// ResumeJob clears name's paused flag and reschedules it if the Cron
// is running.
func (c *Cron) ResumeJob(name string) error {
	return c.reg.ResumeJob(name)
}

// IsJobPaused reports whether name is paused. Unknown names are
// reported as not paused.
func (c *Cron) IsJobPaused(name string) bool {
	return c.reg.IsJobPaused(name)
}

// Start initializes the history store (idempotently, across the
// Cron's lifetime) and begins scheduling every non-paused job.
func (c *Cron) Start(ctx context.Context) error {
	return c.reg.Start(ctx)
}

// Pause cancels every job's timer without dropping any job; Start
// resumes scheduling from the same entry set.
func (c *Cron) Pause() {
	c.reg.Pause()
}

// Stop cancels every timer and clears every registered job.
func (c *Cron) Stop() {
	c.reg.Stop()
}

// GracefulShutdown pauses the Cron, then waits up to timeout for any
// in-flight executions to finish before returning.
func (c *Cron) GracefulShutdown(ctx context.Context, timeout time.Duration) error {
	return c.reg.GracefulShutdown(ctx, timeout)
}

// NextScheduledAt returns name's next firing instant, or (zero, false)
// if name is unknown or its schedule cannot currently be computed.
func (c *Cron) NextScheduledAt(name string) (time.Time, bool) {
	return c.reg.NextScheduledAt(name)
}

// Stats summarizes a job's recent execution history.
type Stats = registry.Stats

// JobStatus is the synthesized status of one registered job.
type JobStatus = registry.JobStatus

// GetJobStatus synthesizes name's status from in-memory state plus
// recent history.
func (c *Cron) GetJobStatus(ctx context.Context, name string) (*JobStatus, error) {
	return c.reg.GetJobStatus(ctx, name)
}

// GetAllJobStatuses returns GetJobStatus for every registered job.
func (c *Cron) GetAllJobStatuses(ctx context.Context) (map[string]*JobStatus, error) {
	return c.reg.GetAllJobStatuses(ctx)
}

// HealthSnapshot is the result of HealthCheck.
type HealthSnapshot = registry.HealthSnapshot

// HealthCheck reports jobs with no active timer while running, and
// jobs whose next instant cannot currently be computed.
func (c *Cron) HealthCheck() HealthSnapshot {
	return c.reg.HealthCheck()
}

// Metrics is the snapshot returned by GetMetrics.
type Metrics = registry.Metrics

// GetMetrics returns aggregate counts over the Cron's current jobs.
func (c *Cron) GetMetrics() Metrics {
	return c.reg.GetMetrics()
}
