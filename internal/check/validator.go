// Package check lints job schedules before they're registered:
// day-of-month/day-of-week conflicts, schedules that never fire,
// redundant cron step patterns, excessive run frequency, and overlap
// between jobs. It is advisory only — nothing here blocks Add; a caller
// (typically a CLI command) decides what to do with the Issues.
package check

import (
	"fmt"
	"time"

	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/schedule"
	"github.com/hzerrad/cronsched/internal/scheduling"
)

// Issue represents a validation issue found in a job's schedule.
type Issue struct {
	Severity Severity
	Code     string
	JobName  string
	Message  string
	Hint     string
}

// ValidationResult contains the results of validating one or more
// schedules.
type ValidationResult struct {
	Valid     bool
	Issues    []Issue
	TotalJobs int
}

// NamedSchedule pairs a job name with its resolved schedule — the unit
// ValidateAll and overlap analysis operate on.
type NamedSchedule struct {
	Name     string
	Schedule schedule.Schedule
}

// Validator lints schedules.
type Validator struct {
	scheduler       cronx.Scheduler
	enableFrequency bool
	maxRunsPerDay   int
	minInterval     time.Duration
	warnOnOverlap   bool
	overlapWindow   time.Duration
	utc             bool
}

// NewValidator creates a validator with the default thresholds.
func NewValidator() *Validator {
	return &Validator{
		scheduler:       cronx.NewScheduler(),
		enableFrequency: true,
		maxRunsPerDay:   1000,
		minInterval:     time.Second,
		overlapWindow:   24 * time.Hour,
	}
}

// SetFrequencyChecks enables or disables frequency analysis.
func (v *Validator) SetFrequencyChecks(enabled bool) { v.enableFrequency = enabled }

// SetMaxRunsPerDay sets the threshold for the excessive-runs warning on
// cron schedules.
func (v *Validator) SetMaxRunsPerDay(threshold int) { v.maxRunsPerDay = threshold }

// SetMinInterval sets the threshold below which an Interval schedule is
// flagged as excessively frequent.
func (v *Validator) SetMinInterval(d time.Duration) { v.minInterval = d }

// SetWarnOnOverlap enables or disables overlap warnings in ValidateAll.
func (v *Validator) SetWarnOnOverlap(enabled bool) { v.warnOnOverlap = enabled }

// SetOverlapWindow sets the time window for overlap analysis.
func (v *Validator) SetOverlapWindow(window time.Duration) { v.overlapWindow = window }

// SetUTC selects whether schedule evaluation (empty-schedule detection,
// overlap analysis) treats "now" as UTC or local time.
func (v *Validator) SetUTC(utc bool) { v.utc = utc }

// ValidateEntry lints a single named schedule.
func (v *Validator) ValidateEntry(name string, sched schedule.Schedule) ValidationResult {
	result := ValidationResult{Valid: true, TotalJobs: 1}

	switch s := sched.(type) {
	case schedule.Cron:
		result.Issues = append(result.Issues, v.validateCron(name, s)...)
	case schedule.Interval:
		result.Issues = append(result.Issues, v.validateInterval(name, s)...)
	case schedule.Daily:
		// A daily time-of-day schedule always fires once a day; nothing
		// here can be invalid or excessive.
	default:
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityError,
			Code:     CodeInvalidSchedule,
			JobName:  name,
			Message:  "schedule is not one of the known variants",
			Hint:     GetCodeHint(CodeInvalidSchedule),
		})
	}

	for _, issue := range result.Issues {
		if issue.Severity == SeverityError {
			result.Valid = false
			break
		}
	}
	return result
}

func (v *Validator) validateCron(name string, c schedule.Cron) []Issue {
	var issues []Issue
	fields := c.Fields

	if detectDOMDOWConflict(fields) {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     CodeDOMDOWConflict,
			JobName:  name,
			Message:  "Both day-of-month and day-of-week specified (runs if either condition is met)",
			Hint:     GetCodeHint(CodeDOMDOWConflict),
		})
	}

	if detectEmptySchedule(c.Expression, v.scheduler) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeEmptySchedule,
			JobName:  name,
			Message:  "Schedule never runs (empty schedule)",
			Hint:     GetCodeHint(CodeEmptySchedule),
		})
		return issues
	}

	if !v.enableFrequency {
		return issues
	}

	if DetectRedundantPattern(fields) {
		suggestion := GetRedundantPatternSuggestion(c.Expression, fields)
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     CodeRedundantPattern,
			JobName:  name,
			Message:  "Redundant step pattern detected (e.g., */1 can be simplified to *)",
			Hint:     fmt.Sprintf("%s Consider using: %s", GetCodeHint(CodeRedundantPattern), suggestion),
		})
	}

	if runsPerDay, err := CalculateRunsPerDay(c.Expression, v.scheduler); err == nil && runsPerDay > v.maxRunsPerDay {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     CodeExcessiveRuns,
			JobName:  name,
			Message:  fmt.Sprintf("Schedule runs %d times per day (exceeds threshold of %d)", runsPerDay, v.maxRunsPerDay),
			Hint:     GetCodeHint(CodeExcessiveRuns),
		})
	}

	return issues
}

func (v *Validator) validateInterval(name string, i schedule.Interval) []Issue {
	var issues []Issue

	if i.Every <= 0 {
		return []Issue{{
			Severity: SeverityError,
			Code:     CodeInvalidSchedule,
			JobName:  name,
			Message:  "interval's every must be a positive integer",
			Hint:     GetCodeHint(CodeInvalidSchedule),
		}}
	}

	if !v.enableFrequency {
		return issues
	}

	dur, ok := unitDuration(i.Unit)
	if !ok {
		return issues
	}
	period := time.Duration(i.Every) * dur
	if period < v.minInterval {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     CodeExcessiveRuns,
			JobName:  name,
			Message:  fmt.Sprintf("interval fires every %s, faster than the configured minimum of %s", period, v.minInterval),
			Hint:     GetCodeHint(CodeExcessiveRuns),
		})
	}
	return issues
}

func unitDuration(u scheduling.Unit) (time.Duration, bool) {
	switch u {
	case scheduling.UnitSeconds:
		return time.Second, true
	case scheduling.UnitMinutes:
		return time.Minute, true
	case scheduling.UnitHours:
		return time.Hour, true
	case scheduling.UnitDays:
		return 24 * time.Hour, true
	default:
		return 0, false
	}
}

// ValidateAll lints every entry, then (if SetWarnOnOverlap is enabled)
// runs overlap analysis across the full set.
func (v *Validator) ValidateAll(entries []NamedSchedule) ValidationResult {
	result := ValidationResult{Valid: true, TotalJobs: len(entries)}

	for _, entry := range entries {
		r := v.ValidateEntry(entry.Name, entry.Schedule)
		if !r.Valid {
			result.Valid = false
		}
		result.Issues = append(result.Issues, r.Issues...)
	}

	if v.warnOnOverlap && len(entries) > 1 {
		result.Issues = append(result.Issues, v.validateOverlaps(entries)...)
	}

	return result
}

func (v *Validator) validateOverlaps(entries []NamedSchedule) []Issue {
	var issues []Issue

	_, stats, err := AnalyzeOverlaps(entries, v.overlapWindow, v.utc)
	if err != nil || stats.MaxConcurrent <= 1 {
		return issues
	}

	top := stats.MostProblematic
	if len(top) > 5 {
		top = top[:5]
	}
	for _, overlap := range top {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     CodeOverlapDetected,
			Message:  fmt.Sprintf("Overlap detected: %d jobs scheduled at %s (%v)", overlap.Count, overlap.Time.Format("2006-01-02 15:04"), overlap.JobIDs),
			Hint:     GetCodeHint(CodeOverlapDetected),
		})
	}
	return issues
}

// detectDOMDOWConflict checks if both day-of-month and day-of-week are specified
func detectDOMDOWConflict(fields *cronx.Fields) bool {
	return !fields.DayOfMonth.IsEvery() && !fields.DayOfWeek.IsEvery()
}

// detectEmptySchedule checks if a schedule never runs
func detectEmptySchedule(expression string, scheduler cronx.Scheduler) bool {
	now := time.Now()
	future := now.AddDate(2, 0, 0) // Check 2 years ahead

	times, err := scheduler.Next(expression, now, 1)
	if err != nil {
		return true // Invalid = empty
	}

	if len(times) == 0 || times[0].After(future) {
		return true
	}

	return false
}
