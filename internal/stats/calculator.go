// Package stats computes firing-frequency and collision statistics
// across a set of named schedules: runs per day/hour, the busiest
// hours of the day, and how often two or more jobs land in the same
// minute.
package stats

import (
	"sort"
	"time"

	"github.com/hzerrad/cronsched/internal/check"
	"github.com/hzerrad/cronsched/internal/schedule"
)

// maxStepsPerJob bounds how many times walkForward steps a single
// schedule forward, mirroring check.AnalyzeOverlaps' safety cap.
const maxStepsPerJob = 20000

// Calculator calculates frequency and collision statistics for a set
// of named schedules.
type Calculator struct {
	utc bool
}

// NewCalculator creates a new statistics calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// SetUTC selects whether "now" is evaluated as UTC or local time.
func (c *Calculator) SetUTC(utc bool) { c.utc = utc }

// walkForward returns every firing instant of sched strictly after
// start and before end, bounded by maxStepsPerJob.
func (c *Calculator) walkForward(sched schedule.Schedule, start, end time.Time) []time.Time {
	var times []time.Time
	current := start
	for i := 0; i < maxStepsPerJob; i++ {
		next, err := schedule.NextAfter(sched, current, c.utc)
		if err != nil {
			break
		}
		if !next.Before(end) {
			break
		}
		times = append(times, next)
		current = next
	}
	return times
}

// CalculateMetrics calculates comprehensive metrics for a set of named
// schedules.
func (c *Calculator) CalculateMetrics(entries []check.NamedSchedule, timeWindow time.Duration) (*Metrics, error) {
	metrics := &Metrics{
		JobFrequencies: []JobFrequency{},
		HourHistogram:  make([]int, 24),
	}

	startTime := time.Now().Truncate(time.Minute)
	dayEnd := startTime.Add(OneDay)

	for _, entry := range entries {
		runs := c.walkForward(entry.Schedule, startTime, dayEnd)
		runsPerDay := len(runs)
		runsPerHour := 0
		hourEnd := startTime.Add(OneHour)
		for _, t := range runs {
			if t.Before(hourEnd) {
				runsPerHour++
			}
			metrics.HourHistogram[t.Hour()]++
		}

		metrics.JobFrequencies = append(metrics.JobFrequencies, JobFrequency{
			JobID:       entry.Name,
			RunsPerDay:  runsPerDay,
			RunsPerHour: runsPerHour,
		})
		metrics.TotalRunsPerDay += runsPerDay
		metrics.TotalRunsPerHour += runsPerHour
	}

	metrics.Collisions = c.CalculateCollisions(entries, timeWindow)
	return metrics, nil
}

// IdentifyMostFrequent returns the top N most frequent jobs.
func (c *Calculator) IdentifyMostFrequent(entries []check.NamedSchedule, topN int) []JobFrequency {
	metrics, _ := c.CalculateMetrics(entries, OneDay)
	frequencies := append([]JobFrequency(nil), metrics.JobFrequencies...)

	sort.Slice(frequencies, func(i, j int) bool {
		return frequencies[i].RunsPerDay > frequencies[j].RunsPerDay
	})

	if topN > 0 && topN < len(frequencies) {
		return frequencies[:topN]
	}
	return frequencies
}

// IdentifyLeastFrequent returns the top N least frequent jobs.
func (c *Calculator) IdentifyLeastFrequent(entries []check.NamedSchedule, topN int) []JobFrequency {
	frequencies := c.IdentifyMostFrequent(entries, 0)

	sort.Slice(frequencies, func(i, j int) bool {
		return frequencies[i].RunsPerDay < frequencies[j].RunsPerDay
	})

	if topN > 0 && topN < len(frequencies) {
		return frequencies[:topN]
	}
	return frequencies
}

// CalculateCollisions calculates collision statistics over timeWindow.
func (c *Calculator) CalculateCollisions(entries []check.NamedSchedule, timeWindow time.Duration) CollisionStats {
	stats := CollisionStats{
		BusiestHours: []HourStats{},
		QuietWindows: []TimeWindow{},
	}

	startTime := time.Now().Truncate(time.Minute)
	endTime := startTime.Add(timeWindow)

	minuteRuns := make(map[time.Time]int)
	for _, entry := range entries {
		for _, t := range c.walkForward(entry.Schedule, startTime, endTime) {
			minuteRuns[t.Truncate(time.Minute)]++
		}
	}

	hourRuns := make(map[int]int)
	for minute, count := range minuteRuns {
		hourRuns[minute.Hour()] += count
		if count > stats.MaxConcurrent {
			stats.MaxConcurrent = count
		}
	}

	for hour, count := range hourRuns {
		stats.BusiestHours = append(stats.BusiestHours, HourStats{Hour: hour, RunCount: count})
	}
	sort.Slice(stats.BusiestHours, func(i, j int) bool {
		return stats.BusiestHours[i].RunCount > stats.BusiestHours[j].RunCount
	})

	totalMinutes := int(timeWindow.Minutes())
	collisionMinutes := 0
	for _, count := range minuteRuns {
		if count > 1 {
			collisionMinutes++
		}
	}
	if totalMinutes > 0 {
		stats.CollisionFrequency = float64(collisionMinutes) / float64(totalMinutes) * 100.0
	}

	return stats
}

// IdentifyBusiestHours returns the busiest hours across a 24h window.
func (c *Calculator) IdentifyBusiestHours(entries []check.NamedSchedule) []HourStats {
	return c.CalculateCollisions(entries, OneDay).BusiestHours
}
