package check

import (
	"sort"
	"time"

	"github.com/hzerrad/cronsched/internal/schedule"
)

// Overlap represents multiple jobs firing at the same minute.
type Overlap struct {
	Time   time.Time
	Count  int
	JobIDs []string
}

// OverlapStats contains statistics about job overlaps.
type OverlapStats struct {
	TotalWindows    int
	MaxConcurrent   int
	MostProblematic []Overlap // Top N overlaps sorted by count
}

// maxRunsPerJob bounds how many times AnalyzeOverlaps steps a single
// job's schedule forward, so a schedule with an effectively unbounded
// firing rate inside timeWindow can't loop indefinitely.
const maxRunsPerJob = 20000

// AnalyzeOverlaps walks every entry's schedule forward from now through
// timeWindow and reports which minutes two or more jobs are scheduled
// to fire in. Unlike a cron-only analysis, this dispatches across all
// three schedule shapes via schedule.NextAfter, so an Interval or Daily
// job can overlap with a Cron job or with each other.
func AnalyzeOverlaps(entries []NamedSchedule, timeWindow time.Duration, utc bool) ([]Overlap, OverlapStats, error) {
	if len(entries) == 0 {
		return []Overlap{}, OverlapStats{}, nil
	}

	startTime := time.Now().Truncate(time.Minute)
	endTime := startTime.Add(timeWindow)

	type jobRun struct {
		time  time.Time
		jobID string
	}
	var allRuns []jobRun

	for _, entry := range entries {
		current := startTime
		for i := 0; i < maxRunsPerJob; i++ {
			next, err := schedule.NextAfter(entry.Schedule, current, utc)
			if err != nil {
				break // skip schedules that can't be evaluated
			}
			if !next.Before(endTime) {
				break
			}
			allRuns = append(allRuns, jobRun{time: next.Truncate(time.Minute), jobID: entry.Name})
			current = next
		}
	}

	overlapMap := make(map[time.Time][]string)
	for _, run := range allRuns {
		overlapMap[run.time] = append(overlapMap[run.time], run.jobID)
	}

	var overlaps []Overlap
	for t, jobIDs := range overlapMap {
		uniqueJobs := uniqueStrings(jobIDs)
		if len(uniqueJobs) > 1 {
			overlaps = append(overlaps, Overlap{Time: t, Count: len(uniqueJobs), JobIDs: uniqueJobs})
		}
	}

	sort.Slice(overlaps, func(i, j int) bool {
		if overlaps[i].Count != overlaps[j].Count {
			return overlaps[i].Count > overlaps[j].Count
		}
		return overlaps[i].Time.Before(overlaps[j].Time)
	})

	stats := OverlapStats{TotalWindows: len(overlaps)}
	if len(overlaps) > 0 {
		stats.MaxConcurrent = overlaps[0].Count
		topN := 10
		if len(overlaps) < topN {
			topN = len(overlaps)
		}
		stats.MostProblematic = overlaps[:topN]
	}

	return overlaps, stats, nil
}

func uniqueStrings(strs []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, s := range strs {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}
