// Package budget checks a set of named schedules against concurrency
// budget rules: how many jobs are allowed to fire within the same
// time window before it counts as a violation.
package budget

import (
	"fmt"
	"sort"
	"time"

	"github.com/hzerrad/cronsched/internal/check"
	"github.com/hzerrad/cronsched/internal/schedule"
)

// maxRunsPerJob bounds how many times analyzeSingleBudget steps a
// single schedule forward, mirroring check.AnalyzeOverlaps' cap.
const maxRunsPerJob = 20000

// Budget represents a concurrency budget rule.
type Budget struct {
	MaxConcurrent int
	TimeWindow    time.Duration
	Name          string
}

// Violation represents a budget violation at a specific time.
type Violation struct {
	Time   time.Time
	Count  int
	Jobs   []string
	Budget Budget
}

// BudgetResult represents the analysis result for a single budget.
type BudgetResult struct {
	Budget     Budget
	MaxFound   int
	Passed     bool
	Violations []Violation
}

// BudgetReport represents the complete budget analysis report.
type BudgetReport struct {
	Budgets    []BudgetResult
	Passed     bool
	Violations []Violation
}

// AnalyzeBudget analyzes a set of named schedules against budget
// rules. utc selects which zone each schedule is evaluated in.
func AnalyzeBudget(entries []check.NamedSchedule, budgets []Budget, utc bool) (*BudgetReport, error) {
	if len(budgets) == 0 {
		return nil, fmt.Errorf("no budgets specified")
	}

	report := &BudgetReport{
		Budgets:    []BudgetResult{},
		Passed:     true,
		Violations: []Violation{},
	}

	for _, b := range budgets {
		result, err := analyzeSingleBudget(entries, b, utc)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze budget %s: %w", b.Name, err)
		}

		report.Budgets = append(report.Budgets, *result)
		if !result.Passed {
			report.Passed = false
		}
		report.Violations = append(report.Violations, result.Violations...)
	}

	return report, nil
}

// analyzeSingleBudget analyzes entries against a single budget rule.
func analyzeSingleBudget(entries []check.NamedSchedule, b Budget, utc bool) (*BudgetResult, error) {
	result := &BudgetResult{Budget: b, Passed: true, Violations: []Violation{}}

	if len(entries) == 0 {
		return result, nil
	}

	startTime := time.Now().Truncate(time.Minute)
	endTime := startTime.Add(b.TimeWindow)

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
				break
			}
			if !next.Before(endTime) {
				break
			}
			allRuns = append(allRuns, jobRun{time: next.Truncate(time.Minute), jobID: entry.Name})
			current = next
		}
	}

	timeMap := make(map[time.Time]map[string]bool)
	for _, run := range allRuns {
		if timeMap[run.time] == nil {
			timeMap[run.time] = make(map[string]bool)
		}
		timeMap[run.time][run.jobID] = true
	}

	for t, jobs := range timeMap {
		count := len(jobs)
		if count > result.MaxFound {
			result.MaxFound = count
		}
		if count > b.MaxConcurrent {
			jobList := make([]string, 0, len(jobs))
			for jobID := range jobs {
				jobList = append(jobList, jobID)
			}
			result.Violations = append(result.Violations, Violation{
				Time:   t,
				Count:  count,
				Jobs:   jobList,
				Budget: b,
			})
		}
	}

	if result.MaxFound == 0 && len(entries) > 0 {
		result.MaxFound = len(entries)
	}

	if result.MaxFound > b.MaxConcurrent {
		result.Passed = false
	} else {
		result.Violations = []Violation{}
	}

	sort.Slice(result.Violations, func(i, j int) bool {
		return result.Violations[i].Time.Before(result.Violations[j].Time)
	})

	return result, nil
}
