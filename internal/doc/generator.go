// Package doc generates human-readable documentation — Markdown,
// HTML, or JSON — describing the jobs in a manifest: their schedule
// in plain English, upcoming run times, linting warnings, and
// frequency statistics.
package doc

import (
	"time"

	"github.com/hzerrad/cronsched/internal/check"
	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/human"
	"github.com/hzerrad/cronsched/internal/manifest"
	"github.com/hzerrad/cronsched/internal/schedule"
	"github.com/hzerrad/cronsched/internal/stats"
)

// Generator generates documentation from a job manifest.
type Generator struct {
	parser    cronx.Parser
	scheduler cronx.Scheduler
	validator *check.Validator
}

// NewGenerator creates a new documentation generator using locale for
// parsing cron expressions (month/weekday names, @-aliases).
func NewGenerator(locale string) *Generator {
	return &Generator{
		parser:    cronx.NewParserWithLocale(locale),
		scheduler: cronx.NewScheduler(),
		validator: check.NewValidator(),
	}
}

// Document represents a complete documentation structure.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Source      string
	Jobs        []JobDocument
	Metadata    Metadata
}

// JobDocument represents documentation for a single job.
type JobDocument struct {
	Name        string
	Description string
	Handler     string
	NextRuns    []time.Time
	Warnings    []string
	Stats       *JobStats
}

// JobStats contains frequency statistics for a job.
type JobStats struct {
	RunsPerDay  int
	RunsPerHour int
}

// Metadata contains additional document metadata.
type Metadata struct {
	TotalJobs   int
	ValidJobs   int
	InvalidJobs int
}

// GenerateOptions contains options for document generation.
type GenerateOptions struct {
	IncludeNext     int // Number of next runs to include (0 = disabled)
	IncludeWarnings bool
	IncludeStats    bool
}

// GenerateDocument generates documentation from a manifest's entries.
func (g *Generator) GenerateDocument(m *manifest.Manifest, source string, options GenerateOptions) (*Document, error) {
	doc := &Document{
		Title:       "Job Manifest Documentation",
		GeneratedAt: time.Now(),
		Source:      source,
		Jobs:        []JobDocument{},
	}

	for _, entry := range m.Jobs {
		doc.Metadata.TotalJobs++

		jobDoc := JobDocument{Name: entry.Name, Handler: entry.Handler}

		sched, err := entry.Schedule(g.parser)
		if err != nil {
			doc.Metadata.InvalidJobs++
			jobDoc.Description = "Invalid schedule: " + err.Error()
			doc.Jobs = append(doc.Jobs, jobDoc)
			continue
		}
		doc.Metadata.ValidJobs++

		jobDoc.Description = human.HumanizeSchedule(sched)

		if options.IncludeNext > 0 {
			jobDoc.NextRuns = g.nextRuns(sched, options.IncludeNext)
		}

		if options.IncludeWarnings {
			result := g.validator.ValidateEntry(entry.Name, sched)
			for _, issue := range result.Issues {
				jobDoc.Warnings = append(jobDoc.Warnings, issue.Message)
			}
		}

		if options.IncludeStats {
			calc := stats.NewCalculator()
			metrics, err := calc.CalculateMetrics([]check.NamedSchedule{{Name: entry.Name, Schedule: sched}}, stats.OneDay)
			if err == nil && len(metrics.JobFrequencies) == 1 {
				jobDoc.Stats = &JobStats{
					RunsPerDay:  metrics.JobFrequencies[0].RunsPerDay,
					RunsPerHour: metrics.JobFrequencies[0].RunsPerHour,
				}
			}
		}

		doc.Jobs = append(doc.Jobs, jobDoc)
	}

	return doc, nil
}

// nextRuns walks sched forward from now, returning up to n firing
// instants.
func (g *Generator) nextRuns(sched schedule.Schedule, n int) []time.Time {
	var times []time.Time
	current := time.Now()
	for i := 0; i < n; i++ {
		next, err := schedule.NextAfter(sched, current, false)
		if err != nil {
			break
		}
		times = append(times, next)
		current = next
	}
	return times
}
