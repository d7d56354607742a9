// Package manifest loads a declarative set of job definitions from a
// YAML file — the bulk-configuration counterpart to building up a Cron
// one Add call at a time. A manifest entry names a handler by string
// rather than embedding Go code, so the caller supplies the actual
// executor.Job implementations via a handler table at Apply time.
package manifest

import (
	"fmt"
	"os"
	"time"

	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/executor"
	"github.com/hzerrad/cronsched/internal/registry"
	"github.com/hzerrad/cronsched/internal/schedule"
	"github.com/hzerrad/cronsched/internal/scheduling"
	"gopkg.in/yaml.v3"
)

// RawInterval is the YAML shape of an interval schedule.
type RawInterval struct {
	Every   int    `yaml:"every"`
	Unit    string `yaml:"unit"`
	Aligned bool   `yaml:"aligned"`
}

// RawDaily is the YAML shape of a daily time-of-day schedule.
type RawDaily struct {
	At string `yaml:"at"`
}

// Entry is one job definition in a manifest file. Exactly one of
// Interval, Daily, or Cron must be set.
type Entry struct {
	Name     string       `yaml:"name"`
	Interval *RawInterval `yaml:"interval,omitempty"`
	Daily    *RawDaily    `yaml:"daily,omitempty"`
	Cron     string       `yaml:"cron,omitempty"`
	Handler  string       `yaml:"handler"`
	Persist  *bool        `yaml:"persist,omitempty"`
	Timeout  string       `yaml:"timeout,omitempty"`
}

// Manifest is a parsed job manifest file.
type Manifest struct {
	Jobs []Entry `yaml:"jobs"`
}

// Reader reads manifest files.
type Reader interface {
	ReadFile(path string) (*Manifest, error)
}

type reader struct{}

// NewReader creates a manifest Reader.
func NewReader() Reader {
	return &reader{}
}

func (r *reader) ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to read file: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: failed to parse YAML: %w", err)
	}
	return &m, nil
}

// ErrNoScheduleSpecified is returned when an entry names none of
// interval, daily, or cron.
var ErrNoScheduleSpecified = fmt.Errorf("manifest: entry has no schedule (interval, daily, or cron)")

// ErrMultipleSchedulesSpecified is returned when an entry names more
// than one schedule shape.
var ErrMultipleSchedulesSpecified = fmt.Errorf("manifest: entry names more than one schedule")

// ErrUnknownHandler is returned by Apply when an entry's Handler is not
// present in the supplied handler table.
var ErrUnknownHandler = fmt.Errorf("manifest: no handler registered for entry")

// ErrNameRequired is returned when an entry has no name.
var ErrNameRequired = fmt.Errorf("manifest: entry name is required")

// resolveSchedule converts an entry's raw schedule fields into a
// schedule.Schedule, parsing any cron expression with parser.
func resolveSchedule(e Entry, parser cronx.Parser) (schedule.Schedule, error) {
	set := 0
	if e.Interval != nil {
		set++
	}
	if e.Daily != nil {
		set++
	}
	if e.Cron != "" {
		set++
	}
	switch {
	case set == 0:
		return nil, fmt.Errorf("%w: %q", ErrNoScheduleSpecified, e.Name)
	case set > 1:
		return nil, fmt.Errorf("%w: %q", ErrMultipleSchedulesSpecified, e.Name)
	}

	switch {
	case e.Interval != nil:
		return schedule.Interval{Interval: scheduling.Interval{
			Every:   e.Interval.Every,
			Unit:    scheduling.Unit(e.Interval.Unit),
			Aligned: e.Interval.Aligned,
		}}, nil
	case e.Daily != nil:
		return schedule.Daily{Daily: scheduling.Daily{At: e.Daily.At}}, nil
	default:
		return schedule.NewCron(parser, e.Cron)
	}
}

// Schedule resolves e's raw schedule fields into a schedule.Schedule,
// without requiring a handler. Useful for tooling (doc generation,
// statistics, linting) that only cares about when a job runs.
func (e Entry) Schedule(parser cronx.Parser) (schedule.Schedule, error) {
	return resolveSchedule(e, parser)
}

// ToJobConfig resolves e into a registry.JobConfig, looking up its
// handler in handlers and parsing its cron expression (if any) with
// parser. Persist defaults to true, matching registry.NewJobConfig.
func (e Entry) ToJobConfig(parser cronx.Parser, handlers map[string]executor.Job) (registry.JobConfig, error) {
	if e.Name == "" {
		return registry.JobConfig{}, ErrNameRequired
	}

	sched, err := resolveSchedule(e, parser)
	if err != nil {
		return registry.JobConfig{}, err
	}

	job, ok := handlers[e.Handler]
	if !ok {
		return registry.JobConfig{}, fmt.Errorf("%w: %q wants handler %q", ErrUnknownHandler, e.Name, e.Handler)
	}

	config := registry.NewJobConfig(e.Name, sched, job)
	if e.Persist != nil {
		config.Persist = *e.Persist
	}
	if e.Timeout != "" {
		timeout, err := time.ParseDuration(e.Timeout)
		if err != nil {
			return registry.JobConfig{}, fmt.Errorf("manifest: entry %q has invalid timeout: %w", e.Name, err)
		}
		config.Timeout = timeout
	}
	return config, nil
}

// Registrar is the subset of *registry.Registry (or *cronsched.Cron)
// that Apply needs.
type Registrar interface {
	Add(registry.JobConfig) error
}

// Apply resolves every entry in m against parser and handlers, then
// registers each on dst. It stops at the first error; entries already
// added before that point remain registered.
func Apply(m *Manifest, dst Registrar, parser cronx.Parser, handlers map[string]executor.Job) error {
	for _, entry := range m.Jobs {
		config, err := entry.ToJobConfig(parser, handlers)
		if err != nil {
			return err
		}
		if err := dst.Add(config); err != nil {
			return fmt.Errorf("manifest: failed to add %q: %w", entry.Name, err)
		}
	}
	return nil
}
