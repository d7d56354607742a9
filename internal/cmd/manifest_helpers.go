package cmd

import (
	"fmt"

	"github.com/hzerrad/cronsched/internal/check"
	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/manifest"
)

// loadManifest reads and parses a manifest file from path.
func loadManifest(path string) (*manifest.Manifest, error) {
	reader := manifest.NewReader()
	m, err := reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return m, nil
}

// entrySchedule pairs a manifest entry with its resolved schedule, or
// the error that resolving it produced.
type entrySchedule struct {
	Entry manifest.Entry
	check.NamedSchedule
	Err error
}

// resolveEntries resolves every entry in m against parser, returning
// one entrySchedule per entry in manifest order. Callers that only
// want the ones that resolved cleanly should filter on Err == nil.
func resolveEntries(m *manifest.Manifest, parser cronx.Parser) []entrySchedule {
	out := make([]entrySchedule, 0, len(m.Jobs))
	for _, entry := range m.Jobs {
		sched, err := entry.Schedule(parser)
		es := entrySchedule{Entry: entry, Err: err}
		es.Name = entry.Name
		es.Schedule = sched
		out = append(out, es)
	}
	return out
}

// namedSchedules resolves every entry in m, dropping any whose
// schedule fails to resolve.
func namedSchedules(m *manifest.Manifest, parser cronx.Parser) []check.NamedSchedule {
	resolved := resolveEntries(m, parser)
	out := make([]check.NamedSchedule, 0, len(resolved))
	for _, r := range resolved {
		if r.Err == nil {
			out = append(out, r.NamedSchedule)
		}
	}
	return out
}
