// Package diff computes the semantic differences between two job
// manifests: which job entries were added, removed, or modified, and
// which fields of a modified entry changed.
package diff

import (
	"fmt"
	"strings"

	"github.com/hzerrad/cronsched/internal/manifest"
)

// ChangeType represents the type of change detected.
type ChangeType int

const (
	ChangeTypeUnchanged ChangeType = iota
	ChangeTypeAdded
	ChangeTypeRemoved
	ChangeTypeModified
)

// Change represents a change to a single job entry between two
// manifests.
type Change struct {
	Type          ChangeType
	OldEntry      *manifest.Entry
	NewEntry      *manifest.Entry
	FieldsChanged []string
}

// Diff represents the semantic differences between two manifests.
type Diff struct {
	Added     []Change
	Removed   []Change
	Modified  []Change
	Unchanged []Change
}

// CompareManifests compares two manifests by entry name and returns a
// Diff. Entries are matched by Name, not by position, so reordering
// jobs in the file never shows up as a change.
func CompareManifests(oldManifest, newManifest *manifest.Manifest) *Diff {
	d := &Diff{
		Added:     []Change{},
		Removed:   []Change{},
		Modified:  []Change{},
		Unchanged: []Change{},
	}

	oldMap := entriesByName(oldManifest)
	newMap := entriesByName(newManifest)

	for name, newEntry := range newMap {
		if _, exists := oldMap[name]; !exists {
			e := newEntry
			d.Added = append(d.Added, Change{Type: ChangeTypeAdded, NewEntry: &e})
		}
	}

	for name, oldEntry := range oldMap {
		if _, exists := newMap[name]; !exists {
			e := oldEntry
			d.Removed = append(d.Removed, Change{Type: ChangeTypeRemoved, OldEntry: &e})
		}
	}

	for name, newEntry := range newMap {
		oldEntry, exists := oldMap[name]
		if !exists {
			continue
		}
		oldCopy, newCopy := oldEntry, newEntry
		fieldsChanged := detectFieldChanges(oldEntry, newEntry)
		if len(fieldsChanged) > 0 {
			d.Modified = append(d.Modified, Change{
				Type:          ChangeTypeModified,
				OldEntry:      &oldCopy,
				NewEntry:      &newCopy,
				FieldsChanged: fieldsChanged,
			})
		} else {
			d.Unchanged = append(d.Unchanged, Change{Type: ChangeTypeUnchanged, OldEntry: &oldCopy, NewEntry: &newCopy})
		}
	}

	return d
}

func entriesByName(m *manifest.Manifest) map[string]manifest.Entry {
	out := make(map[string]manifest.Entry)
	if m == nil {
		return out
	}
	for _, e := range m.Jobs {
		out[e.Name] = e
	}
	return out
}

// detectFieldChanges detects which fields changed between two entries
// sharing the same name.
func detectFieldChanges(oldEntry, newEntry manifest.Entry) []string {
	var fields []string

	if scheduleKey(oldEntry) != scheduleKey(newEntry) {
		fields = append(fields, "schedule")
	}
	if strings.TrimSpace(oldEntry.Handler) != strings.TrimSpace(newEntry.Handler) {
		fields = append(fields, "handler")
	}
	if persistKey(oldEntry.Persist) != persistKey(newEntry.Persist) {
		fields = append(fields, "persist")
	}
	if strings.TrimSpace(oldEntry.Timeout) != strings.TrimSpace(newEntry.Timeout) {
		fields = append(fields, "timeout")
	}

	return fields
}

// scheduleKey renders the one schedule field an entry sets as a
// comparable string, regardless of which shape it is.
func scheduleKey(e manifest.Entry) string {
	switch {
	case e.Interval != nil:
		return fmt.Sprintf("interval:%d:%s:%v", e.Interval.Every, e.Interval.Unit, e.Interval.Aligned)
	case e.Daily != nil:
		return fmt.Sprintf("daily:%s", e.Daily.At)
	case e.Cron != "":
		return fmt.Sprintf("cron:%s", e.Cron)
	default:
		return "none"
	}
}

func persistKey(p *bool) string {
	if p == nil {
		return "default"
	}
	if *p {
		return "true"
	}
	return "false"
}
