package diff

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hzerrad/cronsched/internal/manifest"
)

// Renderer formats a Diff for display.
type Renderer interface {
	Render(w io.Writer, d *Diff, options *RenderOptions) error
}

// RenderOptions configures how the diff is rendered.
type RenderOptions struct {
	ShowUnchanged bool
}

// TextRenderer renders a Diff in human-readable text format.
type TextRenderer struct{}

func (r *TextRenderer) Render(w io.Writer, d *Diff, options *RenderOptions) error {
	opts := options
	if opts == nil {
		opts = &RenderOptions{}
	}

	fmt.Fprintf(w, "Manifest Diff\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════════\n\n")

	if len(d.Added) > 0 {
		fmt.Fprintf(w, "Added Jobs (%d):\n", len(d.Added))
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────────\n")
		for _, change := range d.Added {
			fmt.Fprintf(w, "+ %s  %s  handler=%s\n", change.NewEntry.Name, scheduleString(*change.NewEntry), change.NewEntry.Handler)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(d.Removed) > 0 {
		fmt.Fprintf(w, "Removed Jobs (%d):\n", len(d.Removed))
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────────\n")
		for _, change := range d.Removed {
			fmt.Fprintf(w, "- %s  %s  handler=%s\n", change.OldEntry.Name, scheduleString(*change.OldEntry), change.OldEntry.Handler)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(d.Modified) > 0 {
		fmt.Fprintf(w, "Modified Jobs (%d):\n", len(d.Modified))
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────────\n")
		for _, change := range d.Modified {
			fmt.Fprintf(w, "~ %s\n", change.NewEntry.Name)
			fmt.Fprintf(w, "  Fields changed: %s\n", strings.Join(change.FieldsChanged, ", "))
			for _, field := range change.FieldsChanged {
				switch field {
				case "schedule":
					fmt.Fprintf(w, "    Old schedule: %s\n", scheduleString(*change.OldEntry))
					fmt.Fprintf(w, "    New schedule: %s\n", scheduleString(*change.NewEntry))
				case "handler":
					fmt.Fprintf(w, "    Old handler: %s\n", change.OldEntry.Handler)
					fmt.Fprintf(w, "    New handler: %s\n", change.NewEntry.Handler)
				case "persist":
					fmt.Fprintf(w, "    Old persist: %s\n", persistKey(change.OldEntry.Persist))
					fmt.Fprintf(w, "    New persist: %s\n", persistKey(change.NewEntry.Persist))
				case "timeout":
					fmt.Fprintf(w, "    Old timeout: %s\n", change.OldEntry.Timeout)
					fmt.Fprintf(w, "    New timeout: %s\n", change.NewEntry.Timeout)
				}
			}
		}
		fmt.Fprintf(w, "\n")
	}

	if opts.ShowUnchanged && len(d.Unchanged) > 0 {
		fmt.Fprintf(w, "Unchanged Jobs (%d):\n", len(d.Unchanged))
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────────\n")
		for _, change := range d.Unchanged {
			fmt.Fprintf(w, "  %s  %s\n", change.NewEntry.Name, scheduleString(*change.NewEntry))
		}
		fmt.Fprintf(w, "\n")
	}

	total := len(d.Added) + len(d.Removed) + len(d.Modified)
	if total == 0 {
		fmt.Fprintf(w, "No changes detected.\n")
	} else {
		fmt.Fprintf(w, "Summary: %d added, %d removed, %d modified\n", len(d.Added), len(d.Removed), len(d.Modified))
	}

	return nil
}

// scheduleString renders whichever schedule field is set on e as a
// short display string.
func scheduleString(e manifest.Entry) string {
	return scheduleKey(e)
}

func rawScheduleString(e *manifest.Entry) string {
	if e == nil {
		return ""
	}
	return scheduleKey(*e)
}

// JSONRenderer renders a Diff as JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, d *Diff, options *RenderOptions) error {
	opts := options
	if opts == nil {
		opts = &RenderOptions{}
	}

	type entryJSON struct {
		Name     string `json:"name"`
		Schedule string `json:"schedule"`
		Handler  string `json:"handler"`
	}
	type changeJSON struct {
		Type          string    `json:"type"`
		Name          string    `json:"name"`
		Entry         entryJSON `json:"entry"`
		FieldsChanged []string  `json:"fieldsChanged,omitempty"`
		OldEntry      entryJSON `json:"oldEntry,omitempty"`
	}
	type diffJSON struct {
		Added       []changeJSON   `json:"added"`
		Removed     []changeJSON   `json:"removed"`
		Modified    []changeJSON   `json:"modified"`
		Unchanged   []changeJSON   `json:"unchanged,omitempty"`
		Summary     map[string]int `json:"summary"`
		GeneratedAt string         `json:"generatedAt"`
	}

	toEntryJSON := func(e *manifest.Entry) entryJSON {
		if e == nil {
			return entryJSON{}
		}
		return entryJSON{Name: e.Name, Schedule: rawScheduleString(e), Handler: e.Handler}
	}

	result := diffJSON{
		Added:     []changeJSON{},
		Removed:   []changeJSON{},
		Modified:  []changeJSON{},
		Unchanged: []changeJSON{},
		Summary: map[string]int{
			"added":    len(d.Added),
			"removed":  len(d.Removed),
			"modified": len(d.Modified),
		},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, change := range d.Added {
		result.Added = append(result.Added, changeJSON{Type: "added", Name: change.NewEntry.Name, Entry: toEntryJSON(change.NewEntry)})
	}
	for _, change := range d.Removed {
		result.Removed = append(result.Removed, changeJSON{Type: "removed", Name: change.OldEntry.Name, Entry: toEntryJSON(change.OldEntry)})
	}
	for _, change := range d.Modified {
		result.Modified = append(result.Modified, changeJSON{
			Type:          "modified",
			Name:          change.NewEntry.Name,
			Entry:         toEntryJSON(change.NewEntry),
			OldEntry:      toEntryJSON(change.OldEntry),
			FieldsChanged: change.FieldsChanged,
		})
	}
	if opts.ShowUnchanged {
		for _, change := range d.Unchanged {
			result.Unchanged = append(result.Unchanged, changeJSON{Type: "unchanged", Name: change.NewEntry.Name, Entry: toEntryJSON(change.NewEntry)})
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// UnifiedRenderer renders a Diff in unified diff format, for piping
// into standard patch/diff tooling.
type UnifiedRenderer struct{}

func (r *UnifiedRenderer) Render(w io.Writer, d *Diff, options *RenderOptions) error {
	fmt.Fprintf(w, "--- old manifest\n")
	fmt.Fprintf(w, "+++ new manifest\n")
	fmt.Fprintf(w, "@@ -1 +1 @@\n")

	for _, change := range d.Removed {
		fmt.Fprintf(w, "-%s %s handler=%s\n", change.OldEntry.Name, rawScheduleString(change.OldEntry), change.OldEntry.Handler)
	}
	for _, change := range d.Added {
		fmt.Fprintf(w, "+%s %s handler=%s\n", change.NewEntry.Name, rawScheduleString(change.NewEntry), change.NewEntry.Handler)
	}
	for _, change := range d.Modified {
		fmt.Fprintf(w, "-%s %s handler=%s\n", change.OldEntry.Name, rawScheduleString(change.OldEntry), change.OldEntry.Handler)
		fmt.Fprintf(w, "+%s %s handler=%s\n", change.NewEntry.Name, rawScheduleString(change.NewEntry), change.NewEntry.Handler)
	}

	return nil
}

// NewRenderer creates a renderer based on format name.
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "text", "":
		return &TextRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "unified":
		return &UnifiedRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: text, json, unified)", format)
	}
}
