package doc

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Renderer formats a Document for display.
type Renderer interface {
	Render(doc *Document, w io.Writer) error
}

// MarkdownRenderer renders documents in Markdown format.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(doc *Document, w io.Writer) error {
	fmt.Fprintf(w, "# %s\n\n", doc.Title)
	fmt.Fprintf(w, "**Generated:** %s\n", doc.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "**Source:** %s\n\n", doc.Source)

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "- Total Jobs: %d\n", doc.Metadata.TotalJobs)
	fmt.Fprintf(w, "- Valid Jobs: %d\n", doc.Metadata.ValidJobs)
	fmt.Fprintf(w, "- Invalid Jobs: %d\n\n", doc.Metadata.InvalidJobs)

	fmt.Fprintf(w, "## Jobs\n\n")
	fmt.Fprintf(w, "| Name | Description | Handler |\n")
	fmt.Fprintf(w, "|------|-------------|---------|\n")
	for _, job := range doc.Jobs {
		fmt.Fprintf(w, "| %s | %s | `%s` |\n", job.Name, job.Description, job.Handler)
	}
	fmt.Fprintf(w, "\n")

	for _, job := range doc.Jobs {
		fmt.Fprintf(w, "### %s\n\n", job.Name)
		fmt.Fprintf(w, "**Schedule:** %s\n\n", job.Description)
		fmt.Fprintf(w, "**Handler:** `%s`\n\n", job.Handler)

		if len(job.NextRuns) > 0 {
			fmt.Fprintf(w, "**Next Runs:**\n\n")
			for i, t := range job.NextRuns {
				if i >= 10 {
					break
				}
				fmt.Fprintf(w, "- %s\n", t.Format(time.RFC3339))
			}
			fmt.Fprintf(w, "\n")
		}

		if len(job.Warnings) > 0 {
			fmt.Fprintf(w, "**Warnings:**\n\n")
			for _, warning := range job.Warnings {
				fmt.Fprintf(w, "- ⚠️ %s\n", warning)
			}
			fmt.Fprintf(w, "\n")
		}

		if job.Stats != nil {
			fmt.Fprintf(w, "**Statistics:**\n\n")
			fmt.Fprintf(w, "- Runs per day: %d\n", job.Stats.RunsPerDay)
			fmt.Fprintf(w, "- Runs per hour: %d\n\n", job.Stats.RunsPerHour)
		}
	}

	return nil
}

// HTMLRenderer renders documents in HTML format.
type HTMLRenderer struct{}

func (r *HTMLRenderer) Render(doc *Document, w io.Writer) error {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; margin: 40px; }
        h1 { color: #333; }
        h2 { color: #666; margin-top: 30px; }
        table { border-collapse: collapse; width: 100%%; margin: 20px 0; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        code { background-color: #f4f4f4; padding: 2px 4px; border-radius: 3px; }
        .warning { color: #ff9800; }
    </style>
</head>
<body>
`, doc.Title)

	fmt.Fprintf(w, "<h1>%s</h1>\n", doc.Title)
	fmt.Fprintf(w, "<p><strong>Generated:</strong> %s</p>\n", doc.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "<p><strong>Source:</strong> %s</p>\n", doc.Source)

	fmt.Fprintf(w, "<h2>Summary</h2>\n<ul>\n")
	fmt.Fprintf(w, "<li>Total Jobs: %d</li>\n", doc.Metadata.TotalJobs)
	fmt.Fprintf(w, "<li>Valid Jobs: %d</li>\n", doc.Metadata.ValidJobs)
	fmt.Fprintf(w, "<li>Invalid Jobs: %d</li>\n</ul>\n", doc.Metadata.InvalidJobs)

	fmt.Fprintf(w, "<h2>Jobs</h2>\n<table>\n<thead>\n<tr><th>Name</th><th>Description</th><th>Handler</th></tr>\n</thead>\n<tbody>\n")
	for _, job := range doc.Jobs {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%s</td><td><code>%s</code></td></tr>\n", job.Name, job.Description, job.Handler)
	}
	fmt.Fprintf(w, "</tbody>\n</table>\n")

	for _, job := range doc.Jobs {
		fmt.Fprintf(w, "<h3>%s</h3>\n", job.Name)
		fmt.Fprintf(w, "<p><strong>Schedule:</strong> %s</p>\n", job.Description)
		fmt.Fprintf(w, "<p><strong>Handler:</strong> <code>%s</code></p>\n", job.Handler)

		if len(job.NextRuns) > 0 {
			fmt.Fprintf(w, "<p><strong>Next Runs:</strong></p><ul>\n")
			for i, t := range job.NextRuns {
				if i >= 10 {
					break
				}
				fmt.Fprintf(w, "<li>%s</li>\n", t.Format(time.RFC3339))
			}
			fmt.Fprintf(w, "</ul>\n")
		}

		if len(job.Warnings) > 0 {
			fmt.Fprintf(w, "<p><strong>Warnings:</strong></p><ul class=\"warning\">\n")
			for _, warning := range job.Warnings {
				fmt.Fprintf(w, "<li>⚠️ %s</li>\n", warning)
			}
			fmt.Fprintf(w, "</ul>\n")
		}

		if job.Stats != nil {
			fmt.Fprintf(w, "<p><strong>Statistics:</strong></p><ul>\n")
			fmt.Fprintf(w, "<li>Runs per day: %d</li>\n", job.Stats.RunsPerDay)
			fmt.Fprintf(w, "<li>Runs per hour: %d</li>\n</ul>\n", job.Stats.RunsPerHour)
		}
	}

	fmt.Fprintf(w, "</body>\n</html>\n")
	return nil
}

// JSONRenderer renders documents in JSON format.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(doc *Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
