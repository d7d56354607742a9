package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/human"
	"github.com/hzerrad/cronsched/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	listFile string
	listJSON bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List and summarize jobs from a manifest file",
	Long: `Parse and display the jobs declared in a manifest file.

Examples:
  cronsched list --file manifest.yaml           # List jobs in a manifest
  cronsched list --file manifest.yaml --json    # Output as JSON`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFile, "file", "f", "", "Path to manifest file (required)")
	listCmd.Flags().BoolVarP(&listJSON, "json", "j", false, "Output in JSON format")
	_ = listCmd.MarkFlagRequired("file")
}

// newListCommand creates a new list command for testing
func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List and summarize jobs from a manifest file",
		Long: `Parse and display the jobs declared in a manifest file.

Examples:
  cronsched list --file manifest.yaml           # List jobs in a manifest
  cronsched list --file manifest.yaml --json    # Output as JSON`,
		RunE: runList,
	}

	cmd.Flags().StringVarP(&listFile, "file", "f", "", "Path to manifest file (required)")
	cmd.Flags().BoolVarP(&listJSON, "json", "j", false, "Output in JSON format")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	m, err := loadManifest(listFile)
	if err != nil {
		return err
	}

	parser := cronx.NewParserWithLocale(GetLocale())
	resolved := resolveEntries(m, parser)

	if len(resolved) == 0 {
		if listJSON {
			return encodeJSON(cmd, map[string]interface{}{"jobs": []interface{}{}})
		}
		cmd.Println("No jobs found")
		return nil
	}

	if listJSON {
		return outputJobsJSON(cmd, resolved)
	}

	return outputJobsTable(cmd, resolved)
}

func outputJobsJSON(cmd *cobra.Command, resolved []entrySchedule) error {
	type jobOutput struct {
		Name        string `json:"name"`
		Schedule    string `json:"schedule"`
		Description string `json:"description,omitempty"`
		Handler     string `json:"handler,omitempty"`
		Error       string `json:"error,omitempty"`
	}

	output := make([]jobOutput, 0, len(resolved))
	for _, r := range resolved {
		jo := jobOutput{Name: r.Entry.Name, Schedule: rawScheduleOf(r.Entry), Handler: r.Entry.Handler}
		if r.Err != nil {
			jo.Error = r.Err.Error()
		} else {
			jo.Description = human.HumanizeSchedule(r.Schedule)
		}
		output = append(output, jo)
	}

	return encodeJSON(cmd, map[string]interface{}{
		"jobs":   output,
		"locale": GetLocale(),
	})
}

func outputJobsTable(cmd *cobra.Command, resolved []entrySchedule) error {
	cmd.Println("NAME                  SCHEDULE                        DESCRIPTION                          HANDLER")
	cmd.Println("────────────────────  ──────────────────────────────  ───────────────────────────────────  ────────────────────────")

	for _, r := range resolved {
		description := ""
		if r.Err != nil {
			description = "(invalid: " + r.Err.Error() + ")"
		} else {
			description = human.HumanizeSchedule(r.Schedule)
		}

		if len(description) > 36 {
			description = description[:33] + "..."
		}

		schedule := rawScheduleOf(r.Entry)
		if len(schedule) > 30 {
			schedule = schedule[:27] + "..."
		}

		cmd.Printf("%-20s  %-30s  %-36s  %s\n", r.Entry.Name, schedule, description, r.Entry.Handler)
	}

	return nil
}

// rawScheduleOf renders whichever of an entry's schedule fields is
// set, in the shape it was written in the manifest.
func rawScheduleOf(e manifest.Entry) string {
	switch {
	case e.Interval != nil:
		return fmt.Sprintf("every %d %s", e.Interval.Every, e.Interval.Unit)
	case e.Daily != nil:
		return fmt.Sprintf("daily at %s", e.Daily.At)
	case e.Cron != "":
		return e.Cron
	default:
		return "(none)"
	}
}

func encodeJSON(cmd *cobra.Command, data interface{}) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
