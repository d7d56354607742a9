package cmd

import (
	"fmt"

	"github.com/hzerrad/cronsched/internal/diff"
	"github.com/spf13/cobra"
)

type DiffCommand struct {
	*cobra.Command
	oldFile       string
	newFile       string
	format        string
	json          bool
	showUnchanged bool
}

func newDiffCommand() *DiffCommand {
	dc := &DiffCommand{}
	dc.Command = &cobra.Command{
		Use:   "diff [old-file] [new-file]",
		Short: "Compare manifests semantically",
		Long: `Compare two manifests semantically, showing what actually changed.

This command performs semantic comparison (not just line-by-line), identifying:
  - Jobs added, removed, or modified
  - Schedule changes (interval, daily, or cron fields)
  - Handler changes
  - Persist/timeout changes

Examples:
  cronsched diff old.yaml new.yaml
  cronsched diff --old-file old.yaml --new-file new.yaml --json
  cronsched diff old.yaml new.yaml --format unified`,
		RunE: dc.runDiff,
		Args: cobra.MaximumNArgs(2),
	}

	dc.Flags().StringVar(&dc.oldFile, "old-file", "", "Path to old manifest file")
	dc.Flags().StringVar(&dc.newFile, "new-file", "", "Path to new manifest file")
	dc.Flags().StringVar(&dc.format, "format", "text", "Output format: 'text' (default), 'json', or 'unified'")
	dc.Flags().BoolVarP(&dc.json, "json", "j", false, "Output in JSON format (shorthand for --format json)")
	dc.Flags().BoolVar(&dc.showUnchanged, "show-unchanged", false, "Show unchanged jobs (default: false)")

	return dc
}

func init() {
	rootCmd.AddCommand(newDiffCommand().Command)
}

func (dc *DiffCommand) runDiff(_ *cobra.Command, args []string) error {
	oldPath := dc.oldFile
	if oldPath == "" && len(args) >= 1 {
		oldPath = args[0]
	}
	if oldPath == "" {
		return fmt.Errorf("must specify old manifest source (--old-file or positional argument)")
	}

	newPath := dc.newFile
	if newPath == "" && len(args) >= 2 {
		newPath = args[1]
	} else if newPath == "" && len(args) == 1 && dc.oldFile != "" {
		newPath = args[0]
	}
	if newPath == "" {
		return fmt.Errorf("must specify new manifest source (--new-file or positional argument)")
	}

	oldManifest, err := loadManifest(oldPath)
	if err != nil {
		return fmt.Errorf("failed to read old manifest: %w", err)
	}

	newManifest, err := loadManifest(newPath)
	if err != nil {
		return fmt.Errorf("failed to read new manifest: %w", err)
	}

	result := diff.CompareManifests(oldManifest, newManifest)

	outputFormat := dc.format
	if dc.json {
		outputFormat = "json"
	}

	renderer, err := diff.NewRenderer(outputFormat)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	options := &diff.RenderOptions{
		ShowUnchanged: dc.showUnchanged,
	}

	output := dc.OutOrStdout()
	if err := renderer.Render(output, result, options); err != nil {
		return fmt.Errorf("failed to render diff: %w", err)
	}

	return nil
}
