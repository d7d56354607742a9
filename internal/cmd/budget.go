package cmd

import (
	"fmt"
	"time"

	"github.com/hzerrad/cronsched/internal/budget"
	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/spf13/cobra"
)

type BudgetCommand struct {
	*cobra.Command
	file          string
	maxConcurrent int
	window        string
	enforce       bool
	json          bool
	verbose       bool
	utc           bool
}

func newBudgetCommand() *BudgetCommand {
	bc := &BudgetCommand{}
	bc.Command = &cobra.Command{
		Use:   "budget",
		Short: "Analyze a manifest against concurrency budgets",
		Long: `Analyze manifest jobs against concurrency budgets to prevent resource exhaustion.

This command checks if the manifest violates concurrency limits by analyzing
how many jobs run simultaneously within a given time window.

Examples:
  cronsched budget --file manifest.yaml --max-concurrent 10 --window 1m
  cronsched budget --file manifest.yaml --max-concurrent 50 --window 1h --json
  cronsched budget --file manifest.yaml --max-concurrent 10 --window 1m --enforce
  cronsched budget --file manifest.yaml --max-concurrent 5 --window 1h --verbose`,
		RunE: bc.runBudget,
		Args: cobra.NoArgs,
	}

	bc.Flags().StringVarP(&bc.file, "file", "f", "", "Path to manifest file (required)")
	bc.Flags().IntVar(&bc.maxConcurrent, "max-concurrent", 0, "Maximum concurrent jobs allowed (required)")
	bc.Flags().StringVar(&bc.window, "window", "", "Time window for budget (e.g., 1m, 1h, 24h) (required)")
	bc.Flags().BoolVar(&bc.enforce, "enforce", false, "Exit with error code if budget is violated (default: report only)")
	bc.Flags().BoolVarP(&bc.json, "json", "j", false, "Output in JSON format")
	bc.Flags().BoolVarP(&bc.verbose, "verbose", "v", false, "Show detailed violation information")
	bc.Flags().BoolVar(&bc.utc, "utc", false, "Evaluate schedules in UTC instead of local time")
	_ = bc.MarkFlagRequired("file")

	return bc
}

func init() {
	rootCmd.AddCommand(newBudgetCommand().Command)
}

func (bc *BudgetCommand) runBudget(_ *cobra.Command, _ []string) error {
	if bc.maxConcurrent <= 0 {
		return fmt.Errorf("--max-concurrent must be greater than 0")
	}
	if bc.window == "" {
		return fmt.Errorf("--window is required (e.g., 1m, 1h, 24h)")
	}

	timeWindow, err := time.ParseDuration(bc.window)
	if err != nil {
		return fmt.Errorf("invalid --window duration: %w (expected format: 1m, 1h, 24h, etc.)", err)
	}

	m, err := loadManifest(bc.file)
	if err != nil {
		return err
	}

	parser := cronx.NewParserWithLocale(GetLocale())
	entries := namedSchedules(m, parser)

	budgets := []budget.Budget{
		{
			MaxConcurrent: bc.maxConcurrent,
			TimeWindow:    timeWindow,
			Name:          fmt.Sprintf("max-%d-per-%s", bc.maxConcurrent, bc.window),
		},
	}

	report, err := budget.AnalyzeBudget(entries, budgets, bc.utc)
	if err != nil {
		return fmt.Errorf("failed to analyze budget: %w", err)
	}

	format := "text"
	if bc.json {
		format = "json"
	}

	renderer, err := budget.NewRenderer(format, bc.verbose)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	output := bc.OutOrStdout()
	if err := renderer.Render(output, report); err != nil {
		return fmt.Errorf("failed to render budget report: %w", err)
	}

	if bc.enforce && !report.Passed {
		return fmt.Errorf("budget violation detected")
	}

	return nil
}
