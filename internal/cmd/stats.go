package cmd

import (
	"encoding/json"
	"strings"

	"github.com/hzerrad/cronsched/internal/check"
	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/stats"
	"github.com/spf13/cobra"
)

type StatsCommand struct {
	*cobra.Command
	file    string
	json    bool
	verbose bool
	top     int
}

func newStatsCommand() *StatsCommand {
	sc := &StatsCommand{}
	sc.Command = &cobra.Command{
		Use:   "stats",
		Short: "Calculate and display manifest statistics",
		Long: `Calculate and display statistics about the jobs in a manifest, including:
  - Run frequency metrics (runs per day, per hour)
  - Hour distribution histogram
  - Most/least frequent jobs
  - Collision analysis (busiest hours, max concurrency)

Examples:
  cronsched stats --file manifest.yaml
  cronsched stats --file manifest.yaml --json
  cronsched stats --file manifest.yaml --top 10 --verbose`,
		RunE: sc.runStats,
		Args: cobra.NoArgs,
	}

	sc.Flags().StringVarP(&sc.file, "file", "f", "", "Path to manifest file (required)")
	sc.Flags().BoolVarP(&sc.json, "json", "j", false, "Output in JSON format")
	sc.Flags().BoolVarP(&sc.verbose, "verbose", "v", false, "Show detailed statistics")
	sc.Flags().IntVar(&sc.top, "top", DefaultStatsTopN, "Number of top items to show (default: 5)")
	_ = sc.MarkFlagRequired("file")

	return sc
}

func init() {
	rootCmd.AddCommand(newStatsCommand().Command)
}

func (sc *StatsCommand) runStats(_ *cobra.Command, _ []string) error {
	m, err := loadManifest(sc.file)
	if err != nil {
		return err
	}

	parser := cronx.NewParserWithLocale(GetLocale())
	entries := namedSchedules(m, parser)

	calculator := stats.NewCalculator()
	metrics, err := calculator.CalculateMetrics(entries, stats.OneDay)
	if err != nil {
		return err
	}

	if sc.json {
		return sc.outputJSON(metrics)
	}

	return sc.outputText(metrics, calculator, entries)
}

func (sc *StatsCommand) outputJSON(metrics *stats.Metrics) error {
	encoder := json.NewEncoder(sc.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(metrics)
}

func (sc *StatsCommand) outputText(metrics *stats.Metrics, calculator *stats.Calculator, entries []check.NamedSchedule) error {
	sc.Println("Manifest Statistics")
	sc.Println(strings.Repeat("=", 50))

	sc.Printf("\nSummary:\n")
	sc.Printf("  Total Jobs: %d\n", len(entries))
	sc.Printf("  Total Runs per Day: %d\n", metrics.TotalRunsPerDay)
	sc.Printf("  Total Runs per Hour: %d\n", metrics.TotalRunsPerHour)

	mostFrequent := calculator.IdentifyMostFrequent(entries, sc.top)
	if len(mostFrequent) > 0 {
		sc.Printf("\nTop %d Most Frequent Jobs:\n", sc.top)
		for i, freq := range mostFrequent {
			sc.Printf("  %d. %s (%d runs/day, %d runs/hour)\n",
				i+1, freq.JobID, freq.RunsPerDay, freq.RunsPerHour)
		}
	}

	if sc.verbose {
		sc.Printf("\n%s\n", stats.GenerateHistogram(metrics.HourHistogram, stats.DefaultHistogramWidth))
	}

	if sc.verbose && len(metrics.Collisions.BusiestHours) > 0 {
		sc.Printf("\nBusiest Hours:\n")
		for i, hour := range metrics.Collisions.BusiestHours {
			if i >= sc.top {
				break
			}
			sc.Printf("  %02d:00 - %d runs\n", hour.Hour, hour.RunCount)
		}
		sc.Printf("\nCollision Frequency: %.2f%%\n", metrics.Collisions.CollisionFrequency)
		sc.Printf("Max Concurrent Jobs: %d\n", metrics.Collisions.MaxConcurrent)
	}

	return nil
}
