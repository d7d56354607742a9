package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/human"
	"github.com/hzerrad/cronsched/internal/render"
	"github.com/hzerrad/cronsched/internal/schedule"
	"github.com/spf13/cobra"
)

// TimelineCommand wraps cobra.Command with timeline-specific functionality
type TimelineCommand struct {
	*cobra.Command
	file         string
	json         bool
	view         string
	from         string
	width        int
	timezone     string
	export       string
	locale       string
	showOverlaps bool
}

func init() {
	rootCmd.AddCommand(newTimelineCommand().Command)
}

// newTimelineCommand creates a fresh timeline command instance for testing
func newTimelineCommand() *TimelineCommand {
	tc := &TimelineCommand{}
	tc.Command = &cobra.Command{
		Args:  cobra.MaximumNArgs(1),
		RunE:  tc.runTimeline,
		Use:   "timeline [cron-expression]",
		Short: "Display ASCII timeline visualization of job schedules",
		Long: `Display an ASCII timeline showing when jobs will run, including job density and overlaps.

This command helps visualize manifest schedules over time, making it easy to see when jobs run
and identify potential conflicts or resource contention.

Supports:
  - Single cron expression (provided as argument)
  - Manifest file (via --file flag)
  - Day view (24 hours, default) or hour view (60 minutes) via --view flag
  - JSON output with --json flag for programmatic use

Examples:
  cronsched timeline "*/15 * * * *"                 # Timeline for single expression
  cronsched timeline --file manifest.yaml           # Timeline for a manifest
  cronsched timeline "*/5 * * * *" --view hour       # Hour view timeline
  cronsched timeline --file manifest.yaml --json     # JSON output`,
	}

	tc.Command.Flags().StringVarP(&tc.file, "file", "f", "", "Path to manifest file")
	tc.Command.Flags().BoolVarP(&tc.json, "json", "j", false, "Output in JSON format")
	tc.Command.Flags().StringVar(&tc.view, "view", "day", "Timeline view type: 'day' (24 hours) or 'hour' (60 minutes, default: 'day')")
	tc.Command.Flags().StringVar(&tc.from, "from", "", "Start time for timeline (RFC3339 format, defaults to current time)")
	tc.Command.Flags().IntVar(&tc.width, "width", 0, "Terminal width (0 = auto-detect, defaults to 80 if detection fails)")
	tc.Command.Flags().StringVar(&tc.timezone, "timezone", "", "Timezone for timeline (e.g., 'America/New_York', 'UTC', defaults to local timezone)")
	tc.Command.Flags().StringVar(&tc.export, "export", "", "Export timeline to file (format determined by extension: .txt, .json)")
	tc.Command.Flags().BoolVar(&tc.showOverlaps, "show-overlaps", false, "Show detailed overlap information in output")

	return tc
}

func (tc *TimelineCommand) runTimeline(_ *cobra.Command, args []string) error {
	var timelineView render.TimelineView
	switch tc.view {
	case "day":
		timelineView = render.DayView
	case "hour":
		timelineView = render.HourView
	default:
		return fmt.Errorf("invalid view type: %s (must be 'day' or 'hour')", tc.view)
	}

	loc := time.Local
	if tc.timezone != "" {
		parsedLoc, err := time.LoadLocation(tc.timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone: %w (use IANA timezone name like 'America/New_York' or 'UTC')", err)
		}
		loc = parsedLoc
	}

	startTime := time.Now().In(loc)
	if tc.from != "" {
		parsed, err := time.Parse(time.RFC3339, tc.from)
		if err != nil {
			return fmt.Errorf("invalid --from time format: %w (expected RFC3339)", err)
		}
		startTime = parsed.In(loc)
	}

	if timelineView == render.DayView {
		startTime = time.Date(startTime.Year(), startTime.Month(), startTime.Day(), 0, 0, 0, 0, startTime.Location())
	} else {
		startTime = time.Date(startTime.Year(), startTime.Month(), startTime.Day(), startTime.Hour(), 0, 0, 0, startTime.Location())
	}

	width := detectTerminalWidth()
	if tc.width > 0 {
		width = tc.width
	}
	if width < 40 {
		width = 40
	}

	timeline := render.NewTimeline(timelineView, startTime, width)

	locale := GetLocale()
	if tc.locale != "" {
		locale = tc.locale
	}

	parser := cronx.NewParserWithLocale(locale)
	humanizer := human.NewHumanizer()

	type namedJob struct {
		id       string
		schedule schedule.Schedule
	}

	var jobs []namedJob

	if len(args) > 0 {
		expression := args[0]
		sched, err := parser.Parse(expression)
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		cron, err := schedule.NewCron(parser, expression)
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		jobID := fmt.Sprintf("expr-%s", expression)
		timeline.SetJobInfo(jobID, expression, humanizer.Humanize(sched))
		jobs = append(jobs, namedJob{id: jobID, schedule: cron})
	} else {
		if tc.file == "" {
			return fmt.Errorf("must specify a manifest source (--file or positional cron expression)")
		}
		m, err := loadManifest(tc.file)
		if err != nil {
			return err
		}
		resolved := resolveEntries(m, parser)
		for _, r := range resolved {
			if r.Err != nil {
				continue
			}
			description := ""
			if fields, ok := r.Schedule.(schedule.Cron); ok {
				description = humanizer.Humanize(fields.Fields)
			}
			timeline.SetJobInfo(r.Entry.Name, rawScheduleOf(r.Entry), description)
			jobs = append(jobs, namedJob{id: r.Entry.Name, schedule: r.Schedule})
		}
	}

	var timeRange time.Duration
	var runCount int
	if timelineView == render.DayView {
		timeRange = 24 * time.Hour
		runCount = 200
	} else {
		timeRange = time.Hour
		runCount = 100
	}

	endTime := startTime.Add(timeRange)
	for _, job := range jobs {
		cursor := startTime
		for i := 0; i < runCount; i++ {
			next, err := schedule.NextAfter(job.schedule, cursor, loc == time.UTC)
			if err != nil {
				break
			}
			if !next.Before(endTime) {
				break
			}
			if !next.Before(startTime) {
				timeline.AddJobRun(job.id, next)
			}
			cursor = next
		}
	}

	var output string
	if tc.json {
		result := timeline.RenderJSON()
		result["timezone"] = loc.String()
		result["locale"] = locale

		if tc.export != "" {
			file, err := os.Create(tc.export)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			encoder := json.NewEncoder(file)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				_ = file.Close()
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to close export file: %w", err)
			}
		} else {
			encoder := json.NewEncoder(tc.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
		}
		return nil
	}

	output = timeline.Render()
	if tc.showOverlaps {
		overlaps := timeline.DetectOverlaps()
		if len(overlaps) > 0 {
			output += "\nOverlaps:\n"
			for _, o := range overlaps {
				output += fmt.Sprintf("  %s: %d jobs (%v)\n", o.Time.Format(time.Kitchen), o.Count, o.JobIDs)
			}
		}
	}

	if tc.export != "" {
		if err := tc.exportTimeline(output, timeline); err != nil {
			return fmt.Errorf("failed to export timeline: %w", err)
		}
		tc.Print(output)
	} else {
		tc.Print(output)
	}

	return nil
}

// detectTerminalWidth attempts to detect the terminal width
func detectTerminalWidth() int {
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if cols, err := strconv.Atoi(colsStr); err == nil && cols > 0 {
			return cols
		}
	}
	return 80
}

// exportTimeline exports the timeline to a file (text format only, JSON handled separately)
func (tc *TimelineCommand) exportTimeline(textOutput string, timeline *render.Timeline) error {
	file, err := os.Create(tc.export)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := file.WriteString(textOutput); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}

	return nil
}
