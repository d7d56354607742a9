package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hzerrad/cronsched/internal/check"
	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/spf13/cobra"
)

type CheckCommand struct {
	*cobra.Command
	file          string
	json          bool
	verbose       bool
	failOn        string
	groupBy       string
	enableFreq    bool
	maxRunsPerDay int
	warnOnOverlap bool
	overlapWindow string
}

func newCheckCommand() *CheckCommand {
	cc := &CheckCommand{}
	cc.Command = &cobra.Command{
		Use:   "check",
		Short: "Validate job schedules in a manifest file",
		Long: `Validate every job schedule declared in a manifest file for errors and
potential issues.

This command checks for:
  - Invalid schedules (bad cron expressions, non-positive intervals)
  - DOM/DOW conflicts (when both day-of-month and day-of-week are specified)
  - Empty schedules (expressions that never run)
  - Redundant patterns (e.g., */1 instead of *)
  - Excessive run counts (configurable threshold)
  - Overlapping jobs (multiple jobs firing at the same time)

Examples:
  cronsched check --file manifest.yaml
  cronsched check --file manifest.yaml --verbose
  cronsched check --file manifest.yaml --warn-on-overlap --json`,
		RunE: cc.runCheck,
		Args: cobra.NoArgs,
	}

	cc.Flags().StringVarP(&cc.file, "file", "f", "", "Path to manifest file (required)")
	cc.Flags().BoolVarP(&cc.json, "json", "j", false, "Output in JSON format")
	cc.Flags().BoolVarP(&cc.verbose, "verbose", "v", false, "Show warnings (DOM/DOW conflicts) as well as errors")
	cc.Flags().StringVar(&cc.failOn, "fail-on", "error", "Severity level to fail on: 'error' (default), 'warn', or 'info'")
	cc.Flags().StringVar(&cc.groupBy, "group-by", "none", "Group issues by: 'none' (default), 'severity', or 'job'")
	cc.Flags().BoolVar(&cc.enableFreq, "enable-frequency-checks", true, "Enable frequency analysis (redundant patterns, excessive runs)")
	cc.Flags().IntVar(&cc.maxRunsPerDay, "max-runs-per-day", DefaultMaxRunsPerDay, "Threshold for excessive runs warning (default: 1000)")
	cc.Flags().BoolVar(&cc.warnOnOverlap, "warn-on-overlap", false, "Enable overlap warnings (multiple jobs running simultaneously)")
	cc.Flags().StringVar(&cc.overlapWindow, "overlap-window", "24h", "Time window for overlap analysis (default: 24h, e.g., 1h, 24h, 48h)")

	_ = cc.MarkFlagRequired("file")

	return cc
}

func init() {
	rootCmd.AddCommand(newCheckCommand().Command)
}

func (cc *CheckCommand) runCheck(_ *cobra.Command, _ []string) error {
	failOnSeverity, err := check.ParseFailOnLevel(cc.failOn)
	if err != nil {
		return fmt.Errorf("invalid --fail-on value: %w", err)
	}

	validator := check.NewValidator()
	validator.SetFrequencyChecks(cc.enableFreq)
	validator.SetMaxRunsPerDay(cc.maxRunsPerDay)

	if cc.warnOnOverlap {
		overlapDuration, err := time.ParseDuration(cc.overlapWindow)
		if err != nil {
			return fmt.Errorf("invalid overlap-window duration: %w", err)
		}
		validator.SetOverlapWindow(overlapDuration)
		validator.SetWarnOnOverlap(true)
	}

	m, err := loadManifest(cc.file)
	if err != nil {
		return err
	}

	parser := cronx.NewParserWithLocale(GetLocale())
	resolved := resolveEntries(m, parser)

	result := check.ValidationResult{Valid: true, TotalJobs: len(resolved)}
	invalidJobs := 0
	for _, r := range resolved {
		if r.Err != nil {
			invalidJobs++
			result.Valid = false
			result.Issues = append(result.Issues, check.Issue{
				Severity: check.SeverityError,
				Code:     check.CodeInvalidSchedule,
				JobName:  r.Entry.Name,
				Message:  r.Err.Error(),
				Hint:     check.GetCodeHint(check.CodeInvalidSchedule),
			})
			continue
		}
		entryResult := validator.ValidateEntry(r.Entry.Name, r.Schedule)
		if !entryResult.Valid {
			invalidJobs++
			result.Valid = false
		}
		result.Issues = append(result.Issues, entryResult.Issues...)
	}

	if cc.warnOnOverlap && len(resolved) > 1 {
		named := namedSchedules(m, parser)
		result.Issues = append(result.Issues, validatorOverlapIssues(validator, named)...)
	}

	validJobs := result.TotalJobs - invalidJobs

	if cc.json {
		return cc.outputJSON(result, validJobs, invalidJobs, failOnSeverity)
	}

	return cc.outputText(result, validJobs, invalidJobs, failOnSeverity)
}

// validatorOverlapIssues exposes the overlap-warning pass of
// Validator.ValidateAll without re-running per-entry validation.
func validatorOverlapIssues(v *check.Validator, entries []check.NamedSchedule) []check.Issue {
	full := v.ValidateAll(entries)
	var overlaps []check.Issue
	for _, issue := range full.Issues {
		if issue.Code == check.CodeOverlapDetected {
			overlaps = append(overlaps, issue)
		}
	}
	return overlaps
}

func (cc *CheckCommand) outputText(result check.ValidationResult, validJobs, invalidJobs int, failOn check.Severity) error {
	issuesToShow := cc.filterIssues(result.Issues)

	var errors, warnings, info []check.Issue
	for _, issue := range issuesToShow {
		switch issue.Severity {
		case check.SeverityError:
			errors = append(errors, issue)
		case check.SeverityWarn:
			warnings = append(warnings, issue)
		case check.SeverityInfo:
			info = append(info, issue)
		}
	}

	if len(errors) == 0 && len(warnings) == 0 && len(info) == 0 {
		cc.Printf("✓ All valid\n")
		if result.TotalJobs > 0 {
			cc.Printf("  %d job(s) validated\n", result.TotalJobs)
		}
		return nil
	}

	if len(errors) > 0 {
		cc.Printf("✗ Found %d error(s)\n", len(errors))
		if len(warnings) > 0 {
			cc.Printf("⚠ Found %d warning(s)\n", len(warnings))
		}
		if len(info) > 0 {
			cc.Printf("ℹ Found %d info message(s)\n", len(info))
		}
	} else if len(warnings) > 0 {
		cc.Printf("⚠ Found %d warning(s)\n", len(warnings))
		if len(info) > 0 {
			cc.Printf("ℹ Found %d info message(s)\n", len(info))
		}
	} else if len(info) > 0 {
		cc.Printf("ℹ Found %d info message(s)\n", len(info))
	}

	if result.TotalJobs > 0 {
		cc.Printf("  Total jobs: %d\n", result.TotalJobs)
		cc.Printf("  Valid: %d\n", validJobs)
		cc.Printf("  Invalid: %d\n", invalidJobs)
	}

	cc.Println()

	if len(errors) > 0 {
		groupMode := parseGroupBy(cc.groupBy)
		if groupMode == GroupByNone {
			cc.printIssuesFlat(errors)
		} else {
			cc.printIssuesGrouped(errors, groupMode)
		}
		if len(warnings) > 0 {
			cc.Println()
		}
	}

	if len(warnings) > 0 {
		if cc.verbose {
			groupMode := parseGroupBy(cc.groupBy)
			if groupMode == GroupByNone {
				cc.printIssuesFlat(warnings)
			} else {
				cc.printIssuesGrouped(warnings, groupMode)
			}
		} else {
			cc.printWarningsCompact(warnings)
		}
		if len(info) > 0 {
			cc.Println()
		}
	}

	if len(info) > 0 && cc.verbose {
		groupMode := parseGroupBy(cc.groupBy)
		if groupMode == GroupByNone {
			cc.printIssuesFlat(info)
		} else {
			cc.printIssuesGrouped(info, groupMode)
		}
	}

	exitCode := calculateExitCode(result, issuesToShow, failOn)
	if exitCode != 0 {
		osExit(exitCode)
	}

	return nil
}

func (cc *CheckCommand) outputJSON(result check.ValidationResult, validJobs, invalidJobs int, failOn check.Severity) error {
	issuesToShow := cc.filterIssues(result.Issues)

	jsonIssues := make([]map[string]interface{}, len(issuesToShow))
	for i, issue := range issuesToShow {
		jsonIssue := map[string]interface{}{
			"severity": issue.Severity.String(),
			"code":     issue.Code,
			"job":      issue.JobName,
			"message":  issue.Message,
		}
		if issue.Hint != "" {
			jsonIssue["hint"] = issue.Hint
		}
		jsonIssues[i] = jsonIssue
	}

	output := map[string]interface{}{
		"valid":       result.Valid && len(issuesToShow) == 0,
		"totalJobs":   result.TotalJobs,
		"validJobs":   validJobs,
		"invalidJobs": invalidJobs,
		"issues":      jsonIssues,
		"locale":      GetLocale(),
	}

	encoder := json.NewEncoder(cc.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	exitCode := calculateExitCode(result, issuesToShow, failOn)
	if exitCode != 0 {
		osExit(exitCode)
	}

	return nil
}

// osExit is a variable that can be overridden in tests
var osExit = os.Exit

// calculateExitCode determines the appropriate exit code based on validation result,
// issues shown, and fail-on threshold.
// Returns:
//   - 0: No issues, or only issues below the fail-on threshold
//   - 1: Errors present (or configured severity level reached)
//   - 2: Warnings present (only if fail-on is warn or info)
func calculateExitCode(result check.ValidationResult, issuesToShow []check.Issue, failOn check.Severity) int {
	if len(issuesToShow) == 0 {
		return 0
	}

	highestSeverity := check.SeverityInfo
	for _, issue := range issuesToShow {
		if issue.Severity > highestSeverity {
			highestSeverity = issue.Severity
		}
	}

	if highestSeverity < failOn {
		return 0
	}

	switch highestSeverity {
	case check.SeverityError:
		return 1
	case check.SeverityWarn:
		return 2
	case check.SeverityInfo:
		return 2
	default:
		return 0
	}
}

// filterIssues filters issues based on the verbose flag
func (cc *CheckCommand) filterIssues(issues []check.Issue) []check.Issue {
	filtered := []check.Issue{}
	for _, issue := range issues {
		if issue.Severity == check.SeverityError || issue.Severity == check.SeverityWarn {
			filtered = append(filtered, issue)
		} else if issue.Severity == check.SeverityInfo && cc.verbose {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// GroupByMode represents the grouping mode for issues
type GroupByMode int

const (
	GroupByNone GroupByMode = iota
	GroupBySeverity
	GroupByJob
)

// parseGroupBy parses the group-by string and returns the corresponding mode
func parseGroupBy(groupBy string) GroupByMode {
	switch groupBy {
	case "severity":
		return GroupBySeverity
	case "job":
		return GroupByJob
	default:
		return GroupByNone
	}
}

// groupIssues groups issues by the specified mode
func groupIssues(issues []check.Issue, mode GroupByMode) map[string][]check.Issue {
	groups := make(map[string][]check.Issue)

	switch mode {
	case GroupBySeverity:
		for _, issue := range issues {
			key := issue.Severity.String()
			groups[key] = append(groups[key], issue)
		}
	case GroupByJob:
		for _, issue := range issues {
			key := issue.JobName
			if key == "" {
				key = "no-job"
			}
			groups[key] = append(groups[key], issue)
		}
	default:
		return groups
	}

	return groups
}

// getSeverityOrder returns the order for displaying severity groups
func getSeverityOrder() []check.Severity {
	return []check.Severity{
		check.SeverityError,
		check.SeverityWarn,
		check.SeverityInfo,
	}
}

// printIssuesFlat prints issues in a flat list (default behavior)
func (cc *CheckCommand) printIssuesFlat(issues []check.Issue) {
	for _, issue := range issues {
		cc.printIssue(issue)
	}
}

// printIssuesGrouped prints issues grouped by the specified mode
func (cc *CheckCommand) printIssuesGrouped(issues []check.Issue, mode GroupByMode) {
	groups := groupIssues(issues, mode)

	switch mode {
	case GroupBySeverity:
		for _, severity := range getSeverityOrder() {
			key := severity.String()
			if severityIssues, ok := groups[key]; ok {
				cc.printGroupHeader(fmt.Sprintf("%s Issues", severity.String()), len(severityIssues))
				for _, issue := range severityIssues {
					cc.printIssue(issue)
				}
				cc.Println()
			}
		}
	case GroupByJob:
		for key, jobIssues := range groups {
			if key == "no-job" {
				cc.printGroupHeader("General Issues", len(jobIssues))
			} else {
				cc.printGroupHeader(fmt.Sprintf("Job: %s", key), len(jobIssues))
			}
			for _, issue := range jobIssues {
				cc.printIssue(issue)
			}
			cc.Println()
		}
	default:
		// GroupByNone or unexpected mode - no-op, caller handles flat display
	}
}

// printGroupHeader prints a header for a group of issues
func (cc *CheckCommand) printGroupHeader(title string, count int) {
	cc.Printf("━━━ %s (%d issue(s)) ━━━\n", title, count)
}

// printIssue prints a single issue with all its details
func (cc *CheckCommand) printIssue(issue check.Issue) {
	prefix := ""
	switch issue.Severity {
	case check.SeverityError:
		prefix = "✗ ERROR: "
	case check.SeverityWarn:
		prefix = "⚠ WARNING: "
	case check.SeverityInfo:
		prefix = "ℹ INFO: "
	}

	codeInfo := ""
	if issue.Code != "" {
		codeInfo = fmt.Sprintf(" [%s]", issue.Code)
	}

	cc.Printf("  %s%s%s\n", prefix, issue.Message, codeInfo)
	if issue.JobName != "" {
		cc.Printf("    Job: %s\n", issue.JobName)
	}

	if issue.Hint != "" {
		cc.Printf("    Hint: %s\n", issue.Hint)
	}
}

// printWarningsCompact prints warnings in a compact format (one line per warning)
func (cc *CheckCommand) printWarningsCompact(warnings []check.Issue) {
	for _, issue := range warnings {
		codeInfo := ""
		if issue.Code != "" {
			codeInfo = fmt.Sprintf(" [%s]", issue.Code)
		}

		if issue.JobName != "" {
			cc.Printf("  ⚠ %s%s - %s\n", issue.Message, codeInfo, issue.JobName)
		} else {
			cc.Printf("  ⚠ %s%s\n", issue.Message, codeInfo)
		}
	}
}
