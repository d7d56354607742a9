package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/hzerrad/cronsched/internal/doc"
	"github.com/spf13/cobra"
)

type DocCommand struct {
	*cobra.Command
	file            string
	output          string
	format          string
	includeNext     int
	includeWarnings bool
	includeStats    bool
}

func newDocCommand() *DocCommand {
	dc := &DocCommand{}
	dc.Command = &cobra.Command{
		Use:   "doc",
		Short: "Generate documentation from a manifest file",
		Long: `Generate human-readable documentation from a manifest file.

This command creates markdown, HTML, or JSON documentation that includes:
  - Job summaries with descriptions
  - Schedule details
  - Handler information
  - Optional: next runs, warnings, and statistics

Examples:
  cronsched doc --file manifest.yaml --output docs.md
  cronsched doc --file manifest.yaml --format html --output docs.html
  cronsched doc --file manifest.yaml --format json --include-next 5`,
		RunE: dc.runDoc,
		Args: cobra.NoArgs,
	}

	dc.Flags().StringVarP(&dc.file, "file", "f", "", "Path to manifest file (required)")
	dc.Flags().StringVarP(&dc.output, "output", "o", "", "Output file path (defaults to stdout)")
	dc.Flags().StringVar(&dc.format, "format", "md", "Output format: 'md' (markdown), 'html', or 'json'")
	dc.Flags().IntVar(&dc.includeNext, "include-next", 0, "Include next N runs per job (0 = disabled)")
	dc.Flags().BoolVar(&dc.includeWarnings, "include-warnings", false, "Include validation warnings")
	dc.Flags().BoolVar(&dc.includeStats, "include-stats", false, "Include frequency statistics")
	_ = dc.MarkFlagRequired("file")

	return dc
}

func init() {
	rootCmd.AddCommand(newDocCommand().Command)
}

func (dc *DocCommand) runDoc(_ *cobra.Command, _ []string) error {
	if dc.format != "md" && dc.format != "html" && dc.format != "json" {
		return fmt.Errorf("invalid format: %s (must be 'md', 'html', or 'json')", dc.format)
	}

	m, err := loadManifest(dc.file)
	if err != nil {
		return err
	}

	generator := doc.NewGenerator(GetLocale())

	options := doc.GenerateOptions{
		IncludeNext:     dc.includeNext,
		IncludeWarnings: dc.includeWarnings,
		IncludeStats:    dc.includeStats,
	}

	document, err := generator.GenerateDocument(m, dc.file, options)
	if err != nil {
		return fmt.Errorf("failed to generate document: %w", err)
	}

	var renderer doc.Renderer
	switch dc.format {
	case "md":
		renderer = &doc.MarkdownRenderer{}
	case "html":
		renderer = &doc.HTMLRenderer{}
	case "json":
		renderer = &doc.JSONRenderer{}
	}

	var output io.Writer
	if dc.output != "" {
		file, err := os.Create(dc.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close()
		}()
		output = file
	} else {
		output = dc.OutOrStdout()
	}

	if err := renderer.Render(document, output); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	return nil
}
