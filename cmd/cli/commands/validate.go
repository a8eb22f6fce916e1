package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dataprobe/dataprobe/internal/loader"
	"github.com/dataprobe/dataprobe/internal/report"
	"github.com/dataprobe/dataprobe/internal/validation"
	"github.com/dataprobe/dataprobe/pkg/models"
)

type ValidateOptions struct {
	InputFile    string
	RulesFile    string
	Insights     bool
	ReportFormat string
	OutputFile   string
	FailOn       string
	Verbose      bool
}

func NewValidateCmd() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a tabular dataset",
		Long: `Run the full data-quality check battery over a CSV, JSON, or XML file,
optionally applying configurable rules from a rules file.`,
		Example: `  # Validate a CSV file
  dataprobe-cli validate --input users.csv

  # Apply custom rules and include ML readiness insights
  dataprobe-cli validate --input users.csv --rules rules.json --insights

  # Write a Markdown report and fail the build on high-severity issues
  dataprobe-cli validate --input users.csv --report-format markdown --output report.md --fail-on high`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfigDefaults(cmd, "report-format", &opts.ReportFormat, &opts.OutputFile)
			return runValidate(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input file to validate (required)")
	cmd.Flags().StringVarP(&opts.RulesFile, "rules", "r", "", "JSON file with validation rules")
	cmd.Flags().BoolVar(&opts.Insights, "insights", false, "Include ML readiness analysis")
	cmd.Flags().StringVar(&opts.ReportFormat, "report-format", "text", "Report format (text, markdown, json)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file for report (- for stdout)")
	cmd.Flags().StringVar(&opts.FailOn, "fail-on", "", "Exit non-zero when issues at or above this severity exist (low, medium, high)")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runValidate(opts *ValidateOptions) error {
	logger := newCommandLogger()

	ds, err := loader.NewLoader(logger).LoadFile(opts.InputFile)
	if err != nil {
		return fmt.Errorf("failed to load input data: %w", err)
	}

	validator := validation.NewValidator(ds, logger)
	issues := validator.ValidateAll()

	if opts.RulesFile != "" {
		rules, err := loadRules(opts.RulesFile)
		if err != nil {
			return err
		}
		engine := validation.NewRuleEngine(rules, logger)
		issues = append(issues, engine.Validate(ds)...)
	}

	session := &models.CheckSession{
		ID:        uuid.New().String(),
		Filename:  opts.InputFile,
		CreatedAt: time.Now().UTC(),
		Issues:    issues,
		Summary:   models.NewSummary(issues, ds.Rows(), ds.ColumnCount()),
	}

	if opts.Insights {
		session.Readiness = advisorAnalyze(ds, issues, logger)
	}

	output, err := renderSession(session, opts.ReportFormat)
	if err != nil {
		return err
	}
	if err := writeOutput(output, opts.OutputFile); err != nil {
		return err
	}

	return checkFailOn(session.Summary, opts.FailOn)
}

func loadRules(path string) ([]models.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules []models.Rule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	return rules, nil
}

func renderSession(session *models.CheckSession, format string) (string, error) {
	switch format {
	case "json":
		raw, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode session: %w", err)
		}
		return string(raw) + "\n", nil
	case report.FormatText, report.FormatMarkdown:
		return report.Render(session, format), nil
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}
}

func writeOutput(output, path string) error {
	if path == "" || path == "-" {
		fmt.Print(output)
		return nil
	}
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}

// checkFailOn turns issue severities into an exit status for CI use.
func checkFailOn(summary *models.Summary, failOn string) error {
	if failOn == "" {
		return nil
	}

	var gated int
	switch failOn {
	case "low":
		gated = summary.BySeverity[models.SeverityLow] +
			summary.BySeverity[models.SeverityMedium] +
			summary.BySeverity[models.SeverityHigh]
	case "medium":
		gated = summary.BySeverity[models.SeverityMedium] +
			summary.BySeverity[models.SeverityHigh]
	case "high":
		gated = summary.BySeverity[models.SeverityHigh]
	default:
		return fmt.Errorf("unknown severity for --fail-on: %s", failOn)
	}

	if gated > 0 {
		return fmt.Errorf("found %d issue(s) at or above severity %q", gated, failOn)
	}
	return nil
}

func newCommandLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return logger
}
