package commands

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dataprobe/dataprobe/internal/advisor"
	"github.com/dataprobe/dataprobe/internal/loader"
	"github.com/dataprobe/dataprobe/pkg/models"
)

type AnalyzeOptions struct {
	InputFile  string
	Format     string
	OutputFile string
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Assess a dataset's machine-learning readiness",
		Long: `Analyze a tabular dataset and report an ML readiness score with
preparation recommendations: missing data, class balance, encoding,
normalization, and feature selection.`,
		Example: `  # Print a readiness summary
  dataprobe-cli analyze --input users.csv

  # Emit the full result as JSON
  dataprobe-cli analyze --input users.csv --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfigDefaults(cmd, "format", &opts.Format, &opts.OutputFile)
			return runAnalyze(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input file to analyze (required)")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "Output format (text, json)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions) error {
	logger := newCommandLogger()

	ds, err := loader.NewLoader(logger).LoadFile(opts.InputFile)
	if err != nil {
		return fmt.Errorf("failed to load input data: %w", err)
	}

	result := advisorAnalyze(ds, nil, logger)

	var output string
	switch opts.Format {
	case "json":
		raw, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		output = string(raw) + "\n"
	case "text":
		output = formatReadiness(result)
	default:
		return fmt.Errorf("unknown output format: %s", opts.Format)
	}

	return writeOutput(output, opts.OutputFile)
}

func advisorAnalyze(ds *models.Dataset, issues []models.Issue, logger *logrus.Logger) *models.ReadinessResult {
	return advisor.NewAdvisor(ds, issues, logger).Analyze()
}

func formatReadiness(result *models.ReadinessResult) string {
	out := fmt.Sprintf("ML Readiness: %.2f/100 (%s)\n", result.ReadinessScore, result.ReadinessLevel)
	out += fmt.Sprintf("Dataset: %d rows, %d columns (%d numeric, %d categorical, %d datetime)\n",
		result.Summary.TotalRows, result.Summary.TotalColumns,
		result.Summary.NumericColumns, result.Summary.CategoricalColumns,
		result.Summary.DatetimeColumns)
	out += fmt.Sprintf("Missing data: %.2f%%\n", result.Summary.MissingDataPct)

	if len(result.Recommendations) > 0 {
		out += "\nRecommendations:\n"
		for _, rec := range result.Recommendations {
			out += "  - " + rec + "\n"
		}
	}
	return out
}
