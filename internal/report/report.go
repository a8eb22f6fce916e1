// Package report renders validation results for humans: plain text for
// terminals and Markdown for download.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dataprobe/dataprobe/pkg/models"
)

// Format names accepted by Render.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// Render renders a session in the named format. Unknown formats fall back to
// plain text.
func Render(session *models.CheckSession, format string) string {
	switch format {
	case FormatMarkdown:
		return Markdown(session)
	default:
		return Text(session)
	}
}

// Text renders a terminal-friendly report.
func Text(session *models.CheckSession) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Data Quality Report\n")
	fmt.Fprintf(&b, "===================\n\n")
	fmt.Fprintf(&b, "File:    %s\n", session.Filename)
	fmt.Fprintf(&b, "Session: %s\n", session.ID)
	fmt.Fprintf(&b, "Created: %s\n\n", session.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if summary := session.Summary; summary != nil {
		fmt.Fprintf(&b, "Dataset: %d rows, %d columns\n", summary.DatasetRows, summary.DatasetColumns)
		fmt.Fprintf(&b, "Issues:  %d total (high: %d, medium: %d, low: %d)\n\n",
			summary.TotalIssues,
			summary.BySeverity[models.SeverityHigh],
			summary.BySeverity[models.SeverityMedium],
			summary.BySeverity[models.SeverityLow])
	}

	if len(session.Issues) == 0 {
		b.WriteString("No issues found.\n")
	} else {
		for _, issue := range session.Issues {
			fmt.Fprintf(&b, "  [%s] %s: %s\n",
				strings.ToUpper(string(issue.Severity)), issue.IssueType, issue.Description)
		}
	}

	if readiness := session.Readiness; readiness != nil {
		fmt.Fprintf(&b, "\nML Readiness: %.2f/100 (%s)\n", readiness.ReadinessScore, readiness.ReadinessLevel)
		for _, rec := range readiness.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}

	return b.String()
}

// Markdown renders a Markdown report.
func Markdown(session *models.CheckSession) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Quality Report: %s\n\n", session.Filename)
	fmt.Fprintf(&b, "- **Session**: `%s`\n", session.ID)
	fmt.Fprintf(&b, "- **Created**: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	if summary := session.Summary; summary != nil {
		fmt.Fprintf(&b, "- **Dataset**: %d rows x %d columns\n",
			summary.DatasetRows, summary.DatasetColumns)
		fmt.Fprintf(&b, "- **Issues**: %d (high: %d, medium: %d, low: %d)\n",
			summary.TotalIssues,
			summary.BySeverity[models.SeverityHigh],
			summary.BySeverity[models.SeverityMedium],
			summary.BySeverity[models.SeverityLow])

		if len(summary.ByType) > 0 {
			b.WriteString("\n## Issues by Type\n\n")
			b.WriteString("| Type | Count |\n|------|-------|\n")
			types := make([]string, 0, len(summary.ByType))
			for issueType := range summary.ByType {
				types = append(types, issueType)
			}
			sort.Strings(types)
			for _, issueType := range types {
				fmt.Fprintf(&b, "| %s | %d |\n", issueType, summary.ByType[issueType])
			}
		}
	}

	b.WriteString("\n## Findings\n\n")
	if len(session.Issues) == 0 {
		b.WriteString("No issues found.\n")
	} else {
		b.WriteString("| Severity | Type | Column | Row | Description |\n")
		b.WriteString("|----------|------|--------|-----|-------------|\n")
		for _, issue := range session.Issues {
			column := "-"
			if issue.ColumnName != nil {
				column = *issue.ColumnName
			}
			row := "-"
			if issue.RowNumber != nil {
				row = fmt.Sprintf("%d", *issue.RowNumber)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				issue.Severity, issue.IssueType, column, row, escapePipes(issue.Description))
		}
	}

	if readiness := session.Readiness; readiness != nil {
		b.WriteString("\n## ML Readiness\n\n")
		fmt.Fprintf(&b, "**Score**: %.2f/100 (%s)\n\n", readiness.ReadinessScore, readiness.ReadinessLevel)
		for _, rec := range readiness.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	return b.String()
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
