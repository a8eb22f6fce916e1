package models

// Severity is the ordinal importance of a detected defect.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue is one detected data-quality defect. RowNumber and ColumnName are
// pointers serialized without omitempty: a dataset-level issue round-trips
// with explicit nulls so consumers can tell "not applicable" from "missing".
type Issue struct {
	IssueType   string   `json:"issue_type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	RowNumber   *int     `json:"row_number"`
	ColumnName  *string  `json:"column_name"`
	RuleName    string   `json:"rule_name,omitempty"`
}

// NewDatasetIssue creates an issue that applies to the dataset as a whole.
func NewDatasetIssue(issueType, description string, severity Severity) Issue {
	return Issue{
		IssueType:   issueType,
		Description: description,
		Severity:    severity,
	}
}

// NewColumnIssue creates an issue scoped to a single column.
func NewColumnIssue(issueType, description string, severity Severity, column string) Issue {
	return Issue{
		IssueType:   issueType,
		Description: description,
		Severity:    severity,
		ColumnName:  &column,
	}
}

// NewRowIssue creates an issue scoped to a row, optionally within a column.
// Row numbers are 0-based dataset indices.
func NewRowIssue(issueType, description string, severity Severity, row int, column string) Issue {
	issue := Issue{
		IssueType:   issueType,
		Description: description,
		Severity:    severity,
		RowNumber:   &row,
	}
	if column != "" {
		issue.ColumnName = &column
	}
	return issue
}

// Summary aggregates an issue list together with the dataset shape. It is
// derived data: recomputable from the issues at any time.
type Summary struct {
	TotalIssues    int              `json:"total_issues"`
	BySeverity     map[Severity]int `json:"by_severity"`
	ByType         map[string]int   `json:"by_type"`
	DatasetRows    int              `json:"dataset_rows"`
	DatasetColumns int              `json:"dataset_columns"`
}

// NewSummary builds a summary over the given issues. All three severity keys
// are always present, zero-filled; ByType holds only observed types.
func NewSummary(issues []Issue, rows, columns int) *Summary {
	s := &Summary{
		TotalIssues: len(issues),
		BySeverity: map[Severity]int{
			SeverityLow:    0,
			SeverityMedium: 0,
			SeverityHigh:   0,
		},
		ByType:         make(map[string]int),
		DatasetRows:    rows,
		DatasetColumns: columns,
	}
	for _, issue := range issues {
		s.BySeverity[issue.Severity]++
		s.ByType[issue.IssueType]++
	}
	return s
}
