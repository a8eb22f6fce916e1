package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetIssueSerializesExplicitNulls(t *testing.T) {
	issue := NewDatasetIssue("duplicates", "Found 2 duplicate rows (40.0% of dataset)", SeverityHigh)

	data, err := json.Marshal(issue)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"row_number":null`)
	assert.Contains(t, string(data), `"column_name":null`)

	var decoded Issue
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded.RowNumber)
	assert.Nil(t, decoded.ColumnName)
	assert.Equal(t, issue, decoded)
}

func TestRowIssueRoundTrip(t *testing.T) {
	issue := NewRowIssue("invalid_email", "Row 3: Invalid email format 'bad-email'", SeverityMedium, 2, "email")

	data, err := json.Marshal(issue)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"row_number":2`)
	assert.Contains(t, string(data), `"column_name":"email"`)

	var decoded Issue
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.RowNumber)
	assert.Equal(t, 2, *decoded.RowNumber)
	require.NotNil(t, decoded.ColumnName)
	assert.Equal(t, "email", *decoded.ColumnName)
}

func TestRowIssueWithoutColumn(t *testing.T) {
	issue := NewRowIssue("duplicate_row", "Row 5 is a duplicate", SeverityMedium, 4, "")
	assert.Nil(t, issue.ColumnName)
	require.NotNil(t, issue.RowNumber)
	assert.Equal(t, 4, *issue.RowNumber)
}

func TestSummarySeverityKeysAlwaysPresent(t *testing.T) {
	summary := NewSummary(nil, 10, 3)

	assert.Equal(t, 0, summary.TotalIssues)
	assert.Equal(t, map[Severity]int{SeverityLow: 0, SeverityMedium: 0, SeverityHigh: 0}, summary.BySeverity)
	assert.Empty(t, summary.ByType)
	assert.Equal(t, 10, summary.DatasetRows)
	assert.Equal(t, 3, summary.DatasetColumns)
}

func TestSummaryAggregation(t *testing.T) {
	issues := []Issue{
		NewDatasetIssue("duplicates", "d", SeverityHigh),
		NewColumnIssue("missing_values", "d", SeverityMedium, "a"),
		NewColumnIssue("missing_values", "d", SeverityLow, "b"),
	}

	summary := NewSummary(issues, 5, 2)
	assert.Equal(t, 3, summary.TotalIssues)
	assert.Equal(t, 1, summary.BySeverity[SeverityHigh])
	assert.Equal(t, 1, summary.BySeverity[SeverityMedium])
	assert.Equal(t, 1, summary.BySeverity[SeverityLow])
	assert.Equal(t, 2, summary.ByType["missing_values"])
}
