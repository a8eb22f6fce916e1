package validation

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataprobe/dataprobe/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func issuesOfType(issues []models.Issue, issueType string) []models.Issue {
	var out []models.Issue
	for _, issue := range issues {
		if issue.IssueType == issueType {
			out = append(out, issue)
		}
	}
	return out
}

func columnWithMissing(rows, missing int) []any {
	values := make([]any, rows)
	for i := 0; i < rows; i++ {
		if i < missing {
			values[i] = nil
		} else {
			values[i] = "x"
		}
	}
	return values
}

func TestMissingValuesSeverityBoundaries(t *testing.T) {
	const rows = 200

	tests := []struct {
		name     string
		missing  int
		severity models.Severity
	}{
		{"just above 50pct is high", 101, models.SeverityHigh},
		{"exactly 50pct is medium", 100, models.SeverityMedium},
		{"just above 20pct is medium", 41, models.SeverityMedium},
		{"exactly 20pct is medium", 40, models.SeverityMedium},
		{"below 20pct is low", 39, models.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := models.NewDataset([]string{"col"}, map[string][]any{
				"col": columnWithMissing(rows, tt.missing),
			})

			issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "missing_values")
			require.Len(t, issues, 1)

			issue := issues[0]
			assert.Equal(t, tt.severity, issue.Severity)
			require.NotNil(t, issue.ColumnName)
			assert.Equal(t, "col", *issue.ColumnName)
			assert.Nil(t, issue.RowNumber)
			assert.Contains(t, issue.Description, fmt.Sprintf("%d missing values", tt.missing))
		})
	}
}

func TestMissingValuesCleanColumnSilent(t *testing.T) {
	ds := models.NewDataset([]string{"col"}, map[string][]any{
		"col": {"a", "b", "c"},
	})

	issues := NewValidator(ds, testLogger()).ValidateAll()
	assert.Empty(t, issuesOfType(issues, "missing_values"))
}

func TestDuplicateRows(t *testing.T) {
	ds := models.NewDataset([]string{"x"}, map[string][]any{
		"x": {"a", "b", "a", "c", "a"},
	})

	issues := NewValidator(ds, testLogger()).ValidateAll()

	datasetLevel := issuesOfType(issues, "duplicates")
	require.Len(t, datasetLevel, 1)
	assert.Equal(t, "Found 2 duplicate rows (40.0% of dataset)", datasetLevel[0].Description)
	assert.Equal(t, models.SeverityHigh, datasetLevel[0].Severity)
	assert.Nil(t, datasetLevel[0].RowNumber)
	assert.Nil(t, datasetLevel[0].ColumnName)

	// Every member of the duplicate group is reported, first occurrence included.
	rowLevel := issuesOfType(issues, "duplicate_row")
	require.Len(t, rowLevel, 3)
	for i, wantRow := range []int{0, 2, 4} {
		require.NotNil(t, rowLevel[i].RowNumber)
		assert.Equal(t, wantRow, *rowLevel[i].RowNumber)
		assert.Equal(t, fmt.Sprintf("Row %d is a duplicate", wantRow+1), rowLevel[i].Description)
	}
}

func TestDuplicateRowsValueEquality(t *testing.T) {
	// 1 and 1.0 are the same value; nulls compare equal to each other.
	ds := models.NewDataset([]string{"n", "m"}, map[string][]any{
		"n": {1, 1.0, 2},
		"m": {nil, nil, nil},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "duplicates")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "Found 1 duplicate rows")
}

func TestDuplicateRowDetailCap(t *testing.T) {
	values := make([]any, 30)
	for i := range values {
		values[i] = "same"
	}
	ds := models.NewDataset([]string{"x"}, map[string][]any{"x": values})

	issues := NewValidator(ds, testLogger()).ValidateAll()

	datasetLevel := issuesOfType(issues, "duplicates")
	require.Len(t, datasetLevel, 1)
	assert.Contains(t, datasetLevel[0].Description, "Found 29 duplicate rows")

	assert.Len(t, issuesOfType(issues, "duplicate_row"), detailIssueLimit)
}

func TestTypeInconsistency(t *testing.T) {
	ds := models.NewDataset([]string{"age"}, map[string][]any{
		"age": {30, 27, "not_a_number", 45, nil},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "type_inconsistency")
	require.Len(t, issues, 1)
	assert.Equal(t, "Column 'age' (numeric) contains 1 non-numeric value(s)", issues[0].Description)
	assert.Equal(t, models.SeverityHigh, issues[0].Severity)
}

func TestMixedTypes(t *testing.T) {
	ds := models.NewDataset([]string{"s"}, map[string][]any{
		"s": {"a", "b", 1},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "mixed_types")
	require.Len(t, issues, 1)
	assert.Equal(t, models.SeverityMedium, issues[0].Severity)
}

func TestEmailValidation(t *testing.T) {
	ds := models.NewDataset([]string{"email"}, map[string][]any{
		"email": {"user@example.com", "user@@example", "plainaddress", "a@b", "ok@mail.org"},
	})

	issues := NewValidator(ds, testLogger()).ValidateAll()

	summary := issuesOfType(issues, "invalid_email_format")
	require.Len(t, summary, 1)
	assert.Equal(t, "Column 'email' contains 3 invalid email format(s)", summary[0].Description)
	assert.Equal(t, models.SeverityMedium, summary[0].Severity)

	rowLevel := issuesOfType(issues, "invalid_email")
	require.Len(t, rowLevel, 3)
	assert.Equal(t, "Row 2: Invalid email format 'user@@example'", rowLevel[0].Description)
	require.NotNil(t, rowLevel[0].RowNumber)
	assert.Equal(t, 1, *rowLevel[0].RowNumber)
}

func TestEmailColumnNameMatching(t *testing.T) {
	// Column selection is name-based: no email-ish name, no email check.
	ds := models.NewDataset([]string{"contact"}, map[string][]any{
		"contact": {"not-an-email"},
	})

	issues := NewValidator(ds, testLogger()).ValidateAll()
	assert.Empty(t, issuesOfType(issues, "invalid_email_format"))
}

func TestPhoneValidation(t *testing.T) {
	ds := models.NewDataset([]string{"phone"}, map[string][]any{
		"phone": {"555-123-4567", "(555) 987 6543", "12345", "abc-def-ghij", nil},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "invalid_phone_format")
	require.Len(t, issues, 1)
	assert.Equal(t, "Column 'phone' contains 2 invalid phone number(s)", issues[0].Description)
	assert.Equal(t, models.SeverityLow, issues[0].Severity)
}

func TestDateValidation(t *testing.T) {
	ds := models.NewDataset([]string{"start_date"}, map[string][]any{
		"start_date": {"2024-01-15", "01/15/2024", "not a date", nil},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "invalid_date_format")
	require.Len(t, issues, 1)
	assert.Equal(t, "Column 'start_date' contains 1 invalid date format(s)", issues[0].Description)
	assert.Equal(t, models.SeverityMedium, issues[0].Severity)
}

func TestNegativeValuesGatedOnExtendedOutliers(t *testing.T) {
	t.Run("negatives with extended outlier are flagged", func(t *testing.T) {
		ds := models.NewDataset([]string{"age"}, map[string][]any{
			"age": {-5.0, 30.0, 31.0, 32.0, 33.0},
		})

		issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "negative_values")
		require.Len(t, issues, 1)
		assert.Equal(t, "Column 'age' contains 1 negative value(s)", issues[0].Description)
	})

	t.Run("negatives inside extended bounds stay silent", func(t *testing.T) {
		ds := models.NewDataset([]string{"age"}, map[string][]any{
			"age": {-2.0, -1.0, 0.0, 1.0, 2.0, 3.0},
		})

		issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "negative_values")
		assert.Empty(t, issues)
	})

	t.Run("column name outside the watch list is ignored", func(t *testing.T) {
		ds := models.NewDataset([]string{"delta"}, map[string][]any{
			"delta": {-5.0, 30.0, 31.0, 32.0, 33.0},
		})

		issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "negative_values")
		assert.Empty(t, issues)
	})
}

func TestOutlierDetection(t *testing.T) {
	ds := models.NewDataset([]string{"value"}, map[string][]any{
		"value": {1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0, 8.0, 9.0, 10.0, 1000.0},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "outliers")
	require.Len(t, issues, 1)
	assert.Equal(t, "Column 'value' has 1 outlier(s) (9.1%)", issues[0].Description)
	assert.Equal(t, models.SeverityMedium, issues[0].Severity)
}

func TestOutlierDetectionSkipsSmallAndConstantColumns(t *testing.T) {
	ds := models.NewDataset([]string{"tiny", "flat"}, map[string][]any{
		"tiny": {1.0, 2.0, 1000.0, nil, nil, nil, nil},
		"flat": {5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "outliers")
	assert.Empty(t, issues)
}

func TestEmptyStrings(t *testing.T) {
	ds := models.NewDataset([]string{"note"}, map[string][]any{
		"note": {"", "a", "", nil},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "empty_strings")
	require.Len(t, issues, 1)
	assert.Equal(t, "Column 'note' contains 2 empty string(s) (consider converting to null)", issues[0].Description)
	assert.Equal(t, models.SeverityLow, issues[0].Severity)
}

func TestStringLengthVariation(t *testing.T) {
	ds := models.NewDataset([]string{"text"}, map[string][]any{
		"text": {"ab", strings.Repeat("x", 250), "cd"},
	})

	issues := issuesOfType(NewValidator(ds, testLogger()).ValidateAll(), "string_length_variation")
	require.Len(t, issues, 1)
	assert.Equal(t, "Column 'text' has high variation in string lengths (min: 2, max: 250)", issues[0].Description)
}

func TestValidateAllDeterministic(t *testing.T) {
	ds := models.NewDataset([]string{"id", "email", "age", "note"}, map[string][]any{
		"id":    {1, 2, 2, 4, 5},
		"email": {"a@b.com", "bad", nil, "c@d.org", "also bad"},
		"age":   {30, -1, "oops", 45, nil},
		"note":  {"", "x", "x", nil, ""},
	})

	first := NewValidator(ds, testLogger()).ValidateAll()
	second := NewValidator(ds, testLogger()).ValidateAll()

	assert.Equal(t, first, second)
}

func TestSummaryConsistency(t *testing.T) {
	ds := models.NewDataset([]string{"email", "note"}, map[string][]any{
		"email": {"a@b.com", "bad", nil},
		"note":  {"", "x", nil},
	})

	v := NewValidator(ds, testLogger())
	issues := v.ValidateAll()
	summary := v.Summary()

	assert.Equal(t, len(issues), summary.TotalIssues)
	bySeverity := 0
	for _, n := range summary.BySeverity {
		bySeverity += n
	}
	assert.Equal(t, summary.TotalIssues, bySeverity)
	assert.Equal(t, 3, summary.DatasetRows)
	assert.Equal(t, 2, summary.DatasetColumns)
}

func TestEmptyDatasetProducesNoIssues(t *testing.T) {
	ds := models.NewDataset(nil, nil)

	v := NewValidator(ds, testLogger())
	assert.Empty(t, v.ValidateAll())
	assert.Equal(t, 0, v.Summary().TotalIssues)
}

func TestValidateAllEndToEnd(t *testing.T) {
	ds := models.NewDataset([]string{"id", "name", "email", "age"}, map[string][]any{
		"id":    {1, 2, 3, 4, 5},
		"name":  {"Alice", "Bob", "Charlie", nil, "Eve"},
		"email": {"alice@x.com", nil, "bad-email", "david@x.com", "eve@x.com"},
		"age":   {30, 27, "not_a_number", 45, nil},
	})

	v := NewValidator(ds, testLogger())
	issues := v.ValidateAll()

	missing := issuesOfType(issues, "missing_values")
	require.Len(t, missing, 3)
	for i, want := range []string{"name", "email", "age"} {
		require.NotNil(t, missing[i].ColumnName)
		assert.Equal(t, want, *missing[i].ColumnName)
		assert.Equal(t, models.SeverityMedium, missing[i].Severity)
		assert.Contains(t, missing[i].Description, "1 missing values (20.0%)")
	}

	typeIssues := issuesOfType(issues, "type_inconsistency")
	require.Len(t, typeIssues, 1)
	assert.Equal(t, "age", *typeIssues[0].ColumnName)
	assert.Equal(t, models.SeverityHigh, typeIssues[0].Severity)

	emailIssues := issuesOfType(issues, "invalid_email_format")
	require.Len(t, emailIssues, 1)
	assert.Equal(t, "Column 'email' contains 1 invalid email format(s)", emailIssues[0].Description)

	rowDetail := issuesOfType(issues, "invalid_email")
	require.Len(t, rowDetail, 1)
	assert.Equal(t, "Row 3: Invalid email format 'bad-email'", rowDetail[0].Description)

	summary := v.Summary()
	assert.Equal(t, 6, summary.TotalIssues)
	assert.Equal(t, 1, summary.BySeverity[models.SeverityHigh])
	assert.Equal(t, 5, summary.BySeverity[models.SeverityMedium])
	assert.Equal(t, 0, summary.BySeverity[models.SeverityLow])
}
