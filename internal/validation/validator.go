package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/internal/utils/stats"
	"github.com/dataprobe/dataprobe/pkg/models"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	phoneCleaner = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

	// Column names whose numeric values should never be negative.
	nonNegativeColumns = map[string]bool{
		"age":      true,
		"price":    true,
		"amount":   true,
		"count":    true,
		"quantity": true,
		"id":       true,
	}

	dateLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"01-02-2006",
		"02 Jan 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"15:04:05",
		"2006-01-02 15:04",
	}
)

const detailIssueLimit = 10

// Validator runs the fixed battery of structural and statistical checks over
// a tabular dataset. It is a pure function of its input: running it twice on
// the same dataset produces identical issue lists.
type Validator struct {
	logger  *logrus.Logger
	dataset *models.Dataset
	issues  []models.Issue
}

// NewValidator creates a validator for the given dataset.
func NewValidator(dataset *models.Dataset, logger *logrus.Logger) *Validator {
	if logger == nil {
		logger = logrus.New()
	}

	return &Validator{
		logger:  logger,
		dataset: dataset,
	}
}

// ValidateAll runs every check in fixed order and returns the concatenated
// issues. Checks are independent and additive; none short-circuits another.
func (v *Validator) ValidateAll() []models.Issue {
	v.issues = nil

	start := time.Now()

	// Basic checks
	v.checkMissingValues()
	v.checkDuplicates()
	v.checkDataTypes()

	// Format validation
	v.validateEmails()
	v.validatePhones()
	v.validateDates()

	// Numeric validation
	v.checkNumericRanges()
	v.detectOutliers()

	// String validation
	v.checkEmptyStrings()
	v.checkStringLengths()

	v.logger.WithFields(logrus.Fields{
		"rows":     v.dataset.Rows(),
		"columns":  v.dataset.ColumnCount(),
		"issues":   len(v.issues),
		"duration": time.Since(start),
	}).Info("Validation completed")

	return v.issues
}

// Summary derives the validation summary from the last ValidateAll run.
func (v *Validator) Summary() *models.Summary {
	return models.NewSummary(v.issues, v.dataset.Rows(), v.dataset.ColumnCount())
}

func (v *Validator) checkMissingValues() {
	rows := v.dataset.Rows()
	if rows == 0 {
		return
	}

	for _, col := range v.dataset.Columns() {
		missing := v.dataset.MissingCount(col)
		if missing == 0 {
			continue
		}

		missingPct := float64(missing) / float64(rows) * 100

		severity := models.SeverityLow
		if missingPct > 50 {
			severity = models.SeverityHigh
		} else if missingPct >= 20 {
			severity = models.SeverityMedium
		}

		v.issues = append(v.issues, models.NewColumnIssue(
			"missing_values",
			fmt.Sprintf("Column '%s' has %d missing values (%.1f%%)", col, missing, missingPct),
			severity,
			col,
		))
	}
}

func (v *Validator) checkDuplicates() {
	rows := v.dataset.Rows()
	if rows == 0 {
		return
	}

	groupSize := make(map[string]int, rows)
	keys := make([]string, rows)
	duplicateCount := 0

	for i := 0; i < rows; i++ {
		key := v.dataset.RowKey(i)
		keys[i] = key
		if groupSize[key] > 0 {
			duplicateCount++
		}
		groupSize[key]++
	}

	if duplicateCount == 0 {
		return
	}

	duplicatePct := float64(duplicateCount) / float64(rows) * 100
	severity := models.SeverityMedium
	if duplicatePct > 10 {
		severity = models.SeverityHigh
	}

	v.issues = append(v.issues, models.NewDatasetIssue(
		"duplicates",
		fmt.Sprintf("Found %d duplicate rows (%.1f%% of dataset)", duplicateCount, duplicatePct),
		severity,
	))

	// Row-level detail covers every member of a duplicate group, first and
	// subsequent occurrences alike, by ascending index.
	detailed := 0
	for i := 0; i < rows && detailed < detailIssueLimit; i++ {
		if groupSize[keys[i]] < 2 {
			continue
		}
		v.issues = append(v.issues, models.NewRowIssue(
			"duplicate_row",
			fmt.Sprintf("Row %d is a duplicate", i+1),
			models.SeverityMedium,
			i,
			"",
		))
		detailed++
	}
}

func (v *Validator) checkDataTypes() {
	for _, col := range v.dataset.Columns() {
		values := v.dataset.Values(col)
		if v.dataset.NonNullCount(col) == 0 {
			continue
		}

		switch v.dataset.Kind(col) {
		case models.ColumnNumeric:
			nonNumeric := 0
			for _, val := range values {
				if models.IsNull(val) {
					continue
				}
				if _, ok := models.AsFloat(val); !ok {
					nonNumeric++
				}
			}
			if nonNumeric > 0 {
				v.issues = append(v.issues, models.NewColumnIssue(
					"type_inconsistency",
					fmt.Sprintf("Column '%s' (numeric) contains %d non-numeric value(s)", col, nonNumeric),
					models.SeverityHigh,
					col,
				))
			}

		case models.ColumnString:
			hasStrings := false
			hasNumbers := false
			sampled := 0
			for _, val := range values {
				if models.IsNull(val) {
					continue
				}
				if _, ok := val.(string); ok {
					hasStrings = true
				} else if models.IsNumeric(val) {
					hasNumbers = true
				}
				sampled++
				if sampled >= 100 {
					break
				}
			}
			if hasStrings && hasNumbers {
				v.issues = append(v.issues, models.NewColumnIssue(
					"mixed_types",
					fmt.Sprintf("Column '%s' contains mixed data types (strings and numbers)", col),
					models.SeverityMedium,
					col,
				))
			}
		}
	}
}

func (v *Validator) validateEmails() {
	for _, col := range v.dataset.Columns() {
		lower := strings.ToLower(col)
		if !strings.Contains(lower, "email") && !strings.Contains(lower, "mail") {
			continue
		}
		if v.dataset.Kind(col) != models.ColumnString {
			continue
		}

		type invalidEmail struct {
			row   int
			value string
		}

		invalidCount := 0
		var examples []invalidEmail

		for i, val := range v.dataset.Values(col) {
			s, ok := val.(string)
			if models.IsNull(val) || !ok {
				continue
			}
			if emailPattern.MatchString(s) {
				continue
			}
			invalidCount++
			if len(examples) < detailIssueLimit {
				examples = append(examples, invalidEmail{row: i, value: s})
			}
		}

		if invalidCount == 0 {
			continue
		}

		v.issues = append(v.issues, models.NewColumnIssue(
			"invalid_email_format",
			fmt.Sprintf("Column '%s' contains %d invalid email format(s)", col, invalidCount),
			models.SeverityMedium,
			col,
		))

		for _, ex := range examples {
			v.issues = append(v.issues, models.NewRowIssue(
				"invalid_email",
				fmt.Sprintf("Row %d: Invalid email format '%s'", ex.row+1, ex.value),
				models.SeverityMedium,
				ex.row,
				col,
			))
		}
	}
}

func (v *Validator) validatePhones() {
	for _, col := range v.dataset.Columns() {
		lower := strings.ToLower(col)
		if !strings.Contains(lower, "phone") && !strings.Contains(lower, "tel") {
			continue
		}
		if v.dataset.Kind(col) != models.ColumnString {
			continue
		}

		invalidCount := 0
		for _, val := range v.dataset.Values(col) {
			s, ok := val.(string)
			if models.IsNull(val) || !ok {
				continue
			}
			if !validPhone(s) {
				invalidCount++
			}
		}

		if invalidCount > 0 {
			v.issues = append(v.issues, models.NewColumnIssue(
				"invalid_phone_format",
				fmt.Sprintf("Column '%s' contains %d invalid phone number(s)", col, invalidCount),
				models.SeverityLow,
				col,
			))
		}
	}
}

func validPhone(s string) bool {
	cleaned := phoneCleaner.Replace(s)
	if len(cleaned) < 7 || len(cleaned) > 15 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (v *Validator) validateDates() {
	for _, col := range v.dataset.Columns() {
		lower := strings.ToLower(col)
		if !strings.Contains(lower, "date") && !strings.Contains(lower, "time") {
			continue
		}
		if v.dataset.Kind(col) != models.ColumnString {
			continue
		}

		invalidCount := 0
		for _, val := range v.dataset.Values(col) {
			if models.IsNull(val) {
				continue
			}
			if !parseableAsDate(val) {
				invalidCount++
			}
		}

		if invalidCount > 0 {
			v.issues = append(v.issues, models.NewColumnIssue(
				"invalid_date_format",
				fmt.Sprintf("Column '%s' contains %d invalid date format(s)", col, invalidCount),
				models.SeverityMedium,
				col,
			))
		}
	}
}

func parseableAsDate(val any) bool {
	switch x := val.(type) {
	case time.Time:
		return true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return false
		}
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
		return false
	default:
		// Numeric values are interpretable as epoch offsets.
		_, ok := models.AsFloat(val)
		return ok
	}
}

// checkNumericRanges flags negative values in columns that should never hold
// them (age, price, amount, count, quantity, id). The check only fires when
// the column also has values outside the extended 3*IQR bounds; a negative
// value inside those bounds is not reported. Kept for compatibility with
// existing consumers even though the gating couples two unrelated signals.
func (v *Validator) checkNumericRanges() {
	for _, col := range v.dataset.ColumnsOfKind(models.ColumnNumeric) {
		values := v.dataset.NumericValues(col)
		if len(values) == 0 {
			continue
		}

		lower, upper := stats.Fences(values, 3)
		if stats.CountOutside(values, lower, upper) == 0 {
			continue
		}

		if !nonNegativeColumns[strings.ToLower(col)] {
			continue
		}

		negatives := 0
		for _, val := range values {
			if val < 0 {
				negatives++
			}
		}
		if negatives > 0 {
			v.issues = append(v.issues, models.NewColumnIssue(
				"negative_values",
				fmt.Sprintf("Column '%s' contains %d negative value(s)", col, negatives),
				models.SeverityMedium,
				col,
			))
		}
	}
}

func (v *Validator) detectOutliers() {
	rows := v.dataset.Rows()

	for _, col := range v.dataset.ColumnsOfKind(models.ColumnNumeric) {
		values := v.dataset.NumericValues(col)
		if len(values) <= 4 {
			continue
		}
		if stats.IQR(values) <= 0 {
			continue
		}

		lower, upper := stats.Fences(values, 1.5)
		outlierCount := stats.CountOutside(values, lower, upper)
		if outlierCount == 0 {
			continue
		}

		outlierPct := float64(outlierCount) / float64(rows) * 100
		severity := models.SeverityMedium
		if outlierPct > 10 {
			severity = models.SeverityHigh
		}

		v.issues = append(v.issues, models.NewColumnIssue(
			"outliers",
			fmt.Sprintf("Column '%s' has %d outlier(s) (%.1f%%)", col, outlierCount, outlierPct),
			severity,
			col,
		))
	}
}

func (v *Validator) checkEmptyStrings() {
	for _, col := range v.dataset.ColumnsOfKind(models.ColumnString) {
		emptyCount := 0
		for _, val := range v.dataset.Values(col) {
			if s, ok := val.(string); ok && s == "" {
				emptyCount++
			}
		}

		if emptyCount > 0 {
			v.issues = append(v.issues, models.NewColumnIssue(
				"empty_strings",
				fmt.Sprintf("Column '%s' contains %d empty string(s) (consider converting to null)", col, emptyCount),
				models.SeverityLow,
				col,
			))
		}
	}
}

func (v *Validator) checkStringLengths() {
	for _, col := range v.dataset.ColumnsOfKind(models.ColumnString) {
		minLen, maxLen := -1, 0
		for _, val := range v.dataset.Values(col) {
			if models.IsNull(val) {
				continue
			}
			n := len(models.AsString(val))
			if minLen < 0 || n < minLen {
				minLen = n
			}
			if n > maxLen {
				maxLen = n
			}
		}
		if minLen < 0 {
			continue
		}

		if maxLen > minLen*10 && maxLen > 100 {
			v.issues = append(v.issues, models.NewColumnIssue(
				"string_length_variation",
				fmt.Sprintf("Column '%s' has high variation in string lengths (min: %d, max: %d)", col, minLen, maxLen),
				models.SeverityLow,
				col,
			))
		}
	}
}
