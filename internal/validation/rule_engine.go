package validation

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/pkg/models"
)

var (
	ruleEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	rulePhonePattern = regexp.MustCompile(`^\+?[\d\s()-]{10,}$`)
)

// RuleEngine executes a configured, ordered list of validation rules against
// a dataset. Misconfiguration is a data-quality finding, not an error: an
// unknown rule type yields an unknown_rule_type issue, and a handler missing
// its column parameter yields nothing.
type RuleEngine struct {
	rules  []models.Rule
	logger *logrus.Logger
}

// NewRuleEngine creates a rule engine over the given rules. The engine never
// mutates the rules it is given.
func NewRuleEngine(rules []models.Rule, logger *logrus.Logger) *RuleEngine {
	if logger == nil {
		logger = logrus.New()
	}

	return &RuleEngine{
		rules:  rules,
		logger: logger,
	}
}

// Validate runs all enabled rules in list order and concatenates their
// issues. Output may be merged freely with DataValidator output; the two are
// independent and no deduplication is performed.
func (e *RuleEngine) Validate(ds *models.Dataset) []models.Issue {
	var issues []models.Issue

	for _, rule := range e.rules {
		if !rule.Enabled {
			continue
		}

		switch rule.RuleType {
		case models.RuleMissingThreshold:
			issues = append(issues, e.checkMissingThreshold(ds, rule)...)
		case models.RuleRangeCheck:
			issues = append(issues, e.checkRange(ds, rule)...)
		case models.RuleFormatCheck:
			issues = append(issues, e.checkFormat(ds, rule)...)
		case models.RuleRequiredColumn:
			issues = append(issues, e.checkRequiredColumn(ds, rule)...)
		case models.RuleUniqueCheck:
			issues = append(issues, e.checkUnique(ds, rule)...)
		case models.RuleValueInList:
			issues = append(issues, e.checkValueInList(ds, rule)...)
		default:
			e.logger.WithFields(logrus.Fields{
				"rule_name": rule.RuleName,
				"rule_type": rule.RuleType,
			}).Warn("Unknown rule type")

			issue := models.NewDatasetIssue(
				"unknown_rule_type",
				fmt.Sprintf("Unknown rule type: %s", rule.RuleType),
				models.SeverityMedium,
			)
			issue.RuleName = rule.RuleName
			issues = append(issues, issue)
		}
	}

	return issues
}

func (e *RuleEngine) checkMissingThreshold(ds *models.Dataset, rule models.Rule) []models.Issue {
	column := rule.Parameters.Column
	if column == "" || !ds.HasColumn(column) || ds.Rows() == 0 {
		return nil
	}

	threshold := 0.0
	if rule.Parameters.Threshold != nil {
		threshold = *rule.Parameters.Threshold
	}

	missingPct := float64(ds.MissingCount(column)) / float64(ds.Rows()) * 100
	if missingPct <= threshold {
		return nil
	}

	severity := models.SeverityMedium
	if missingPct > 50 {
		severity = models.SeverityHigh
	}

	issue := models.NewColumnIssue(
		"missing_threshold_exceeded",
		fmt.Sprintf("Column '%s' has %.2f%% missing values (threshold: %s%%)",
			column, missingPct, formatNumber(threshold)),
		severity,
		column,
	)
	issue.RuleName = rule.RuleName
	return []models.Issue{issue}
}

func (e *RuleEngine) checkRange(ds *models.Dataset, rule models.Rule) []models.Issue {
	column := rule.Parameters.Column
	if column == "" || !ds.HasColumn(column) {
		return nil
	}

	values := ds.NumericValues(column)
	var issues []models.Issue

	if min := rule.Parameters.Min; min != nil {
		belowMin := 0
		for _, v := range values {
			if v < *min {
				belowMin++
			}
		}
		if belowMin > 0 {
			issue := models.NewColumnIssue(
				"below_minimum",
				fmt.Sprintf("Column '%s' has %d values below minimum %s",
					column, belowMin, formatNumber(*min)),
				models.SeverityHigh,
				column,
			)
			issue.RuleName = rule.RuleName
			issues = append(issues, issue)
		}
	}

	if max := rule.Parameters.Max; max != nil {
		aboveMax := 0
		for _, v := range values {
			if v > *max {
				aboveMax++
			}
		}
		if aboveMax > 0 {
			issue := models.NewColumnIssue(
				"above_maximum",
				fmt.Sprintf("Column '%s' has %d values above maximum %s",
					column, aboveMax, formatNumber(*max)),
				models.SeverityHigh,
				column,
			)
			issue.RuleName = rule.RuleName
			issues = append(issues, issue)
		}
	}

	return issues
}

func (e *RuleEngine) checkFormat(ds *models.Dataset, rule models.Rule) []models.Issue {
	column := rule.Parameters.Column
	if column == "" || !ds.HasColumn(column) {
		return nil
	}

	format := rule.Parameters.Format
	if format == "" {
		format = "email"
	}

	var pattern *regexp.Regexp
	switch format {
	case "email":
		pattern = ruleEmailPattern
	case "phone":
		pattern = rulePhonePattern
	default:
		return nil
	}

	invalid := 0
	for _, val := range ds.Values(column) {
		if models.IsNull(val) {
			continue
		}
		if !pattern.MatchString(models.AsString(val)) {
			invalid++
		}
	}

	if invalid == 0 {
		return nil
	}

	issue := models.NewColumnIssue(
		"invalid_format",
		fmt.Sprintf("Column '%s' has %d invalid %s formats", column, invalid, format),
		models.SeverityMedium,
		column,
	)
	issue.RuleName = rule.RuleName
	return []models.Issue{issue}
}

func (e *RuleEngine) checkRequiredColumn(ds *models.Dataset, rule models.Rule) []models.Issue {
	column := rule.Parameters.Column
	if column == "" || ds.HasColumn(column) {
		return nil
	}

	issue := models.NewColumnIssue(
		"missing_column",
		fmt.Sprintf("Required column '%s' is missing", column),
		models.SeverityHigh,
		column,
	)
	issue.RuleName = rule.RuleName
	return []models.Issue{issue}
}

func (e *RuleEngine) checkUnique(ds *models.Dataset, rule models.Rule) []models.Issue {
	column := rule.Parameters.Column
	if column == "" || !ds.HasColumn(column) {
		return nil
	}

	seen := make(map[string]bool)
	duplicates := 0
	for _, val := range ds.Values(column) {
		key := models.ValueKey(val)
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}

	if duplicates == 0 {
		return nil
	}

	issue := models.NewColumnIssue(
		"duplicate_values",
		fmt.Sprintf("Column '%s' has %d duplicate values", column, duplicates),
		models.SeverityMedium,
		column,
	)
	issue.RuleName = rule.RuleName
	return []models.Issue{issue}
}

func (e *RuleEngine) checkValueInList(ds *models.Dataset, rule models.Rule) []models.Issue {
	column := rule.Parameters.Column
	allowed := rule.Parameters.AllowedValues
	if column == "" || !ds.HasColumn(column) || len(allowed) == 0 {
		return nil
	}

	allowedKeys := make(map[string]bool, len(allowed))
	for _, val := range allowed {
		allowedKeys[models.ValueKey(val)] = true
	}

	// Nulls never count as violations.
	invalid := 0
	for _, val := range ds.Values(column) {
		if models.IsNull(val) {
			continue
		}
		if !allowedKeys[models.ValueKey(val)] {
			invalid++
		}
	}

	if invalid == 0 {
		return nil
	}

	issue := models.NewColumnIssue(
		"invalid_value",
		fmt.Sprintf("Column '%s' has %d values not in allowed list", column, invalid),
		models.SeverityMedium,
		column,
	)
	issue.RuleName = rule.RuleName
	return []models.Issue{issue}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
