package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataprobe/dataprobe/pkg/models"
)

func floatPtr(f float64) *float64 { return &f }

func ruleTestDataset() *models.Dataset {
	return models.NewDataset([]string{"id", "email", "age", "status"}, map[string][]any{
		"id":     {1, 2, 2, 4},
		"email":  {"a@b.com", "broken", nil, "c@d.org"},
		"age":    {-5.0, 30.0, 200.0, 45.0},
		"status": {"active", "inactive", "unknown", nil},
	})
}

func TestRuleEngineDisabledRuleIsNoOp(t *testing.T) {
	rules := []models.Rule{{
		RuleName: "age range",
		RuleType: models.RuleRangeCheck,
		Enabled:  false,
		Parameters: models.RuleParams{
			Column: "age",
			Min:    floatPtr(0),
			Max:    floatPtr(120),
		},
	}}

	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	assert.Empty(t, issues)
}

func TestRuleEngineUnknownRuleType(t *testing.T) {
	rules := []models.Rule{{
		RuleName: "mystery",
		RuleType: "bogus",
		Enabled:  true,
	}}

	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	require.Len(t, issues, 1)
	assert.Equal(t, "unknown_rule_type", issues[0].IssueType)
	assert.Equal(t, "Unknown rule type: bogus", issues[0].Description)
	assert.Equal(t, models.SeverityMedium, issues[0].Severity)
	assert.Equal(t, "mystery", issues[0].RuleName)
	assert.Nil(t, issues[0].RowNumber)
	assert.Nil(t, issues[0].ColumnName)
}

func TestRuleEngineMissingColumnParameterSkips(t *testing.T) {
	rules := []models.Rule{
		{RuleName: "no column", RuleType: models.RuleRangeCheck, Enabled: true},
		{RuleName: "absent column", RuleType: models.RuleUniqueCheck, Enabled: true,
			Parameters: models.RuleParams{Column: "nope"}},
	}

	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	assert.Empty(t, issues)
}

func TestMissingThresholdRule(t *testing.T) {
	t.Run("default threshold zero", func(t *testing.T) {
		rules := []models.Rule{{
			RuleName:   "email completeness",
			RuleType:   models.RuleMissingThreshold,
			Enabled:    true,
			Parameters: models.RuleParams{Column: "email"},
		}}

		issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
		require.Len(t, issues, 1)
		assert.Equal(t, "missing_threshold_exceeded", issues[0].IssueType)
		assert.Equal(t, "Column 'email' has 25.00% missing values (threshold: 0%)", issues[0].Description)
		assert.Equal(t, models.SeverityMedium, issues[0].Severity)
		assert.Equal(t, "email completeness", issues[0].RuleName)
	})

	t.Run("over 50 percent is high", func(t *testing.T) {
		ds := models.NewDataset([]string{"c"}, map[string][]any{
			"c": {nil, nil, nil, "x"},
		})
		rules := []models.Rule{{
			RuleName:   "r",
			RuleType:   models.RuleMissingThreshold,
			Enabled:    true,
			Parameters: models.RuleParams{Column: "c", Threshold: floatPtr(10)},
		}}

		issues := NewRuleEngine(rules, testLogger()).Validate(ds)
		require.Len(t, issues, 1)
		assert.Equal(t, models.SeverityHigh, issues[0].Severity)
		assert.Contains(t, issues[0].Description, "(threshold: 10%)")
	})

	t.Run("under threshold is silent", func(t *testing.T) {
		rules := []models.Rule{{
			RuleName:   "r",
			RuleType:   models.RuleMissingThreshold,
			Enabled:    true,
			Parameters: models.RuleParams{Column: "email", Threshold: floatPtr(25)},
		}}

		issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
		assert.Empty(t, issues)
	})
}

func TestRangeCheckRule(t *testing.T) {
	rules := []models.Rule{{
		RuleName: "age bounds",
		RuleType: models.RuleRangeCheck,
		Enabled:  true,
		Parameters: models.RuleParams{
			Column: "age",
			Min:    floatPtr(0),
			Max:    floatPtr(120),
		},
	}}

	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	require.Len(t, issues, 2)

	assert.Equal(t, "below_minimum", issues[0].IssueType)
	assert.Equal(t, "Column 'age' has 1 values below minimum 0", issues[0].Description)
	assert.Equal(t, models.SeverityHigh, issues[0].Severity)

	assert.Equal(t, "above_maximum", issues[1].IssueType)
	assert.Equal(t, "Column 'age' has 1 values above maximum 120", issues[1].Description)
	assert.Equal(t, models.SeverityHigh, issues[1].Severity)
}

func TestFormatCheckRule(t *testing.T) {
	t.Run("email is the default format", func(t *testing.T) {
		rules := []models.Rule{{
			RuleName:   "email shape",
			RuleType:   models.RuleFormatCheck,
			Enabled:    true,
			Parameters: models.RuleParams{Column: "email"},
		}}

		issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
		require.Len(t, issues, 1)
		assert.Equal(t, "invalid_format", issues[0].IssueType)
		assert.Equal(t, "Column 'email' has 1 invalid email formats", issues[0].Description)
	})

	t.Run("phone format", func(t *testing.T) {
		ds := models.NewDataset([]string{"phone"}, map[string][]any{
			"phone": {"+1 (555) 123-4567", "nope", nil},
		})
		rules := []models.Rule{{
			RuleName:   "phone shape",
			RuleType:   models.RuleFormatCheck,
			Enabled:    true,
			Parameters: models.RuleParams{Column: "phone", Format: "phone"},
		}}

		issues := NewRuleEngine(rules, testLogger()).Validate(ds)
		require.Len(t, issues, 1)
		assert.Equal(t, "Column 'phone' has 1 invalid phone formats", issues[0].Description)
	})

	t.Run("unknown format is skipped", func(t *testing.T) {
		rules := []models.Rule{{
			RuleName:   "r",
			RuleType:   models.RuleFormatCheck,
			Enabled:    true,
			Parameters: models.RuleParams{Column: "email", Format: "ipv6"},
		}}

		issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
		assert.Empty(t, issues)
	})
}

func TestRequiredColumnRule(t *testing.T) {
	rules := []models.Rule{
		{RuleName: "need id", RuleType: models.RuleRequiredColumn, Enabled: true,
			Parameters: models.RuleParams{Column: "id"}},
		{RuleName: "need score", RuleType: models.RuleRequiredColumn, Enabled: true,
			Parameters: models.RuleParams{Column: "score"}},
	}

	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	require.Len(t, issues, 1)
	assert.Equal(t, "missing_column", issues[0].IssueType)
	assert.Equal(t, "Required column 'score' is missing", issues[0].Description)
	assert.Equal(t, models.SeverityHigh, issues[0].Severity)
	require.NotNil(t, issues[0].ColumnName)
	assert.Equal(t, "score", *issues[0].ColumnName)
	assert.Equal(t, "need score", issues[0].RuleName)
}

func TestUniqueCheckRule(t *testing.T) {
	rules := []models.Rule{{
		RuleName:   "id unique",
		RuleType:   models.RuleUniqueCheck,
		Enabled:    true,
		Parameters: models.RuleParams{Column: "id"},
	}}

	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	require.Len(t, issues, 1)
	assert.Equal(t, "duplicate_values", issues[0].IssueType)
	assert.Equal(t, "Column 'id' has 1 duplicate values", issues[0].Description)
}

func TestUniqueCheckNumericWidths(t *testing.T) {
	// 1 and 1.0 count as the same value.
	ds := models.NewDataset([]string{"n"}, map[string][]any{
		"n": {1, 1.0, 2},
	})
	rules := []models.Rule{{
		RuleName:   "r",
		RuleType:   models.RuleUniqueCheck,
		Enabled:    true,
		Parameters: models.RuleParams{Column: "n"},
	}}

	issues := NewRuleEngine(rules, testLogger()).Validate(ds)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "1 duplicate values")
}

func TestValueInListRule(t *testing.T) {
	rules := []models.Rule{{
		RuleName: "status domain",
		RuleType: models.RuleValueInList,
		Enabled:  true,
		Parameters: models.RuleParams{
			Column:        "status",
			AllowedValues: []any{"active", "inactive"},
		},
	}}

	// The null in status does not count as a violation.
	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	require.Len(t, issues, 1)
	assert.Equal(t, "invalid_value", issues[0].IssueType)
	assert.Equal(t, "Column 'status' has 1 values not in allowed list", issues[0].Description)
	assert.Equal(t, models.SeverityMedium, issues[0].Severity)
}

func TestRuleEngineOrderAndAggregation(t *testing.T) {
	rules := []models.Rule{
		{RuleName: "first", RuleType: models.RuleRequiredColumn, Enabled: true,
			Parameters: models.RuleParams{Column: "score"}},
		{RuleName: "second", RuleType: "bogus", Enabled: true},
	}

	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	require.Len(t, issues, 2)
	assert.Equal(t, "missing_column", issues[0].IssueType)
	assert.Equal(t, "unknown_rule_type", issues[1].IssueType)
}

func TestRuleJSONDecodeIntoEngine(t *testing.T) {
	raw := `[
		{"rule_name": "age bounds", "rule_type": "range_check",
		 "parameters": {"column": "age", "min": 0, "max": 120}},
		{"rule_name": "off", "rule_type": "unique_check", "enabled": false,
		 "parameters": {"column": "id"}}
	]`

	var rules []models.Rule
	require.NoError(t, json.Unmarshal([]byte(raw), &rules))
	require.Len(t, rules, 2)
	assert.True(t, rules[0].Enabled)
	assert.False(t, rules[1].Enabled)

	issues := NewRuleEngine(rules, testLogger()).Validate(ruleTestDataset())
	require.Len(t, issues, 2)
	assert.Equal(t, "below_minimum", issues[0].IssueType)
	assert.Equal(t, "above_maximum", issues[1].IssueType)
}
