package models

import "encoding/json"

// Supported rule types for the configurable rule engine.
const (
	RuleMissingThreshold = "missing_threshold"
	RuleRangeCheck       = "range_check"
	RuleFormatCheck      = "format_check"
	RuleRequiredColumn   = "required_column"
	RuleUniqueCheck      = "unique_check"
	RuleValueInList      = "value_in_list"
)

// RuleParams carries the parameters a rule handler may read. Which fields are
// required depends on the rule type; a handler missing its column parameter
// produces no issues rather than an error.
type RuleParams struct {
	Column        string   `json:"column,omitempty"`
	Threshold     *float64 `json:"threshold,omitempty"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
	Format        string   `json:"format,omitempty"`
	AllowedValues []any    `json:"allowed_values,omitempty"`
}

// Rule is one configured validation check. Rules are passed by value into the
// engine; the engine neither mutates nor persists them.
type Rule struct {
	RuleName   string     `json:"rule_name"`
	RuleType   string     `json:"rule_type"`
	Enabled    bool       `json:"enabled"`
	Parameters RuleParams `json:"parameters"`
}

// UnmarshalJSON decodes a rule, defaulting Enabled to true when the key is
// omitted so stored configurations without the flag stay active.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type alias struct {
		RuleName   string     `json:"rule_name"`
		RuleType   string     `json:"rule_type"`
		Enabled    *bool      `json:"enabled"`
		Parameters RuleParams `json:"parameters"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	r.RuleName = a.RuleName
	r.RuleType = a.RuleType
	r.Parameters = a.Parameters
	r.Enabled = a.Enabled == nil || *a.Enabled
	return nil
}
