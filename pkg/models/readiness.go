package models

// ReadinessSummary describes the dataset shape underlying a readiness result.
type ReadinessSummary struct {
	TotalRows          int     `json:"total_rows"`
	TotalColumns       int     `json:"total_columns"`
	NumericColumns     int     `json:"numeric_columns"`
	CategoricalColumns int     `json:"categorical_columns"`
	DatetimeColumns    int     `json:"datetime_columns"`
	MissingDataPct     float64 `json:"missing_data_pct"`
}

// ReadinessResult is the outcome of an ML readiness analysis.
type ReadinessResult struct {
	ReadinessScore  float64          `json:"readiness_score"`
	ReadinessLevel  string           `json:"readiness_level"`
	Recommendations []string         `json:"recommendations"`
	Summary         ReadinessSummary `json:"summary"`
}

// ReadinessLevelFor maps a readiness score to its qualitative band.
// Lower bounds are inclusive.
func ReadinessLevelFor(score float64) string {
	switch {
	case score >= 80:
		return "Excellent - Ready for ML"
	case score >= 65:
		return "Good - Minor preparation needed"
	case score >= 50:
		return "Fair - Moderate preparation required"
	case score >= 35:
		return "Poor - Significant preparation needed"
	default:
		return "Very Poor - Major data issues"
	}
}
