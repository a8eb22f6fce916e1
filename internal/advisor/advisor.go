// Package advisor analyzes a tabular dataset and produces machine-learning
// readiness guidance: a 0-100 score, a qualitative level, and actionable
// recommendations covering missing data, class balance, feature engineering,
// encoding, normalization, and feature selection.
package advisor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/internal/utils/stats"
	"github.com/dataprobe/dataprobe/pkg/models"
)

// Advisor produces ML readiness guidance for a dataset. Prior validation
// issues are stored for future weighting but do not yet influence the score.
type Advisor struct {
	logger      *logrus.Logger
	dataset     *models.Dataset
	priorIssues []models.Issue
}

// NewAdvisor creates an advisor for the given dataset.
func NewAdvisor(dataset *models.Dataset, priorIssues []models.Issue, logger *logrus.Logger) *Advisor {
	if logger == nil {
		logger = logrus.New()
	}

	return &Advisor{
		logger:      logger,
		dataset:     dataset,
		priorIssues: priorIssues,
	}
}

// GetMLRecommendations is a convenience wrapper around NewAdvisor().Analyze().
func GetMLRecommendations(dataset *models.Dataset, priorIssues []models.Issue) *models.ReadinessResult {
	return NewAdvisor(dataset, priorIssues, nil).Analyze()
}

// Analyze runs all sub-analyses and combines their recommendations in fixed
// order: missing values, balance, feature engineering, encoding,
// normalization, feature selection.
func (a *Advisor) Analyze() *models.ReadinessResult {
	start := time.Now()

	numericCols := a.dataset.ColumnsOfKind(models.ColumnNumeric)
	categoricalCols := a.dataset.ColumnsOfKind(models.ColumnString)
	datetimeCols := a.dataset.ColumnsOfKind(models.ColumnDateTime)

	missingPct, missingRecs := a.analyzeMissingValues()
	balanceRecs := a.checkDataBalance()
	featureRecs := a.recommendFeatureEngineering(numericCols, categoricalCols, datetimeCols)
	encodingRecs := a.recommendEncoding(categoricalCols)
	normalizationRecs := a.recommendNormalization(numericCols)
	selectionRecs := a.recommendFeatureSelection(numericCols)

	score := a.calculateReadinessScore(missingPct, len(numericCols), len(categoricalCols))

	recommendations := make([]string, 0,
		len(missingRecs)+len(balanceRecs)+len(featureRecs)+
			len(encodingRecs)+len(normalizationRecs)+len(selectionRecs))
	recommendations = append(recommendations, missingRecs...)
	recommendations = append(recommendations, balanceRecs...)
	recommendations = append(recommendations, featureRecs...)
	recommendations = append(recommendations, encodingRecs...)
	recommendations = append(recommendations, normalizationRecs...)
	recommendations = append(recommendations, selectionRecs...)

	result := &models.ReadinessResult{
		ReadinessScore:  round2(score),
		ReadinessLevel:  models.ReadinessLevelFor(score),
		Recommendations: recommendations,
		Summary: models.ReadinessSummary{
			TotalRows:          a.dataset.Rows(),
			TotalColumns:       a.dataset.ColumnCount(),
			NumericColumns:     len(numericCols),
			CategoricalColumns: len(categoricalCols),
			DatetimeColumns:    len(datetimeCols),
			MissingDataPct:     missingPct,
		},
	}

	a.logger.WithFields(logrus.Fields{
		"readiness_score": result.ReadinessScore,
		"readiness_level": result.ReadinessLevel,
		"recommendations": len(result.Recommendations),
		"duration":        time.Since(start),
	}).Info("ML readiness analysis completed")

	return result
}

func (a *Advisor) analyzeMissingValues() (float64, []string) {
	rows := a.dataset.Rows()
	cols := a.dataset.ColumnCount()
	totalCells := rows * cols
	if totalCells == 0 {
		return 0, nil
	}

	totalMissing := 0
	var highMissing []string
	var mediumMissing []string

	for _, col := range a.dataset.Columns() {
		missing := a.dataset.MissingCount(col)
		totalMissing += missing

		if float64(missing) > float64(rows)*0.5 {
			highMissing = append(highMissing, col)
		} else if float64(missing) > float64(rows)*0.1 {
			mediumMissing = append(mediumMissing, col)
		}
	}

	totalMissingPct := round2(float64(totalMissing) / float64(totalCells) * 100)
	if totalMissing == 0 {
		return totalMissingPct, nil
	}

	var recs []string

	if len(highMissing) > 0 {
		recs = append(recs, fmt.Sprintf(
			"⚠️ **High Missing Values**: %d column(s) have >50%% missing data. Consider dropping: %s",
			len(highMissing), strings.Join(truncate(highMissing, 3), ", ")))
	}

	for _, col := range truncate(mediumMissing, 5) {
		if a.dataset.Kind(col) == models.ColumnNumeric {
			recs = append(recs, fmt.Sprintf(
				"📊 **Missing Values**: Column '%s' (numeric) - Consider imputation: mean/median for numeric, mode for categorical",
				col))
		} else {
			recs = append(recs, fmt.Sprintf(
				"📊 **Missing Values**: Column '%s' (categorical) - Consider: mode imputation, 'unknown' category, or dropping if missing >30%%",
				col))
		}
	}

	return totalMissingPct, recs
}

func (a *Advisor) checkDataBalance() []string {
	rows := a.dataset.Rows()
	if rows == 0 {
		return nil
	}

	// Candidate target columns: low-cardinality string or integer columns.
	var candidates []string
	for _, col := range a.dataset.Columns() {
		kind := a.dataset.Kind(col)
		isTargetLike := kind == models.ColumnString ||
			(kind == models.ColumnNumeric && a.dataset.Integral(col))
		if isTargetLike && a.dataset.DistinctCount(col) <= 20 {
			candidates = append(candidates, col)
		}
	}

	var recs []string
	for _, col := range truncate(candidates, 3) {
		counts := make(map[string]int)
		for _, val := range a.dataset.Values(col) {
			if models.IsNull(val) {
				continue
			}
			counts[models.ValueKey(val)]++
		}
		if len(counts) < 2 {
			continue
		}

		dominant := 0
		for _, n := range counts {
			if n > dominant {
				dominant = n
			}
		}
		dominantPct := float64(dominant) / float64(rows) * 100

		if dominantPct > 80 {
			recs = append(recs, fmt.Sprintf(
				"⚖️ **Class Imbalance**: Column '%s' is highly imbalanced (%.1f%% in dominant class). Consider: SMOTE, undersampling, or weighted loss functions",
				col, dominantPct))
		} else if dominantPct > 70 {
			recs = append(recs, fmt.Sprintf(
				"⚖️ **Class Imbalance**: Column '%s' shows moderate imbalance (%.1f%%). Monitor during training, consider class weights",
				col, dominantPct))
		}
	}

	return recs
}

func (a *Advisor) recommendFeatureEngineering(numericCols, categoricalCols, datetimeCols []string) []string {
	var recs []string

	if len(datetimeCols) > 0 {
		recs = append(recs, fmt.Sprintf(
			"📅 **Date Features**: Extract features from %d datetime column(s): year, month, day_of_week, is_weekend, time_since_epoch",
			len(datetimeCols)))
	}

	if len(numericCols) >= 3 {
		recs = append(recs, fmt.Sprintf(
			"🔢 **Numeric Features**: %d numeric column(s) detected. Consider: polynomial features, ratios, or interactions between top features",
			len(numericCols)))

		if pairs := a.countHighCorrelationPairs(numericCols); pairs > 0 {
			recs = append(recs, fmt.Sprintf(
				"🔗 **High Correlation**: %d highly correlated pairs detected (>0.8). Consider removing one from each pair to reduce multicollinearity",
				pairs))
		}
	}

	if len(categoricalCols) > 0 {
		highCardinality := 0
		lowCardinality := 0
		for _, col := range categoricalCols {
			distinct := a.dataset.DistinctCount(col)
			if distinct > 20 {
				highCardinality++
			}
			if distinct >= 2 && distinct <= 10 {
				lowCardinality++
			}
		}

		if highCardinality > 0 {
			recs = append(recs, fmt.Sprintf(
				"🏷️ **High Cardinality**: %d categorical column(s) with >20 unique values. Consider: grouping rare categories, target encoding, or feature hashing",
				highCardinality))
		}
		if lowCardinality > 0 {
			recs = append(recs, fmt.Sprintf(
				"✅ **Encoding Ready**: %d categorical column(s) suitable for one-hot encoding",
				lowCardinality))
		}
	}

	return recs
}

// countHighCorrelationPairs counts numeric column pairs whose absolute
// Pearson correlation exceeds 0.8, computed over rows where both cells hold
// coercible values.
func (a *Advisor) countHighCorrelationPairs(numericCols []string) int {
	pairs := 0
	for i := 0; i < len(numericCols); i++ {
		for j := i + 1; j < len(numericCols); j++ {
			x, y := a.pairedValues(numericCols[i], numericCols[j])
			if len(x) < 2 {
				continue
			}
			if math.Abs(stats.Correlation(x, y)) > 0.8 {
				pairs++
			}
		}
	}
	return pairs
}

func (a *Advisor) pairedValues(colA, colB string) ([]float64, []float64) {
	valuesA := a.dataset.Values(colA)
	valuesB := a.dataset.Values(colB)

	var x, y []float64
	for i := 0; i < a.dataset.Rows(); i++ {
		if i >= len(valuesA) || i >= len(valuesB) {
			break
		}
		fa, okA := models.AsFloat(valuesA[i])
		fb, okB := models.AsFloat(valuesB[i])
		if models.IsNull(valuesA[i]) || models.IsNull(valuesB[i]) || !okA || !okB {
			continue
		}
		x = append(x, fa)
		y = append(y, fb)
	}
	return x, y
}

func (a *Advisor) recommendEncoding(categoricalCols []string) []string {
	var recs []string

	for _, col := range truncate(categoricalCols, 5) {
		distinct := a.dataset.DistinctCount(col)

		switch {
		case distinct == 2:
			recs = append(recs, fmt.Sprintf(
				"🔤 **Encoding**: Column '%s' (binary) - Use label encoding (0/1)", col))
		case distinct >= 3 && distinct <= 10:
			recs = append(recs, fmt.Sprintf(
				"🔤 **Encoding**: Column '%s' (%d categories) - Use one-hot encoding or ordinal if ordered",
				col, distinct))
		case distinct >= 11 && distinct <= 50:
			recs = append(recs, fmt.Sprintf(
				"🔤 **Encoding**: Column '%s' (%d categories) - Consider: one-hot (if <20), target encoding, or embedding for deep learning",
				col, distinct))
		default:
			recs = append(recs, fmt.Sprintf(
				"🔤 **Encoding**: Column '%s' (%d categories) - High cardinality - Use target encoding, frequency encoding, or feature hashing",
				col, distinct))
		}
	}

	return recs
}

func (a *Advisor) recommendNormalization(numericCols []string) []string {
	var recs []string

	for _, col := range truncate(numericCols, 5) {
		values := a.dataset.NumericValues(col)
		if len(values) == 0 {
			continue
		}

		sd := stats.StdDev(values)
		if sd <= 0 {
			continue
		}

		min, max := stats.MinMax(values)
		cv := stats.CoefficientOfVariation(values)

		if max-min > 1000 || cv > 1 {
			recs = append(recs, fmt.Sprintf(
				"📏 **Normalization**: Column '%s' has wide range (%.2f to %.2f). Apply: StandardScaler or MinMaxScaler before training",
				col, min, max))
		}
	}

	if len(numericCols) > 0 {
		recs = append(recs, fmt.Sprintf(
			"📏 **Scaling**: %d numeric column(s) - Recommend StandardScaler (if normal distribution) or MinMaxScaler (if bounded)",
			len(numericCols)))
	}

	return recs
}

func (a *Advisor) recommendFeatureSelection(numericCols []string) []string {
	var recs []string

	totalCols := a.dataset.ColumnCount()
	if totalCols > 50 {
		recs = append(recs, fmt.Sprintf(
			"🎯 **Feature Selection**: %d features detected - Consider: PCA, feature importance (tree-based), or correlation-based selection",
			totalCols))
	} else if totalCols > 20 {
		recs = append(recs, fmt.Sprintf(
			"🎯 **Feature Selection**: %d features - Consider evaluating feature importance to reduce dimensionality",
			totalCols))
	}

	var lowVariance []string
	for _, col := range numericCols {
		values := a.dataset.NumericValues(col)
		if len(values) < 2 {
			continue
		}
		if stats.StdDev(values) < 0.01 {
			lowVariance = append(lowVariance, col)
		}
	}

	if len(lowVariance) > 0 {
		recs = append(recs, fmt.Sprintf(
			"🎯 **Low Variance**: %d feature(s) with very low variance - Consider removing: %s",
			len(lowVariance), strings.Join(truncate(lowVariance, 3), ", ")))
	}

	return recs
}

// calculateReadinessScore starts at 100 and applies the penalty and bonus
// tiers; within each tier group only the highest applicable penalty counts.
func (a *Advisor) calculateReadinessScore(missingPct float64, numNumeric, numCategorical int) float64 {
	score := 100.0

	switch {
	case missingPct > 50:
		score -= 40
	case missingPct > 30:
		score -= 25
	case missingPct > 10:
		score -= 15
	case missingPct > 5:
		score -= 5
	}

	rows := a.dataset.Rows()
	switch {
	case rows < 100:
		score -= 20
	case rows < 500:
		score -= 10
	case rows < 1000:
		score -= 5
	}

	if numNumeric == 0 {
		score -= 15
	}

	if numNumeric > 0 && numCategorical > 0 {
		score += 5
	}

	if numCategorical > 10 {
		score -= 10
	}

	return math.Max(0, math.Min(100, score))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
