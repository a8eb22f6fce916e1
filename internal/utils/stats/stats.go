package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile calculates the p-th percentile (0-100) using linear
// interpolation between closest ranks, matching the convention the scoring
// heuristics were tuned against.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 || p < 0 || p > 100 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p == 0 {
		return sorted[0]
	}
	if p == 100 {
		return sorted[len(sorted)-1]
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))

	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Quantile calculates quantiles (quartiles, quintiles, etc.)
func Quantile(values []float64, q float64) float64 {
	return Percentile(values, q*100)
}

// IQR calculates the Interquartile Range (Q3 - Q1)
func IQR(values []float64) float64 {
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	return q3 - q1
}

// Fences calculates the lower and upper outlier bounds Q1-k*IQR and Q3+k*IQR.
// k=1.5 gives the standard fences, k=3 the extended ones.
func Fences(values []float64, k float64) (lower, upper float64) {
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1

	lower = q1 - k*iqr
	upper = q3 + k*iqr
	return lower, upper
}

// CountOutside counts values strictly outside [lower, upper].
func CountOutside(values []float64, lower, upper float64) int {
	n := 0
	for _, v := range values {
		if v < lower || v > upper {
			n++
		}
	}
	return n
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev returns the sample standard deviation, 0 for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Correlation returns the Pearson correlation coefficient, 0 when undefined.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// CoefficientOfVariation returns stddev/|mean|, +Inf for a zero mean.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	sd := StdDev(values)
	if mean == 0 {
		return math.Inf(1)
	}
	return sd / math.Abs(mean)
}

// MinMax returns the smallest and largest values, (0, 0) for an empty slice.
func MinMax(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
