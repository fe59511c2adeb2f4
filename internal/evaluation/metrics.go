package evaluation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RSquared computes the coefficient of determination of predicted against actual.
// Returns 0.0 when the inputs are empty, differ in length, or actual has no variance.
func RSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0.0
	}

	if len(actual) < 2 || stat.Variance(actual, nil) == 0 {
		return 0.0
	}

	r2 := stat.RSquaredFrom(predicted, actual, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		return 0.0
	}
	return r2
}

// RMSE computes the root mean squared error.
// Returns 0.0 when the inputs are empty or differ in length.
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0.0
	}

	var sum float64
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// MAE computes the mean absolute error.
func MAE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0.0
	}

	var sum float64
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// Score computes all holdout metrics for one target.
func Score(actual, predicted []float64) Scores {
	return Scores{
		R2:   RSquared(actual, predicted),
		RMSE: RMSE(actual, predicted),
		MAE:  MAE(actual, predicted),
	}
}
