// Package metrics provides the regression scores reported for the baseline
// detail_views model.
//
// Regression Metrics:
//   - MSE / RMSE: mean squared error and its square root
//   - MAE: mean absolute error
//   - R2Score: coefficient of determination
//   - MAPE: mean absolute percentage error over non-zero targets
//   - ExplainedVarianceScore: 1 - Var(y - ŷ) / Var(y)
//
// Example usage:
//
//	scores, err := metrics.Evaluate(yTrue, yPred)
//	fmt.Printf("R²: %.3f RMSE: %.3f\n", scores.R2, scores.RMSE)
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

func check(op string, yTrue, yPred *mat.VecDense) error {
	n := yTrue.Len()
	if n == 0 {
		return dvErrors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return dvErrors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return nil
}

// MSE calculates the Mean Squared Error between true and predicted values.
//
// Errors:
//   - ValueError: if input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
//
// Example:
//
//	mse, err := metrics.MSE(yTrue, yPred)
//	if err != nil {
//	    log.Fatal(err)
//	}
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := check("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	var d mat.VecDense
	d.SubVec(yTrue, yPred)
	return mat.Dot(&d, &d) / float64(d.Len()), nil
}

// RMSE is the square root of MSE, in the units of the target.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE calculates the Mean Absolute Error between true and predicted values.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := check("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	var d mat.VecDense
	d.SubVec(yTrue, yPred)
	return mat.Norm(&d, 1) / float64(d.Len()), nil
}

// R2Score calculates the coefficient of determination (R²).
//
// R² is 1 for perfect predictions, 0 for predicting the mean, and negative
// when worse than the mean.
//
// Errors:
//   - ValueError: if inputs are empty or yTrue has no variance
//   - DimensionError: if yTrue and yPred have different lengths
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := check("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}
	yt := toSlice(yTrue)
	yp := toSlice(yPred)

	mean := stat.Mean(yt, nil)
	var tss, rss float64
	for i := range yt {
		tss += (yt[i] - mean) * (yt[i] - mean)
		rss += (yt[i] - yp[i]) * (yt[i] - yp[i])
	}
	if tss == 0 {
		return 0, dvErrors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// R2ScoreMatrix is R2Score for (n × 1) matrices such as Predict output.
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yt, err := ColumnVector("R2ScoreMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	yp, err := ColumnVector("R2ScoreMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return R2Score(yt, yp)
}

// MAPE calculates the Mean Absolute Percentage Error over the rows where
// yTrue is non-zero.
func MAPE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := check("MAPE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	valid := 0
	for i := 0; i < yTrue.Len(); i++ {
		t := yTrue.AtVec(i)
		if t == 0 {
			continue
		}
		sum += math.Abs(t-yPred.AtVec(i)) / math.Abs(t)
		valid++
	}
	if valid == 0 {
		return 0, dvErrors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return sum / float64(valid) * 100, nil
}

// ExplainedVarianceScore calculates 1 - Var(yTrue - yPred) / Var(yTrue),
// using population variances. Unlike R² it ignores a constant offset in the
// predictions.
func ExplainedVarianceScore(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := check("ExplainedVarianceScore", yTrue, yPred); err != nil {
		return 0, err
	}
	yt := toSlice(yTrue)
	diff := make([]float64, len(yt))
	floats.SubTo(diff, yt, toSlice(yPred))

	_, varTrue := stat.PopMeanVariance(yt, nil)
	_, varDiff := stat.PopMeanVariance(diff, nil)
	if varTrue == 0 {
		return 0, dvErrors.NewValueError("ExplainedVarianceScore", "no variance in yTrue")
	}
	return 1 - varDiff/varTrue, nil
}

// Scores groups the metrics reported per evaluation.
type Scores struct {
	ExplainedVariance float64 `json:"explained_variance"`
	MAE               float64 `json:"mae"`
	MSE               float64 `json:"mse"`
	RMSE              float64 `json:"rmse"`
	R2                float64 `json:"r2"`
}

// Evaluate computes every score in Scores.
func Evaluate(yTrue, yPred *mat.VecDense) (Scores, error) {
	var (
		s   Scores
		err error
	)
	if s.MSE, err = MSE(yTrue, yPred); err != nil {
		return Scores{}, err
	}
	s.RMSE = math.Sqrt(s.MSE)
	if s.MAE, err = MAE(yTrue, yPred); err != nil {
		return Scores{}, err
	}
	if s.R2, err = R2Score(yTrue, yPred); err != nil {
		return Scores{}, err
	}
	if s.ExplainedVariance, err = ExplainedVarianceScore(yTrue, yPred); err != nil {
		return Scores{}, err
	}
	return s, nil
}

// ColumnVector copies an (n × 1) matrix into a vector.
func ColumnVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	if v, ok := m.(*mat.VecDense); ok {
		return v, nil
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, dvErrors.NewValueError(op, "empty matrix")
	}
	if c != 1 {
		return nil, dvErrors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, m)), nil
}

func toSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
