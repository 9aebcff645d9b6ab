// Package linear provides the ordinary least squares baseline used to check
// that the cleaned listings carry signal for detail_views.
//
// LinearRegression solves the least squares problem with an SVD of the design
// matrix (intercept column included), so rank-deficient inputs such as a
// constant feature inside one cross-validation fold still produce the
// minimum-norm solution instead of failing.
//
// Example usage:
//
//	lr := linear.NewLinearRegression()
//	err := lr.Fit(X, y) // X: features, y: target values
//	if err != nil {
//		log.Fatal(err)
//	}
//	predictions, err := lr.Predict(XTest)
//
// Fitted models are gob-encodable through core/model:
//
//	err = model.SaveModel(lr, "baseline.gob")
package linear

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/core/model"
	"github.com/ezoic/detailviews/metrics"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/pkg/log"
)

// DefaultRcond is the relative cutoff below which singular values of the
// design matrix are treated as zero.
const DefaultRcond = 1e-12

// LinearRegression is a linear regression model
type LinearRegression struct {
	State     *model.StateManager // State manager (composition instead of embedding) - Public for gob encoding
	Weights   *mat.VecDense       // Model weights (coefficients)
	Intercept float64             // Model intercept
	NFeatures int                 // Number of features
	Rank      int                 // Rank of the design matrix at Fit
	Rcond     float64             // Singular value cutoff
	logger    log.Logger          // Logger instance
}

// NewLinearRegression creates a new, unfitted ordinary least squares model.
//
// Returns:
//   - *LinearRegression: A new untrained linear regression model
//
// Example:
//
//	lr := linear.NewLinearRegression()
//	err := lr.Fit(X, y)
//	predictions, err := lr.Predict(XTest)
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{
		State:  model.NewStateManager(),
		Rcond:  DefaultRcond,
		logger: newLogger(),
	}
}

func newLogger() log.Logger {
	return log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "LinearRegression",
		log.ComponentKey, "linear",
	)
}

func (lr *LinearRegression) getLogger() log.Logger {
	if lr.logger == nil {
		lr.logger = newLogger()
	}
	return lr.logger
}

// Fit trains the model on X (n_samples × n_features) and the column vector y.
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - DimensionError: if X and y have different numbers of rows
//   - ValueError: if y is not a column vector
//   - ErrSingularMatrix: if the design matrix has rank zero or its SVD fails
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer dvErrors.Recover(&err, "LinearRegression.Fit")

	startTime := time.Now()
	r, c := X.Dims()
	ry, cy := y.Dims()

	lr.getLogger().Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)

	if r == 0 || c == 0 {
		return dvErrors.NewModelError("LinearRegression.Fit", "empty data", dvErrors.ErrEmptyData)
	}
	if ry != r {
		return dvErrors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return dvErrors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	// [1, X]
	design := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		design.Set(i, 0, 1.0)
		for j := 0; j < c; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return dvErrors.NewModelError("LinearRegression.Fit", "svd failed", dvErrors.ErrSingularMatrix)
	}
	rcond := lr.Rcond
	if rcond <= 0 {
		rcond = DefaultRcond
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return dvErrors.NewModelError("LinearRegression.Fit", "singular matrix", dvErrors.ErrSingularMatrix)
	}

	var solution mat.Dense
	svd.SolveTo(&solution, y, rank)

	lr.NFeatures = c
	lr.Rank = rank
	lr.Intercept = solution.At(0, 0)
	lr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Weights.SetVec(j, solution.At(j+1, 0))
	}

	lr.State.SetFitted()
	lr.State.SetDimensions(c, r)

	if rank < c+1 {
		lr.getLogger().Debug("Design matrix is rank deficient",
			log.OperationKey, log.OperationFit,
			"rank", rank,
			log.FeaturesKey, c,
		)
	}
	lr.getLogger().Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return nil
}

// Predict returns X * weights + intercept as an (n_samples × 1) matrix.
//
// Errors:
//   - NotFittedError: if the model hasn't been trained yet
//   - DimensionError: if X has a different number of features than at Fit
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer dvErrors.Recover(&err, "LinearRegression.Predict")
	if !lr.IsFitted() {
		return nil, dvErrors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, dvErrors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	var out mat.VecDense
	out.MulVec(X, lr.Weights)
	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		predictions.Set(i, 0, out.AtVec(i)+lr.Intercept)
	}

	lr.getLogger().Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PredsKey, r,
	)
	return predictions, nil
}

// GetWeights returns the learned weights (coefficients)
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.Weights)
}

// GetIntercept returns the learned intercept
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Coefficients maps feature names to weights. names must match the columns
// of the training matrix.
func (lr *LinearRegression) Coefficients(names []string) (map[string]float64, error) {
	if !lr.IsFitted() {
		return nil, dvErrors.NewNotFittedError("LinearRegression", "Coefficients")
	}
	if len(names) != lr.NFeatures {
		return nil, dvErrors.NewDimensionError("LinearRegression.Coefficients", lr.NFeatures, len(names), 1)
	}
	out := make(map[string]float64, len(names))
	for j, name := range names {
		out[name] = lr.Weights.AtVec(j)
	}
	return out, nil
}

// Score returns the coefficient of determination (R²) of the predictions on X.
func (lr *LinearRegression) Score(X, y mat.Matrix) (_ float64, err error) {
	defer dvErrors.Recover(&err, "LinearRegression.Score")
	if !lr.IsFitted() {
		return 0, dvErrors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

// IsFitted returns whether the model has been fitted.
func (lr *LinearRegression) IsFitted() bool {
	return lr.State != nil && lr.State.IsFitted()
}

// GetParams returns the model's hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"rcond":      lr.Rcond,
		"n_features": lr.NFeatures,
		"fitted":     lr.IsFitted(),
	}
}

// SetParams sets the model's hyperparameters. Only "rcond" is recognised.
func (lr *LinearRegression) SetParams(params map[string]interface{}) error {
	for k, v := range params {
		switch k {
		case "rcond":
			f, ok := v.(float64)
			if !ok || f <= 0 {
				return dvErrors.NewValidationError("rcond", "must be a positive float64", v)
			}
			lr.Rcond = f
		default:
			return dvErrors.NewValidationError(k, "unknown parameter", v)
		}
	}
	return nil
}

// String describes the model.
func (lr *LinearRegression) String() string {
	if !lr.IsFitted() {
		return "LinearRegression()"
	}
	return fmt.Sprintf("LinearRegression(n_features=%d, rank=%d)", lr.NFeatures, lr.Rank)
}
