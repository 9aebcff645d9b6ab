package evaluation_test

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/core/model"
	"github.com/ezoic/detailviews/evaluation"
	"github.com/ezoic/detailviews/linear"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/preprocessing"
)

// y = 3*x0 - 2*x1 + 0*x2 + 5 with a small deterministic wobble
func syntheticData(n int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(n, 3, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x0 := float64(i%17) + 0.5
		x1 := float64((i*7)%11) - 3
		x2 := math.Sin(float64(i))
		X.SetRow(i, []float64{x0, x1, x2})
		y.SetVec(i, 3*x0-2*x1+5+0.01*math.Cos(float64(3*i)))
	}
	return X, y
}

func TestTrainTestSplit(t *testing.T) {
	X, y := syntheticData(50)

	s, err := evaluation.TrainTestSplit(X, y, 0.8, 42)
	require.NoError(t, err)
	assert.Equal(t, 40, s.YTrain.Len())
	assert.Equal(t, 10, s.YTest.Len())

	all := append(append([]int{}, s.TrainIndex...), s.TestIndex...)
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v)
	}
	for i, src := range s.TestIndex {
		assert.Equal(t, y.AtVec(src), s.YTest.AtVec(i))
		assert.Equal(t, X.At(src, 1), s.XTest.At(i, 1))
	}

	again, err := evaluation.TrainTestSplit(X, y, 0.8, 42)
	require.NoError(t, err)
	assert.Equal(t, s.TestIndex, again.TestIndex)
}

func TestTrainTestSplitErrors(t *testing.T) {
	X, y := syntheticData(5)

	_, err := evaluation.TrainTestSplit(X, y, 1.0, 1)
	var valErr *dvErrors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	_, err = evaluation.TrainTestSplit(X, y, 0.01, 1)
	assert.Error(t, err)

	_, err = evaluation.TrainTestSplit(X, mat.NewVecDense(4, nil), 0.5, 1)
	var dimErr *dvErrors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestKFold(t *testing.T) {
	folds, err := evaluation.KFold(11, 3, 7)
	require.NoError(t, err)
	require.Len(t, folds, 3)
	assert.Len(t, folds[0], 4)
	assert.Len(t, folds[1], 4)
	assert.Len(t, folds[2], 3)

	seen := make(map[int]bool)
	for _, f := range folds {
		for _, i := range f {
			assert.False(t, seen[i], "row %d in two folds", i)
			seen[i] = true
		}
	}
	assert.Len(t, seen, 11)

	_, err = evaluation.KFold(10, 1, 7)
	assert.Error(t, err)
	_, err = evaluation.KFold(2, 3, 7)
	assert.Error(t, err)
}

func TestCrossValidate(t *testing.T) {
	X, y := syntheticData(60)

	res, err := evaluation.CrossValidate(evaluation.Baseline, X, y, 5, 42)
	require.NoError(t, err)
	require.Len(t, res.Folds, 5)
	for _, f := range res.Folds {
		assert.Greater(t, f.R2, 0.99)
	}
	assert.Greater(t, res.Mean.R2, 0.99)
	assert.Less(t, res.Mean.RMSE, 0.05)
	assert.InDelta(t, math.Sqrt(res.Folds[0].MSE), res.Folds[0].RMSE, 1e-12)
}

func TestCrossValidateConstantColumnInFold(t *testing.T) {
	X, y := syntheticData(20)
	for i := 0; i < 20; i++ {
		X.Set(i, 2, 1)
	}

	res, err := evaluation.CrossValidate(evaluation.Baseline, X, y, 4, 3)
	require.NoError(t, err)
	assert.Greater(t, res.Mean.R2, 0.99)
}

type failingRegressor struct{}

func (failingRegressor) Fit(X, y mat.Matrix) error { return dvErrors.New("boom") }
func (failingRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	return nil, dvErrors.New("boom")
}

func TestCrossValidateFitError(t *testing.T) {
	X, y := syntheticData(10)
	_, err := evaluation.CrossValidate(func() model.Regressor { return failingRegressor{} }, X, y, 2, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fold 0")
}

func TestHoldout(t *testing.T) {
	X, y := syntheticData(40)
	s, err := evaluation.TrainTestSplit(X, y, 0.75, 9)
	require.NoError(t, err)

	m, scores, err := evaluation.Holdout(evaluation.Baseline, s)
	require.NoError(t, err)
	assert.Greater(t, scores.R2, 0.99)
	assert.Contains(t, m.(*evaluation.Chain).String(), "scaler -> regression")
}

func TestPermutationImportance(t *testing.T) {
	X, y := syntheticData(80)
	m := evaluation.Baseline()
	require.NoError(t, m.Fit(X, y))

	imp, err := evaluation.PermutationImportance(m, X, y, []string{"stock_days", "search_views", "noise"}, 5, 1)
	require.NoError(t, err)
	require.Len(t, imp, 3)
	assert.Equal(t, "noise", imp[2].Feature)
	assert.InDelta(t, 0, imp[2].Mean, 0.01)
	assert.Greater(t, imp[0].Mean, 0.1)
	assert.GreaterOrEqual(t, imp[0].Mean, imp[1].Mean)

	// X is restored
	Xc, _ := syntheticData(80)
	assert.True(t, mat.Equal(X, Xc))
}

func TestPermutationImportanceErrors(t *testing.T) {
	X, y := syntheticData(10)
	m := evaluation.Baseline()
	require.NoError(t, m.Fit(X, y))

	_, err := evaluation.PermutationImportance(m, X, y, nil, 0, 1)
	assert.Error(t, err)
	_, err = evaluation.PermutationImportance(m, X, y, []string{"a"}, 2, 1)
	assert.Error(t, err)

	imp, err := evaluation.PermutationImportance(m, X, y, nil, 1, 1)
	require.NoError(t, err)
	for _, i := range imp {
		assert.Equal(t, 0.0, i.Std)
		assert.Regexp(t, `^x\d$`, i.Feature)
	}
}

func TestChain(t *testing.T) {
	_, err := evaluation.NewChain()
	assert.Error(t, err)

	_, err = evaluation.NewChain(
		evaluation.Step{Name: "regression", Estimator: linear.NewLinearRegression()},
		evaluation.Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()},
	)
	assert.Error(t, err)

	c, err := evaluation.NewChain(
		evaluation.Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()},
		evaluation.Step{Name: "regression", Estimator: linear.NewLinearRegression()},
	)
	require.NoError(t, err)

	X, y := syntheticData(30)
	_, err = c.Predict(X)
	var nf *dvErrors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, c.Fit(X, y))
	assert.True(t, c.IsFitted())

	step, ok := c.Step("scaler")
	require.True(t, ok)
	assert.True(t, step.(*preprocessing.StandardScaler).IsFitted())
	_, ok = c.Step("missing")
	assert.False(t, ok)

	pred, err := c.Predict(X)
	require.NoError(t, err)
	assert.InDelta(t, y.AtVec(3), pred.At(3, 0), 0.05)
}
