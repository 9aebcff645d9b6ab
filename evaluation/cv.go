package evaluation

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/core/model"
	"github.com/ezoic/detailviews/metrics"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/pkg/log"
)

// Factory returns a fresh, unfitted regressor for each fold.
type Factory func() model.Regressor

// CVResult holds the test scores of every fold and their mean.
type CVResult struct {
	Folds []metrics.Scores `json:"folds"`
	Mean  metrics.Scores   `json:"mean"`
}

// CrossValidate runs k-fold cross-validation: for every fold a new model
// from factory is fitted on the other folds and scored on the held-out one.
//
// Errors:
//   - ErrEmptyData / DimensionError: if X and y are empty or misaligned
//   - ValidationError: if folds < 2
//   - any error from fitting or scoring a fold, wrapped with the fold number
func CrossValidate(factory Factory, X mat.Matrix, y *mat.VecDense, folds int, seed int64) (_ *CVResult, err error) {
	defer dvErrors.Recover(&err, "CrossValidate")
	start := time.Now()
	r, c, err := checkXY("CrossValidate", X, y)
	if err != nil {
		return nil, err
	}
	testFolds, err := KFold(r, folds, seed)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("evaluation")
	res := &CVResult{Folds: make([]metrics.Scores, 0, folds)}
	for k, test := range testFolds {
		train := complement(r, test)
		m := factory()
		if err := m.Fit(selectRows(X, train), selectVec(y, train)); err != nil {
			return nil, dvErrors.Wrapf(err, "fold %d", k)
		}
		scores, err := score(m, selectRows(X, test), selectVec(y, test))
		if err != nil {
			return nil, dvErrors.Wrapf(err, "fold %d", k)
		}
		res.Folds = append(res.Folds, scores)
		logger.Debug("Fold scored",
			log.PhaseKey, log.PhaseEvaluation,
			"fold", k,
			log.SamplesKey, len(test),
			"r2", scores.R2,
			"rmse", scores.RMSE,
		)
	}
	res.Mean = meanScores(res.Folds)

	logger.Info("Cross-validation complete",
		log.PhaseKey, log.PhaseEvaluation,
		"folds", folds,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		"r2", res.Mean.R2,
		"rmse", res.Mean.RMSE,
		"mae", res.Mean.MAE,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Holdout fits a model from factory on the training part of s and scores it
// on the test part.
func Holdout(factory Factory, s *Split) (model.Regressor, metrics.Scores, error) {
	m := factory()
	if err := m.Fit(s.XTrain, s.YTrain); err != nil {
		return nil, metrics.Scores{}, err
	}
	scores, err := score(m, s.XTest, s.YTest)
	if err != nil {
		return nil, metrics.Scores{}, err
	}
	return m, scores, nil
}

func score(m model.Regressor, X mat.Matrix, y *mat.VecDense) (metrics.Scores, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return metrics.Scores{}, err
	}
	yPred, err := metrics.ColumnVector("evaluation.score", pred)
	if err != nil {
		return metrics.Scores{}, err
	}
	return metrics.Evaluate(y, yPred)
}

func meanScores(all []metrics.Scores) metrics.Scores {
	var m metrics.Scores
	if len(all) == 0 {
		return m
	}
	for _, s := range all {
		m.ExplainedVariance += s.ExplainedVariance
		m.MAE += s.MAE
		m.MSE += s.MSE
		m.RMSE += s.RMSE
		m.R2 += s.R2
	}
	n := float64(len(all))
	m.ExplainedVariance /= n
	m.MAE /= n
	m.MSE /= n
	m.RMSE /= n
	m.R2 /= n
	return m
}
