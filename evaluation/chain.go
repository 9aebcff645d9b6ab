package evaluation

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/core/model"
	"github.com/ezoic/detailviews/linear"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/pkg/log"
	"github.com/ezoic/detailviews/preprocessing"
)

// Step is one named stage of a Chain.
type Step struct {
	Name      string
	Estimator interface{} // model.Transformer, or model.Regressor for the last step
}

// Chain fits its transformers in order and the final regressor on their
// output. Predict replays the fitted transformers before predicting.
type Chain struct {
	state  *model.StateManager
	logger log.Logger
	steps  []Step
}

// NewChain creates a Chain. Every step but the last must be a
// model.Transformer and the last must be a model.Regressor.
func NewChain(steps ...Step) (*Chain, error) {
	if len(steps) == 0 {
		return nil, dvErrors.NewValidationError("steps", "chain needs at least one step", 0)
	}
	for i, step := range steps[:len(steps)-1] {
		if _, ok := step.Estimator.(model.Transformer); !ok {
			return nil, dvErrors.NewValidationError("chain step", fmt.Sprintf("step %d must be a transformer", i), step.Name)
		}
	}
	last := steps[len(steps)-1]
	if _, ok := last.Estimator.(model.Regressor); !ok {
		return nil, dvErrors.NewValidationError("chain final step", "final step must be a regressor", last.Name)
	}
	return &Chain{
		state:  model.NewStateManager(),
		logger: log.GetLoggerWithName("evaluation").With(log.ModelNameKey, "Chain"),
		steps:  steps,
	}, nil
}

// Baseline returns a new StandardScaler + LinearRegression chain.
func Baseline() model.Regressor {
	c, err := NewChain(
		Step{Name: "scaler", Estimator: preprocessing.NewStandardScalerDefault()},
		Step{Name: "regression", Estimator: linear.NewLinearRegression()},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Fit fits every step on X and y.
func (c *Chain) Fit(X, y mat.Matrix) (err error) {
	defer dvErrors.Recover(&err, "Chain.Fit")
	Xt := X
	for _, step := range c.steps[:len(c.steps)-1] {
		t := step.Estimator.(model.Transformer)
		if Xt, err = t.FitTransform(Xt); err != nil {
			return dvErrors.Wrapf(err, "failed to fit step '%s'", step.Name)
		}
	}

	last := c.steps[len(c.steps)-1]
	if err := last.Estimator.(model.Regressor).Fit(Xt, y); err != nil {
		return dvErrors.Wrapf(err, "failed to fit final step '%s'", last.Name)
	}

	r, cols := X.Dims()
	c.state.SetFitted()
	c.state.SetDimensions(cols, r)
	c.logger.Debug("Chain fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r,
		log.FeaturesKey, cols,
	)
	return nil
}

// Predict transforms X through the fitted steps and predicts with the last.
func (c *Chain) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer dvErrors.Recover(&err, "Chain.Predict")
	if !c.state.IsFitted() {
		return nil, dvErrors.NewNotFittedError("Chain", "Predict")
	}
	Xt := X
	for _, step := range c.steps[:len(c.steps)-1] {
		if Xt, err = step.Estimator.(model.Transformer).Transform(Xt); err != nil {
			return nil, dvErrors.Wrapf(err, "failed to transform at step '%s'", step.Name)
		}
	}
	return c.steps[len(c.steps)-1].Estimator.(model.Regressor).Predict(Xt)
}

// Step returns the estimator registered under name.
func (c *Chain) Step(name string) (interface{}, bool) {
	for _, s := range c.steps {
		if s.Name == name {
			return s.Estimator, true
		}
	}
	return nil, false
}

// IsFitted reports whether Fit has succeeded.
func (c *Chain) IsFitted() bool { return c.state.IsFitted() }

func (c *Chain) String() string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name
	}
	return "Chain(" + strings.Join(names, " -> ") + ")"
}
