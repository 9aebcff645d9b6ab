package evaluation

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/detailviews/core/model"
	"github.com/ezoic/detailviews/metrics"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// Importance is the drop in R² when one feature column is shuffled.
type Importance struct {
	Feature string  `json:"feature"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
}

// PermutationImportance shuffles each column of X repeats times and records
// how much the R² of the fitted model m drops. names labels the columns and
// may be nil. The result is sorted by Mean, largest first.
func PermutationImportance(m model.Regressor, X mat.Matrix, y *mat.VecDense, names []string, repeats int, seed int64) (_ []Importance, err error) {
	defer dvErrors.Recover(&err, "PermutationImportance")
	r, c, err := checkXY("PermutationImportance", X, y)
	if err != nil {
		return nil, err
	}
	if repeats < 1 {
		return nil, dvErrors.NewValidationError("repeats", "must be at least 1", repeats)
	}
	if names != nil && len(names) != c {
		return nil, dvErrors.NewDimensionError("PermutationImportance", c, len(names), 1)
	}

	base, err := r2(m, X, y)
	if err != nil {
		return nil, err
	}

	rng := newRand(seed)
	work := mat.DenseCopyOf(X)
	col := make([]float64, r)
	drops := make([]float64, repeats)
	out := make([]Importance, c)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		for k := 0; k < repeats; k++ {
			perm := rng.Perm(r)
			for i, src := range perm {
				work.Set(i, j, col[src])
			}
			s, err := r2(m, work, y)
			if err != nil {
				return nil, err
			}
			drops[k] = base - s
		}
		work.SetCol(j, col)

		mean, std := stat.MeanStdDev(drops, nil)
		if repeats == 1 {
			std = 0
		}
		out[j] = Importance{Feature: featureName(names, j), Mean: mean, Std: std}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Mean > out[b].Mean })
	return out, nil
}

func r2(m model.Regressor, X mat.Matrix, y *mat.VecDense) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	yPred, err := metrics.ColumnVector("evaluation.r2", pred)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, yPred)
}

func featureName(names []string, j int) string {
	if names == nil {
		return "x" + strconv.Itoa(j)
	}
	return names[j]
}
