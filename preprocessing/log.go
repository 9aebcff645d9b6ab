package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/core/model"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// LogTransformer applies log10(x + 1) to the selected columns and leaves the
// others unchanged. It has nothing to learn: Fit only records the column
// count. Inputs below -1 have no real logarithm and yield NaN.
type LogTransformer struct {
	model.BaseEstimator

	// Columns are the indices transformed. Empty means every column.
	Columns []int

	// NFeatures は Fit 時の列数
	NFeatures int

	selected map[int]bool
}

// NewLogTransformer returns a transformer for the given column indices.
//
// Example:
//
//	lt := preprocessing.NewLogTransformer(0, 2)
//	logged, err := lt.FitTransform(X)
//	restored, err := lt.InverseTransform(logged)
func NewLogTransformer(columns ...int) *LogTransformer {
	lt := &LogTransformer{Columns: append([]int(nil), columns...)}
	lt.ModelType = "LogTransformer"
	return lt
}

// Log1p10 returns log10(x + 1).
func Log1p10(x float64) float64 {
	return math.Log1p(x) / math.Ln10
}

// Exp10m1 is the inverse of Log1p10: 10^v - 1.
func Exp10m1(v float64) float64 {
	return math.Expm1(v * math.Ln10)
}

// Fit validates the column indices against X.
func (l *LogTransformer) Fit(X mat.Matrix) (err error) {
	defer dvErrors.Recover(&err, "LogTransformer.Fit")
	_, c := X.Dims()
	if c == 0 {
		return dvErrors.NewModelError("LogTransformer.Fit", "empty data", dvErrors.ErrEmptyData)
	}

	l.selected = make(map[int]bool, len(l.Columns))
	for _, j := range l.Columns {
		if j < 0 || j >= c {
			return dvErrors.NewValueError("LogTransformer.Fit", fmt.Sprintf("column index %d out of range [0, %d)", j, c))
		}
		l.selected[j] = true
	}
	l.NFeatures = c
	l.SetFitted()
	return nil
}

func (l *LogTransformer) applies(j int) bool {
	if len(l.Columns) == 0 {
		return true
	}
	if l.selected == nil {
		l.selected = make(map[int]bool, len(l.Columns))
		for _, c := range l.Columns {
			l.selected[c] = true
		}
	}
	return l.selected[j]
}

func (l *LogTransformer) apply(op string, X mat.Matrix, f func(float64) float64) (mat.Matrix, error) {
	if !l.IsFitted() {
		return nil, dvErrors.NewNotFittedError("LogTransformer", op)
	}
	r, c := X.Dims()
	if c != l.NFeatures {
		return nil, dvErrors.NewDimensionError("LogTransformer."+op, l.NFeatures, c, 1)
	}
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		if l.applies(j) {
			return f(v)
		}
		return v
	}, X)
	return result, nil
}

// Transform returns X with log10(x + 1) applied to the selected columns.
func (l *LogTransformer) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer dvErrors.Recover(&err, "LogTransformer.Transform")
	return l.apply("Transform", X, Log1p10)
}

// FitTransform は Fit と Transform を続けて実行する
func (l *LogTransformer) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer dvErrors.Recover(&err, "LogTransformer.FitTransform")
	if err := l.Fit(X); err != nil {
		return nil, err
	}
	return l.Transform(X)
}

// InverseTransform returns X with 10^v - 1 applied to the selected columns.
func (l *LogTransformer) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer dvErrors.Recover(&err, "LogTransformer.InverseTransform")
	return l.apply("InverseTransform", X, Exp10m1)
}
