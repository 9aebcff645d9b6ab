// Package preprocessing provides the feature transformers used when cleaning
// listings and when fitting the baseline model.
//
// This package implements:
//
//   - LabelEncoder / EncodingMap: stable integer codes for categorical columns
//   - LogTransformer: log10(x + 1) on selected columns, with its inverse
//   - StandardScaler: removes the mean and scales to unit variance
//
// All transformers follow the Fit / Transform / FitTransform pattern and embed
// model.BaseEstimator for fitted-state tracking.
//
// Example usage:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(trainingData)
//	if err != nil {
//		log.Fatal(err)
//	}
//	scaledData, err := scaler.Transform(testData)
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/detailviews/core/model"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// constantScaleTolerance 以下の標準偏差は定数列とみなしスケール 1 を使う
const constantScaleTolerance = 1e-8

// StandardScaler は各列を平均 0、標準偏差 1 に変換する
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の母標準偏差（定数列は 1）
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	WithMean bool
	WithStd  bool
}

// NewStandardScaler creates a new StandardScaler.
//
// Parameters:
//   - withMean: center each column at zero
//   - withStd: divide each column by its population standard deviation
//
// Returns:
//   - *StandardScaler: an unfitted scaler
//
// Example:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(XTrain)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	s := &StandardScaler{WithMean: withMean, WithStd: withStd}
	s.ModelType = "StandardScaler"
	_ = s.SetParams(map[string]interface{}{"with_mean": withMean, "with_std": withStd})
	return s
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit computes the column means and population standard deviations of X.
//
// Errors:
//   - ErrEmptyData: if X has no rows or no columns
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer dvErrors.Recover(&err, "StandardScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return dvErrors.NewModelError("StandardScaler.Fit", "empty data", dvErrors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, variance := stat.PopMeanVariance(col, nil)

		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1
		if s.WithStd {
			if std := math.Sqrt(variance); std >= constantScaleTolerance {
				s.Scale[j] = std
			}
		}
	}

	s.SetFitted()
	return nil
}

// Transform returns (X - Mean) / Scale.
//
// Errors:
//   - NotFittedError: if the scaler hasn't been fitted
//   - DimensionError: if X has a different number of columns than at Fit
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer dvErrors.Recover(&err, "StandardScaler.Transform")
	if !s.IsFitted() {
		return nil, dvErrors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, dvErrors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// FitTransform fits the scaler on X and returns the standardized X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer dvErrors.Recover(&err, "StandardScaler.FitTransform")
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform returns X * Scale + Mean.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer dvErrors.Recover(&err, "StandardScaler.InverseTransform")
	if !s.IsFitted() {
		return nil, dvErrors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, dvErrors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return v*s.Scale[j] + s.Mean[j]
	}, X)
	return result, nil
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
