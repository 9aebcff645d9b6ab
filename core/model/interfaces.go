package model

import "gonum.org/v1/gonum/mat"

// Fitter is implemented by anything that tracks fitted state.
type Fitter interface {
	IsFitted() bool
}

// Transformer learns a transformation from X and applies it.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer can map transformed data back to the input space.
type InverseTransformer interface {
	Transformer
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// Regressor fits a continuous target and predicts an n×1 matrix.
type Regressor interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
}
