// Package evaluation checks that the cleaned listings carry signal for
// detail_views: seeded train/test splits, k-fold cross-validation of a
// scaler + linear regression chain, and permutation importance.
//
// Example usage:
//
//	X, y, err := res.Log.XY()
//	cv, err := evaluation.CrossValidate(evaluation.Baseline, X, y, 5, 42)
//	fmt.Printf("mean R²: %.3f\n", cv.Mean.R2)
package evaluation

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// Split holds a row-aligned train/test partition.
type Split struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense
	// TrainIndex and TestIndex are the source rows of each part.
	TrainIndex []int
	TestIndex  []int
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

func checkXY(op string, X mat.Matrix, y *mat.VecDense) (int, int, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, 0, dvErrors.NewModelError(op, "empty data", dvErrors.ErrEmptyData)
	}
	if y.Len() != r {
		return 0, 0, dvErrors.NewDimensionError(op, r, y.Len(), 0)
	}
	return r, c, nil
}

// TrainTestSplit shuffles the rows with seed and puts the first
// round(trainSize * n) of them in the training part. trainSize must be in
// (0, 1) and both parts must end up non-empty.
func TrainTestSplit(X mat.Matrix, y *mat.VecDense, trainSize float64, seed int64) (*Split, error) {
	r, _, err := checkXY("TrainTestSplit", X, y)
	if err != nil {
		return nil, err
	}
	if trainSize <= 0 || trainSize >= 1 {
		return nil, dvErrors.NewValidationError("train_size", "must be in (0, 1)", trainSize)
	}
	nTrain := int(trainSize*float64(r) + 0.5)
	if nTrain == 0 || nTrain == r {
		return nil, dvErrors.NewValueError("TrainTestSplit", "too few rows to split")
	}

	perm := newRand(seed).Perm(r)
	train, test := perm[:nTrain], perm[nTrain:]
	return &Split{
		XTrain:     selectRows(X, train),
		XTest:      selectRows(X, test),
		YTrain:     selectVec(y, train),
		YTest:      selectVec(y, test),
		TrainIndex: train,
		TestIndex:  test,
	}, nil
}

// KFold returns the test row indices of each fold. Rows are shuffled with
// seed and the first n % folds folds get one extra row.
func KFold(n, folds int, seed int64) ([][]int, error) {
	if folds < 2 {
		return nil, dvErrors.NewValidationError("folds", "must be at least 2", folds)
	}
	if n < folds {
		return nil, dvErrors.NewValueError("KFold", "fewer rows than folds")
	}

	perm := newRand(seed).Perm(n)
	out := make([][]int, folds)
	start := 0
	for k := 0; k < folds; k++ {
		size := n / folds
		if k < n%folds {
			size++
		}
		out[k] = perm[start : start+size]
		start += size
	}
	return out, nil
}

// complement returns the indices in [0, n) that are not in idx.
func complement(n int, idx []int) []int {
	in := make([]bool, n)
	for _, i := range idx {
		in[i] = true
	}
	out := make([]int, 0, n-len(idx))
	for i := 0; i < n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

func selectRows(X mat.Matrix, rows []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, src := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(src, j))
		}
	}
	return out
}

func selectVec(y *mat.VecDense, rows []int) *mat.VecDense {
	out := mat.NewVecDense(len(rows), nil)
	for i, src := range rows {
		out.SetVec(i, y.AtVec(src))
	}
	return out
}
