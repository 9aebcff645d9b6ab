// Package dataset exposes cleaned listings as column-labelled gonum matrices,
// the form the preprocessing, linear and evaluation packages consume.
package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// Target is the column predicted by the baseline model.
const Target = listing.DetailViews

// FeatureColumns are the model inputs. ctr is left out because it is
// computed from the target.
var FeatureColumns = []listing.Column{
	listing.ProductTier,
	listing.MakeName,
	listing.Price,
	listing.FirstZipDigit,
	listing.FirstRegistrationYear,
	listing.SearchViews,
	listing.StockDays,
	listing.PeakSeason,
}

// FrameColumns is the fixed column order of frames built by the cleaning
// pipeline: every numeric source column, the derived columns and the
// categorical codes (under the product_tier and make_name names).
var FrameColumns = []listing.Column{
	listing.ProductTier,
	listing.MakeName,
	listing.Price,
	listing.FirstZipDigit,
	listing.FirstRegistrationYear,
	listing.SearchViews,
	listing.DetailViews,
	listing.StockDays,
	listing.CTR,
	listing.CreatedMonth,
	listing.DeletedMonth,
	listing.PeakSeason,
}

// Frame is a dense numeric table with named columns. Row i corresponds to the
// i-th record the frame was built from.
type Frame struct {
	Columns []string
	Data    *mat.Dense
}

// NewFrame builds a frame holding columns of records, in order.
func NewFrame(records []listing.Record, columns []listing.Column) (*Frame, error) {
	if len(columns) == 0 {
		return nil, dvErrors.NewValueError("dataset.NewFrame", "no columns")
	}
	names := make([]string, len(columns))
	for j, c := range columns {
		names[j] = string(c)
	}

	f := &Frame{Columns: names}
	if len(records) == 0 {
		return f, nil
	}

	data := make([]float64, 0, len(records)*len(columns))
	for i := range records {
		for _, c := range columns {
			data = append(data, records[i].Float(c))
		}
	}
	f.Data = mat.NewDense(len(records), len(columns), data)
	return f, nil
}

// Rows returns the number of rows.
func (f *Frame) Rows() int {
	if f.Data == nil {
		return 0
	}
	r, _ := f.Data.Dims()
	return r
}

// Index returns the position of the named column.
func (f *Frame) Index(name string) (int, bool) {
	for j, c := range f.Columns {
		if c == name {
			return j, true
		}
	}
	return -1, false
}

func (f *Frame) indices(names []string) ([]int, error) {
	idx := make([]int, len(names))
	for k, name := range names {
		j, ok := f.Index(name)
		if !ok {
			return nil, dvErrors.NewValueError("dataset.Frame", fmt.Sprintf("unknown column %q", name))
		}
		idx[k] = j
	}
	return idx, nil
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	idx, err := f.indices([]string{name})
	if err != nil {
		return nil, err
	}
	out := make([]float64, f.Rows())
	if f.Data != nil {
		mat.Col(out, idx[0], f.Data)
	}
	return out, nil
}

// Vector returns the named column as a vector.
func (f *Frame) Vector(name string) (*mat.VecDense, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if len(col) == 0 {
		return nil, dvErrors.NewModelError("dataset.Frame.Vector", "empty data", dvErrors.ErrEmptyData)
	}
	return mat.NewVecDense(len(col), col), nil
}

// Matrix returns a copy of the named columns, in the given order.
func (f *Frame) Matrix(names ...string) (*mat.Dense, error) {
	idx, err := f.indices(names)
	if err != nil {
		return nil, err
	}
	r := f.Rows()
	if r == 0 {
		return nil, dvErrors.NewModelError("dataset.Frame.Matrix", "empty data", dvErrors.ErrEmptyData)
	}
	out := mat.NewDense(r, len(idx), nil)
	for k, j := range idx {
		out.SetCol(k, mat.Col(nil, j, f.Data))
	}
	return out, nil
}

// SetColumn overwrites the named column with values.
func (f *Frame) SetColumn(name string, values []float64) error {
	idx, err := f.indices([]string{name})
	if err != nil {
		return err
	}
	if len(values) != f.Rows() {
		return dvErrors.NewDimensionError("dataset.Frame.SetColumn", f.Rows(), len(values), 0)
	}
	if f.Data != nil {
		f.Data.SetCol(idx[0], values)
	}
	return nil
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	c := &Frame{Columns: append([]string(nil), f.Columns...)}
	if f.Data != nil {
		c.Data = mat.DenseCopyOf(f.Data)
	}
	return c
}

// XY returns the feature matrix and target vector for the baseline model.
func (f *Frame) XY() (*mat.Dense, *mat.VecDense, error) {
	X, err := f.Matrix(Names(FeatureColumns)...)
	if err != nil {
		return nil, nil, err
	}
	y, err := f.Vector(string(Target))
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}

// Names converts columns to their header names.
func Names(columns []listing.Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = string(c)
	}
	return out
}
