// Package report summarises cleaned listings: per-column statistics, the
// Pearson correlation matrix and counts for the categorical columns.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/detailviews/dataset"
	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// Summary is the distribution of one numeric column. Std is the sample
// standard deviation (0 for a single value); quartiles use linear
// interpolation of the empirical distribution. A column without values has
// Count 0 and zero statistics.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe summarises every column of f. NaN values are not counted.
func Describe(f *dataset.Frame) ([]Summary, error) {
	if f == nil || f.Rows() == 0 {
		return nil, dvErrors.NewModelError("report.Describe", "empty frame", dvErrors.ErrEmptyData)
	}
	out := make([]Summary, 0, len(f.Columns))
	for _, name := range f.Columns {
		values, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(name, values))
	}
	return out, nil
}

func summarize(name string, values []float64) Summary {
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	s := Summary{Column: name, Count: len(x)}
	if len(x) == 0 {
		return s
	}
	sort.Float64s(x)
	s.Mean, s.Std = stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		s.Std = 0
	}
	s.Min = x[0]
	s.Max = x[len(x)-1]
	s.Q1 = stat.Quantile(0.25, stat.LinInterp, x, nil)
	s.Median = stat.Quantile(0.5, stat.LinInterp, x, nil)
	s.Q3 = stat.Quantile(0.75, stat.LinInterp, x, nil)
	return s
}

// Correlation returns the Pearson correlation matrix of the columns of f, in
// column order. A constant column has NaN correlations.
func Correlation(f *dataset.Frame) (*mat.SymDense, error) {
	if f == nil || f.Rows() < 2 {
		return nil, dvErrors.NewValueError("report.Correlation", "need at least two rows")
	}
	c := len(f.Columns)
	cols := make([][]float64, c)
	for j, name := range f.Columns {
		values, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = values
	}

	out := mat.NewSymDense(c, nil)
	for i := 0; i < c; i++ {
		for j := i; j < c; j++ {
			if i == j {
				if floats.Max(cols[i]) == floats.Min(cols[i]) {
					out.SetSym(i, i, math.NaN())
				} else {
					out.SetSym(i, i, 1)
				}
				continue
			}
			out.SetSym(i, j, stat.Correlation(cols[i], cols[j], nil))
		}
	}
	return out, nil
}

// TargetCorrelations returns the correlation of every other column with
// target, strongest (by absolute value) first and NaN last.
func TargetCorrelations(f *dataset.Frame, target string) ([]Pair, error) {
	idx, ok := f.Index(target)
	if !ok {
		return nil, dvErrors.NewValueError("report.TargetCorrelations", "unknown column "+target)
	}
	corr, err := Correlation(f)
	if err != nil {
		return nil, err
	}
	out := make([]Pair, 0, len(f.Columns)-1)
	for j, name := range f.Columns {
		if j == idx {
			continue
		}
		out = append(out, Pair{Column: name, Value: corr.At(idx, j)})
	}
	sort.SliceStable(out, func(a, b int) bool {
		va, vb := out[a].Value, out[b].Value
		if math.IsNaN(vb) {
			return !math.IsNaN(va)
		}
		return math.Abs(va) > math.Abs(vb)
	})
	return out, nil
}

// Pair is a column paired with a statistic.
type Pair struct {
	Column string  `json:"column"`
	Value  float64 `json:"value"`
}

// Categories describes one categorical column.
type Categories struct {
	Column string         `json:"column"`
	Count  int            `json:"count"`
	Unique int            `json:"unique"`
	Top    string         `json:"top"`
	Freq   int            `json:"freq"`
	Counts map[string]int `json:"counts"`
}

// CategoryCounts counts the values of product_tier and make_name. Ties for
// the most frequent value go to the alphabetically first one.
func CategoryCounts(records []listing.Record) []Categories {
	cols := []listing.Column{listing.ProductTier, listing.MakeName}
	out := make([]Categories, len(cols))
	for k, col := range cols {
		counts := make(map[string]int)
		for i := range records {
			if col == listing.ProductTier {
				counts[records[i].ProductTier]++
			} else {
				counts[records[i].MakeName]++
			}
		}
		c := Categories{Column: string(col), Count: len(records), Unique: len(counts), Counts: counts}
		for v, n := range counts {
			if n > c.Freq || (n == c.Freq && v < c.Top) {
				c.Top, c.Freq = v, n
			}
		}
		out[k] = c
	}
	return out
}

// WriteSummaries writes summaries as an aligned text table.
func WriteSummaries(w io.Writer, summaries []Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join([]string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max", ""}, "\t"))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t\n",
			s.Column, s.Count, s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max)
	}
	return tw.Flush()
}
