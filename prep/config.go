package prep

import (
	"fmt"
	"strings"
	"time"

	"github.com/ezoic/detailviews/dataset"
	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/preprocessing"
)

// ZeroViewsPolicy decides what happens to a row whose search_views is zero,
// where ctr is undefined.
type ZeroViewsPolicy int

const (
	// DropUndefined removes the row after the ctr stage.
	DropUndefined ZeroViewsPolicy = iota
	// KeepUndefined keeps the row with ctr = NaN.
	KeepUndefined
)

func (p ZeroViewsPolicy) String() string {
	switch p {
	case DropUndefined:
		return "drop"
	case KeepUndefined:
		return "keep"
	default:
		return fmt.Sprintf("ZeroViewsPolicy(%d)", int(p))
	}
}

// ParseZeroViewsPolicy accepts "drop" and "keep".
func ParseZeroViewsPolicy(s string) (ZeroViewsPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return DropUndefined, nil
	case "keep":
		return KeepUndefined, nil
	default:
		return DropUndefined, dvErrors.NewValidationError("zero_search_views", "must be drop or keep", s)
	}
}

// DefaultColumnsToLog are the skewed numeric columns given a log10(x + 1) view.
var DefaultColumnsToLog = []listing.Column{
	listing.Price,
	listing.FirstRegistrationYear,
	listing.SearchViews,
	listing.DetailViews,
	listing.CTR,
}

// SignedColumns are frame columns whose values may be negative. log10(x + 1)
// is undefined below -1, so they can never be log-transformed.
var SignedColumns = []listing.Column{listing.StockDays}

// DefaultPeakMonths are spring (March to May) and fall (September to November).
var DefaultPeakMonths = []time.Month{
	time.March, time.April, time.May,
	time.September, time.October, time.November,
}

// Config carries every column list and threshold the pipeline uses.
type Config struct {
	ColumnsToLog    []listing.Column
	Exclusions      listing.ExclusionTable
	PeakMonths      []time.Month
	ZeroSearchViews ZeroViewsPolicy

	// Encodings is a prior encoding map. When set its codes are kept and
	// unseen categories are appended.
	Encodings *preprocessing.EncodingMap

	// ReferenceYear bounds the default registration-year range.
	ReferenceYear int
}

// DefaultConfig returns the configuration for the listings dataset.
func DefaultConfig(referenceYear int) Config {
	return Config{
		ColumnsToLog:    append([]listing.Column(nil), DefaultColumnsToLog...),
		Exclusions:      listing.DefaultExclusions(referenceYear),
		PeakMonths:      append([]time.Month(nil), DefaultPeakMonths...),
		ZeroSearchViews: DropUndefined,
		ReferenceYear:   referenceYear,
	}
}

// Validate checks the configuration before a run.
func (c Config) Validate() error {
	if c.ReferenceYear < listing.MinRegistrationYear {
		return dvErrors.NewValidationError("reference_year", fmt.Sprintf("must be at least %d", listing.MinRegistrationYear), c.ReferenceYear)
	}
	for _, m := range c.PeakMonths {
		if m < time.January || m > time.December {
			return dvErrors.NewValidationError("peak_months", "month out of range", int(m))
		}
	}
	for _, col := range c.ColumnsToLog {
		if col == listing.ProductTier || col == listing.MakeName {
			return dvErrors.NewValidationError("columns_to_log", "categorical codes are never log-transformed", col)
		}
		if !contains(dataset.FrameColumns, col) {
			return dvErrors.NewValidationError("columns_to_log", "not a frame column", col)
		}
		if contains(SignedColumns, col) {
			return dvErrors.NewValidationError("columns_to_log", "column may be negative", col)
		}
	}
	if c.ZeroSearchViews != DropUndefined && c.ZeroSearchViews != KeepUndefined {
		return dvErrors.NewValidationError("zero_search_views", "unknown policy", c.ZeroSearchViews)
	}
	if err := c.Exclusions.Validate(); err != nil {
		return err
	}
	if c.Encodings != nil {
		return c.Encodings.Validate()
	}
	return nil
}

func contains(cols []listing.Column, c listing.Column) bool {
	for _, x := range cols {
		if x == c {
			return true
		}
	}
	return false
}
