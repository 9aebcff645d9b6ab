// Package listing holds the classified-ad listing record, its column names,
// and the loaders for the semicolon-delimited listings and column-description
// files.
package listing

import (
	"math"
	"time"
)

// Column names a field of the listings table as it appears in the header.
type Column string

const (
	ArticleID             Column = "article_id"
	ProductTier           Column = "product_tier"
	MakeName              Column = "make_name"
	Price                 Column = "price"
	FirstZipDigit         Column = "first_zip_digit"
	FirstRegistrationYear Column = "first_registration_year"
	SearchViews           Column = "search_views"
	DetailViews           Column = "detail_views"
	StockDays             Column = "stock_days"
	CTR                   Column = "ctr"
	CreatedDate           Column = "created_date"
	DeletedDate           Column = "deleted_date"

	// Derived columns.
	CreatedMonth Column = "created_month"
	DeletedMonth Column = "deleted_month"
	PeakSeason   Column = "peak_season"
)

// SourceColumns lists the columns of the listings file in file order.
var SourceColumns = []Column{
	ArticleID, ProductTier, MakeName, Price, FirstZipDigit, FirstRegistrationYear,
	SearchViews, DetailViews, StockDays, CTR, CreatedDate, DeletedDate,
}

// Product tiers.
const (
	TierBasic   = "Basic"
	TierPlus    = "Plus"
	TierPremium = "Premium"
)

// Record is one listing. Optional source values are pointers; nil means the
// cell was empty.
type Record struct {
	ArticleID             string  `validate:"required"`
	ProductTier           string  `validate:"oneof=Basic Plus Premium"`
	MakeName              string  `validate:"required"`
	Price                 float64 `validate:"gte=0"`
	FirstZipDigit         int     `validate:"gte=0"`
	FirstRegistrationYear int     `validate:"gte=0"`
	SearchViews           *int64  `validate:"required,gte=0"`
	DetailViews           *int64  `validate:"required,gte=0"`
	StockDays             int
	CreatedDate           time.Time
	DeletedDate           *time.Time

	// RawCTR is the ctr cell as read. It only decides presence: the value
	// itself is never trusted and CTR is recomputed from the view counts.
	RawCTR string
	// CTR is detail_views / search_views once recomputed. NaN when
	// search_views is zero and the row was kept.
	CTR *float64 `validate:"required"`

	CreatedMonth int
	// DeletedMonth is zero when DeletedDate is nil.
	DeletedMonth int
	PeakSeason   bool

	ProductTierCode int
	MakeNameCode    int
}

// HasCTR reports whether the record carries a ctr value, either the raw cell
// or a recomputed one.
func (r *Record) HasCTR() bool {
	return r.CTR != nil || r.RawCTR != ""
}

// Float returns the numeric value of c for r. Missing optional values and
// non-numeric columns are NaN.
func (r *Record) Float(c Column) float64 {
	switch c {
	case Price:
		return r.Price
	case FirstZipDigit:
		return float64(r.FirstZipDigit)
	case FirstRegistrationYear:
		return float64(r.FirstRegistrationYear)
	case SearchViews:
		return optInt(r.SearchViews)
	case DetailViews:
		return optInt(r.DetailViews)
	case StockDays:
		return float64(r.StockDays)
	case CTR:
		if r.CTR == nil {
			return math.NaN()
		}
		return *r.CTR
	case CreatedMonth:
		return float64(r.CreatedMonth)
	case DeletedMonth:
		return float64(r.DeletedMonth)
	case PeakSeason:
		if r.PeakSeason {
			return 1
		}
		return 0
	case ProductTier:
		return float64(r.ProductTierCode)
	case MakeName:
		return float64(r.MakeNameCode)
	default:
		return math.NaN()
	}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() Record {
	c := *r
	if r.SearchViews != nil {
		v := *r.SearchViews
		c.SearchViews = &v
	}
	if r.DetailViews != nil {
		v := *r.DetailViews
		c.DetailViews = &v
	}
	if r.DeletedDate != nil {
		v := *r.DeletedDate
		c.DeletedDate = &v
	}
	if r.CTR != nil {
		v := *r.CTR
		c.CTR = &v
	}
	return c
}

func optInt(v *int64) float64 {
	if v == nil {
		return math.NaN()
	}
	return float64(*v)
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Date returns a pointer to the UTC midnight of the given day.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
