package prep_test

import (
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/prep"
	"github.com/ezoic/detailviews/preprocessing"
)

var makes = []string{"Audi", "BMW", "Opel", "Volkswagen", "Fiat"}
var tiers = []string{listing.TierBasic, listing.TierPlus, listing.TierPremium}

func newRecord(i int) listing.Record {
	sv := int64(100 + 7*i)
	dv := int64(3 + i%11)
	return listing.Record{
		ArticleID:             strconv.Itoa(350000000 + i),
		ProductTier:           tiers[i%len(tiers)],
		MakeName:              makes[i%len(makes)],
		Price:                 float64(5000 + 250*i),
		FirstZipDigit:         1 + i%9,
		FirstRegistrationYear: 2005 + i%12,
		SearchViews:           listing.Int64(sv),
		DetailViews:           listing.Int64(dv),
		StockDays:             i % 90,
		CreatedDate:           time.Date(2018, time.Month(1+i%12), 1+i%28, 0, 0, 0, 0, time.UTC),
		RawCTR:                strconv.FormatFloat(float64(dv)/float64(sv), 'f', -1, 64),
	}
}

func newRecords(n int) []listing.Record {
	out := make([]listing.Record, n)
	for i := range out {
		out[i] = newRecord(i)
	}
	return out
}

func TestRunDropsNullDetailViews(t *testing.T) {
	records := newRecords(100)
	for _, i := range []int{4, 50, 97} {
		records[i].DetailViews = nil
	}

	res, err := prep.Run(prep.DefaultConfig(2020), records)
	require.NoError(t, err)

	assert.Len(t, res.Records, 97)
	assert.Equal(t, 100, res.Report.InputRows)
	assert.Equal(t, 97, res.Report.OutputRows)
	assert.Equal(t, 3, res.Report.Dropped[dvErrors.MissingValue])
	assert.Len(t, res.Report.WarningsOf(dvErrors.MissingValue), 3)
	assert.Equal(t, 97, res.Raw.Rows())
	assert.Equal(t, 97, res.Log.Rows())
}

func TestRunNoMissingGuardedValues(t *testing.T) {
	records := newRecords(40)
	records[1].SearchViews = nil
	records[2].RawCTR = ""
	records[3].DetailViews = nil
	records[3].SearchViews = nil
	records[5].SearchViews = listing.Int64(0)
	records[5].DetailViews = listing.Int64(0)

	res, err := prep.Run(prep.DefaultConfig(2020), records)
	require.NoError(t, err)

	for _, r := range res.Records {
		require.NotNil(t, r.SearchViews, r.ArticleID)
		require.NotNil(t, r.DetailViews, r.ArticleID)
		require.NotNil(t, r.CTR, r.ArticleID)
		assert.False(t, math.IsNaN(*r.CTR), r.ArticleID)
		assert.InDelta(t, float64(*r.DetailViews)/float64(*r.SearchViews), *r.CTR, 1e-15)
	}
	for _, col := range []string{"search_views", "detail_views", "ctr"} {
		values, err := res.Raw.Column(col)
		require.NoError(t, err)
		for _, v := range values {
			assert.False(t, math.IsNaN(v), col)
		}
	}
	assert.Len(t, res.Records, 36)
	assert.Equal(t, 1, res.Report.Dropped[dvErrors.DivisionUndefined])
}

func TestRunNeverAddsRows(t *testing.T) {
	for _, n := range []int{0, 1, 17, 64} {
		records := newRecords(n)
		res, err := prep.Run(prep.DefaultConfig(2020), records)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Records), n)
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	records := newRecords(10)
	records[0].SearchViews = nil

	_, err := prep.Run(prep.DefaultConfig(2020), records)
	require.NoError(t, err)

	assert.Nil(t, records[0].SearchViews)
	assert.Nil(t, records[1].CTR)
	assert.Equal(t, 0, records[1].CreatedMonth)
}

func TestRunExcludesAnomalousYear(t *testing.T) {
	records := newRecords(6)
	records[2].FirstRegistrationYear = 2106
	records[3].FirstRegistrationYear = 2016
	records[4].FirstRegistrationYear = 1850

	res, err := prep.Run(prep.DefaultConfig(2020), records)
	require.NoError(t, err)

	years := make(map[string]int)
	for _, r := range res.Records {
		years[r.ArticleID] = r.FirstRegistrationYear
	}
	assert.NotContains(t, years, records[2].ArticleID)
	assert.Equal(t, 2016, years[records[3].ArticleID])
	assert.NotContains(t, years, records[4].ArticleID)
	assert.Equal(t, 2, res.Report.Dropped[dvErrors.ExcludedValue])
}

func TestRunLogViewRoundTrip(t *testing.T) {
	res, err := prep.Run(prep.DefaultConfig(2020), newRecords(30))
	require.NoError(t, err)

	for _, col := range prep.DefaultColumnsToLog {
		raw, err := res.Raw.Column(string(col))
		require.NoError(t, err)
		logged, err := res.Log.Column(string(col))
		require.NoError(t, err)
		for i := range raw {
			assert.InDelta(t, raw[i], preprocessing.Exp10m1(logged[i]), 1e-9*math.Max(1, raw[i]), "%s row %d", col, i)
		}
	}

	for _, col := range []string{"stock_days", "product_tier", "make_name", "peak_season"} {
		raw, _ := res.Raw.Column(col)
		logged, _ := res.Log.Column(col)
		assert.Equal(t, raw, logged, "%s is not log-transformed", col)
	}
}

func TestRunNegativeStockDays(t *testing.T) {
	records := newRecords(5)
	records[2].StockDays = -3

	res, err := prep.Run(prep.DefaultConfig(2020), records)
	require.NoError(t, err)

	logged, err := res.Log.Column("stock_days")
	require.NoError(t, err)
	assert.Equal(t, -3.0, logged[2])
	for _, v := range logged {
		assert.False(t, math.IsNaN(v))
	}
}

func TestRunEncodesCategories(t *testing.T) {
	res, err := prep.Run(prep.DefaultConfig(2020), newRecords(15))
	require.NoError(t, err)

	assert.Equal(t, []string{"Basic", "Plus", "Premium"}, res.Encodings.Columns["product_tier"])
	assert.Equal(t, []string{"Audi", "BMW", "Fiat", "Opel", "Volkswagen"}, res.Encodings.Columns["make_name"])

	codes, err := res.Log.Column("make_name")
	require.NoError(t, err)
	for i, r := range res.Records {
		want, ok := res.Encodings.Code("make_name", r.MakeName)
		require.True(t, ok)
		assert.Equal(t, float64(want), codes[i])
	}
}

func TestRunWithPriorEncodings(t *testing.T) {
	prior := preprocessing.NewEncodingMap()
	prior.Columns["make_name"] = []string{"Volkswagen", "Opel", "Audi", "BMW"}
	prior.Columns["product_tier"] = []string{"Basic", "Plus", "Premium"}

	cfg := prep.DefaultConfig(2020)
	cfg.Encodings = prior

	res, err := prep.Run(cfg, newRecords(10))
	require.NoError(t, err)

	assert.Equal(t, []string{"Volkswagen", "Opel", "Audi", "BMW", "Fiat"}, res.Encodings.Columns["make_name"])
	assert.Len(t, prior.Columns["make_name"], 4, "prior map is not modified")

	unseen := res.Report.WarningsOf(dvErrors.UnseenCategory)
	require.Len(t, unseen, 1)
	assert.Equal(t, "Fiat", unseen[0].Value)
	assert.Equal(t, 0, res.Report.TotalDropped())

	for _, r := range res.Records {
		if r.MakeName == "Volkswagen" {
			assert.Equal(t, 0, r.MakeNameCode)
		}
		if r.MakeName == "Fiat" {
			assert.Equal(t, 4, r.MakeNameCode)
		}
	}
}

func TestRunKeepUndefinedCTR(t *testing.T) {
	records := newRecords(5)
	records[2].SearchViews = listing.Int64(0)

	cfg := prep.DefaultConfig(2020)
	cfg.ZeroSearchViews = prep.KeepUndefined

	res, err := prep.Run(cfg, records)
	require.NoError(t, err)
	require.Len(t, res.Records, 5)
	assert.True(t, math.IsNaN(*res.Records[2].CTR))
	assert.Equal(t, 0, res.Report.Dropped[dvErrors.DivisionUndefined])
	assert.Len(t, res.Report.WarningsOf(dvErrors.DivisionUndefined), 1)
}

func TestRunCountsRepairedCTR(t *testing.T) {
	records := newRecords(4)
	records[0].RawCTR = "27.624.309.392.265.100"
	records[1].RawCTR = "0.5"

	res, err := prep.Run(prep.DefaultConfig(2020), records)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Report.CTRChanged)
}

func TestRunEmitsWarnings(t *testing.T) {
	var got []error
	prev := dvErrors.SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() { dvErrors.SetWarningHandler(prev) })

	records := newRecords(3)
	records[1].SearchViews = listing.Int64(0)

	_, err := prep.Run(prep.DefaultConfig(2020), records)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, errors.Is(got[0], dvErrors.ErrDivisionUndefined))
}

func TestRunReportsStages(t *testing.T) {
	res, err := prep.Run(prep.DefaultConfig(2020), newRecords(8))
	require.NoError(t, err)

	var names []string
	for _, s := range res.Report.Stages {
		names = append(names, s.Stage)
		assert.LessOrEqual(t, s.RowsOut, s.RowsIn)
	}
	assert.Equal(t, []string{
		prep.StageMissing, prep.StageCTR, prep.StageSeason,
		prep.StageOutliers, prep.StageLog, prep.StageEncode,
	}, names)
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*prep.Config)
	}{
		{"log categorical", func(c *prep.Config) { c.ColumnsToLog = []listing.Column{listing.MakeName} }},
		{"log unknown column", func(c *prep.Config) { c.ColumnsToLog = []listing.Column{"weekend_no"} }},
		{"log signed column", func(c *prep.Config) { c.ColumnsToLog = append(c.ColumnsToLog, listing.StockDays) }},
		{"bad month", func(c *prep.Config) { c.PeakMonths = []time.Month{13} }},
		{"reference year", func(c *prep.Config) { c.ReferenceYear = 1000 }},
		{"policy", func(c *prep.Config) { c.ZeroSearchViews = prep.ZeroViewsPolicy(7) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := prep.DefaultConfig(2020)
			tt.mutate(&cfg)
			_, err := prep.Run(cfg, newRecords(3))
			assert.Error(t, err)
		})
	}
}

func TestParseZeroViewsPolicy(t *testing.T) {
	p, err := prep.ParseZeroViewsPolicy("Keep")
	require.NoError(t, err)
	assert.Equal(t, prep.KeepUndefined, p)
	assert.Equal(t, "keep", p.String())

	p, err = prep.ParseZeroViewsPolicy("")
	require.NoError(t, err)
	assert.Equal(t, prep.DropUndefined, p)

	_, err = prep.ParseZeroViewsPolicy("impute")
	assert.Error(t, err)
}
