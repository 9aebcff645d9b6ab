package prep

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ezoic/detailviews/dataset"
	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/preprocessing"
)

// Stage names, as they appear in logs and warnings.
const (
	StageLoad     = "load"
	StageMissing  = "drop_missing"
	StageCTR      = "recompute_ctr"
	StageSeason   = "derive_season"
	StageOutliers = "exclude_outliers"
	StageLog      = "log_view"
	StageEncode   = "encode"
)

// ctrTolerance is the relative difference below which a recomputed ctr
// counts as unchanged.
const ctrTolerance = 1e-9

// DropMissing removes every record lacking search_views, detail_views or
// ctr. Values are never imputed. The kept records reuse the front of
// records' backing array, so the caller's slice is overwritten.
func DropMissing(records []listing.Record) ([]listing.Record, []*dvErrors.DataQualityWarning) {
	var warnings []*dvErrors.DataQualityWarning
	kept := records[:0]
	for i := range records {
		r := &records[i]
		if missing := missingColumns(r); len(missing) > 0 {
			warnings = append(warnings, dvErrors.NewDataQualityWarning(
				dvErrors.MissingValue, StageMissing, r.ArticleID,
				strings.Join(missing, ","), "", "required value is empty; row dropped"))
			continue
		}
		kept = append(kept, *r)
	}
	return kept, warnings
}

func missingColumns(r *listing.Record) []string {
	var missing []string
	if r.SearchViews == nil {
		missing = append(missing, string(listing.SearchViews))
	}
	if r.DetailViews == nil {
		missing = append(missing, string(listing.DetailViews))
	}
	if !r.HasCTR() {
		missing = append(missing, string(listing.CTR))
	}
	return missing
}

// RecomputeCTR sets ctr = detail_views / search_views on every record,
// whatever the previous value. It returns the kept records, the number of
// records whose ctr differed from the value they carried and the warnings.
//
// A record with zero search_views gets ctr = NaN and a DivisionUndefined
// warning; DropUndefined then removes it. Records still missing a view count
// are removed with a MissingValue warning. Applying the stage twice yields
// the same records.
//
// Like DropMissing, the kept records reuse the front of records' backing
// array, so the caller's slice is overwritten; clone it first if it is still
// needed.
func RecomputeCTR(records []listing.Record, policy ZeroViewsPolicy) ([]listing.Record, int, []*dvErrors.DataQualityWarning) {
	var (
		warnings []*dvErrors.DataQualityWarning
		changed  int
	)
	kept := records[:0]
	for i := range records {
		r := records[i]
		if r.SearchViews == nil || r.DetailViews == nil {
			warnings = append(warnings, dvErrors.NewDataQualityWarning(
				dvErrors.MissingValue, StageCTR, r.ArticleID,
				strings.Join(missingColumns(&r), ","), "", "view count is empty; row dropped"))
			continue
		}

		prior, hadPrior := priorCTR(&r)
		ctr := math.NaN()
		if *r.SearchViews == 0 {
			msg := "search_views is zero; ctr undefined"
			if policy == DropUndefined {
				msg += "; row dropped"
			}
			warnings = append(warnings, dvErrors.NewDataQualityWarning(
				dvErrors.DivisionUndefined, StageCTR, r.ArticleID,
				string(listing.SearchViews), "0", msg))
		} else {
			ctr = float64(*r.DetailViews) / float64(*r.SearchViews)
		}

		if !hadPrior || !sameCTR(prior, ctr) {
			changed++
		}
		r.CTR = listing.Float64(ctr)

		if math.IsNaN(ctr) && policy == DropUndefined {
			continue
		}
		kept = append(kept, r)
	}
	return kept, changed, warnings
}

// priorCTR returns the ctr a record carried before recomputation: the
// computed value if present, otherwise the raw cell when it parses.
func priorCTR(r *listing.Record) (float64, bool) {
	if r.CTR != nil {
		return *r.CTR, true
	}
	raw := strings.ReplaceAll(strings.TrimSpace(r.RawCTR), ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func sameCTR(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= ctrTolerance*math.Max(1, math.Abs(b))
}

// DeriveSeason sets created_month, deleted_month and peak_season. A listing
// is in peak season when its created or deleted month is a peak month; a
// record without deleted_date is judged on created_month alone.
func DeriveSeason(records []listing.Record, peakMonths []time.Month) {
	peak := make(map[time.Month]bool, len(peakMonths))
	for _, m := range peakMonths {
		peak[m] = true
	}
	for i := range records {
		r := &records[i]
		r.CreatedMonth = int(r.CreatedDate.Month())
		r.DeletedMonth = 0
		r.PeakSeason = peak[r.CreatedDate.Month()]
		if r.DeletedDate != nil {
			r.DeletedMonth = int(r.DeletedDate.Month())
			r.PeakSeason = r.PeakSeason || peak[r.DeletedDate.Month()]
		}
	}
}

// ExcludeOutliers removes records matched by table, one ExcludedValue
// warning per removed record. The kept records reuse the front of records'
// backing array, so the caller's slice is overwritten.
func ExcludeOutliers(records []listing.Record, table listing.ExclusionTable) ([]listing.Record, []*dvErrors.DataQualityWarning) {
	var warnings []*dvErrors.DataQualityWarning
	kept := records[:0]
	for i := range records {
		r := &records[i]
		if rule, ok := table.Match(r); ok {
			warnings = append(warnings, dvErrors.NewDataQualityWarning(
				dvErrors.ExcludedValue, StageOutliers, r.ArticleID,
				string(rule.Column), strconv.FormatFloat(r.Float(rule.Column), 'f', -1, 64),
				rule.Reason))
			continue
		}
		kept = append(kept, *r)
	}
	return kept, warnings
}

// LogView returns a copy of raw with log10(x + 1) applied to columns. raw is
// not modified.
func LogView(raw *dataset.Frame, columns []listing.Column) (*dataset.Frame, error) {
	out := raw.Clone()
	if out.Rows() == 0 || len(columns) == 0 {
		return out, nil
	}

	idx := make([]int, 0, len(columns))
	for _, c := range columns {
		j, ok := raw.Index(string(c))
		if !ok {
			return nil, dvErrors.NewValueError("prep.LogView", "column "+string(c)+" not in frame")
		}
		idx = append(idx, j)
	}

	lt := preprocessing.NewLogTransformer(idx...)
	logged, err := lt.FitTransform(raw.Data)
	if err != nil {
		return nil, err
	}
	out.Data.Copy(logged)
	return out, nil
}

// EncodedColumns are the categorical columns replaced by integer codes.
var EncodedColumns = []listing.Column{listing.ProductTier, listing.MakeName}

// Encode assigns product_tier and make_name codes to records. Without a prior
// map, codes follow the sorted order of the categories present. With one,
// its codes are kept and unseen categories are appended after the current
// maximum code, one UnseenCategory warning each. prior is not modified.
func Encode(records []listing.Record, prior *preprocessing.EncodingMap) (*preprocessing.EncodingMap, []*dvErrors.DataQualityWarning, error) {
	var warnings []*dvErrors.DataQualityWarning
	encodings := preprocessing.NewEncodingMap()
	if prior != nil {
		encodings = prior.Clone()
	}

	for _, col := range EncodedColumns {
		values := make([]string, len(records))
		firstSeen := make(map[string]string)
		for i := range records {
			v := categoryOf(&records[i], col)
			values[i] = v
			if _, ok := firstSeen[v]; !ok {
				firstSeen[v] = records[i].ArticleID
			}
		}

		enc, ok := encodings.Encoder(string(col))
		if ok {
			for _, v := range enc.Extend(values) {
				warnings = append(warnings, dvErrors.NewDataQualityWarning(
					dvErrors.UnseenCategory, StageEncode, firstSeen[v],
					string(col), v, "category missing from the supplied encoding map; appended"))
			}
		} else {
			enc = preprocessing.NewLabelEncoder()
			if len(values) > 0 {
				if err := enc.Fit(values); err != nil {
					return nil, nil, err
				}
			}
		}
		encodings.Set(string(col), enc)

		if len(values) == 0 {
			continue
		}
		codes, err := enc.Transform(values)
		if err != nil {
			return nil, nil, err
		}
		for i := range records {
			setCode(&records[i], col, codes[i])
		}
	}
	return encodings, warnings, nil
}

func categoryOf(r *listing.Record, col listing.Column) string {
	if col == listing.ProductTier {
		return r.ProductTier
	}
	return r.MakeName
}

func setCode(r *listing.Record, col listing.Column, code int) {
	if col == listing.ProductTier {
		r.ProductTierCode = code
		return
	}
	r.MakeNameCode = code
}
