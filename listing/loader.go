package listing

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/pkg/log"
)

// Delimiter separates fields in both input files.
const Delimiter = ';'

// dayFirstLayouts are tried in order. Single-digit layout elements also
// accept zero-padded values.
var dayFirstLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2006-01-02",
	"2.1.2006 15:04",
	"2.1.2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses s with the day-first convention.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("no day-first date layout matches")
}

// LoadRecords reads the listings file at path.
func LoadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParseError(path, 0, "", "", err)
	}
	defer func() { _ = f.Close() }()

	return ReadRecords(f, path)
}

// ReadRecords parses a semicolon-delimited listings table from r. name is
// used in error messages. Columns are located by header name, so their order
// in the file does not matter. Any malformed cell, or an article_id seen on an
// earlier line, aborts the read with a *errors.ParseError and no records are
// returned.
func ReadRecords(r io.Reader, name string) ([]Record, error) {
	logger := log.GetLoggerWithName("listing.loader")
	start := time.Now()

	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewParseError(name, 0, "", "", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, csvError(name, err)
	}

	idx, err := indexHeader(header)
	if err != nil {
		return nil, errors.NewParseError(name, 1, "", "", err)
	}

	var records []Record
	seen := make(map[string]int)
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(name, err)
		}
		line++

		rec, err := parseRow(row, idx, name, line)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[rec.ArticleID]; dup {
			return nil, errors.NewParseError(name, line, string(ArticleID), rec.ArticleID,
				errors.Newf("duplicate article_id, first seen on line %d", first))
		}
		seen[rec.ArticleID] = line
		records = append(records, rec)
	}

	logger.Info("Records loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, name,
		log.SamplesKey, len(records),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return records, nil
}

func csvError(name string, err error) error {
	if pe, ok := err.(*csv.ParseError); ok {
		return errors.NewParseError(name, pe.Line, "", "", pe.Err)
	}
	return errors.NewParseError(name, 0, "", "", err)
}

func indexHeader(header []string) (map[Column]int, error) {
	idx := make(map[Column]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[Column(strings.ToLower(h))] = i
	}
	var missing []string
	for _, c := range SourceColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Newf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

type rowParser struct {
	row  []string
	idx  map[Column]int
	name string
	line int
	err  error
}

func (p *rowParser) cell(c Column) string {
	i := p.idx[c]
	if i >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[i])
}

func (p *rowParser) fail(c Column, value string, err error) {
	if p.err == nil {
		p.err = errors.NewParseError(p.name, p.line, string(c), value, err)
	}
}

func (p *rowParser) str(c Column) string {
	v := p.cell(c)
	if v == "" {
		p.fail(c, v, errors.New("value is required"))
	}
	return v
}

func (p *rowParser) float(c Column) float64 {
	v := p.cell(c)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.fail(c, v, errors.New("not a number"))
		return 0
	}
	return f
}

func (p *rowParser) integer(c Column) int {
	v := p.cell(c)
	n, err := parseWhole(v)
	if err != nil {
		p.fail(c, v, err)
		return 0
	}
	return int(n)
}

// count parses an optional non-negative whole number. Empty cells are nil.
func (p *rowParser) count(c Column) *int64 {
	v := p.cell(c)
	if v == "" || strings.EqualFold(v, "nan") {
		return nil
	}
	n, err := parseWhole(v)
	if err != nil {
		p.fail(c, v, err)
		return nil
	}
	if n < 0 {
		p.fail(c, v, errors.New("count must be non-negative"))
		return nil
	}
	return &n
}

func (p *rowParser) date(c Column) time.Time {
	v := p.cell(c)
	t, err := ParseDate(v)
	if err != nil {
		p.fail(c, v, err)
	}
	return t
}

func (p *rowParser) optDate(c Column) *time.Time {
	v := p.cell(c)
	if v == "" {
		return nil
	}
	t, err := ParseDate(v)
	if err != nil {
		p.fail(c, v, err)
		return nil
	}
	return &t
}

// parseWhole accepts "12" and "12.0" (counts exported as floats because the
// column had gaps) but rejects fractional values.
func parseWhole(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not an integer")
	}
	if f != math.Trunc(f) {
		return 0, errors.New("not a whole number")
	}
	return int64(f), nil
}

func parseRow(row []string, idx map[Column]int, name string, line int) (Record, error) {
	p := &rowParser{row: row, idx: idx, name: name, line: line}

	rec := Record{
		ArticleID:             p.str(ArticleID),
		ProductTier:           p.str(ProductTier),
		MakeName:              p.str(MakeName),
		Price:                 p.float(Price),
		FirstZipDigit:         p.integer(FirstZipDigit),
		FirstRegistrationYear: p.integer(FirstRegistrationYear),
		SearchViews:           p.count(SearchViews),
		DetailViews:           p.count(DetailViews),
		StockDays:             p.integer(StockDays),
		RawCTR:                p.cell(CTR),
		CreatedDate:           p.date(CreatedDate),
		DeletedDate:           p.optDate(DeletedDate),
	}
	if strings.EqualFold(rec.RawCTR, "nan") {
		rec.RawCTR = ""
	}
	if p.err != nil {
		return Record{}, p.err
	}
	if err := ValidateSource(&rec); err != nil {
		return Record{}, errors.NewParseError(name, line, "", "", err)
	}
	return rec, nil
}
