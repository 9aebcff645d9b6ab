// Package export writes the artifacts of a cleaning run: semicolon-delimited
// tables, an xlsx workbook, the encoding map and a JSON manifest.
package export

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ezoic/detailviews/dataset"
	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// DateLayout is the day-first layout used for dates in written tables.
const DateLayout = "02.01.2006"

// RecordColumns is the header of WriteRecordsCSV: the source columns
// followed by the derived ones and the categorical codes.
var RecordColumns = []string{
	string(listing.ArticleID), string(listing.ProductTier), string(listing.MakeName),
	string(listing.Price), string(listing.FirstZipDigit), string(listing.FirstRegistrationYear),
	string(listing.SearchViews), string(listing.DetailViews), string(listing.StockDays),
	string(listing.CTR), string(listing.CreatedDate), string(listing.DeletedDate),
	string(listing.CreatedMonth), string(listing.DeletedMonth), string(listing.PeakSeason),
	"product_tier_code", "make_name_code",
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, dvErrors.Wrapf(err, "create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, dvErrors.Wrapf(err, "create %s", path)
	}
	return f, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = dvErrors.Wrapf(cerr, "close %s", path)
		}
	}()
	return write(f)
}

// FormatFloat formats v for a table cell. NaN is written as an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes f to path with a header row.
func WriteCSV(path string, f *dataset.Frame) error {
	return writeFile(path, func(w io.Writer) error { return WriteFrame(w, f) })
}

// WriteFrame writes f as a semicolon-delimited table.
func WriteFrame(w io.Writer, f *dataset.Frame) error {
	cw := csv.NewWriter(w)
	cw.Comma = listing.Delimiter
	if err := cw.Write(f.Columns); err != nil {
		return dvErrors.Wrap(err, "write header")
	}
	row := make([]string, len(f.Columns))
	for i := 0; i < f.Rows(); i++ {
		for j := range row {
			row[j] = FormatFloat(f.Data.At(i, j))
		}
		if err := cw.Write(row); err != nil {
			return dvErrors.Wrapf(err, "write row %d", i)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecordsCSV writes the cleaned records to path, readable again by
// listing.LoadRecords.
func WriteRecordsCSV(path string, records []listing.Record) error {
	return writeFile(path, func(w io.Writer) error { return WriteRecords(w, records) })
}

// WriteRecords writes records as a semicolon-delimited table with the
// RecordColumns header.
func WriteRecords(w io.Writer, records []listing.Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = listing.Delimiter
	if err := cw.Write(RecordColumns); err != nil {
		return dvErrors.Wrap(err, "write header")
	}
	for i := range records {
		if err := cw.Write(recordRow(&records[i])); err != nil {
			return dvErrors.Wrapf(err, "write record %s", records[i].ArticleID)
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordRow(r *listing.Record) []string {
	deleted := ""
	if r.DeletedDate != nil {
		deleted = r.DeletedDate.Format(DateLayout)
	}
	peak := "0"
	if r.PeakSeason {
		peak = "1"
	}
	return []string{
		r.ArticleID,
		r.ProductTier,
		r.MakeName,
		FormatFloat(r.Price),
		strconv.Itoa(r.FirstZipDigit),
		strconv.Itoa(r.FirstRegistrationYear),
		FormatFloat(r.Float(listing.SearchViews)),
		FormatFloat(r.Float(listing.DetailViews)),
		strconv.Itoa(r.StockDays),
		FormatFloat(r.Float(listing.CTR)),
		r.CreatedDate.Format(DateLayout),
		deleted,
		strconv.Itoa(r.CreatedMonth),
		strconv.Itoa(r.DeletedMonth),
		peak,
		strconv.Itoa(r.ProductTierCode),
		strconv.Itoa(r.MakeNameCode),
	}
}
