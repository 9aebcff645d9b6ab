package listing

import (
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/ezoic/detailviews/pkg/errors"
)

// Description is the column-description table shipped with the listings
// file. It documents the columns and is never consumed by cleaning logic.
type Description struct {
	df dataframe.DataFrame
}

// LoadDescription reads the description file at path.
func LoadDescription(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParseError(path, 0, "", "", err)
	}
	defer func() { _ = f.Close() }()

	return ReadDescription(f, path)
}

// ReadDescription parses a semicolon-delimited description table. Every cell
// is kept as a string.
func ReadDescription(r io.Reader, name string) (*Description, error) {
	df := dataframe.ReadCSV(r,
		dataframe.WithDelimiter(Delimiter),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, errors.NewParseError(name, 0, "", "", df.Err)
	}
	if df.Ncol() < 2 {
		return nil, errors.NewParseError(name, 1, "", "", errors.Newf("expected at least 2 columns, got %d", df.Ncol()))
	}
	return &Description{df: df}, nil
}

// Len returns the number of described columns.
func (d *Description) Len() int { return d.df.Nrow() }

// Header returns the header of the description file.
func (d *Description) Header() []string { return d.df.Names() }

// Entries maps the first column (the listings column name) to the second
// (its description).
func (d *Description) Entries() map[string]string {
	records := d.df.Records()
	out := make(map[string]string, len(records))
	for _, row := range records[1:] {
		key := strings.ToLower(strings.TrimSpace(row[0]))
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(row[1])
	}
	return out
}

// Lookup returns the description of c.
func (d *Description) Lookup(c Column) (string, bool) {
	text, ok := d.Entries()[string(c)]
	return text, ok
}

// Undocumented lists source columns that have no description entry.
func (d *Description) Undocumented() []Column {
	entries := d.Entries()
	var out []Column
	for _, c := range SourceColumns {
		if _, ok := entries[string(c)]; !ok {
			out = append(out, c)
		}
	}
	return out
}
