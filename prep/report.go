package prep

import (
	"github.com/ezoic/detailviews/dataset"
	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/preprocessing"
)

// StageReport records one stage's row counts.
type StageReport struct {
	Stage    string `json:"stage"`
	RowsIn   int    `json:"rows_in"`
	RowsOut  int    `json:"rows_out"`
	Warnings int    `json:"warnings"`
}

// Dropped returns RowsIn - RowsOut.
func (s StageReport) Dropped() int { return s.RowsIn - s.RowsOut }

// Report summarizes a run.
type Report struct {
	InputRows  int `json:"input_rows"`
	OutputRows int `json:"output_rows"`

	// Dropped counts removed rows by warning kind.
	Dropped map[dvErrors.WarningKind]int `json:"dropped"`

	// CTRChanged counts records whose ctr differed from the value in the
	// source file, including unparseable ones.
	CTRChanged int `json:"ctr_changed"`

	Stages   []StageReport                  `json:"stages"`
	Warnings []*dvErrors.DataQualityWarning `json:"warnings"`
}

func newReport(inputRows int) *Report {
	return &Report{
		InputRows: inputRows,
		Dropped:   make(map[dvErrors.WarningKind]int),
	}
}

// TotalDropped returns InputRows - OutputRows.
func (r *Report) TotalDropped() int { return r.InputRows - r.OutputRows }

// WarningsOf returns the warnings of the given kind.
func (r *Report) WarningsOf(kind dvErrors.WarningKind) []*dvErrors.DataQualityWarning {
	var out []*dvErrors.DataQualityWarning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// Result is the cleaned, feature-augmented dataset handed to modelling. Raw
// and Log share the row order of Records.
type Result struct {
	Records   []listing.Record
	Raw       *dataset.Frame
	Log       *dataset.Frame
	Encodings *preprocessing.EncodingMap
	Report    *Report
}
