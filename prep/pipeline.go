// Package prep cleans the classified-ad listings and derives the model-ready
// views: it drops incomplete rows, recomputes ctr, adds the seasonal feature,
// removes outliers, builds raw and log10(x + 1) frames and label-encodes the
// categorical columns.
//
// Example:
//
//	records, err := listing.LoadRecords("Items_Cars_Data.csv")
//	if err != nil {
//		return err
//	}
//	res, err := prep.Run(prep.DefaultConfig(2020), records)
//	X, y, err := res.Log.XY()
package prep

import (
	"time"

	"github.com/ezoic/detailviews/dataset"
	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/pkg/log"
)

// Pipeline runs the cleaning stages in their fixed order.
type Pipeline struct {
	cfg    Config
	logger log.Logger
}

// New returns a pipeline. A nil logger uses the "prep" named logger.
func New(cfg Config, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.GetLoggerWithName("prep")
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run cleans records with cfg and the default logger.
func Run(cfg Config, records []listing.Record) (*Result, error) {
	return New(cfg, nil).Run(records)
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// RunFiles loads the listings and description files and runs the pipeline.
// The description is loaded for documentation only; a description that
// fails to parse is a ParseError like the listings file.
func (p *Pipeline) RunFiles(recordsPath, descriptionPath string) (*Result, *listing.Description, error) {
	start := time.Now()
	records, err := listing.LoadRecords(recordsPath)
	if err != nil {
		return nil, nil, err
	}

	var desc *listing.Description
	if descriptionPath != "" {
		desc, err = listing.LoadDescription(descriptionPath)
		if err != nil {
			return nil, nil, err
		}
		if missing := desc.Undocumented(); len(missing) > 0 {
			p.logger.Debug("Columns without description", log.PathKey, descriptionPath, "columns", missing)
		}
	}
	p.logger.Info("Stage complete",
		log.StageKey, StageLoad,
		log.RowsOutKey, len(records),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	res, err := p.Run(records)
	if err != nil {
		return nil, nil, err
	}
	return res, desc, nil
}

// Run applies stages 2 to 7 to a copy of records. Data problems never fail
// the run: they drop rows and are reported as warnings. An error means the
// configuration is invalid or an internal invariant broke.
func (p *Pipeline) Run(records []listing.Record) (res *Result, err error) {
	defer dvErrors.Recover(&err, "Pipeline.Run")
	if err := p.cfg.Validate(); err != nil {
		return nil, dvErrors.Wrap(err, "invalid pipeline config")
	}

	start := time.Now()
	rows := make([]listing.Record, len(records))
	for i := range records {
		rows[i] = records[i].Clone()
	}
	report := newReport(len(rows))

	var warnings []*dvErrors.DataQualityWarning
	in := len(rows)
	rows, warnings = DropMissing(rows)
	p.finishStage(report, StageMissing, in, len(rows), warnings)

	var changed int
	in = len(rows)
	rows, changed, warnings = RecomputeCTR(rows, p.cfg.ZeroSearchViews)
	report.CTRChanged = changed
	p.finishStage(report, StageCTR, in, len(rows), warnings)

	DeriveSeason(rows, p.cfg.PeakMonths)
	p.finishStage(report, StageSeason, len(rows), len(rows), nil)

	in = len(rows)
	rows, warnings = ExcludeOutliers(rows, p.cfg.Exclusions)
	p.finishStage(report, StageOutliers, in, len(rows), warnings)

	for i := range rows {
		if err := listing.Validate(&rows[i]); err != nil {
			return nil, dvErrors.NewModelError("Pipeline.Run", "cleaned record "+rows[i].ArticleID+" violates invariants", err)
		}
	}

	raw, err := dataset.NewFrame(rows, dataset.FrameColumns)
	if err != nil {
		return nil, err
	}
	logView, err := LogView(raw, p.cfg.ColumnsToLog)
	if err != nil {
		return nil, err
	}
	p.finishStage(report, StageLog, len(rows), len(rows), nil)

	encodings, warnings, err := Encode(rows, p.cfg.Encodings)
	if err != nil {
		return nil, err
	}
	for _, col := range EncodedColumns {
		codes := make([]float64, len(rows))
		for i := range rows {
			codes[i] = rows[i].Float(col)
		}
		for _, f := range []*dataset.Frame{raw, logView} {
			if err := f.SetColumn(string(col), codes); err != nil {
				return nil, err
			}
		}
	}
	p.finishStage(report, StageEncode, len(rows), len(rows), warnings)

	report.OutputRows = len(rows)
	p.logger.Info("Cleaning complete",
		log.PhaseKey, log.PhaseCleaning,
		log.RowsInKey, report.InputRows,
		log.RowsOutKey, report.OutputRows,
		log.DroppedKey, report.TotalDropped(),
		"ctr_changed", report.CTRChanged,
		"warnings", len(report.Warnings),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{
		Records:   rows,
		Raw:       raw,
		Log:       logView,
		Encodings: encodings,
		Report:    report,
	}, nil
}

func (p *Pipeline) finishStage(report *Report, stage string, in, out int, warnings []*dvErrors.DataQualityWarning) {
	report.Stages = append(report.Stages, StageReport{
		Stage:    stage,
		RowsIn:   in,
		RowsOut:  out,
		Warnings: len(warnings),
	})
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w)
		if p.drops(w) {
			report.Dropped[w.Kind]++
		}
		dvErrors.Warn(w)
		p.logger.Debug("Data quality warning",
			log.StageKey, stage,
			log.KindKey, string(w.Kind),
			log.ArticleIDKey, w.ArticleID,
			log.ColumnKey, w.Column,
			"value", w.Value,
			"reason", w.Message,
		)
	}
	p.logger.Info("Stage complete",
		log.StageKey, stage,
		log.RowsInKey, in,
		log.RowsOutKey, out,
		log.DroppedKey, in-out,
	)
}

// drops reports whether w accompanied a row removal.
func (p *Pipeline) drops(w *dvErrors.DataQualityWarning) bool {
	switch w.Kind {
	case dvErrors.MissingValue, dvErrors.ExcludedValue:
		return true
	case dvErrors.DivisionUndefined:
		return p.cfg.ZeroSearchViews == DropUndefined
	default:
		return false
	}
}
