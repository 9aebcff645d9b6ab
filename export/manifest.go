package export

import (
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ezoic/detailviews/core/model"
	"github.com/ezoic/detailviews/evaluation"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/prep"
	"github.com/ezoic/detailviews/preprocessing"
	"github.com/ezoic/detailviews/report"
)

// Artifact file names written by WriteAll.
const (
	CleanedCSV    = "cleaned.csv"
	RawCSV        = "raw.csv"
	LogCSV        = "log.csv"
	WorkbookFile  = "detail_views.xlsx"
	EncodingsFile = "encodings.json"
	ManifestFile  = "manifest.json"
)

// Evaluation is the optional baseline evaluation stored in the manifest.
type Evaluation struct {
	Folds      int                     `json:"folds"`
	Seed       int64                   `json:"seed"`
	CV         *evaluation.CVResult    `json:"cross_validation"`
	Importance []evaluation.Importance `json:"permutation_importance,omitempty"`
}

// Manifest describes one run and the files it produced.
type Manifest struct {
	RunID      uuid.UUID           `json:"run_id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Inputs     map[string]string   `json:"inputs"`
	Config     ManifestConfig      `json:"config"`
	Report     *prep.Report        `json:"report"`
	Summary    []report.Summary    `json:"summary,omitempty"`
	Categories []report.Categories `json:"categories,omitempty"`

	// Correlations pairs each log-view column with its correlation to
	// detail_views. Undefined correlations are left out.
	Correlations []report.Pair `json:"target_correlations,omitempty"`

	// Encodings fingerprints the code assignment of each encoded column.
	Encodings map[string]string `json:"encoding_fingerprints"`

	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Artifacts  []string    `json:"artifacts"`
}

// ManifestConfig is the part of prep.Config worth recording.
type ManifestConfig struct {
	ReferenceYear   int      `json:"reference_year"`
	ZeroSearchViews string   `json:"zero_search_views"`
	ColumnsToLog    []string `json:"columns_to_log"`
	PeakMonths      []int    `json:"peak_months"`
	Exclusions      []string `json:"exclusions"`
}

// NewManifest starts a manifest with a fresh run id.
func NewManifest(startedAt time.Time, inputs map[string]string) *Manifest {
	return &Manifest{
		RunID:     uuid.New(),
		StartedAt: startedAt,
		Inputs:    inputs,
	}
}

// SetConfig records cfg in the manifest.
func (m *Manifest) SetConfig(cfg prep.Config) {
	mc := ManifestConfig{
		ReferenceYear:   cfg.ReferenceYear,
		ZeroSearchViews: cfg.ZeroSearchViews.String(),
	}
	for _, c := range cfg.ColumnsToLog {
		mc.ColumnsToLog = append(mc.ColumnsToLog, string(c))
	}
	for _, month := range cfg.PeakMonths {
		mc.PeakMonths = append(mc.PeakMonths, int(month))
	}
	for _, rule := range cfg.Exclusions.Rules {
		mc.Exclusions = append(mc.Exclusions, rule.Describe())
	}
	m.Config = mc
}

// Write encodes m as indented JSON.
func (m *Manifest) Write(w io.Writer) error {
	return model.SaveJSONToWriter(m, w)
}

// WriteManifest writes m to path.
func WriteManifest(path string, m *Manifest) error {
	if err := model.SaveJSON(m, path); err != nil {
		return dvErrors.Wrapf(err, "write manifest %s", path)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	var m Manifest
	if err := model.LoadJSON(&m, path); err != nil {
		return nil, dvErrors.Wrapf(err, "read manifest %s", path)
	}
	return &m, nil
}

// WriteEncodings writes the encoding map to path as JSON.
func WriteEncodings(path string, m *preprocessing.EncodingMap) error {
	return m.Save(path)
}

// WriteAll writes every artifact of res into dir and finishes m with the
// list of written files, relative to dir. m is written last.
func WriteAll(dir string, res *prep.Result, m *Manifest) error {
	steps := []struct {
		name  string
		write func(path string) error
	}{
		{CleanedCSV, func(p string) error { return WriteRecordsCSV(p, res.Records) }},
		{RawCSV, func(p string) error { return WriteCSV(p, res.Raw) }},
		{LogCSV, func(p string) error { return WriteCSV(p, res.Log) }},
		{WorkbookFile, func(p string) error { return WriteWorkbook(p, res.Raw, res.Log) }},
		{EncodingsFile, func(p string) error { return WriteEncodings(p, res.Encodings) }},
	}
	m.Artifacts = m.Artifacts[:0]
	for _, s := range steps {
		if err := s.write(filepath.Join(dir, s.name)); err != nil {
			return dvErrors.Wrapf(err, "export %s", s.name)
		}
		m.Artifacts = append(m.Artifacts, s.name)
	}
	m.Report = res.Report
	m.Encodings = res.Encodings.Fingerprints()
	if m.FinishedAt.IsZero() {
		m.FinishedAt = time.Now()
	}
	m.Artifacts = append(m.Artifacts, ManifestFile)
	return WriteManifest(filepath.Join(dir, ManifestFile), m)
}
