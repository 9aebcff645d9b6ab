package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/detailviews/config"
	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/prep"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Evaluation.Folds)
	assert.Equal(t, "drop", cfg.Cleaning.ZeroSearchViews)

	// records path is required
	assert.Error(t, cfg.Validate())
	cfg.Input.Records = "Items_Cars_Data.csv"
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "detailviews.yaml", `
input:
  records: data/Items_Cars_Data.csv
  description: data/Data_Description.csv
output:
  dir: build
cleaning:
  reference_year: 2020
  zero_search_views: keep
  peak_months: [4, 5, 6]
evaluation:
  enabled: true
  folds: 10
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data/Items_Cars_Data.csv", cfg.Input.Records)
	assert.Equal(t, "build", cfg.Output.Dir)
	assert.Equal(t, 2020, cfg.Cleaning.ReferenceYear)
	assert.True(t, cfg.Evaluation.Enabled)
	assert.Equal(t, 10, cfg.Evaluation.Folds)
	assert.Equal(t, int64(42), cfg.Evaluation.Seed, "unset keys keep defaults")

	pc, err := cfg.Prep()
	require.NoError(t, err)
	assert.Equal(t, prep.KeepUndefined, pc.ZeroSearchViews)
	assert.Equal(t, []time.Month{time.April, time.May, time.June}, pc.PeakMonths)
	assert.Equal(t, prep.DefaultColumnsToLog, pc.ColumnsToLog)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "detailviews.yaml", "input:\n  records: a.csv\nevaluation:\n  folds: 3\n")
	t.Setenv("DETAILVIEWS_INPUT_RECORDS", "b.csv")
	t.Setenv("DETAILVIEWS_EVALUATION_SEED", "7")
	t.Setenv("DETAILVIEWS_CLEANING_COLUMNS_TO_LOG", "price,search_views")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "b.csv", cfg.Input.Records)
	assert.Equal(t, 3, cfg.Evaluation.Folds)
	assert.Equal(t, int64(7), cfg.Evaluation.Seed)

	pc, err := cfg.Prep()
	require.NoError(t, err)
	assert.Equal(t, []listing.Column{listing.Price, listing.SearchViews}, pc.ColumnsToLog)
}

func TestLoadEmptyPathAndEmptyFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output.Dir)

	cfg, err = config.Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(writeFile(t, "bad.yaml", "input:\n  record: a.csv\n"))
	var pe *dvErrors.ParseError
	assert.True(t, errors.As(err, &pe), "unknown keys are rejected")

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.As(err, &pe))

	t.Setenv("DETAILVIEWS_EVALUATION_FOLDS", "five")
	_, err = config.Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"log level", func(c *config.Config) { c.Logging.Level = "verbose" }},
		{"policy", func(c *config.Config) { c.Cleaning.ZeroSearchViews = "impute" }},
		{"folds", func(c *config.Config) { c.Evaluation.Folds = 1 }},
		{"train size", func(c *config.Config) { c.Evaluation.TrainSize = 1 }},
		{"month", func(c *config.Config) { c.Cleaning.PeakMonths = []int{0} }},
		{"reference year", func(c *config.Config) { c.Cleaning.ReferenceYear = 1800 }},
		{"output", func(c *config.Config) { c.Output.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Input.Records = "a.csv"
			tt.mutate(&cfg)
			err := cfg.Validate()
			var ve *dvErrors.ValidationError
			assert.True(t, errors.As(err, &ve), "%v", err)
		})
	}
}

func TestPrepLoadsTables(t *testing.T) {
	exclusions := writeFile(t, "exclusions.yaml", `
exclusions:
  - column: price
    max: 500000
    reason: price above plausible range
`)
	encodings := writeFile(t, "encodings.json", `{"version": 1, "columns": {"make_name": ["Opel", "Audi"], "product_tier": ["Basic"]}}`)

	cfg := config.Default()
	cfg.Input.Records = "a.csv"
	cfg.Input.Exclusions = exclusions
	cfg.Input.Encodings = encodings

	pc, err := cfg.Prep()
	require.NoError(t, err)
	require.Len(t, pc.Exclusions.Rules, 1)
	assert.Equal(t, listing.Price, pc.Exclusions.Rules[0].Column)
	require.NotNil(t, pc.Encodings)
	assert.Equal(t, []string{"Opel", "Audi"}, pc.Encodings.Columns["make_name"])

	cfg.Cleaning.ColumnsToLog = []string{"make_name"}
	_, err = cfg.Prep()
	assert.Error(t, err)
}
