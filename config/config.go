// Package config loads the settings of the prepare command: built-in
// defaults, then an optional YAML file, then DETAILVIEWS_* environment
// variables. Callers apply their own overrides (command-line flags) and then
// call Validate.
//
// Example:
//
//	cfg, err := config.Load("detailviews.yaml")
//	if err != nil {
//		return err
//	}
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//	prepCfg, err := cfg.Prep()
package config

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ezoic/detailviews/listing"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/prep"
	"github.com/ezoic/detailviews/preprocessing"
)

// EnvPrefix prefixes every environment variable, e.g.
// DETAILVIEWS_INPUT_RECORDS or DETAILVIEWS_EVALUATION_FOLDS.
const EnvPrefix = "DETAILVIEWS"

// Config is the complete run configuration.
type Config struct {
	Input      InputConfig      `yaml:"input" envconfig:"INPUT"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Cleaning   CleaningConfig   `yaml:"cleaning" envconfig:"CLEANING"`
	Evaluation EvaluationConfig `yaml:"evaluation" envconfig:"EVALUATION"`
}

// InputConfig names the input files. Only Records is required.
type InputConfig struct {
	Records     string `yaml:"records" envconfig:"RECORDS" validate:"required"`
	Description string `yaml:"description" envconfig:"DESCRIPTION"`
	Exclusions  string `yaml:"exclusions" envconfig:"EXCLUSIONS"`
	Encodings   string `yaml:"encodings" envconfig:"ENCODINGS"`
}

// OutputConfig controls where artifacts go.
type OutputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" validate:"required"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
}

// CleaningConfig overrides prep.DefaultConfig. Empty lists keep the defaults.
type CleaningConfig struct {
	ReferenceYear   int      `yaml:"reference_year" envconfig:"REFERENCE_YEAR" validate:"gte=1900"`
	ZeroSearchViews string   `yaml:"zero_search_views" envconfig:"ZERO_SEARCH_VIEWS" validate:"oneof=drop keep"`
	ColumnsToLog    []string `yaml:"columns_to_log" envconfig:"COLUMNS_TO_LOG"`
	PeakMonths      []int    `yaml:"peak_months" envconfig:"PEAK_MONTHS" validate:"dive,min=1,max=12"`
}

// EvaluationConfig controls the optional baseline evaluation.
type EvaluationConfig struct {
	Enabled   bool    `yaml:"enabled" envconfig:"ENABLED"`
	Folds     int     `yaml:"folds" envconfig:"FOLDS" validate:"min=2"`
	Seed      int64   `yaml:"seed" envconfig:"SEED"`
	TrainSize float64 `yaml:"train_size" envconfig:"TRAIN_SIZE" validate:"gt=0,lt=1"`
	Repeats   int     `yaml:"repeats" envconfig:"REPEATS" validate:"min=1"`
}

// Default returns the built-in configuration. Input.Records is left empty.
func Default() Config {
	return Config{
		Output:  OutputConfig{Dir: "out"},
		Logging: LoggingConfig{Level: "info"},
		Cleaning: CleaningConfig{
			ReferenceYear:   time.Now().Year(),
			ZeroSearchViews: prep.DropUndefined.String(),
		},
		Evaluation: EvaluationConfig{
			Folds:     5,
			Seed:      42,
			TrainSize: 0.8,
			Repeats:   5,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, without validating it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, dvErrors.Wrap(err, "failed to load config from env")
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return dvErrors.NewParseError(path, 0, "", "", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !dvErrors.Is(err, io.EOF) {
		return dvErrors.NewParseError(path, 0, "", "", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges. Column names and months are checked again,
// against the pipeline, by Prep.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return dvErrors.NewValidationError(strings.ToLower(fe.Namespace()), "failed "+fe.Tag()+" check", fe.Value())
		}
		return dvErrors.Wrap(err, "config validation failed")
	}
	return nil
}

// Prep converts the cleaning settings into a prep.Config, loading the
// exclusion table and prior encoding map when their paths are set.
func (c *Config) Prep() (prep.Config, error) {
	pc := prep.DefaultConfig(c.Cleaning.ReferenceYear)

	policy, err := prep.ParseZeroViewsPolicy(c.Cleaning.ZeroSearchViews)
	if err != nil {
		return prep.Config{}, err
	}
	pc.ZeroSearchViews = policy

	if len(c.Cleaning.ColumnsToLog) > 0 {
		pc.ColumnsToLog = pc.ColumnsToLog[:0]
		for _, col := range c.Cleaning.ColumnsToLog {
			pc.ColumnsToLog = append(pc.ColumnsToLog, listing.Column(strings.ToLower(strings.TrimSpace(col))))
		}
	}
	if len(c.Cleaning.PeakMonths) > 0 {
		pc.PeakMonths = pc.PeakMonths[:0]
		for _, m := range c.Cleaning.PeakMonths {
			pc.PeakMonths = append(pc.PeakMonths, time.Month(m))
		}
	}

	if c.Input.Exclusions != "" {
		table, err := listing.LoadExclusions(c.Input.Exclusions)
		if err != nil {
			return prep.Config{}, err
		}
		pc.Exclusions = table
	}
	if c.Input.Encodings != "" {
		enc, err := preprocessing.LoadEncodingMap(c.Input.Encodings)
		if err != nil {
			return prep.Config{}, err
		}
		pc.Encodings = enc
	}

	if err := pc.Validate(); err != nil {
		return prep.Config{}, err
	}
	return pc, nil
}
