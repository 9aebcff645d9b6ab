// Command prepare cleans the car listings file, writes the raw and log
// feature views and optionally evaluates the linear baseline on them.
//
//	prepare -records Items_Cars_Data.csv -description Data_Description.csv -out build -evaluate
//
// Settings come from built-in defaults, the YAML file given by -config (or
// DETAILVIEWS_CONFIG), DETAILVIEWS_* environment variables and finally the
// flags below.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ezoic/detailviews/config"
	"github.com/ezoic/detailviews/dataset"
	"github.com/ezoic/detailviews/evaluation"
	"github.com/ezoic/detailviews/export"
	dvErrors "github.com/ezoic/detailviews/pkg/errors"
	"github.com/ezoic/detailviews/pkg/log"
	"github.com/ezoic/detailviews/prep"
	"github.com/ezoic/detailviews/report"
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitParse  = 2
	exitConfig = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("DETAILVIEWS_CONFIG"), "YAML configuration file")
	records := fs.String("records", "", "listings file (semicolon-delimited)")
	description := fs.String("description", "", "column description file")
	exclusions := fs.String("exclusions", "", "YAML exclusion table")
	encodings := fs.String("encodings", "", "prior encoding map (JSON)")
	out := fs.String("out", "", "output directory")
	evaluate := fs.Bool("evaluate", false, "cross-validate the linear baseline on the log view")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	describe := fs.Bool("describe", false, "print summary statistics of the cleaned raw view")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "prepare:", err)
		return exitCode(err)
	}
	override(&cfg.Input.Records, *records)
	override(&cfg.Input.Description, *description)
	override(&cfg.Input.Exclusions, *exclusions)
	override(&cfg.Input.Encodings, *encodings)
	override(&cfg.Output.Dir, *out)
	override(&cfg.Logging.Level, *logLevel)
	if *evaluate {
		cfg.Evaluation.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "prepare:", err)
		return exitConfig
	}

	log.SetupLoggerWithWriter(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}, cfg.Logging.Level)
	logger := log.GetLoggerWithName("prepare")
	prev := dvErrors.SetWarningHandler(func(w error) {
		logger.Debug("Warning", "warning", w.Error())
	})
	defer dvErrors.SetWarningHandler(prev)

	var summaries io.Writer
	if *describe {
		summaries = stdout
	}
	if err := prepare(cfg, logger, summaries); err != nil {
		log.LogError(err, "prepare failed")
		return exitCode(err)
	}
	return exitOK
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func exitCode(err error) int {
	var pe *dvErrors.ParseError
	if dvErrors.As(err, &pe) {
		return exitParse
	}
	var ve *dvErrors.ValidationError
	if dvErrors.As(err, &ve) {
		return exitConfig
	}
	return exitError
}

// prepare runs one batch. When summaries is non-nil the column statistics of
// the raw view are printed to it.
func prepare(cfg *config.Config, logger log.Logger, summaries io.Writer) error {
	started := time.Now()
	prepCfg, err := cfg.Prep()
	if err != nil {
		return err
	}

	manifest := export.NewManifest(started, map[string]string{
		"records":     cfg.Input.Records,
		"description": cfg.Input.Description,
		"exclusions":  cfg.Input.Exclusions,
		"encodings":   cfg.Input.Encodings,
	})
	manifest.SetConfig(prepCfg)
	logger = logger.With(log.RunIDKey, manifest.RunID.String())

	res, _, err := prep.New(prepCfg, logger).RunFiles(cfg.Input.Records, cfg.Input.Description)
	if err != nil {
		return err
	}
	for kind, n := range res.Report.Dropped {
		logger.Info("Rows dropped", log.KindKey, string(kind), log.DroppedKey, n)
	}

	if res.Raw.Rows() > 0 {
		if manifest.Summary, err = report.Describe(res.Raw); err != nil {
			return err
		}
		if summaries != nil {
			if err := report.WriteSummaries(summaries, manifest.Summary); err != nil {
				return err
			}
		}
	}
	if res.Log.Rows() > 1 {
		pairs, err := report.TargetCorrelations(res.Log, string(dataset.Target))
		if err != nil {
			return err
		}
		for _, p := range pairs {
			if !math.IsNaN(p.Value) {
				manifest.Correlations = append(manifest.Correlations, p)
			}
		}
	}
	manifest.Categories = report.CategoryCounts(res.Records)

	if cfg.Evaluation.Enabled {
		ev, err := evaluate(cfg.Evaluation, res.Log, logger)
		if err != nil {
			return dvErrors.Wrap(err, "baseline evaluation")
		}
		manifest.Evaluation = ev
	}

	if err := export.WriteAll(cfg.Output.Dir, res, manifest); err != nil {
		return err
	}
	logger.Info("Run complete",
		log.PathKey, cfg.Output.Dir,
		log.RowsInKey, res.Report.InputRows,
		log.RowsOutKey, res.Report.OutputRows,
		log.DroppedKey, res.Report.TotalDropped(),
		"artifacts", len(manifest.Artifacts),
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
	return nil
}

// evaluate cross-validates the baseline on the feature columns of the log
// view, then fits it on a seeded train split and measures permutation
// importance on the held-out part.
func evaluate(cfg config.EvaluationConfig, logView *dataset.Frame, logger log.Logger) (*export.Evaluation, error) {
	names := dataset.Names(dataset.FeatureColumns)
	X, y, err := logView.XY()
	if err != nil {
		return nil, err
	}

	cv, err := evaluation.CrossValidate(evaluation.Baseline, X, y, cfg.Folds, cfg.Seed)
	if err != nil {
		return nil, err
	}

	split, err := evaluation.TrainTestSplit(X, y, cfg.TrainSize, cfg.Seed)
	if err != nil {
		return nil, err
	}
	m, holdout, err := evaluation.Holdout(evaluation.Baseline, split)
	if err != nil {
		return nil, err
	}
	importance, err := evaluation.PermutationImportance(m, split.XTest, split.YTest, names, cfg.Repeats, cfg.Seed)
	if err != nil {
		return nil, err
	}

	logger.Info("Baseline holdout",
		log.PhaseKey, log.PhaseEvaluation,
		"r2", holdout.R2,
		"rmse", holdout.RMSE,
		"top_feature", importance[0].Feature,
	)
	return &export.Evaluation{
		Folds:      cfg.Folds,
		Seed:       cfg.Seed,
		CV:         cv,
		Importance: importance,
	}, nil
}
