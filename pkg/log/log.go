// Package log provides structured logging for detailviews on top of
// github.com/rs/zerolog.
//
// Components obtain a named Logger and log with alternating key/value pairs:
//
//	logger := log.GetLoggerWithName("prep")
//	logger.Info("Stage completed",
//		log.StageKey, "drop_missing",
//		log.RowsInKey, 78297,
//		log.RowsOutKey, 78273,
//	)
//
// The package-level logger is configured once by SetupLogger; libraries that
// need an isolated logger (tests, embedding programs) build their own
// LoggerProvider with NewZerologProvider.
package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Standard structured logging keys.
const (
	ComponentKey  = "component"
	ModelNameKey  = "model"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	StageKey      = "stage"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	PredsKey      = "predictions"
	DurationMsKey = "duration_ms"
	RowsInKey     = "rows_in"
	RowsOutKey    = "rows_out"
	DroppedKey    = "dropped"
	ColumnKey     = "column"
	ArticleIDKey  = "article_id"
	PathKey       = "path"
	KindKey       = "kind"
	RunIDKey      = "run_id"
)

// Standard values for OperationKey and PhaseKey.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationLoad      = "load"
	OperationExport    = "export"

	PhaseTraining   = "training"
	PhaseInference  = "inference"
	PhaseCleaning   = "cleaning"
	PhaseEvaluation = "evaluation"
)

// Level is a logging severity.
type Level = zerolog.Level

// Logger is the structured logger used across the module.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	// With returns a child logger carrying the given key/value pairs.
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out loggers sharing one output and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}

// ToLogLevel parses a level name; unknown names map to info.
func ToLogLevel(level string) Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type zerologProvider struct {
	mu   sync.RWMutex
	base zerolog.Logger
}

// NewZerologProvider creates a provider writing human readable output to stderr.
func NewZerologProvider(level Level) LoggerProvider {
	return NewZerologProviderWithWriter(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}, level)
}

// NewZerologProviderWithWriter creates a provider writing JSON lines to w.
func NewZerologProviderWithWriter(w io.Writer, level Level) LoggerProvider {
	return &zerologProvider{
		base: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}
}

func (p *zerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{zl: p.base}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{zl: p.base.With().Str(ComponentKey, name).Logger()}
}

func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.base.Level(level)
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		ctx = ctx.Interface(keyString(fields[i]), fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

// emit writes msg with fields. An error value in the first position (odd
// field count) is attached with Err.
func emit(ev *zerolog.Event, msg string, fields []interface{}) {
	if ev == nil {
		return
	}
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			ev = ev.Err(err)
		}
		fields = fields[1:]
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := keyString(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			ev = ev.AnErr(key, v)
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}

func keyString(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return "field"
}

var (
	globalMu       sync.RWMutex
	globalProvider = NewZerologProvider(zerolog.InfoLevel)
	globalZerolog  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.InfoLevel).With().Timestamp().Logger()
)

// SetupLogger configures the package-level logger with the named level.
func SetupLogger(level string) {
	SetupLoggerWithWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, level)
}

// SetupLoggerWithWriter configures the package-level logger to write to w.
func SetupLoggerWithWriter(w io.Writer, level string) {
	lvl := ToLogLevel(level)
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = NewZerologProviderWithWriter(w, lvl)
	globalZerolog = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// SetProvider replaces the package-level provider.
func SetProvider(p LoggerProvider) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = p
}

// GetProvider returns the package-level provider.
func GetProvider() LoggerProvider {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider
}

// GetLogger returns the package-level zerolog logger for event-style logging:
//
//	log.GetLogger().Warn().Err(err).Str("phase", "load").Msg("skipped file")
func GetLogger() *zerolog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	l := globalZerolog
	return &l
}

// GetLoggerWithName returns a named Logger from the package-level provider.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	GetLogger().Error().Err(err).Msg(msg)
}
