package errors

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
)

// WarningKind classifies a DataQualityWarning.
type WarningKind string

const (
	// MissingValue: a guarded column was empty and the row was dropped.
	MissingValue WarningKind = "missing_value"
	// DivisionUndefined: search_views was zero so ctr could not be computed.
	DivisionUndefined WarningKind = "division_undefined"
	// ExcludedValue: the row matched an exclusion rule and was dropped.
	ExcludedValue WarningKind = "excluded_value"
	// UnseenCategory: a category absent from a supplied encoding map got a new code.
	UnseenCategory WarningKind = "unseen_category"
)

var kindSentinels = map[WarningKind]error{
	MissingValue:      ErrMissingValue,
	DivisionUndefined: ErrDivisionUndefined,
	ExcludedValue:     ErrExcludedValue,
	UnseenCategory:    ErrUnseenCategory,
}

// DataQualityWarning is a non-fatal, expected condition found while cleaning.
// It satisfies error so it can be logged and matched with Is/As, but the
// pipeline never returns it as a failure.
type DataQualityWarning struct {
	Kind      WarningKind `json:"kind"`
	Stage     string      `json:"stage"`
	ArticleID string      `json:"article_id"`
	Column    string      `json:"column"`
	Value     string      `json:"value"`
	Message   string      `json:"message"`
}

// NewDataQualityWarning creates a warning of the given kind.
func NewDataQualityWarning(kind WarningKind, stage, articleID, column, value, message string) *DataQualityWarning {
	return &DataQualityWarning{
		Kind:      kind,
		Stage:     stage,
		ArticleID: articleID,
		Column:    column,
		Value:     value,
		Message:   message,
	}
}

func (w *DataQualityWarning) Error() string {
	return fmt.Sprintf("%s: %s: article %s: %s=%q: %s",
		prefix, w.Kind, w.ArticleID, w.Column, w.Value, w.Message)
}

// Unwrap returns the sentinel for the warning kind, so
// errors.Is(w, ErrDivisionUndefined) holds for DivisionUndefined warnings.
func (w *DataQualityWarning) Unwrap() error { return kindSentinels[w.Kind] }

// WarningHandler receives warnings emitted through Warn.
type WarningHandler func(w error)

var (
	handlerMu sync.RWMutex
	handler   WarningHandler
)

// SetWarningHandler installs h as the receiver of Warn. A nil h discards warnings.
// It returns the previous handler.
func SetWarningHandler(h WarningHandler) WarningHandler {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	prev := handler
	handler = h
	return prev
}

// Warn reports a non-fatal condition to the installed handler.
func Warn(w error) {
	if w == nil {
		return
	}
	handlerMu.RLock()
	h := handler
	handlerMu.RUnlock()
	if h != nil {
		h(w)
	}
}

// IsWarning reports whether err is (or wraps) a DataQualityWarning.
func IsWarning(err error) bool {
	var w *DataQualityWarning
	return errors.As(err, &w)
}
