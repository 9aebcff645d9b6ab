// Package model provides the estimator abstractions shared by the
// preprocessing, linear and evaluation packages.
//
// It defines:
//
//   - BaseEstimator: fitted-state tracking embedded by transformers and encoders
//   - StateManager: fitted state plus training dimensions, used by composition
//   - Transformer, Regressor: the Fit/Transform and Fit/Predict contracts
//   - persistence helpers for gob and JSON artifacts
//
// Example usage:
//
//	type MyEncoder struct {
//		model.BaseEstimator
//		// encoder-specific fields
//	}
//
//	func (e *MyEncoder) Fit(values []string) error {
//		// learning logic
//		e.SetFitted()
//		return nil
//	}
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// EstimatorState represents the learning state of a model
type EstimatorState int

const (
	// NotFitted indicates the model is not yet trained
	NotFitted EstimatorState = iota
	// Fitted indicates the model has been trained
	Fitted
)

// BaseEstimator is the base structure for encoders and transformers
type BaseEstimator struct {
	// State holds the learning state. Public for gob encoding.
	State EstimatorState

	// ModelType identifies the type of model
	ModelType string

	// Version is the model version
	Version string

	hyperparameters map[string]interface{}
}

// IsFitted returns whether the estimator has been fitted.
//
// Example:
//
//	if !enc.IsFitted() {
//	    if err := enc.Fit(values); err != nil {
//	        return err
//	    }
//	}
//	codes, err := enc.Transform(values)
func (e *BaseEstimator) IsFitted() bool {
	return e.State == Fitted
}

// SetFitted marks the estimator as fitted. Called by implementations at the
// end of a successful Fit.
func (e *BaseEstimator) SetFitted() {
	e.State = Fitted
}

// Reset returns the estimator to its initial untrained state.
func (e *BaseEstimator) Reset() {
	e.State = NotFitted
}

// GetParams retrieves the hyperparameters. With deep set the map is copied.
func (e *BaseEstimator) GetParams(deep bool) map[string]interface{} {
	if e.hyperparameters == nil {
		return make(map[string]interface{})
	}

	if !deep {
		return e.hyperparameters
	}

	params := make(map[string]interface{}, len(e.hyperparameters))
	for k, v := range e.hyperparameters {
		params[k] = v
	}
	return params
}

// SetParams sets hyperparameters.
func (e *BaseEstimator) SetParams(params map[string]interface{}) error {
	if e.hyperparameters == nil {
		e.hyperparameters = make(map[string]interface{})
	}

	for k, v := range params {
		e.hyperparameters[k] = v
	}

	return nil
}

// Fingerprint returns a sha256 over the model type, version, fitted state and
// hyperparameters. Two estimators with equal fingerprints were configured
// identically.
func (e *BaseEstimator) Fingerprint() string {
	payload := struct {
		ModelType string                 `json:"model_type"`
		Version   string                 `json:"version"`
		Fitted    bool                   `json:"fitted"`
		Params    map[string]interface{} `json:"params"`
	}{e.ModelType, e.Version, e.IsFitted(), e.GetParams(true)}

	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// String describes the estimator.
func (e *BaseEstimator) String() string {
	return fmt.Sprintf("%s(version=%s, fitted=%t)", e.ModelType, e.Version, e.IsFitted())
}
