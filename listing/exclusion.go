package listing

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ezoic/detailviews/pkg/errors"
)

// KnownBadRegistrationYear is the single anomalous first_registration_year
// observed in the source data. The intended year (2016 or 2006) cannot be
// recovered, so rows carrying it are removed rather than corrected.
const KnownBadRegistrationYear = 2106

// MinRegistrationYear is the lower bound of a plausible registration year.
const MinRegistrationYear = 1900

// ExclusionRule removes rows whose Column value is one of Values or falls
// outside [Min, Max]. A nil bound is open.
type ExclusionRule struct {
	Column Column    `yaml:"column" json:"column"`
	Values []float64 `yaml:"values,omitempty" json:"values,omitempty"`
	Min    *float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max    *float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Reason string    `yaml:"reason" json:"reason"`
}

// Matches reports whether r is excluded by the rule. NaN values (missing
// optional columns) never match.
func (e ExclusionRule) Matches(r *Record) bool {
	v := r.Float(e.Column)
	if math.IsNaN(v) {
		return false
	}
	for _, x := range e.Values {
		if v == x {
			return true
		}
	}
	if e.Min != nil && v < *e.Min {
		return true
	}
	if e.Max != nil && v > *e.Max {
		return true
	}
	return false
}

// Describe renders the rule for logs and reports.
func (e ExclusionRule) Describe() string {
	s := string(e.Column)
	if len(e.Values) > 0 {
		s += fmt.Sprintf(" in %v", e.Values)
	}
	if e.Min != nil || e.Max != nil {
		lo, hi := "-inf", "+inf"
		if e.Min != nil {
			lo = strconv.FormatFloat(*e.Min, 'f', -1, 64)
		}
		if e.Max != nil {
			hi = strconv.FormatFloat(*e.Max, 'f', -1, 64)
		}
		s += fmt.Sprintf(" outside [%s, %s]", lo, hi)
	}
	return s
}

func (e ExclusionRule) validate() error {
	if e.Column == "" {
		return errors.NewValidationError("exclusion column", "column is required", e.Column)
	}
	if len(e.Values) == 0 && e.Min == nil && e.Max == nil {
		return errors.NewValidationError("exclusion rule", "needs values or a bound", e.Column)
	}
	if e.Min != nil && e.Max != nil && *e.Min > *e.Max {
		return errors.NewValidationError("exclusion bounds", "min exceeds max", e.Describe())
	}
	if math.IsNaN((&Record{}).Float(e.Column)) && !isOptionalNumeric(e.Column) {
		return errors.NewValidationError("exclusion column", "not a numeric column", e.Column)
	}
	return nil
}

func isOptionalNumeric(c Column) bool {
	return c == SearchViews || c == DetailViews || c == CTR
}

// ExclusionTable is the declarative list of row exclusions applied during
// cleaning. Keeping it as data lets a corrected dataset be re-run without a
// code change, and keeps the known-bad value excluded if it reappears.
type ExclusionTable struct {
	Rules []ExclusionRule `yaml:"exclusions" json:"exclusions"`
}

// DefaultExclusions returns the exclusions for the listings dataset: the
// known-bad registration year and the plausible range [1900, referenceYear].
func DefaultExclusions(referenceYear int) ExclusionTable {
	lo := float64(MinRegistrationYear)
	hi := float64(referenceYear)
	return ExclusionTable{Rules: []ExclusionRule{
		{
			Column: FirstRegistrationYear,
			Values: []float64{KnownBadRegistrationYear},
			Reason: "registration year 2106 is a data-entry anomaly; intended year unrecoverable",
		},
		{
			Column: FirstRegistrationYear,
			Min:    &lo,
			Max:    &hi,
			Reason: "registration year outside plausible calendar range",
		},
	}}
}

// Match returns the first rule excluding r.
func (t ExclusionTable) Match(r *Record) (ExclusionRule, bool) {
	for _, rule := range t.Rules {
		if rule.Matches(r) {
			return rule, true
		}
	}
	return ExclusionRule{}, false
}

// Validate checks every rule.
func (t ExclusionTable) Validate() error {
	for i, rule := range t.Rules {
		if err := rule.validate(); err != nil {
			return errors.Wrapf(err, "exclusion rule %d", i)
		}
	}
	return nil
}

// LoadExclusions reads an exclusion table from a YAML file:
//
//	exclusions:
//	  - column: first_registration_year
//	    values: [2106]
//	    reason: data-entry anomaly
//	  - column: first_registration_year
//	    min: 1900
//	    max: 2020
//	    reason: implausible year
func LoadExclusions(path string) (ExclusionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return ExclusionTable{}, errors.NewParseError(path, 0, "", "", err)
	}
	defer func() { _ = f.Close() }()

	return ReadExclusions(f, path)
}

// ReadExclusions decodes and validates a YAML exclusion table.
func ReadExclusions(r io.Reader, name string) (ExclusionTable, error) {
	var t ExclusionTable
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && err != io.EOF {
		return ExclusionTable{}, errors.NewParseError(name, 0, "", "", err)
	}
	if err := t.Validate(); err != nil {
		return ExclusionTable{}, errors.NewParseError(name, 0, "", "", err)
	}
	return t, nil
}
