package errors_test

import (
	"errors"
	"fmt"

	dvErrors "github.com/ezoic/detailviews/pkg/errors"
)

// Example_parseError shows how a fatal parse failure is inspected.
func Example_parseError() {
	err := dvErrors.NewParseError("Items_Cars_Data.csv", 42, "created_date", "31.02.18",
		fmt.Errorf("no day-first layout matched"))

	// Wrap it with load context
	wrapped := fmt.Errorf("load records: %w", err)

	var parseErr *dvErrors.ParseError
	if errors.As(wrapped, &parseErr) {
		fmt.Printf("line %d, column %s\n", parseErr.Line, parseErr.Column)
	}

	// Output: line 42, column created_date
}

// Example_customErrorTypes demonstrates custom error type handling
func Example_customErrorTypes() {
	dimErr := dvErrors.NewDimensionError("Transform", 5, 3, 1)

	wrappedErr := fmt.Errorf("preprocessing failed: %w", dimErr)

	var dimensionErr *dvErrors.DimensionError
	if errors.As(wrappedErr, &dimensionErr) {
		fmt.Printf("Dimension error: expected %d, got %d\n",
			dimensionErr.Expected, dimensionErr.Got)
	}

	// Output: Dimension error: expected 5, got 3
}

// Example_errorComparison demonstrates error comparison patterns
func Example_errorComparison() {
	notFittedErr := dvErrors.NewNotFittedError("LabelEncoder", "Transform")
	valueErr := dvErrors.NewValueError("LogTransformer", "negative values not supported")

	var notFitted *dvErrors.NotFittedError
	if errors.As(notFittedErr, &notFitted) {
		fmt.Printf("Model %s is not fitted for %s\n",
			notFitted.ModelName, notFitted.Method)
	}

	var valErr *dvErrors.ValueError
	if errors.As(valueErr, &valErr) {
		fmt.Printf("Value error in %s: %s\n", valErr.Op, valErr.Message)
	}

	// Output: Model LabelEncoder is not fitted for Transform
	// Value error in LogTransformer: negative values not supported
}

// Example_dataQualityWarning shows that warnings match their kind sentinel.
func Example_dataQualityWarning() {
	w := dvErrors.NewDataQualityWarning(dvErrors.DivisionUndefined, "recompute_ctr",
		"361856", "search_views", "0", "ctr undefined")

	fmt.Println(errors.Is(w, dvErrors.ErrDivisionUndefined))
	fmt.Println(errors.Is(w, dvErrors.ErrMissingValue))
	fmt.Println(w)

	// Output: true
	// false
	// detailviews: division_undefined: article 361856: search_views="0": ctr undefined
}

// Example_errorLogging demonstrates the message format of wrapped model errors
func Example_errorLogging() {
	baseErr := dvErrors.NewModelError("LinearRegression.Fit", "singular matrix",
		dvErrors.ErrSingularMatrix)

	opErr := fmt.Errorf("cross-validation fold 3: %w", baseErr)

	fmt.Printf("Error occurred during evaluation: %v\n", opErr)

	// Output: Error occurred during evaluation: cross-validation fold 3: detailviews: LinearRegression.Fit: singular matrix: singular matrix
}
