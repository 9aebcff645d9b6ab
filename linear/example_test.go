package linear_test

import (
	"bytes"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/core/model"
	"github.com/ezoic/detailviews/linear"
)

// ExampleLinearRegression demonstrates basic linear regression usage
func ExampleLinearRegression() {
	// Create simple training data: y = 2*x + 1
	X := mat.NewDense(4, 1, []float64{1.0, 2.0, 3.0, 4.0})
	y := mat.NewDense(4, 1, []float64{3.0, 5.0, 7.0, 9.0})

	// Create and train model
	lr := linear.NewLinearRegression()
	err := lr.Fit(X, y)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Make predictions
	testX := mat.NewDense(2, 1, []float64{5.0, 6.0})
	predictions, err := lr.Predict(testX)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Print predictions
	fmt.Printf("Input: %.1f, Prediction: %.1f\n", testX.At(0, 0), predictions.At(0, 0))
	fmt.Printf("Input: %.1f, Prediction: %.1f\n", testX.At(1, 0), predictions.At(1, 0))

	// Output: Input: 5.0, Prediction: 11.0
	// Input: 6.0, Prediction: 13.0
}

// ExampleLinearRegression_multipleFeatures demonstrates multiple feature regression
func ExampleLinearRegression_multipleFeatures() {
	// Create training data with 2 features
	X := mat.NewDense(4, 2, []float64{
		1.0, 1.0, // Sample 1: [1, 1]
		2.0, 1.0, // Sample 2: [2, 1]
		1.0, 2.0, // Sample 3: [1, 2]
		2.0, 2.0, // Sample 4: [2, 2]
	})

	// Target: y = x1 + 2*x2 + 1
	y := mat.NewDense(4, 1, []float64{4.0, 5.0, 6.0, 7.0})

	// Train model
	lr := linear.NewLinearRegression()
	err := lr.Fit(X, y)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Get model parameters
	weights := lr.GetWeights()
	intercept := lr.GetIntercept()

	fmt.Printf("Weights: [%.1f, %.1f]\n", weights[0], weights[1])
	fmt.Printf("Intercept: %.1f\n", intercept)

	// Output: Weights: [1.0, 2.0]
	// Intercept: 1.0
}

// ExampleLinearRegression_modelEvaluation demonstrates model evaluation
func ExampleLinearRegression_modelEvaluation() {
	// Create training data
	X := mat.NewDense(5, 1, []float64{1.0, 2.0, 3.0, 4.0, 5.0})
	y := mat.NewDense(5, 1, []float64{2.0, 4.0, 6.0, 8.0, 10.0})

	// Train model
	lr := linear.NewLinearRegression()
	err := lr.Fit(X, y)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Evaluate on training data
	score, err := lr.Score(X, y)
	if err != nil {
		// Skip this example if error occurs
		return
	}

	// Check if model is fitted
	fmt.Printf("Model fitted: %t\n", lr.IsFitted())
	fmt.Printf("R² Score: %.3f\n", score)

	// Output: Model fitted: true
	// R² Score: 1.000
}

// ExampleLinearRegression_persistence round-trips a fitted model through gob.
func ExampleLinearRegression_persistence() {
	X := mat.NewDense(3, 1, []float64{1.0, 2.0, 3.0})
	y := mat.NewDense(3, 1, []float64{1.0, 2.0, 3.0})

	lr := linear.NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		fmt.Println(err)
		return
	}

	var buf bytes.Buffer
	if err := model.SaveModelToWriter(lr, &buf); err != nil {
		fmt.Println(err)
		return
	}
	loaded := linear.NewLinearRegression()
	if err := model.LoadModelFromReader(loaded, &buf); err != nil {
		fmt.Println(err)
		return
	}

	pred, err := loaded.Predict(mat.NewDense(1, 1, []float64{4.0}))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Loaded model fitted: %t\n", loaded.IsFitted())
	fmt.Printf("Prediction for 4: %.3f\n", pred.At(0, 0))

	// Output: Loaded model fitted: true
	// Prediction for 4: 4.000
}

// ExampleLinearRegression_Coefficients names the learned weights.
func ExampleLinearRegression_Coefficients() {
	X := mat.NewDense(4, 2, []float64{
		1.0, 10.0,
		2.0, 10.0,
		3.0, 20.0,
		4.0, 30.0,
	})
	y := mat.NewDense(4, 1, []float64{12.0, 14.0, 26.0, 38.0})

	lr := linear.NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		fmt.Println(err)
		return
	}
	coef, err := lr.Coefficients([]string{"stock_days", "search_views"})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("stock_days: %.1f\n", coef["stock_days"])
	fmt.Printf("search_views: %.1f\n", coef["search_views"])

	// Output: stock_days: 2.0
	// search_views: 1.0
}
