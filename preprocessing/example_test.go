package preprocessing_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/preprocessing"
)

// ExampleStandardScaler demonstrates basic usage of StandardScaler
func ExampleStandardScaler() {
	X := mat.NewDense(4, 2, []float64{
		1.0, 2.0,
		3.0, 4.0,
		5.0, 6.0,
		7.0, 8.0,
	})

	scaler := preprocessing.NewStandardScaler(true, true)
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return
	}

	fmt.Printf("Scaled first row: [%.2f, %.2f]\n", scaled.At(0, 0), scaled.At(0, 1))

	// Output: Scaled first row: [-1.34, -1.34]
}

// ExampleLabelEncoder shows the sorted code assignment
func ExampleLabelEncoder() {
	enc := preprocessing.NewLabelEncoder()
	codes, err := enc.FitTransform([]string{"Plus", "Basic", "Premium", "Basic"})
	if err != nil {
		return
	}

	fmt.Println(enc.Classes)
	fmt.Println(codes)

	// Output:
	// [Basic Plus Premium]
	// [1 0 2 0]
}

// ExampleEncodingMap demonstrates keeping codes stable across runs
func ExampleEncodingMap() {
	prior := preprocessing.NewEncodingMap()
	prior.Columns["make_name"] = []string{"Audi", "BMW", "Opel"}

	enc, _ := prior.Encoder("make_name")
	added := enc.Extend([]string{"BMW", "Fiat"})

	codes, _ := enc.Transform([]string{"Opel", "Fiat"})
	fmt.Println("added:", added)
	fmt.Println("codes:", codes)

	// Output:
	// added: [Fiat]
	// codes: [2 3]
}

// ExampleLogTransformer demonstrates log10(x + 1) and its inverse
func ExampleLogTransformer() {
	X := mat.NewDense(2, 2, []float64{
		99, 3,
		999, 4,
	})

	lt := preprocessing.NewLogTransformer(0)
	logged, _ := lt.FitTransform(X)
	back, _ := lt.InverseTransform(logged)

	fmt.Printf("logged: %.1f %.1f\n", logged.At(0, 0), logged.At(1, 0))
	fmt.Printf("untouched: %.0f\n", logged.At(0, 1))
	fmt.Printf("restored: %.0f\n", back.At(1, 0))

	// Output:
	// logged: 2.0 3.0
	// untouched: 3
	// restored: 999
}
