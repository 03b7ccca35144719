// Package metrics measures how closely an interpolant follows a reference
// function.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ffinterp/pkg/interpolation"
)

// Report holds the accuracy of one interpolant over a set of queries.
type Report struct {
	// RMSE is the root mean square error
	RMSE float64 `yaml:"rmse"`

	// MaxAbs is the largest absolute error
	MaxAbs float64 `yaml:"maxAbs"`

	// MeanAbs is the mean absolute error
	MeanAbs float64 `yaml:"meanAbs"`

	// Correlation is the Pearson correlation between interpolated and
	// reference values. It is NaN when either series is constant.
	Correlation float64 `yaml:"correlation"`

	// Queries is the number of points compared
	Queries int `yaml:"queries"`
}

// Compare evaluates ip at every x in xs and compares the results with ref.
// It also returns the interpolated and reference values.
func Compare(ip interpolation.Interpolant[float64], ref func(float64) float64, xs []float64) (Report, []float64, []float64, error) {
	if len(xs) == 0 {
		return Report{}, nil, nil, errors.New("no queries to compare")
	}

	ys, err := ip.EvaluateMany(xs)
	if err != nil {
		return Report{}, nil, nil, fmt.Errorf("error evaluating interpolant: %w", err)
	}

	want := make([]float64, len(xs))
	for i, x := range xs {
		want[i] = ref(x)
	}

	report, err := Calculate(want, ys)
	if err != nil {
		return Report{}, nil, nil, err
	}
	return report, ys, want, nil
}

// Calculate compares interpolated values against the reference values.
func Calculate(reference, interpolated []float64) (Report, error) {
	n := len(reference)
	if n != len(interpolated) {
		return Report{}, fmt.Errorf("length mismatch: %d reference, %d interpolated", n, len(interpolated))
	}
	if n == 0 {
		return Report{}, errors.New("no values to compare")
	}

	diff := make([]float64, n)
	floats.SubTo(diff, interpolated, reference)

	sumSq, maxAbs, sumAbs := 0.0, 0.0, 0.0
	for _, d := range diff {
		sumSq += d * d
		sumAbs += math.Abs(d)
		maxAbs = math.Max(maxAbs, math.Abs(d))
	}

	return Report{
		RMSE:        math.Sqrt(sumSq / float64(n)),
		MaxAbs:      maxAbs,
		MeanAbs:     sumAbs / float64(n),
		Correlation: stat.Correlation(reference, interpolated, nil),
		Queries:     n,
	}, nil
}
