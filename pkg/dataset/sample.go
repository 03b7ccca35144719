package dataset

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"ffinterp/pkg/interpolation"
)

// Point is a float64 sample.
type Point = interpolation.Point2[float64]

// Uniform samples fn at n points x_i = lo + i/n*(hi-lo), i = 0..n-1. The grid
// is half-open: hi itself is not sampled.
func Uniform(fn Func, n int, lo, hi float64) ([]Point, error) {
	if err := checkRange(n, lo, hi); err != nil {
		return nil, err
	}
	points := make([]Point, n)
	for i := range points {
		x := lo + float64(i)/float64(n)*(hi-lo)
		points[i] = Point{X: x, Y: fn(x)}
	}
	return points, nil
}

// Grid returns n evenly spaced values covering [lo, hi], both ends included.
func Grid(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Irregular samples fn at n points spanning [lo, hi]. Both ends are always
// sampled; interior abscissae are moved up to a quarter of a grid step at random,
// so the result is sorted and free of duplicates.
func Irregular(fn Func, n int, lo, hi float64, seed uint64) ([]Point, error) {
	if err := checkRange(n, lo, hi); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	xs := Grid(lo, hi, n)
	xs[0], xs[n-1] = lo, hi
	step := (hi - lo) / float64(n-1)
	for i := 1; i < n-1; i++ {
		xs[i] += (rng.Float64() - 0.5) * 0.5 * step
	}

	points := make([]Point, n)
	for i, x := range xs {
		points[i] = Point{X: x, Y: fn(x)}
	}
	return points, nil
}

// Queries returns n query abscissae evenly spread over [lo, hi].
func Queries(lo, hi float64, n int) []float64 {
	return Grid(lo, hi, n)
}

func checkRange(n int, lo, hi float64) error {
	if n < 2 {
		return fmt.Errorf("need at least 2 samples, got %d", n)
	}
	if !(hi > lo) {
		return fmt.Errorf("invalid range [%g, %g]", lo, hi)
	}
	return nil
}
