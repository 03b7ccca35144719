// Package interpolation builds and evaluates fractal interpolation functions.
//
// A fractal interpolation function passes exactly through a set of 1D samples
// while the curve between samples is the attractor of an iterated system of
// affine maps, one per segment. The vertical contraction factor of each map
// (its free variable) controls how much self-affine detail appears between
// the samples: zero gives plain linear interpolation.
//
// Interpolants are immutable once constructed and may be evaluated from any
// number of goroutines at once.
package interpolation

import (
	"cmp"
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Point2 is a single (x, y) sample.
type Point2[T constraints.Float] struct {
	X, Y T
}

// Interpolant is the capability shared by every interpolation strategy.
type Interpolant[T constraints.Float] interface {
	// Evaluate returns the interpolated value at x.
	Evaluate(x T) (T, error)
	// EvaluateMany evaluates every query and returns the results in the
	// same order as xs.
	EvaluateMany(xs []T) ([]T, error)
}

var (
	_ Interpolant[float64] = &Interpolant1D[float64]{}
	_ Interpolant[float32] = &Interpolant1D[float32]{}
	_ Interpolant[float64] = &Linear[float64]{}
	_ Interpolant[float32] = &Linear[float32]{}
	_ Interpolant[float64] = &Kriging{}
)

var (
	// ErrInsufficientPoints is returned when fewer than two samples are given.
	ErrInsufficientPoints = errors.New("at least two points are required")
	// ErrFreeVariableArity is returned when an Array free variable does not
	// hold exactly one value per segment.
	ErrFreeVariableArity = errors.New("free variable count does not match segment count")
	// ErrNonFiniteCoordinate is returned when a sample has a NaN or infinite
	// coordinate.
	ErrNonFiniteCoordinate = errors.New("non-finite coordinate")
	// ErrDegenerateRange is returned when every sample shares the same x.
	ErrDegenerateRange = errors.New("samples span a zero-width x range")
	// ErrInvalidIterations is returned for an iteration budget below one.
	ErrInvalidIterations = errors.New("iterations must be at least 1")
	// ErrNonFiniteQuery is returned when asked to evaluate NaN or an infinity.
	ErrNonFiniteQuery = errors.New("non-finite query")
	// ErrLengthMismatch is returned when an output buffer does not match the
	// number of queries.
	ErrLengthMismatch = errors.New("output length does not match query count")
	// ErrInvalidLevels is returned for a negative attractor refinement depth.
	ErrInvalidLevels = errors.New("levels must not be negative")
	// ErrAttractorTooLarge is returned when an attractor would hold more than
	// maxAttractorPoints points.
	ErrAttractorTooLarge = errors.New("attractor point set too large")
	// ErrDivergentContraction marks segments whose contraction factor has
	// magnitude >= 1. It never aborts construction.
	ErrDivergentContraction = errors.New("contraction factor magnitude >= 1")
)

// DivergenceError lists the segments whose free variable does not contract.
// Evaluation still terminates, after the full iteration budget.
type DivergenceError struct {
	Segments []int
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v in %d segment(s): %v", ErrDivergentContraction, len(e.Segments), e.Segments)
}

func (e *DivergenceError) Unwrap() error { return ErrDivergentContraction }

func isFinite[T constraints.Float](v T) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// checkPoints validates raw samples shared by every strategy.
func checkPoints[T constraints.Float](points []Point2[T]) error {
	if len(points) < 2 {
		return fmt.Errorf("%w: got %d", ErrInsufficientPoints, len(points))
	}
	for i, p := range points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return fmt.Errorf("%w: point %d is (%v, %v)", ErrNonFiniteCoordinate, i, p.X, p.Y)
		}
	}
	return nil
}

// sortedCopy returns the samples sorted ascending by x without touching the
// caller's slice.
func sortedCopy[T constraints.Float](points []Point2[T]) []Point2[T] {
	sorted := make([]Point2[T], len(points))
	copy(sorted, points)
	slices.SortStableFunc(sorted, func(a, b Point2[T]) int {
		return cmp.Compare(a.X, b.X)
	})
	return sorted
}
