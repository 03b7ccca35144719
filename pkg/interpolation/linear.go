package interpolation

import (
	"fmt"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Linear is piecewise linear interpolation through a set of samples. It is
// the zero-contraction limit of Interpolant1D and is mostly useful as a
// baseline.
type Linear[T constraints.Float] struct {
	points   []Point2[T]
	numCores int
}

// NewLinear builds a linear interpolant through points. points need not be
// sorted and are copied. numCores bounds the goroutines used by
// EvaluateMany; zero or less means every available CPU.
func NewLinear[T constraints.Float](points []Point2[T], numCores int) (*Linear[T], error) {
	if err := checkPoints(points); err != nil {
		return nil, fmt.Errorf("new linear: %w", err)
	}
	sorted := sortedCopy(points)
	if sorted[0].X == sorted[len(sorted)-1].X {
		return nil, fmt.Errorf("new linear: %w: every x is %v", ErrDegenerateRange, sorted[0].X)
	}
	return &Linear[T]{points: sorted, numCores: resolveCores(numCores)}, nil
}

// Evaluate returns the linear interpolation at x, clamped to the end samples.
func (l *Linear[T]) Evaluate(x T) (T, error) {
	if !isFinite(x) {
		return 0, fmt.Errorf("evaluate: %w: %v", ErrNonFiniteQuery, x)
	}
	return l.eval(x), nil
}

// EvaluateMany evaluates every query in parallel, preserving order.
func (l *Linear[T]) EvaluateMany(xs []T) ([]T, error) {
	out := make([]T, len(xs))
	if err := checkQueries(out, xs); err != nil {
		return nil, err
	}
	parallelFor(len(xs), l.numCores, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = l.eval(xs[i])
		}
	})
	return out, nil
}

func (l *Linear[T]) eval(x T) T {
	first, last := l.points[0], l.points[len(l.points)-1]
	if x <= first.X {
		return first.Y
	}
	if x >= last.X {
		return last.Y
	}

	// First sample strictly right of x; 1 <= hi <= len-1 after clamping.
	hi, _ := slices.BinarySearchFunc(l.points, x, func(p Point2[T], x T) int {
		if p.X <= x {
			return -1
		}
		return 1
	})
	p, q := l.points[hi-1], l.points[hi]
	t := (x - p.X) / (q.X - p.X)
	return p.Y + t*(q.Y-p.Y)
}
