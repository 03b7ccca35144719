package interpolation

import (
	"fmt"
	"log/slog"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// contractionCutoff ends the refinement walk once the accumulated contraction
// product can no longer change the result meaningfully.
const contractionCutoff = 1e-9

// Params controls construction of an Interpolant1D.
type Params struct {
	// Iterations is the maximum number of refinement rounds per evaluation.
	Iterations int
	// NumCores bounds the goroutines used for construction and batch
	// evaluation. Zero or less means every available CPU.
	NumCores int
	// Logger receives construction warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// Interpolant1D is a fractal interpolation function through a set of 1D
// samples.
type Interpolant1D[T constraints.Float] struct {
	points     []Point2[T]
	maps       []AffineMap[T]
	iterations int
	numCores   int
	divergent  []int
}

// NewInterpolant1D builds an interpolant through points using every available
// CPU. points need not be sorted and are copied. A nil fv is treated as
// NewScalar(0).
func NewInterpolant1D[T constraints.Float](points []Point2[T], fv FreeVariables[T], iterations int) (*Interpolant1D[T], error) {
	return NewInterpolant1DWithParams(points, fv, Params{Iterations: iterations})
}

// NewInterpolant1DWithParams builds an interpolant through points. No
// interpolant is returned when the samples or free variables are invalid.
// A nil fv means zero contraction on every segment, which reduces the
// interpolant to piecewise linear interpolation.
// Segments whose contraction factor does not contract are logged and
// reported by Check, but do not fail construction.
func NewInterpolant1DWithParams[T constraints.Float](points []Point2[T], fv FreeVariables[T], params Params) (*Interpolant1D[T], error) {
	if err := checkPoints(points); err != nil {
		return nil, fmt.Errorf("new interpolant: %w", err)
	}
	if params.Iterations < 1 {
		return nil, fmt.Errorf("new interpolant: %w: got %d", ErrInvalidIterations, params.Iterations)
	}
	if fv == nil {
		fv = NewScalar[T](0)
	}
	segments := len(points) - 1
	if err := fv.check(segments); err != nil {
		return nil, fmt.Errorf("new interpolant: %w", err)
	}

	sorted := sortedCopy(points)
	first, last := sorted[0], sorted[segments]
	if last.X == first.X {
		return nil, fmt.Errorf("new interpolant: %w: every x is %v", ErrDegenerateRange, first.X)
	}

	ip := &Interpolant1D[T]{
		points:     sorted,
		maps:       make([]AffineMap[T], segments),
		iterations: params.Iterations,
		numCores:   resolveCores(params.NumCores),
	}

	// Every map depends only on the global endpoints and its own two samples.
	parallelFor(segments, ip.numCores, func(start, end int) {
		for i := start; i < end; i++ {
			ip.maps[i] = newAffineMap(first, last, sorted[i], sorted[i+1], fv.at(i))
		}
	})

	for i, m := range ip.maps {
		if m.D >= 1 || m.D <= -1 {
			ip.divergent = append(ip.divergent, i)
		}
	}
	if len(ip.divergent) > 0 {
		logger := params.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("free variables do not contract; evaluation will use the full iteration budget",
			"segments", len(ip.divergent),
			"first", ip.divergent[0],
			"iterations", ip.iterations)
	}

	return ip, nil
}

// Check returns a *DivergenceError if any segment's contraction factor has
// magnitude of at least one, and nil otherwise.
func (ip *Interpolant1D[T]) Check() error {
	if len(ip.divergent) == 0 {
		return nil
	}
	return &DivergenceError{Segments: slices.Clone(ip.divergent)}
}

// Points returns a copy of the samples, sorted by x.
func (ip *Interpolant1D[T]) Points() []Point2[T] { return slices.Clone(ip.points) }

// Maps returns a copy of the per-segment maps, ordered by EndX.
func (ip *Interpolant1D[T]) Maps() []AffineMap[T] { return slices.Clone(ip.maps) }

// Iterations returns the refinement budget per evaluation.
func (ip *Interpolant1D[T]) Iterations() int { return ip.iterations }

// Evaluate returns the value of the interpolant at x. Queries outside the
// sample range are clamped to the nearest end sample.
func (ip *Interpolant1D[T]) Evaluate(x T) (T, error) {
	if !isFinite(x) {
		return 0, fmt.Errorf("evaluate: %w: %v", ErrNonFiniteQuery, x)
	}
	return ip.eval(x), nil
}

// EvaluateMany evaluates every query in parallel. The result has the same
// length and order as xs.
func (ip *Interpolant1D[T]) EvaluateMany(xs []T) ([]T, error) {
	out := make([]T, len(xs))
	if err := ip.EvaluateInto(out, xs); err != nil {
		return nil, err
	}
	return out, nil
}

// EvaluateInto is EvaluateMany writing into dst, which must have the same
// length as xs.
func (ip *Interpolant1D[T]) EvaluateInto(dst, xs []T) error {
	if err := checkQueries(dst, xs); err != nil {
		return err
	}
	parallelFor(len(xs), ip.numCores, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = ip.eval(xs[i])
		}
	})
	return nil
}

// eval walks the maps backwards from x. Each round moves x to its pre-image
// under the segment containing it and adds that segment's linear part,
// scaled by the product of the contraction factors seen so far.
func (ip *Interpolant1D[T]) eval(x T) T {
	first, last := ip.points[0], ip.points[len(ip.points)-1]
	if x <= first.X {
		return first.Y
	}
	if x >= last.X {
		return last.Y
	}

	var y T
	product := T(1)
	for range ip.iterations {
		m := ip.maps[ip.segment(x)]

		prev := m.Inverse(x)
		y += product * (m.C*prev + m.F)
		product *= m.D
		x = prev

		if abs(product) < contractionCutoff {
			break
		}
	}
	return y
}

// segment returns the index of the first map whose EndX is greater than x.
func (ip *Interpolant1D[T]) segment(x T) int {
	i, _ := slices.BinarySearchFunc(ip.maps, x, func(m AffineMap[T], x T) int {
		if m.EndX <= x {
			return -1
		}
		return 1
	})
	// Rounding can push a pre-image a hair past the last sample.
	if i == len(ip.maps) {
		i--
	}
	// Duplicate trailing samples leave zero-width maps at the end.
	for i > 0 && ip.maps[i].A == 0 {
		i--
	}
	return i
}

func checkQueries[T constraints.Float](dst, xs []T) error {
	if len(dst) != len(xs) {
		return fmt.Errorf("evaluate: %w: %d outputs for %d queries", ErrLengthMismatch, len(dst), len(xs))
	}
	for i, x := range xs {
		if !isFinite(x) {
			return fmt.Errorf("evaluate: %w: query %d is %v", ErrNonFiniteQuery, i, x)
		}
	}
	return nil
}

func abs[T constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
