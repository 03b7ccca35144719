package interpolation

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// FreeVariables supplies the vertical contraction factor of every segment.
// The only implementations are Scalar and Array.
type FreeVariables[T constraints.Float] interface {
	// at returns the contraction factor of segment i.
	at(i int) T
	// check reports whether the variables can serve the given number of
	// segments.
	check(segments int) error
}

// Scalar applies the same contraction factor to every segment.
type Scalar[T constraints.Float] struct {
	D T
}

// Array holds one contraction factor per segment, indexed like the sorted
// segments.
type Array[T constraints.Float] struct {
	D []T
}

// NewScalar returns free variables sharing d across all segments.
func NewScalar[T constraints.Float](d T) Scalar[T] {
	return Scalar[T]{D: d}
}

// NewArray returns per-segment free variables. ds is copied.
func NewArray[T constraints.Float](ds []T) Array[T] {
	out := make([]T, len(ds))
	copy(out, ds)
	return Array[T]{D: out}
}

func (s Scalar[T]) at(int) T { return s.D }

func (s Scalar[T]) check(int) error {
	if !isFinite(s.D) {
		return fmt.Errorf("%w: free variable is %v", ErrNonFiniteCoordinate, s.D)
	}
	return nil
}

func (a Array[T]) at(i int) T { return a.D[i] }

func (a Array[T]) check(segments int) error {
	if len(a.D) != segments {
		return fmt.Errorf("%w: have %d, need %d", ErrFreeVariableArity, len(a.D), segments)
	}
	for i, d := range a.D {
		if !isFinite(d) {
			return fmt.Errorf("%w: free variable %d is %v", ErrNonFiniteCoordinate, i, d)
		}
	}
	return nil
}
