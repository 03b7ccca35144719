package interpolation

import (
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"
)

// AffineMap is the self-affine transform of one segment,
//
//	W(x, y) = (A*x + E, C*x + D*y + F),
//
// which carries the global endpoints onto the segment's own endpoints.
type AffineMap[T constraints.Float] struct {
	A, C, D, E, F T
	// EndX is the x coordinate of the segment's right endpoint.
	EndX T
}

// newAffineMap derives the map for the segment from p to next, expressed in
// the global frame spanned by first and last. d is the segment's contraction
// factor.
func newAffineMap[T constraints.Float](first, last, p, next Point2[T], d T) AffineMap[T] {
	span := last.X - first.X
	return AffineMap[T]{
		A:    (next.X - p.X) / span,
		E:    (last.X*p.X - first.X*next.X) / span,
		C:    (next.Y-p.Y)/span - d*(last.Y-first.Y)/span,
		F:    (last.X*p.Y-first.X*next.Y)/span - d*(last.X*first.Y-first.X*last.Y)/span,
		D:    d,
		EndX: next.X,
	}
}

// Forward applies the map to (x, y).
func (m AffineMap[T]) Forward(x, y T) (T, T) {
	return m.A*x + m.E, m.C*x + m.D*y + m.F
}

// Inverse returns the pre-image of x under the horizontal part of the map.
func (m AffineMap[T]) Inverse(x T) T {
	return (x - m.E) / m.A
}

// Matrix returns the map as a 3x3 matrix acting on homogeneous column vectors
// (x, y, 1).
func (m AffineMap[T]) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		float64(m.A), 0, float64(m.E),
		float64(m.C), float64(m.D), float64(m.F),
		0, 0, 1,
	})
}
