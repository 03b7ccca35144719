package interpolation

import (
	"fmt"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// maxAttractorPoints bounds the point set built by Attractor.
const maxAttractorPoints = 1 << 22

// Attractor samples the graph of the interpolant by running the map system
// forwards. Level zero is the samples themselves; every further level replaces
// the point set with its images under every map. The result is sorted by x
// with exact duplicates removed.
func (ip *Interpolant1D[T]) Attractor(levels int) ([]Point2[T], error) {
	if levels < 0 {
		return nil, fmt.Errorf("attractor: %w: got %d", ErrInvalidLevels, levels)
	}
	size := len(ip.points)
	for range levels {
		size *= len(ip.maps)
		if size > maxAttractorPoints {
			return nil, fmt.Errorf("attractor: %w: %d levels over %d maps", ErrAttractorTooLarge, levels, len(ip.maps))
		}
	}

	// Homogeneous column vectors (x, y, 1).
	current := mat.NewDense(3, len(ip.points), nil)
	for j, p := range ip.points {
		current.Set(0, j, float64(p.X))
		current.Set(1, j, float64(p.Y))
		current.Set(2, j, 1)
	}

	for range levels {
		_, m := current.Dims()
		next := mat.NewDense(3, m*len(ip.maps), nil)
		// Each map fills its own block of columns.
		parallelFor(len(ip.maps), ip.numCores, func(start, end int) {
			for i := start; i < end; i++ {
				block := next.Slice(0, 3, i*m, (i+1)*m).(*mat.Dense)
				block.Mul(ip.maps[i].Matrix(), current)
			}
		})
		current = next
	}

	_, m := current.Dims()
	out := make([]Point2[T], m)
	for j := range out {
		out[j] = Point2[T]{X: T(current.At(0, j)), Y: T(current.At(1, j))}
	}
	return slices.Compact(sortedCopy(out)), nil
}
