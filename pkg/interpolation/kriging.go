package interpolation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"
)

// Variogram models supported by the implementation
type VariogramModel int

const (
	Spherical VariogramModel = iota
	Exponential
	Gaussian
)

// KrigingParams holds the parameters for kriging interpolation
type KrigingParams struct {
	Range     float64        // Range parameter of the variogram
	Sill      float64        // Sill parameter of the variogram
	Nugget    float64        // Nugget effect parameter
	Model     VariogramModel // Type of variogram model to use
	Neighbors int            // Number of nearest samples used per estimate
}

// DefaultKrigingParams derives variogram parameters from the samples: an
// exponential model whose range is a quarter of the x span and whose sill is
// the sample variance of y.
func DefaultKrigingParams(points []Point2[float64]) KrigingParams {
	params := KrigingParams{Model: Exponential, Neighbors: 16, Sill: 1, Range: 1}
	if len(points) < 2 {
		return params
	}

	lo, hi := points[0].X, points[0].X
	ys := make([]float64, len(points))
	for i, p := range points {
		lo, hi = math.Min(lo, p.X), math.Max(hi, p.X)
		ys[i] = p.Y
	}
	if hi > lo {
		params.Range = (hi - lo) / 4
	}
	if v := stat.Variance(ys, nil); v > 0 {
		params.Sill = v
	}
	return params
}

// point1D is a sample as seen by the KD-tree.
type point1D Point2[float64]

// Compare implements the kdtree.Comparable interface
func (p point1D) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	if d != 0 {
		panic("illegal dimension")
	}
	return p.X - c.(point1D).X
}

// Dims returns the number of dimensions for the KD-tree
func (p point1D) Dims() int { return 1 }

// Distance returns the squared distance between two samples
func (p point1D) Distance(c kdtree.Comparable) float64 {
	dx := p.X - c.(point1D).X
	return dx * dx
}

// points1D is a collection of point1D that satisfies kdtree.Interface
type points1D []point1D

func (p points1D) Index(i int) kdtree.Comparable         { return p[i] }
func (p points1D) Len() int                              { return len(p) }
func (p points1D) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p points1D) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{points1D: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{points1D: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer for points1D
type pointPlane struct {
	points1D
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool { return p.points1D[i].X < p.points1D[j].X }

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{points1D: p.points1D[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.points1D[i], p.points1D[j] = p.points1D[j], p.points1D[i]
}

// Kriging is ordinary kriging over the nearest samples of each query. Unlike
// the fractal interpolants it is smooth between samples; it shares their
// clamping and validation rules.
type Kriging struct {
	points   []Point2[float64]
	tree     *kdtree.Tree
	params   KrigingParams
	numCores int
}

// NewKriging builds a kriging interpolator through points. points need not be
// sorted and are copied.
func NewKriging(points []Point2[float64], params KrigingParams, numCores int) (*Kriging, error) {
	if err := checkPoints(points); err != nil {
		return nil, fmt.Errorf("new kriging: %w", err)
	}
	if !(params.Range > 0) || params.Sill < 0 || params.Nugget < 0 {
		return nil, fmt.Errorf("new kriging: invalid variogram range %g, sill %g, nugget %g", params.Range, params.Sill, params.Nugget)
	}
	if params.Neighbors < 2 {
		return nil, errors.New("new kriging: at least 2 neighbors are required")
	}

	sorted := sortedCopy(points)
	if sorted[0].X == sorted[len(sorted)-1].X {
		return nil, fmt.Errorf("new kriging: %w: every x is %v", ErrDegenerateRange, sorted[0].X)
	}

	// The tree reorders its backing slice.
	tp := make(points1D, len(sorted))
	for i, p := range sorted {
		tp[i] = point1D(p)
	}

	return &Kriging{
		points:   sorted,
		tree:     kdtree.New(tp, false),
		params:   params,
		numCores: resolveCores(numCores),
	}, nil
}

// Evaluate returns the kriging estimate at x, clamped to the end samples.
func (k *Kriging) Evaluate(x float64) (float64, error) {
	if !isFinite(x) {
		return 0, fmt.Errorf("evaluate: %w: %v", ErrNonFiniteQuery, x)
	}
	return k.eval(x), nil
}

// EvaluateMany evaluates every query in parallel, preserving order.
func (k *Kriging) EvaluateMany(xs []float64) ([]float64, error) {
	out := make([]float64, len(xs))
	if err := checkQueries(out, xs); err != nil {
		return nil, err
	}
	parallelFor(len(xs), k.numCores, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = k.eval(xs[i])
		}
	})
	return out, nil
}

func (k *Kriging) eval(x float64) float64 {
	first, last := k.points[0], k.points[len(k.points)-1]
	if x <= first.X {
		return first.Y
	}
	if x >= last.X {
		return last.Y
	}

	keeper := kdtree.NewNKeeper(k.params.Neighbors)
	k.tree.NearestSet(keeper, point1D{X: x})

	neighbors := make([]point1D, 0, k.params.Neighbors)
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue
		}
		p := c.Comparable.(point1D)
		if c.Dist < 1e-24 {
			// Query sits on a sample
			return p.Y
		}
		neighbors = append(neighbors, p)
	}

	weights := k.weightsAt(x, neighbors)
	value := 0.0
	for i, p := range neighbors {
		value += weights[i] * p.Y
	}
	return value
}

// weightsAt solves the ordinary kriging system for the neighbors of x. If
// the system cannot be solved it falls back to inverse distance weighting.
func (k *Kriging) weightsAt(x float64, neighbors []point1D) []float64 {
	n := len(neighbors)

	// +1 for the Lagrange multiplier
	a := mat.NewDense(n+1, n+1, nil)
	b := mat.NewVecDense(n+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, k.variogram(math.Abs(neighbors[i].X-neighbors[j].X)))
		}
		// Regularization to handle near-singular systems
		a.Set(i, i, a.At(i, i)+1e-10)
		a.Set(i, n, 1) // Constraint for weights sum = 1
		a.Set(n, i, 1)
		b.SetVec(i, k.variogram(math.Abs(x-neighbors[i].X)))
	}
	b.SetVec(n, 1)

	var qr mat.QR
	qr.Factorize(a)
	var w mat.VecDense
	if err := qr.SolveVecTo(&w, false, b); err == nil {
		weights := make([]float64, n)
		for i := range weights {
			weights[i] = w.AtVec(i)
		}
		return weights
	}

	weights := make([]float64, n)
	total := 0.0
	for i, p := range neighbors {
		d := x - p.X
		weights[i] = 1 / (d * d)
		total += weights[i]
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// variogram returns the semivariance at lag h
func (k *Kriging) variogram(h float64) float64 {
	if h == 0 {
		return 0
	}

	params := k.params
	gamma := params.Nugget

	switch params.Model {
	case Spherical:
		if h < params.Range {
			r := h / params.Range
			gamma += params.Sill * (1.5*r - 0.5*r*r*r)
		} else {
			gamma += params.Sill
		}
	case Exponential:
		gamma += params.Sill * (1 - math.Exp(-3*h/params.Range))
	case Gaussian:
		gamma += params.Sill * (1 - math.Exp(-3*h*h/(params.Range*params.Range)))
	}

	return gamma
}
