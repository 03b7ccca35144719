// Package dataset generates and stores the sample points interpolants are
// built from.
package dataset

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Func is a reference function sampled to build a dataset.
type Func func(x float64) float64

// Sine is math.Sin.
func Sine(x float64) float64 { return math.Sin(x) }

// Weierstrass evaluates the continuous, nowhere-differentiable product
//
//	prod_{n>=1} (1 + 2^-n sin(6^n pi x))
//
// stopping once 2^-n no longer changes 1.
func Weierstrass(x float64) float64 {
	product := 1.0
	for n := 1; n <= 1000; n++ {
		magnitude := math.Pow(0.5, float64(n))
		if 1+magnitude == 1 {
			break
		}
		product *= 1 + magnitude*math.Sin(math.Pow(6, float64(n))*math.Pi*x)
	}
	return product
}

// Noise returns a smooth pseudo-random curve in [0, 1] made of octaves layers
// of OpenSimplex noise, each at twice the frequency and half the amplitude of
// the previous one.
func Noise(seed int64, octaves int) Func {
	noise := opensimplex.NewNormalized(seed)
	if octaves < 1 {
		octaves = 1
	}
	return func(x float64) float64 {
		total, amplitude, maxVal, frequency := 0.0, 1.0, 0.0, 1.0
		for i := 0; i < octaves; i++ {
			total += noise.Eval2(x*frequency, 0) * amplitude
			maxVal += amplitude
			amplitude *= 0.5
			frequency *= 2
		}
		return total / maxVal
	}
}

// ByName resolves a reference function by its configuration name.
func ByName(name string, seed int64, octaves int) (Func, error) {
	switch name {
	case "sine":
		return Sine, nil
	case "weierstrass":
		return Weierstrass, nil
	case "noise":
		return Noise(seed, octaves), nil
	default:
		return nil, fmt.Errorf("unknown function %q", name)
	}
}
