package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the power of each non-negative frequency of ys, which
// are taken as evenly spaced samples. The straight line through the first and
// last sample is removed first so the wrap-around of the transform does not
// add a jump.
func PowerSpectrum(ys []float64) []float64 {
	n := len(ys)
	if n < 2 {
		return nil
	}

	detrended := make([]float64, n)
	slope := (ys[n-1] - ys[0]) / float64(n-1)
	for i, y := range ys {
		detrended[i] = y - (ys[0] + slope*float64(i))
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, detrended)

	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		power[i] = real(c)*real(c) + imag(c)*imag(c)
	}
	return power
}

// SpectralSlope fits log power against log frequency over the lower half of
// the spectrum, excluding the mean. Smooth curves give steep negative slopes;
// rougher curves give shallower ones.
func SpectralSlope(ys []float64) (float64, error) {
	power := PowerSpectrum(ys)
	upper := len(power) / 2

	var logF, logP []float64
	for k := 1; k <= upper; k++ {
		if power[k] <= 0 {
			continue
		}
		logF = append(logF, math.Log(float64(k)))
		logP = append(logP, math.Log(power[k]))
	}
	if len(logF) < 2 {
		return 0, errors.New("not enough spectral content to fit a slope")
	}

	_, beta := stat.LinearRegression(logF, logP, nil, false)
	return beta, nil
}
