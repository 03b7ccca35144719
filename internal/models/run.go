package models

import (
	"time"
)

// Run records one construction and evaluation of an interpolant
type Run struct {
	// ID uniquely identifies the run
	ID string

	// CreatedAt is when the run finished
	CreatedAt time.Time

	// Function names the reference function or "csv"
	Function string

	// NumPoints is the number of samples the interpolant was built from
	NumPoints int

	// FreeVariable is the shared contraction factor, or the mean of the
	// per-segment factors when FreeVariables is set
	FreeVariable float64

	// FreeVariables holds per-segment contraction factors as JSON, if any
	FreeVariables string

	// Iterations is the refinement budget per evaluation
	Iterations int

	// Divergent is the number of segments whose factor does not contract
	Divergent int

	// Queries is the number of evaluated points
	Queries int

	// Duration is the wall time spent evaluating
	Duration time.Duration

	// Accuracy against the reference function; zero for CSV datasets
	RMSE        float64
	MaxAbs      float64
	Correlation float64

	// SpectralSlope is the log-log slope of the power spectrum of the
	// evaluated curve; flatter means rougher
	SpectralSlope float64

	// BaselineRMSE is the RMSE of piecewise linear interpolation on the same
	// queries, if it was computed
	BaselineRMSE float64
}
