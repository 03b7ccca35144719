package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/stat"

	"ffinterp/internal/models"
	"ffinterp/pkg/config"
	"ffinterp/pkg/dataset"
	"ffinterp/pkg/interpolation"
	"ffinterp/pkg/metrics"
	"ffinterp/pkg/store"
)

// run builds the configured interpolant, evaluates it and records the
// outcome. It returns the run record.
func run(ctx context.Context, cfg *config.Config) (models.Run, error) {
	points, ref, err := loadPoints(cfg)
	if err != nil {
		return models.Run{}, err
	}
	slog.Info("samples ready", "function", cfg.Dataset.Function, "points", humanize.Comma(int64(len(points))))

	fv, err := freeVariables(cfg, len(points))
	if err != nil {
		return models.Run{}, err
	}

	start := time.Now()
	ip, err := interpolation.NewInterpolant1DWithParams(points, fv, interpolation.Params{
		Iterations: cfg.Interpolation.Iterations,
		NumCores:   cfg.Interpolation.NumCores,
		Logger:     slog.Default(),
	})
	if err != nil {
		return models.Run{}, err
	}
	slog.Debug("interpolant built", "segments", len(points)-1, "elapsed", time.Since(start))

	rec := models.Run{
		Function:   cfg.Dataset.Function,
		NumPoints:  len(points),
		Iterations: cfg.Interpolation.Iterations,
	}
	if err := describeFreeVariables(&rec, cfg); err != nil {
		return models.Run{}, err
	}
	var de *interpolation.DivergenceError
	if errors.As(ip.Check(), &de) {
		rec.Divergent = len(de.Segments)
	}

	if cfg.Evaluation.Queries > 0 {
		if err := evaluate(cfg, ip, points, ref, &rec); err != nil {
			return models.Run{}, err
		}
	}

	if cfg.Output.Attractor != "" {
		if err := writeAttractor(cfg, ip); err != nil {
			return models.Run{}, err
		}
	}

	if cfg.Output.Database != "" {
		db, err := store.Open(cfg.Output.Database)
		if err != nil {
			return models.Run{}, err
		}
		defer db.Close()

		id, err := db.SaveRun(ctx, &rec, points)
		if err != nil {
			return models.Run{}, err
		}
		slog.Info("run recorded", "id", id, "database", cfg.Output.Database)
	}

	return rec, nil
}

// evaluate runs the queries through ip, compares them with the reference
// function when there is one and writes the results file.
func evaluate(cfg *config.Config, ip *interpolation.Interpolant1D[float64], points []dataset.Point, ref dataset.Func, rec *models.Run) error {
	sorted := ip.Points()
	xs := dataset.Queries(sorted[0].X, sorted[len(sorted)-1].X, cfg.Evaluation.Queries)

	start := time.Now()
	ys, err := ip.EvaluateMany(xs)
	if err != nil {
		return err
	}
	rec.Duration = time.Since(start)
	rec.Queries = len(xs)
	slog.Info("evaluation complete",
		"queries", humanize.Comma(int64(len(xs))),
		"elapsed", rec.Duration,
		"rate", humanize.SIWithDigits(float64(len(xs))/max(rec.Duration, time.Nanosecond).Seconds(), 2, "q/s"))

	if slope, err := metrics.SpectralSlope(ys); err == nil {
		rec.SpectralSlope = slope
		slog.Info("roughness", "spectralSlope", slope)
	} else {
		slog.Debug("spectral slope unavailable", "error", err)
	}

	var want []float64
	if ref != nil {
		want = make([]float64, len(xs))
		for i, x := range xs {
			want[i] = ref(x)
		}
		report, err := metrics.Calculate(want, ys)
		if err != nil {
			return err
		}
		rec.RMSE, rec.MaxAbs, rec.Correlation = report.RMSE, report.MaxAbs, report.Correlation
		slog.Info("accuracy", "rmse", report.RMSE, "maxAbs", report.MaxAbs, "correlation", report.Correlation)

		if cfg.Evaluation.Baseline {
			lin, err := interpolation.NewLinear(points, cfg.Interpolation.NumCores)
			if err != nil {
				return err
			}
			baseline, _, _, err := metrics.Compare(lin, ref, xs)
			if err != nil {
				return err
			}
			rec.BaselineRMSE = baseline.RMSE
			slog.Info("linear baseline", "rmse", baseline.RMSE, "maxAbs", baseline.MaxAbs)
		}

		if cfg.Evaluation.Kriging {
			kr, err := interpolation.NewKriging(points, interpolation.DefaultKrigingParams(points), cfg.Interpolation.NumCores)
			if err != nil {
				return err
			}
			report, _, _, err := metrics.Compare(kr, ref, xs)
			if err != nil {
				return err
			}
			slog.Info("kriging baseline", "rmse", report.RMSE, "maxAbs", report.MaxAbs)
		}
	}

	if cfg.Output.Results != "" {
		f, err := os.Create(cfg.Output.Results)
		if err != nil {
			return fmt.Errorf("error creating results file: %w", err)
		}
		defer f.Close()
		if err := dataset.WriteResults(f, xs, ys, want); err != nil {
			return fmt.Errorf("error writing results: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("error writing results: %w", err)
		}
		slog.Info("results written", "path", cfg.Output.Results)
	}
	return nil
}

// writeAttractor samples the graph by forward iteration of the maps and
// writes it as x,y rows.
func writeAttractor(cfg *config.Config, ip *interpolation.Interpolant1D[float64]) error {
	points, err := ip.Attractor(cfg.Evaluation.AttractorLevels)
	if err != nil {
		return err
	}
	f, err := os.Create(cfg.Output.Attractor)
	if err != nil {
		return fmt.Errorf("error creating attractor file: %w", err)
	}
	defer f.Close()
	if err := dataset.WriteCSV(f, points); err != nil {
		return fmt.Errorf("error writing attractor: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error writing attractor: %w", err)
	}
	slog.Info("attractor written", "path", cfg.Output.Attractor,
		"levels", cfg.Evaluation.AttractorLevels, "points", humanize.Comma(int64(len(points))))
	return nil
}

// loadPoints returns the configured samples and, for generated datasets, the
// function they were drawn from.
func loadPoints(cfg *config.Config) ([]dataset.Point, dataset.Func, error) {
	if cfg.Dataset.Function == "csv" {
		f, err := os.Open(cfg.Dataset.Input)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening samples: %w", err)
		}
		defer f.Close()
		points, err := dataset.ReadCSV(f)
		if err != nil {
			return nil, nil, err
		}
		return points, nil, nil
	}

	fn, err := dataset.ByName(cfg.Dataset.Function, cfg.Dataset.Seed, cfg.Dataset.Octaves)
	if err != nil {
		return nil, nil, err
	}
	var points []dataset.Point
	if cfg.Dataset.Irregular {
		points, err = dataset.Irregular(fn, cfg.Dataset.Points, cfg.Dataset.Lo, cfg.Dataset.Hi, uint64(cfg.Dataset.Seed))
	} else {
		points, err = dataset.Uniform(fn, cfg.Dataset.Points, cfg.Dataset.Lo, cfg.Dataset.Hi)
	}
	if err != nil {
		return nil, nil, err
	}
	return points, fn, nil
}

func freeVariables(cfg *config.Config, numPoints int) (interpolation.FreeVariables[float64], error) {
	if len(cfg.Interpolation.FreeVariables) == 0 {
		return interpolation.NewScalar(cfg.Interpolation.FreeVariable), nil
	}
	if len(cfg.Interpolation.FreeVariables) != numPoints-1 {
		return nil, fmt.Errorf("%w: %d free variables for %d points",
			interpolation.ErrFreeVariableArity, len(cfg.Interpolation.FreeVariables), numPoints)
	}
	return interpolation.NewArray(cfg.Interpolation.FreeVariables), nil
}

func describeFreeVariables(rec *models.Run, cfg *config.Config) error {
	ds := cfg.Interpolation.FreeVariables
	if len(ds) == 0 {
		rec.FreeVariable = cfg.Interpolation.FreeVariable
		return nil
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return err
	}
	rec.FreeVariable = stat.Mean(ds, nil)
	rec.FreeVariables = string(data)
	return nil
}
