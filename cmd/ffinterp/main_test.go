package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ffinterp/pkg/config"
	"ffinterp/pkg/dataset"
	"ffinterp/pkg/interpolation"
	"ffinterp/pkg/store"
)

// TestRunPipeline runs the full pipeline on a small sine dataset
func TestRunPipeline(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Dataset.Points = 100
	cfg.Evaluation.Kriging = true
	cfg.Evaluation.Queries = 2000
	cfg.Output.Results = filepath.Join(dir, "results.csv")
	cfg.Output.Database = filepath.Join(dir, "runs.db")

	rec, err := run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if rec.Queries != 2000 {
		t.Errorf("Expected 2000 queries, got %d", rec.Queries)
	}
	if rec.RMSE <= 0 || rec.RMSE > 1e-2 {
		t.Errorf("Expected small positive RMSE, got %g", rec.RMSE)
	}
	if rec.SpectralSlope >= 0 {
		t.Errorf("Expected a decaying spectrum, got slope %g", rec.SpectralSlope)
	}
	if rec.BaselineRMSE <= 0 {
		t.Errorf("Expected baseline RMSE to be computed, got %g", rec.BaselineRMSE)
	}

	data, err := os.ReadFile(cfg.Output.Results)
	if err != nil {
		t.Fatalf("Failed to read results: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "x,interpolated,reference" || len(lines) != 2001 {
		t.Errorf("Unexpected results file: header %q, %d lines", lines[0], len(lines))
	}

	db, err := store.Open(cfg.Output.Database)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	saved, err := db.LoadRun(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if saved.NumPoints != 100 || saved.Function != "sine" {
		t.Errorf("Unexpected stored run: %+v", saved)
	}
}

// TestRunCSV interpolates samples read from a file with per-segment factors
func TestRunCSV(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "points.csv")

	points, _ := dataset.Uniform(dataset.Weierstrass, 5, -1, 1)
	f, err := os.Create(input)
	if err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}
	if err := dataset.WriteCSV(f, points); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	f.Close()

	cfg := config.DefaultConfig()
	cfg.Dataset.Function = "csv"
	cfg.Dataset.Input = input
	cfg.Interpolation.FreeVariables = []float64{0.2, 1.5, -0.3, 0.1}
	cfg.Evaluation.Queries = 100
	cfg.Evaluation.AttractorLevels = 2
	cfg.Output.Attractor = filepath.Join(dir, "attractor.csv")

	rec, err := run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if rec.Divergent != 1 {
		t.Errorf("Expected 1 divergent segment, got %d", rec.Divergent)
	}
	if rec.FreeVariables != "[0.2,1.5,-0.3,0.1]" {
		t.Errorf("Unexpected free variables record %q", rec.FreeVariables)
	}
	if rec.RMSE != 0 {
		t.Errorf("Expected no accuracy without a reference, got RMSE %g", rec.RMSE)
	}

	data, err := os.ReadFile(cfg.Output.Attractor)
	if err != nil {
		t.Fatalf("Failed to read attractor: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus at most 5 samples times 4 maps squared.
	if lines[0] != "x,y" || len(lines) <= 1+5*4 || len(lines) > 1+5*4*4 {
		t.Errorf("Unexpected attractor file: header %q, %d lines", lines[0], len(lines))
	}

	cfg.Interpolation.FreeVariables = []float64{0.2}
	if _, err := run(context.Background(), cfg); !errors.Is(err, interpolation.ErrFreeVariableArity) {
		t.Errorf("Expected %v, got %v", interpolation.ErrFreeVariableArity, err)
	}
}
