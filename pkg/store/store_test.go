package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"ffinterp/internal/models"
	"ffinterp/pkg/interpolation"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSaveAndLoadRun stores a run with its samples and reads both back
func TestSaveAndLoadRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	points := []interpolation.Point2[float64]{{X: 0, Y: 0}, {X: 0.5, Y: 1}, {X: 1, Y: 0}}
	run := &models.Run{
		Function:     "sine",
		NumPoints:    len(points),
		FreeVariable: 0.01,
		Iterations:   10,
		Queries:      1000,
		Duration:     1500 * time.Microsecond,
		RMSE:         1e-4,
		MaxAbs:       3e-4,
		Correlation:  0.9999,
		BaselineRMSE: 2e-4,
	}

	id, err := db.SaveRun(ctx, run, points)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id == "" || id != run.ID {
		t.Fatalf("Expected generated ID to be returned, got %q (run has %q)", id, run.ID)
	}
	if run.CreatedAt.IsZero() {
		t.Error("Expected creation time to be filled in")
	}

	loaded, err := db.LoadRun(ctx, id)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if diff := cmp.Diff(*run, loaded, cmpopts.EquateApproxTime(time.Microsecond)); diff != "" {
		t.Errorf("Run changed on round trip (-want +got):\n%s", diff)
	}

	got, err := db.LoadPoints(ctx, id)
	if err != nil {
		t.Fatalf("LoadPoints failed: %v", err)
	}
	if diff := cmp.Diff(points, got); diff != "" {
		t.Errorf("Points changed on round trip (-want +got):\n%s", diff)
	}
}

// TestListRuns checks newest-first ordering and the limit
func TestListRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &models.Run{
			Function:    "noise",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			Iterations:  i + 1,
			Correlation: math.NaN(),
		}
		if _, err := db.SaveRun(ctx, run, nil); err != nil {
			t.Fatalf("SaveRun %d failed: %v", i, err)
		}
	}

	runs, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].Iterations != 3 || runs[1].Iterations != 2 {
		t.Errorf("Expected newest first, got iterations %d, %d", runs[0].Iterations, runs[1].Iterations)
	}
	if !math.IsNaN(runs[0].Correlation) {
		t.Errorf("Expected undefined correlation to survive as NaN, got %f", runs[0].Correlation)
	}
}

// TestLoadMissingRun verifies the not-found error
func TestLoadMissingRun(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected %v, got %v", ErrNotFound, err)
	}
}
