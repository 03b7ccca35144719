// Package store records interpolation runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"ffinterp/internal/models"
	"ffinterp/pkg/interpolation"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// DB wraps a SQLite connection holding recorded runs.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		function TEXT NOT NULL,
		num_points INTEGER NOT NULL,
		free_variable REAL NOT NULL,
		free_variables TEXT NOT NULL DEFAULT '',
		iterations INTEGER NOT NULL,
		divergent INTEGER NOT NULL,
		queries INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		rmse REAL NOT NULL,
		max_abs REAL NOT NULL,
		correlation REAL,
		spectral_slope REAL NOT NULL,
		baseline_rmse REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS points (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		idx INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		PRIMARY KEY (run_id, idx)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// runRow is the column layout of the runs table.
type runRow struct {
	ID            string          `db:"id"`
	CreatedAt     int64           `db:"created_at"`
	Function      string          `db:"function"`
	NumPoints     int             `db:"num_points"`
	FreeVariable  float64         `db:"free_variable"`
	FreeVariables string          `db:"free_variables"`
	Iterations    int             `db:"iterations"`
	Divergent     int             `db:"divergent"`
	Queries       int             `db:"queries"`
	DurationNS    int64           `db:"duration_ns"`
	RMSE          float64         `db:"rmse"`
	MaxAbs        float64         `db:"max_abs"`
	Correlation   sql.NullFloat64 `db:"correlation"`
	SpectralSlope float64         `db:"spectral_slope"`
	BaselineRMSE  float64         `db:"baseline_rmse"`
}

func toRow(r *models.Run) runRow {
	// SQLite has no NaN; an undefined correlation is stored as NULL.
	corr := sql.NullFloat64{Float64: r.Correlation, Valid: !math.IsNaN(r.Correlation)}
	return runRow{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt.UnixNano(),
		Function:      r.Function,
		NumPoints:     r.NumPoints,
		FreeVariable:  r.FreeVariable,
		FreeVariables: r.FreeVariables,
		Iterations:    r.Iterations,
		Divergent:     r.Divergent,
		Queries:       r.Queries,
		DurationNS:    int64(r.Duration),
		RMSE:          r.RMSE,
		MaxAbs:        r.MaxAbs,
		Correlation:   corr,
		SpectralSlope: r.SpectralSlope,
		BaselineRMSE:  r.BaselineRMSE,
	}
}

func (row runRow) run() models.Run {
	corr := row.Correlation.Float64
	if !row.Correlation.Valid {
		corr = math.NaN()
	}
	return models.Run{
		ID:            row.ID,
		CreatedAt:     time.Unix(0, row.CreatedAt).UTC(),
		Function:      row.Function,
		NumPoints:     row.NumPoints,
		FreeVariable:  row.FreeVariable,
		FreeVariables: row.FreeVariables,
		Iterations:    row.Iterations,
		Divergent:     row.Divergent,
		Queries:       row.Queries,
		Duration:      time.Duration(row.DurationNS),
		RMSE:          row.RMSE,
		MaxAbs:        row.MaxAbs,
		Correlation:   corr,
		SpectralSlope: row.SpectralSlope,
		BaselineRMSE:  row.BaselineRMSE,
	}
}

// SaveRun stores a run and the samples it was built from. A missing ID or
// creation time is filled in, and the stored ID is returned.
func (db *DB) SaveRun(ctx context.Context, run *models.Run, points []interpolation.Point2[float64]) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `INSERT INTO runs
		(id, created_at, function, num_points, free_variable, free_variables,
		 iterations, divergent, queries, duration_ns, rmse, max_abs, correlation, spectral_slope, baseline_rmse)
		VALUES (:id, :created_at, :function, :num_points, :free_variable, :free_variables,
		 :iterations, :divergent, :queries, :duration_ns, :rmse, :max_abs, :correlation, :spectral_slope, :baseline_rmse)`,
		toRow(run))
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO points (run_id, idx, x, y) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare points: %w", err)
	}
	defer stmt.Close()

	for i, p := range points {
		if _, err := stmt.ExecContext(ctx, run.ID, i, p.X, p.Y); err != nil {
			return "", fmt.Errorf("insert point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return run.ID, nil
}

// LoadRun returns the run with the given ID.
func (db *DB) LoadRun(ctx context.Context, id string) (models.Run, error) {
	var row runRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return models.Run{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return row.run(), nil
}

// ListRuns returns up to limit runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	var rows []runRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]models.Run, len(rows))
	for i, row := range rows {
		runs[i] = row.run()
	}
	return runs, nil
}

// LoadPoints returns the samples of a run in their original order.
func (db *DB) LoadPoints(ctx context.Context, id string) ([]interpolation.Point2[float64], error) {
	var rows []struct {
		X float64 `db:"x"`
		Y float64 `db:"y"`
	}
	err := db.conn.SelectContext(ctx, &rows, "SELECT x, y FROM points WHERE run_id = ? ORDER BY idx", id)
	if err != nil {
		return nil, fmt.Errorf("load points %s: %w", id, err)
	}

	points := make([]interpolation.Point2[float64], len(rows))
	for i, r := range rows {
		points[i] = interpolation.Point2[float64]{X: r.X, Y: r.Y}
	}
	return points, nil
}
