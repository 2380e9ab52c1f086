// Package store - SQLite persistence of processing runs, motion boxes and
// viewport positions.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/nvr-ai/go-autopan/common"
)

// schema.sql creates the runs, motion_boxes and viewport_positions tables.
//
//go:embed schema.sql
var schemaSQL string

// ErrRunNotFound is returned when a run ID has no row in runs.
var ErrRunNotFound = errors.New("run not found")

// Run describes one processed clip.
type Run struct {
	ID        string
	Source    string
	Frames    int
	Frame     common.Size
	Viewport  common.Size
	Smoothing float64
	Threshold int
	MinArea   int
	CreatedAt time.Time
}

// Store wraps the results database.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// ":memory:" opens a private in-memory database.
//
// @example
// db, err := store.Open("autopan.db")
// if err != nil {
//     return err
// }
// defer db.Close()
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	// One connection keeps ":memory:" databases intact and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA foreign_keys = ON;", "PRAGMA busy_timeout = 5000;", schemaSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "initialize %s", path)
		}
	}
	return &Store{db}, nil
}

// RecordRun inserts a run and returns its ID. A new UUID is generated when
// run.ID is empty; CreatedAt defaults to now.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO runs (run_id, source, frames, width, height, vp_w, vp_h, smoothing, threshold, min_area, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.ExecContext(ctx, query,
		run.ID, run.Source, run.Frames, run.Frame.W, run.Frame.H, run.Viewport.W, run.Viewport.H,
		run.Smoothing, run.Threshold, run.MinArea, run.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", errors.Wrap(err, "failed to insert run")
	}
	return run.ID, nil
}

// LoadRun reads a run by ID.
func (s *Store) LoadRun(ctx context.Context, runID string) (Run, error) {
	query := `
		SELECT run_id, source, frames, width, height, vp_w, vp_h, smoothing, threshold, min_area, created_at
		FROM runs WHERE run_id = ?
	`
	var (
		run     Run
		created string
	)
	err := s.QueryRowContext(ctx, query, runID).Scan(
		&run.ID, &run.Source, &run.Frames, &run.Frame.W, &run.Frame.H, &run.Viewport.W, &run.Viewport.H,
		&run.Smoothing, &run.Threshold, &run.MinArea, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.Wrapf(ErrRunNotFound, "%s", runID)
	}
	if err != nil {
		return Run{}, errors.Wrapf(err, "failed to load run %s", runID)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, errors.Wrapf(err, "run %s created_at", runID)
	}
	return run, nil
}

// RecordMotion stores the motion boxes of every frame in one transaction.
// results[i] belongs to frame i; box order within a frame is kept.
func (s *Store) RecordMotion(ctx context.Context, runID string, results [][]common.BoundingBox) error {
	return s.inTx(ctx, "motion", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO motion_boxes (run_id, frame, seq, x, y, w, h)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for frame, boxes := range results {
			for seq, b := range boxes {
				if _, err := stmt.ExecContext(ctx, runID, frame, seq, b.X, b.Y, b.W, b.H); err != nil {
					return errors.Wrapf(err, "frame %d box %d", frame, seq)
				}
			}
		}
		return nil
	})
}

// RecordViewport stores one viewport position per frame in one transaction.
func (s *Store) RecordViewport(ctx context.Context, runID string, positions []common.Point) error {
	return s.inTx(ctx, "viewport", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO viewport_positions (run_id, frame, x, y)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for frame, p := range positions {
			if _, err := stmt.ExecContext(ctx, runID, frame, p.X, p.Y); err != nil {
				return errors.Wrapf(err, "frame %d", frame)
			}
		}
		return nil
	})
}

// LoadViewport returns the positions of a run ordered by frame.
func (s *Store) LoadViewport(ctx context.Context, runID string) ([]common.Point, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT x, y FROM viewport_positions WHERE run_id = ? ORDER BY frame
	`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query viewport positions")
	}
	defer rows.Close()

	positions := []common.Point{}
	for rows.Next() {
		var p common.Point
		if err := rows.Scan(&p.X, &p.Y); err != nil {
			return nil, errors.Wrap(err, "failed to scan viewport position")
		}
		positions = append(positions, p)
	}
	return positions, errors.Wrap(rows.Err(), "viewport rows")
}

// LoadMotion returns the motion boxes of a run, one slice per frame of the
// run. Frames without motion get an empty slice.
func (s *Store) LoadMotion(ctx context.Context, runID string) ([][]common.BoundingBox, error) {
	run, err := s.LoadRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.QueryContext(ctx, `
		SELECT frame, x, y, w, h FROM motion_boxes WHERE run_id = ? ORDER BY frame, seq
	`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query motion boxes")
	}
	defer rows.Close()

	results := make([][]common.BoundingBox, run.Frames)
	for i := range results {
		results[i] = []common.BoundingBox{}
	}
	for rows.Next() {
		var (
			frame int
			b     common.BoundingBox
		)
		if err := rows.Scan(&frame, &b.X, &b.Y, &b.W, &b.H); err != nil {
			return nil, errors.Wrap(err, "failed to scan motion box")
		}
		if frame < 0 || frame >= len(results) {
			return nil, errors.Errorf("motion box frame %d outside run of %d frames", frame, run.Frames)
		}
		results[frame] = append(results[frame], b)
	}
	return results, errors.Wrap(rows.Err(), "motion rows")
}

func (s *Store) inTx(ctx context.Context, what string, fn func(tx *sql.Tx) error) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "begin %s transaction", what)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to record %s", what)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", what)
}
