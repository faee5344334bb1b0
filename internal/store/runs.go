package store

import (
	"database/sql"
	"time"
)

// Run statuses
const (
	RunRunning     = "running"
	RunCompleted   = "completed"
	RunFailed      = "failed"
	RunInterrupted = "interrupted"
)

// Run represents one invocation of the sorter
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	InputDir   string
	OutputDir  string
	Mode       string // copy or move
	Strategy   string // metadata or filename
	Status     string
	Placed     int
	Failed     int
	Skipped    int
}

// StartRun records a new run in the running state
func (s *Store) StartRun(run *Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Status = RunRunning

	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, input_dir, output_dir, mode, strategy, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.Unix(), run.InputDir, run.OutputDir, run.Mode, run.Strategy, run.Status)

	return err
}

// FinishRun stores the final status and counters of a run
func (s *Store) FinishRun(id, status string, placed, failed, skipped int) error {
	_, err := s.db.Exec(`
		UPDATE runs
		SET finished_at = ?, status = ?, placed = ?, failed = ?, skipped = ?
		WHERE id = ?
	`, time.Now().Unix(), status, placed, failed, skipped, id)

	return err
}

// GetRun gets a run by id, or nil if there is none
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, COALESCE(finished_at, 0), input_dir, output_dir, mode, strategy, status, placed, failed, skipped
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, started_at, COALESCE(finished_at, 0), input_dir, output_dir, mode, strategy, status, placed, failed, skipped
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var startedAt, finishedAt int64

	err := row.Scan(&run.ID, &startedAt, &finishedAt, &run.InputDir, &run.OutputDir,
		&run.Mode, &run.Strategy, &run.Status, &run.Placed, &run.Failed, &run.Skipped)
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.Unix(startedAt, 0)
	if finishedAt > 0 {
		run.FinishedAt = time.Unix(finishedAt, 0)
	}
	return &run, nil
}
