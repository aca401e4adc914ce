package sqlite

import (
	"database/sql"
	"fmt"

	"objectdetection/internal/model"
)

// RunRepository implements repository.RunRepository for SQLite.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new SQLite run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Insert adds a new run record to the database.
func (r *RunRepository) Insert(run *model.Run) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO runs (kind, source, save_dir, frames, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, string(run.Kind), run.Source, run.SaveDir, run.Frames, run.StartedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return result.LastInsertId()
}

// UpdateFrames sets the processed frame count of a run.
func (r *RunRepository) UpdateFrames(id int64, frames int) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`UPDATE runs SET frames = ? WHERE id = ?`, frames, id); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. A missing run yields nil, nil.
func (r *RunRepository) GetByID(id int64) (*model.Run, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var run model.Run
	var kind string
	err := r.db.Conn().QueryRow(`
		SELECT id, kind, source, save_dir, frames, started_at
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &kind, &run.Source, &run.SaveDir, &run.Frames, &run.StartedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.Kind = model.RunKind(kind)
	return &run, nil
}

// GetRecent returns the latest runs, newest first.
func (r *RunRepository) GetRecent(limit int) ([]model.Run, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, kind, source, save_dir, frames, started_at
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var kind string
		if err := rows.Scan(&run.ID, &kind, &run.Source, &run.SaveDir, &run.Frames, &run.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Kind = model.RunKind(kind)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetTotalCount returns the number of stored runs.
func (r *RunRepository) GetTotalCount() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
