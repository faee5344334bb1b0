package store

import "time"

// Placement statuses
const (
	PlacementPlaced = "placed"
	PlacementFailed = "failed"
)

// Placement represents one copy or move attempted by a run
type Placement struct {
	ID           int64
	RunID        string
	SrcPath      string
	DestPath     string
	Action       string // copy or move
	Status       string
	BytesWritten int64
	Error        string
	PlacedAt     time.Time
}

// RecordPlacement inserts a placement and sets its ID
func (s *Store) RecordPlacement(p *Placement) error {
	if p.PlacedAt.IsZero() {
		p.PlacedAt = time.Now()
	}

	result, err := s.db.Exec(`
		INSERT INTO placements (run_id, src_path, dest_path, action, status, bytes_written, error, placed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.RunID, p.SrcPath, p.DestPath, p.Action, p.Status, p.BytesWritten, p.Error, p.PlacedAt.Unix())
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id

	return nil
}

// ListPlacements returns the placements of a run in the order they were made
func (s *Store) ListPlacements(runID string) ([]*Placement, error) {
	return s.queryPlacements(`
		SELECT id, run_id, src_path, dest_path, action, status, bytes_written, COALESCE(error, ''), placed_at
		FROM placements
		WHERE run_id = ?
		ORDER BY id
	`, runID)
}

// CountPlacementsByStatus counts the placements of a run with the given status
func (s *Store) CountPlacementsByStatus(runID, status string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM placements WHERE run_id = ? AND status = ?
	`, runID, status).Scan(&count)

	return count, err
}

// FindByDest returns the most recent placement into destPath, or nil
func (s *Store) FindByDest(destPath string) (*Placement, error) {
	placements, err := s.queryPlacements(`
		SELECT id, run_id, src_path, dest_path, action, status, bytes_written, COALESCE(error, ''), placed_at
		FROM placements
		WHERE dest_path = ?
		ORDER BY id DESC
		LIMIT 1
	`, destPath)
	if err != nil || len(placements) == 0 {
		return nil, err
	}
	return placements[0], nil
}

func (s *Store) queryPlacements(query string, args ...any) ([]*Placement, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var placements []*Placement
	for rows.Next() {
		var p Placement
		var placedAt int64

		err := rows.Scan(&p.ID, &p.RunID, &p.SrcPath, &p.DestPath, &p.Action, &p.Status,
			&p.BytesWritten, &p.Error, &placedAt)
		if err != nil {
			return nil, err
		}

		p.PlacedAt = time.Unix(placedAt, 0)
		placements = append(placements, &p)
	}

	return placements, rows.Err()
}
