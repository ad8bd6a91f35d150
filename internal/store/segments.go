package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrSegmentNotFound = errors.New("segment not found")

// Segment is a user-defined named collection of groups, used for
// targeted broadcast.
type Segment struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	GroupIDs  []string  `json:"group_ids"`
}

func (s *Store) CreateSegment(ctx context.Context, userID string, name string) (*Segment, error) {
	seg := Segment{UserID: userID, Name: name}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO wa_segments (user_id, name, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		RETURNING id, created_at
	`, userID, name).Scan(&seg.ID, &seg.CreatedAt)
	if err != nil {
		return nil, err
	}
	seg.GroupIDs = []string{}
	return &seg, nil
}

func (s *Store) ListSegments(ctx context.Context, userID string) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM wa_segments
		WHERE user_id = $1
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.UserID, &seg.Name, &seg.CreatedAt); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range segments {
		ids, err := s.SegmentGroupIDs(ctx, userID, segments[i].ID)
		if err != nil {
			return nil, err
		}
		segments[i].GroupIDs = ids
	}
	return segments, nil
}

func (s *Store) DeleteSegment(ctx context.Context, userID string, segmentID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM wa_segments WHERE id = $1 AND user_id = $2
	`, segmentID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSegmentNotFound
	}
	return nil
}

// SetSegmentGroups replaces the segment's group membership.
// Only group ids the user actually manages are accepted.
func (s *Store) SetSegmentGroups(ctx context.Context, userID string, segmentID int64, groupIDs []string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM wa_segments WHERE id = $1
	`, segmentID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return ErrSegmentNotFound
	}
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wa_segment_groups WHERE segment_id = $1`, segmentID); err != nil {
		return err
	}
	for _, groupID := range groupIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO wa_segment_groups (segment_id, group_id)
			SELECT $1, group_id FROM wa_groups
			WHERE user_id = $2 AND group_id = $3
			ON CONFLICT DO NOTHING
		`, segmentID, userID, groupID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) SegmentGroupIDs(ctx context.Context, userID string, segmentID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sg.group_id
		FROM wa_segment_groups sg
		JOIN wa_segments seg ON seg.id = sg.segment_id
		WHERE sg.segment_id = $1 AND seg.user_id = $2
		ORDER BY sg.group_id
	`, segmentID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
