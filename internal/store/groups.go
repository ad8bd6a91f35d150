package store

import (
	"context"
	"database/sql"
	"time"
)

// GroupRecord is one persisted managed group.
// For a given user there is at most one record per group id.
type GroupRecord struct {
	UserID            string    `json:"-"`
	GroupID           string    `json:"group_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	ParticipantsCount int       `json:"participants_count"`
	IsAdmin           bool      `json:"is_admin"`
	IsCreator         bool      `json:"is_creator"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	LastSyncedAt      time.Time `json:"last_synced_at"`
}

// GroupStats summarizes a user's persisted group set.
type GroupStats struct {
	Total        int        `json:"total"`
	Admins       int        `json:"admins"`
	Creators     int        `json:"creators"`
	TotalMembers int        `json:"total_members"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

func (s *Store) CountGroups(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM wa_groups WHERE user_id = $1
	`, userID).Scan(&count)
	return count, err
}

func (s *Store) ListGroups(ctx context.Context, userID string) ([]GroupRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, group_id, name, description, participants_count,
		       is_admin, is_creator, avatar_url, last_synced_at
		FROM wa_groups
		WHERE user_id = $1
		ORDER BY name, group_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []GroupRecord
	for rows.Next() {
		var g GroupRecord
		err := rows.Scan(&g.UserID, &g.GroupID, &g.Name, &g.Description, &g.ParticipantsCount,
			&g.IsAdmin, &g.IsCreator, &g.AvatarURL, &g.LastSyncedAt)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ReplaceGroups atomically swaps the user's full group set.
// Delete-then-insert inside one transaction: the store never holds a
// partially replaced set.
func (s *Store) ReplaceGroups(ctx context.Context, userID string, groups []GroupRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wa_groups WHERE user_id = $1`, userID); err != nil {
		return err
	}

	for _, g := range groups {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO wa_groups (user_id, group_id, name, description, participants_count,
			                       is_admin, is_creator, avatar_url, last_synced_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, userID, g.GroupID, g.Name, g.Description, g.ParticipantsCount,
			g.IsAdmin, g.IsCreator, g.AvatarURL, g.LastSyncedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) Stats(ctx context.Context, userID string) (*GroupStats, error) {
	var stats GroupStats
	var lastSynced sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_admin),
		       COUNT(*) FILTER (WHERE is_creator),
		       COALESCE(SUM(participants_count), 0),
		       MAX(last_synced_at)
		FROM wa_groups
		WHERE user_id = $1
	`, userID).Scan(&stats.Total, &stats.Admins, &stats.Creators, &stats.TotalMembers, &lastSynced)
	if err != nil {
		return nil, err
	}
	if lastSynced.Valid {
		stats.LastSyncedAt = &lastSynced.Time
	}
	return &stats, nil
}
