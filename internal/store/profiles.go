package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrProfileNotFound = errors.New("user profile not found")

// UserProfile holds the per-user gateway credentials and connection state.
// Written by the auth/billing flows; this service reads it and backfills
// the phone field when it resolves the user's identity from the gateway.
type UserProfile struct {
	UserID           string    `json:"user_id"`
	GatewayToken     string    `json:"-"`
	ConnectionStatus string    `json:"connection_status"`
	Phone            string    `json:"phone"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (p UserProfile) Connected() bool {
	return p.ConnectionStatus == "connected"
}

func (s *Store) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	var p UserProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, gateway_token, connection_status, phone, created_at, updated_at
		FROM wa_user_profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.GatewayToken, &p.ConnectionStatus, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePhone persists a resolved phone identity so later runs skip the
// gateway self-identity lookup.
func (s *Store) SavePhone(ctx context.Context, userID string, phone string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE wa_user_profiles
		SET phone = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2
	`, phone, userID)
	return err
}

// ConnectedUserIDs lists users eligible for a periodic re-sync
func (s *Store) ConnectedUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM wa_user_profiles
		WHERE connection_status = 'connected' AND gateway_token <> ''
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
