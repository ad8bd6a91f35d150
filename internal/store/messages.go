package store

import (
	"context"
	"time"
)

const (
	ScheduledStatusPending = "pending"
	ScheduledStatusSent    = "sent"
	ScheduledStatusFailed  = "failed"
)

// ScheduledMessage is a broadcast queued for later dispatch.
type ScheduledMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	SegmentID int64     `json:"segment_id"`
	Body      string    `json:"body"`
	SendAt    time.Time `json:"send_at"`
	Status    string    `json:"status"`
}

func (s *Store) CreateScheduledMessage(ctx context.Context, msg ScheduledMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wa_scheduled_messages (id, user_id, segment_id, body, send_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, msg.ID, msg.UserID, msg.SegmentID, msg.Body, msg.SendAt, ScheduledStatusPending)
	return err
}

// DueScheduledMessages returns pending messages whose send time has passed
func (s *Store) DueScheduledMessages(ctx context.Context, now time.Time) ([]ScheduledMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, segment_id, body, send_at, status
		FROM wa_scheduled_messages
		WHERE status = $1 AND send_at <= $2
		ORDER BY send_at
	`, ScheduledStatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []ScheduledMessage
	for rows.Next() {
		var m ScheduledMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.SegmentID, &m.Body, &m.SendAt, &m.Status); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *Store) MarkScheduledMessage(ctx context.Context, id string, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE wa_scheduled_messages
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, status, id)
	return err
}
