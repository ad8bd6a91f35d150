// Package messaging sends broadcast messages to the groups of a segment,
// either immediately or on a schedule.
package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forPelevin/gomoji"
	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/wasegment/go-whatsapp-group-sync-api/internal/store"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/log"
)

// MaxMessageGraphemes caps broadcast length in user-perceived characters,
// counted with grapheme clusters so emoji do not blow up the limit unfairly.
const MaxMessageGraphemes = 4096

var (
	ErrEmptyMessage   = errors.New("message body is empty")
	ErrMessageTooLong = errors.New("message body exceeds maximum length")
	ErrEmptySegment   = errors.New("segment has no groups")
)

// MessageSender is the slice of the gateway client the service needs
type MessageSender interface {
	SendMessage(ctx context.Context, token string, groupID string, body string) (string, error)
}

// SendOutcome reports the per-group result of one broadcast.
type SendOutcome struct {
	GroupID   string `json:"group_id"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BroadcastResult summarizes one broadcast across a segment.
type BroadcastResult struct {
	Sent     int           `json:"sent"`
	Failed   int           `json:"failed"`
	Outcomes []SendOutcome `json:"outcomes"`
}

type Service struct {
	store  *store.Store
	sender MessageSender
}

func NewService(st *store.Store, sender MessageSender) *Service {
	return &Service{store: st, sender: sender}
}

// ValidateBody checks a broadcast body before it is sent or scheduled
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyMessage
	}
	if uniseg.GraphemeClusterCount(body) > MaxMessageGraphemes {
		return ErrMessageTooLong
	}
	return nil
}

// Preview produces a short plain-text summary of the body for logs and
// scheduled-message listings, with emoji stripped.
func Preview(body string) string {
	preview := body
	if gomoji.ContainsEmoji(preview) {
		preview = gomoji.RemoveEmojis(preview)
	}
	preview = strings.Join(strings.Fields(preview), " ")
	if uniseg.GraphemeClusterCount(preview) > 80 {
		g := uniseg.NewGraphemes(preview)
		var b strings.Builder
		for i := 0; i < 80 && g.Next(); i++ {
			b.WriteString(g.Str())
		}
		preview = b.String()
	}
	return preview
}

// Broadcast sends the body to every group of the segment, sequentially.
// Per-group failures are collected, not fatal: a broadcast to 40 groups
// should not stop because one group rejected the message.
func (s *Service) Broadcast(ctx context.Context, userID string, segmentID int64, body string) (*BroadcastResult, error) {
	if err := ValidateBody(body); err != nil {
		return nil, err
	}

	profile, err := s.store.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	groupIDs, err := s.store.SegmentGroupIDs(ctx, userID, segmentID)
	if err != nil {
		return nil, err
	}
	if len(groupIDs) == 0 {
		return nil, ErrEmptySegment
	}

	log.SyncOp(userID, "Broadcast").
		WithField("segment_id", segmentID).
		WithField("groups", len(groupIDs)).
		WithField("preview", Preview(body)).
		Info("Broadcasting message")

	result := &BroadcastResult{Outcomes: make([]SendOutcome, 0, len(groupIDs))}
	for _, groupID := range groupIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		messageID, err := s.sender.SendMessage(ctx, profile.GatewayToken, groupID, body)
		outcome := SendOutcome{GroupID: groupID, MessageID: messageID}
		if err != nil {
			outcome.Error = err.Error()
			result.Failed++
			log.GatewayOp(userID, "SendMessage").WithField("group_id", groupID).WithError(err).Warn("Broadcast send failed")
		} else {
			result.Sent++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}

// Schedule persists a broadcast for later dispatch by the cron routine
func (s *Service) Schedule(ctx context.Context, userID string, segmentID int64, body string, sendAt time.Time) (*store.ScheduledMessage, error) {
	if err := ValidateBody(body); err != nil {
		return nil, err
	}

	msg := store.ScheduledMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		SegmentID: segmentID,
		Body:      body,
		SendAt:    sendAt,
		Status:    store.ScheduledStatusPending,
	}
	if err := s.store.CreateScheduledMessage(ctx, msg); err != nil {
		return nil, err
	}

	log.SyncOp(userID, "ScheduleBroadcast").
		WithField("segment_id", segmentID).
		WithField("send_at", sendAt.Format(time.RFC3339)).
		Info("Broadcast scheduled")
	return &msg, nil
}

// DispatchDue sends every pending scheduled message whose time has come.
// Called from the cron routine.
func (s *Service) DispatchDue(ctx context.Context, now time.Time) {
	due, err := s.store.DueScheduledMessages(ctx, now)
	if err != nil {
		log.Print(nil).WithError(err).Error("Failed to load due scheduled messages")
		return
	}

	for _, msg := range due {
		result, err := s.Broadcast(ctx, msg.UserID, msg.SegmentID, msg.Body)
		status := store.ScheduledStatusSent
		if err != nil || (result != nil && result.Sent == 0) {
			status = store.ScheduledStatusFailed
		}
		if err != nil {
			log.SyncOp(msg.UserID, "DispatchScheduled").WithField("message_id", msg.ID).WithError(err).Error("Scheduled broadcast failed")
		}
		if markErr := s.store.MarkScheduledMessage(ctx, msg.ID, status); markErr != nil {
			log.SyncOp(msg.UserID, "DispatchScheduled").WithField("message_id", msg.ID).WithError(markErr).Error("Failed to update scheduled message status")
		}
	}
}
