package messaging

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wasegment/go-whatsapp-group-sync-api/internal/store"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/log"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/router"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

type broadcastRequest struct {
	SegmentID int64  `json:"segment_id"`
	Message   string `json:"message"`
	SendAt    string `json:"send_at,omitempty"` // RFC3339, schedule endpoint only
}

func (ct *Controller) Broadcast(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		log.SyncOp(userID, "Broadcast").Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	result, err := ct.service.Broadcast(c.UserContext(), userID, req.SegmentID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrMessageTooLong), errors.Is(err, ErrEmptySegment):
			return router.ResponseBadRequest(c, err.Error())
		case errors.Is(err, store.ErrProfileNotFound):
			return router.ResponseNotFound(c, "User profile not found")
		}
		log.SyncOp(userID, "Broadcast").WithError(err).Error("Broadcast failed")
		return router.ResponseInternalError(c, err.Error())
	}

	if result.Sent == 0 {
		return router.ResponseBadGateway(c, "All sends failed")
	}
	return router.ResponseSuccessWithData(c, "Success broadcast message", result)
}

func (ct *Controller) Schedule(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		log.SyncOp(userID, "ScheduleBroadcast").Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	sendAt, err := time.Parse(time.RFC3339, req.SendAt)
	if err != nil {
		return router.ResponseBadRequest(c, "send_at must be RFC3339")
	}
	if sendAt.Before(time.Now()) {
		return router.ResponseBadRequest(c, "send_at must be in the future")
	}

	msg, err := ct.service.Schedule(c.UserContext(), userID, req.SegmentID, req.Message, sendAt)
	if err != nil {
		if errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrMessageTooLong) {
			return router.ResponseBadRequest(c, err.Error())
		}
		log.SyncOp(userID, "ScheduleBroadcast").WithError(err).Error("Schedule failed")
		return router.ResponseInternalError(c, err.Error())
	}

	return router.ResponseCreatedWithData(c, "Success schedule broadcast", msg)
}
