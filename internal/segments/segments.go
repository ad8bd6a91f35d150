package segments

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wasegment/go-whatsapp-group-sync-api/internal/store"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/log"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/router"
)

type Controller struct {
	store *store.Store
}

func NewController(st *store.Store) *Controller {
	return &Controller{store: st}
}

func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

func (ct *Controller) Create(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.SyncOp(userID, "CreateSegment").Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return router.ResponseBadRequest(c, "name is required")
	}

	segment, err := ct.store.CreateSegment(c.UserContext(), userID, req.Name)
	if err != nil {
		log.SyncOp(userID, "CreateSegment").WithError(err).Error("Failed to create segment")
		return router.ResponseInternalError(c, err.Error())
	}

	return router.ResponseCreatedWithData(c, "Success create segment", segment)
}

func (ct *Controller) List(c *fiber.Ctx) error {
	userID := currentUserID(c)

	segments, err := ct.store.ListSegments(c.UserContext(), userID)
	if err != nil {
		log.SyncOp(userID, "ListSegments").WithError(err).Error("Failed to list segments")
		return router.ResponseInternalError(c, err.Error())
	}
	if segments == nil {
		segments = []store.Segment{}
	}

	return router.ResponseSuccessWithData(c, "Success get segments", segments)
}

func (ct *Controller) Delete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	segmentID, err := strconv.ParseInt(c.Params("segment_id"), 10, 64)
	if err != nil {
		return router.ResponseBadRequest(c, "Invalid segment id")
	}

	if err := ct.store.DeleteSegment(c.UserContext(), userID, segmentID); err != nil {
		if errors.Is(err, store.ErrSegmentNotFound) {
			return router.ResponseNotFound(c, "Segment not found")
		}
		log.SyncOp(userID, "DeleteSegment").WithError(err).Error("Failed to delete segment")
		return router.ResponseInternalError(c, err.Error())
	}

	return router.ResponseSuccess(c, "Success delete segment")
}

func (ct *Controller) SetGroups(c *fiber.Ctx) error {
	userID := currentUserID(c)

	segmentID, err := strconv.ParseInt(c.Params("segment_id"), 10, 64)
	if err != nil {
		return router.ResponseBadRequest(c, "Invalid segment id")
	}

	var req struct {
		GroupIDs []string `json:"group_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.SyncOp(userID, "SetSegmentGroups").Warn("Failed to parse body request")
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	if err := ct.store.SetSegmentGroups(c.UserContext(), userID, segmentID, req.GroupIDs); err != nil {
		if errors.Is(err, store.ErrSegmentNotFound) {
			return router.ResponseNotFound(c, "Segment not found")
		}
		log.SyncOp(userID, "SetSegmentGroups").WithError(err).Error("Failed to set segment groups")
		return router.ResponseInternalError(c, err.Error())
	}

	return router.ResponseSuccess(c, "Success set segment groups")
}
