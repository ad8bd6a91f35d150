package groups

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wasegment/go-whatsapp-group-sync-api/internal/store"
	syncPipeline "github.com/wasegment/go-whatsapp-group-sync-api/internal/sync"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/log"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/router"
)

type Controller struct {
	store *store.Store
	orch  *syncPipeline.Orchestrator
}

func NewController(st *store.Store, orch *syncPipeline.Orchestrator) *Controller {
	return &Controller{store: st, orch: orch}
}

func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

func (ct *Controller) List(c *fiber.Ctx) error {
	userID := currentUserID(c)

	log.SyncOp(userID, "ListGroups").Info("Listing persisted groups")

	groups, err := ct.store.ListGroups(c.UserContext(), userID)
	if err != nil {
		log.SyncOp(userID, "ListGroups").WithError(err).Error("Failed to list groups")
		return router.ResponseInternalError(c, err.Error())
	}
	if groups == nil {
		groups = []store.GroupRecord{}
	}

	return router.ResponseSuccessWithData(c, "Success get groups", groups)
}

func (ct *Controller) Sync(c *fiber.Ctx) error {
	userID := currentUserID(c)

	log.SyncOp(userID, "TriggerSync").Info("Sync triggered")

	report, err := ct.orch.SyncUser(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, syncPipeline.ErrNoGatewayToken) || errors.Is(err, syncPipeline.ErrNotConnected) {
			log.SyncOp(userID, "TriggerSync").Warn(err.Error())
			return router.ResponseBadRequest(c, err.Error())
		}
		if errors.Is(err, store.ErrProfileNotFound) {
			return router.ResponseNotFound(c, "User profile not found")
		}
		log.SyncOp(userID, "TriggerSync").WithError(err).Error("Sync failed")
		return router.ResponseInternalError(c, err.Error())
	}

	return router.ResponseSuccessWithData(c, report.Message, report)
}

func (ct *Controller) SyncStatus(c *fiber.Ctx) error {
	userID := currentUserID(c)

	stats, err := ct.store.Stats(c.UserContext(), userID)
	if err != nil {
		log.SyncOp(userID, "SyncStatus").WithError(err).Error("Failed to get sync status")
		return router.ResponseInternalError(c, err.Error())
	}

	return router.ResponseSuccessWithData(c, "Success get sync status", stats)
}
