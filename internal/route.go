package internal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/auth"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/router"

	ctlGroups "github.com/wasegment/go-whatsapp-group-sync-api/internal/groups"
	ctlMessaging "github.com/wasegment/go-whatsapp-group-sync-api/internal/messaging"
	ctlSegments "github.com/wasegment/go-whatsapp-group-sync-api/internal/segments"
)

func Routes(app *fiber.App, a *App) {
	groupsController := ctlGroups.NewController(a.Store, a.Orchestrator)
	segmentsController := ctlSegments.NewController(a.Store)
	messagingController := ctlMessaging.NewController(a.Messaging)

	// Health (no auth)
	app.Get(router.BaseURL+"/health", func(c *fiber.Ctx) error {
		if err := a.Store.Ping(c.UserContext()); err != nil {
			return router.ResponseInternalError(c, "database unreachable")
		}
		return router.ResponseSuccess(c, "OK")
	})

	// All user operations require a valid JWT Bearer token
	userAuth := auth.UserAuth()

	// Group sync
	app.Post(router.BaseURL+"/sync", userAuth, groupsController.Sync)
	app.Get(router.BaseURL+"/sync/status", userAuth, groupsController.SyncStatus)
	app.Get(router.BaseURL+"/groups", userAuth, groupsController.List)

	// Segments
	app.Post(router.BaseURL+"/segments", userAuth, segmentsController.Create)
	app.Get(router.BaseURL+"/segments", userAuth, segmentsController.List)
	app.Delete(router.BaseURL+"/segments/:segment_id", userAuth, segmentsController.Delete)
	app.Put(router.BaseURL+"/segments/:segment_id/groups", userAuth, segmentsController.SetGroups)

	// Broadcast messaging
	app.Post(router.BaseURL+"/messages/broadcast", userAuth, messagingController.Broadcast)
	app.Post(router.BaseURL+"/messages/schedule", userAuth, messagingController.Schedule)
}
