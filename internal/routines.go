package internal

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	syncPipeline "github.com/wasegment/go-whatsapp-group-sync-api/internal/sync"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/env"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/log"
)

// Routines registers the background cron jobs: periodic re-sync of every
// connected user and dispatch of due scheduled broadcasts.
func Routines(c *cron.Cron, a *App) {
	log.Print(nil).Info("Running Routine Tasks")

	if env.GetEnvBoolOrDefault("SYNC_CRON_ENABLED", true) {
		spec := env.GetEnvStringOrDefault("SYNC_CRON_SPEC", "0 0 */6 * * *")
		_, err := c.AddFunc(spec, func() {
			resyncConnectedUsers(a)
		})
		if err != nil {
			log.Print(nil).WithField("error", err.Error()).Error("Failed to add sync cron job")
		}
	} else {
		log.Print(nil).Info("Periodic sync cron disabled")
	}

	if env.GetEnvBoolOrDefault("SCHEDULED_MESSAGES_ENABLED", true) {
		_, err := c.AddFunc("0 * * * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			a.Messaging.DispatchDue(ctx, time.Now())
		})
		if err != nil {
			log.Print(nil).WithField("error", err.Error()).Error("Failed to add scheduled message cron job")
		}
	} else {
		log.Print(nil).Info("Scheduled message dispatch disabled")
	}
}

// resyncConnectedUsers walks every connected user sequentially. One slow or
// failing user must not stop the rest; per-user sync rejections are normal
// outcomes and already logged by the orchestrator.
func resyncConnectedUsers(a *App) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	userIDs, err := a.Store.ConnectedUserIDs(ctx)
	if err != nil {
		log.Print(nil).WithError(err).Error("Failed to list connected users for re-sync")
		return
	}
	log.Print(nil).WithField("users", len(userIDs)).Info("Starting periodic group re-sync")

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			log.Print(nil).Warn("Periodic re-sync timed out before finishing all users")
			return
		}
		_, err := a.Orchestrator.SyncUser(ctx, userID)
		if err != nil {
			if errors.Is(err, syncPipeline.ErrNoGatewayToken) || errors.Is(err, syncPipeline.ErrNotConnected) {
				continue
			}
			log.SyncOp(userID, "PeriodicSync").WithError(err).Error("Periodic sync failed")
		}
	}
}
