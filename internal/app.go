package internal

import (
	"github.com/wasegment/go-whatsapp-group-sync-api/internal/messaging"
	"github.com/wasegment/go-whatsapp-group-sync-api/internal/store"
	syncPipeline "github.com/wasegment/go-whatsapp-group-sync-api/internal/sync"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/gateway"
)

// App holds the wired application dependencies shared by routes and routines.
type App struct {
	Store        *store.Store
	Gateway      *gateway.Client
	Orchestrator *syncPipeline.Orchestrator
	Messaging    *messaging.Service
}

func NewApp(st *store.Store, gw *gateway.Client) *App {
	return &App{
		Store:        st,
		Gateway:      gw,
		Orchestrator: syncPipeline.NewOrchestrator(gw, st),
		Messaging:    messaging.NewService(st, gw),
	}
}
