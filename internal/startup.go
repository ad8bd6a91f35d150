package internal

import (
	"context"
	"time"

	"github.com/wasegment/go-whatsapp-group-sync-api/internal/store"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/env"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/gateway"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/log"
)

// Startup connects the shared dependencies and ensures the schema exists.
func Startup(ctx context.Context) (*App, error) {
	log.Print(nil).Info("Running Startup Tasks")

	dsn := env.MustGetEnvString("POSTGRES_DSN")
	db, err := store.Open(dsn)
	if err != nil {
		return nil, err
	}
	st := store.New(db)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := st.Ping(pingCtx); err != nil {
		return nil, err
	}
	log.Print(nil).Info("Connected to Postgres")

	if err := st.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	return NewApp(st, gateway.NewClient()), nil
}
