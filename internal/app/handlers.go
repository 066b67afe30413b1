package app

import (
	httpH "github.com/yungbote/swapi-mirror/internal/http/handlers"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Sync    *httpH.SyncHandler
	Catalog *httpH.CatalogHandler
}

func wireHandlers(log *logger.Logger, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(log, db),
		Sync:    httpH.NewSyncHandler(services.Sync),
		Catalog: httpH.NewCatalogHandler(services.Query),
	}
}
