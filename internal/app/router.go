package app

import (
	"github.com/yungbote/swapi-mirror/internal/config"
	apphttp "github.com/yungbote/swapi-mirror/internal/http"
	"github.com/yungbote/swapi-mirror/internal/observability"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, handlers Handlers) *apphttp.Server {
	return apphttp.NewServer(cfg.HTTP, apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		HealthHandler:  handlers.Health,
		SyncHandler:    handlers.Sync,
		CatalogHandler: handlers.Catalog,
	})
}
