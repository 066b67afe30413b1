package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/swapi-mirror/internal/http/handlers"
	httpMW "github.com/yungbote/swapi-mirror/internal/http/middleware"
	"github.com/yungbote/swapi-mirror/internal/observability"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

const serviceName = "swapi-mirror"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string

	HealthHandler  *httpH.HealthHandler
	SyncHandler    *httpH.SyncHandler
	CatalogHandler *httpH.CatalogHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recovery(cfg.Log))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.ErrorHandler(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/swapi")
	{
		// Sync
		if cfg.SyncHandler != nil {
			api.POST("/sync/all", cfg.SyncHandler.SyncAll)
			api.POST("/sync/characters", cfg.SyncHandler.SyncCharacters)
			api.POST("/sync/films", cfg.SyncHandler.SyncFilms)
			api.POST("/sync/starships", cfg.SyncHandler.SyncStarships)
			api.GET("/sync/runs", cfg.SyncHandler.ListRuns)
			api.GET("/sync/runs/:id", cfg.SyncHandler.GetRun)
		}

		// Catalog
		if cfg.CatalogHandler != nil {
			api.GET("/characters", cfg.CatalogHandler.ListCharacters)
			api.GET("/characters/search", cfg.CatalogHandler.SearchCharacters)
			api.GET("/films", cfg.CatalogHandler.ListFilms)
			api.GET("/films/search", cfg.CatalogHandler.SearchFilms)
			api.GET("/starships", cfg.CatalogHandler.ListStarships)
			api.GET("/starships/search", cfg.CatalogHandler.SearchStarships)
		}
	}

	return r
}
