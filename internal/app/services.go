package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/config"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
	"github.com/yungbote/swapi-mirror/internal/services"
)

type Services struct {
	Store  services.CatalogStore
	Filler services.RelationshipFiller
	Sync   services.SyncService
	Query  services.CatalogQuery
}

func wireServices(ctx context.Context, log *logger.Logger, db *gorm.DB, cfg *config.Config, r Repos, c Clients, failFast bool) Services {
	log.Info("Wiring services...")
	store := services.NewCatalogStore(db, log, r.Character, r.Film, r.Starship)
	filler := services.NewRelationshipFiller(db, log, r.Character, r.Film, r.Starship, r.Link)
	return Services{
		Store:  store,
		Filler: filler,
		Sync: services.NewSyncService(ctx, log, c.Swapi, store, filler, r.SyncRun, c.Locker,
			services.SyncOptions{FailFast: failFast}),
		Query: services.NewCatalogQuery(log, r.Character, r.Film, r.Starship, cfg.LogFetchedObjects),
	}
}
