package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/data/repos/catalog"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type CharacterRepo = catalog.CharacterRepo
type FilmRepo = catalog.FilmRepo
type StarshipRepo = catalog.StarshipRepo
type LinkRepo = catalog.LinkRepo
type SyncRunRepo = catalog.SyncRunRepo

func NewCharacterRepo(db *gorm.DB, baseLog *logger.Logger) CharacterRepo {
	return catalog.NewCharacterRepo(db, baseLog)
}
func NewFilmRepo(db *gorm.DB, baseLog *logger.Logger) FilmRepo {
	return catalog.NewFilmRepo(db, baseLog)
}
func NewStarshipRepo(db *gorm.DB, baseLog *logger.Logger) StarshipRepo {
	return catalog.NewStarshipRepo(db, baseLog)
}

func NewLinkRepo(db *gorm.DB, baseLog *logger.Logger) LinkRepo {
	return catalog.NewLinkRepo(db, baseLog)
}

func NewSyncRunRepo(db *gorm.DB, baseLog *logger.Logger) SyncRunRepo {
	return catalog.NewSyncRunRepo(db, baseLog)
}
