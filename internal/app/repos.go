package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/data/repos"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type Repos struct {
	Character repos.CharacterRepo
	Film      repos.FilmRepo
	Starship  repos.StarshipRepo
	Link      repos.LinkRepo
	SyncRun   repos.SyncRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Character: repos.NewCharacterRepo(db, log),
		Film:      repos.NewFilmRepo(db, log),
		Starship:  repos.NewStarshipRepo(db, log),
		Link:      repos.NewLinkRepo(db, log),
		SyncRun:   repos.NewSyncRunRepo(db, log),
	}
}
