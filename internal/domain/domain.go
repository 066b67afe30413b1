package domain

import (
	"github.com/yungbote/swapi-mirror/internal/domain/catalog"
	"github.com/yungbote/swapi-mirror/internal/domain/jobs"
)

type (
	Character         = catalog.Character
	Film              = catalog.Film
	Starship          = catalog.Starship
	CharacterFilm     = catalog.CharacterFilm
	CharacterStarship = catalog.CharacterStarship
	FilmStarship      = catalog.FilmStarship
	Record            = catalog.Record
	Kind              = catalog.Kind

	SyncRun   = jobs.SyncRun
	SyncState = jobs.SyncState
)
