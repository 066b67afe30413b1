package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/data/dberr"
	"github.com/yungbote/swapi-mirror/internal/data/repos"
	"github.com/yungbote/swapi-mirror/internal/observability"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

// LinkCounts is the number of association rows created by one Fill.
type LinkCounts struct {
	CharacterFilms     int `json:"character_film"`
	CharacterStarships int `json:"character_starship"`
	FilmStarships      int `json:"film_starship"`
}

func (c LinkCounts) Total() int { return c.CharacterFilms + c.CharacterStarships + c.FilmStarships }

// RelationshipFiller links every character to every film and starship, and every
// film to every starship, across the whole store. Existing links are kept.
type RelationshipFiller interface {
	Fill(ctx context.Context) (LinkCounts, error)
}

type relationshipFiller struct {
	db        *gorm.DB
	log       *logger.Logger
	chars     repos.CharacterRepo
	films     repos.FilmRepo
	starships repos.StarshipRepo
	links     repos.LinkRepo
}

func NewRelationshipFiller(db *gorm.DB, baseLog *logger.Logger, chars repos.CharacterRepo, films repos.FilmRepo, starships repos.StarshipRepo, links repos.LinkRepo) RelationshipFiller {
	return &relationshipFiller{
		db:        db,
		log:       baseLog.With("service", "RelationshipFiller"),
		chars:     chars,
		films:     films,
		starships: starships,
		links:     links,
	}
}

func (f *relationshipFiller) Fill(ctx context.Context) (LinkCounts, error) {
	var counts LinkCounts
	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		charIDs, err := f.chars.IDs(dbc)
		if err != nil {
			return err
		}
		filmIDs, err := f.films.IDs(dbc)
		if err != nil {
			return err
		}
		shipIDs, err := f.starships.IDs(dbc)
		if err != nil {
			return err
		}

		if counts.CharacterFilms, err = f.links.LinkCharactersFilms(dbc, charIDs, filmIDs); err != nil {
			return err
		}
		if counts.CharacterStarships, err = f.links.LinkCharactersStarships(dbc, charIDs, shipIDs); err != nil {
			return err
		}
		if counts.FilmStarships, err = f.links.LinkFilmsStarships(dbc, filmIDs, shipIDs); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return LinkCounts{}, dberr.Handle(f.log, err, "filling relationships")
	}

	m := observability.Current()
	m.AddLinksCreated("character_film", counts.CharacterFilms)
	m.AddLinksCreated("character_starship", counts.CharacterStarships)
	m.AddLinksCreated("film_starship", counts.FilmStarships)
	f.log.Info("Relationships filled",
		"character_film", counts.CharacterFilms,
		"character_starship", counts.CharacterStarships,
		"film_starship", counts.FilmStarships,
	)
	return counts, nil
}
