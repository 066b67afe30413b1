package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type pair struct{ a, b uint }

// LinkRepo grows the association tables. Links are only ever added.
type LinkRepo interface {
	LinkCharactersFilms(dbc dbctx.Context, characterIDs, filmIDs []uint) (int, error)
	LinkCharactersStarships(dbc dbctx.Context, characterIDs, starshipIDs []uint) (int, error)
	LinkFilmsStarships(dbc dbctx.Context, filmIDs, starshipIDs []uint) (int, error)
	CountCharacterFilms(dbc dbctx.Context) (int64, error)
	CountCharacterStarships(dbc dbctx.Context) (int64, error)
	CountFilmStarships(dbc dbctx.Context) (int64, error)
}

type linkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLinkRepo(db *gorm.DB, baseLog *logger.Logger) LinkRepo {
	return &linkRepo{
		db:  db,
		log: baseLog.With("repo", "LinkRepo"),
	}
}

func (r *linkRepo) LinkCharactersFilms(dbc dbctx.Context, characterIDs, filmIDs []uint) (int, error) {
	return linkMissing(dbc, r.db, "character_id", "film_id", characterIDs, filmIDs,
		func(a, b uint) types.CharacterFilm { return types.CharacterFilm{CharacterID: a, FilmID: b} })
}

func (r *linkRepo) LinkCharactersStarships(dbc dbctx.Context, characterIDs, starshipIDs []uint) (int, error) {
	return linkMissing(dbc, r.db, "character_id", "starship_id", characterIDs, starshipIDs,
		func(a, b uint) types.CharacterStarship { return types.CharacterStarship{CharacterID: a, StarshipID: b} })
}

func (r *linkRepo) LinkFilmsStarships(dbc dbctx.Context, filmIDs, starshipIDs []uint) (int, error) {
	return linkMissing(dbc, r.db, "film_id", "starship_id", filmIDs, starshipIDs,
		func(a, b uint) types.FilmStarship { return types.FilmStarship{FilmID: a, StarshipID: b} })
}

func (r *linkRepo) CountCharacterFilms(dbc dbctx.Context) (int64, error) {
	return countRows(dbc, r.db, &types.CharacterFilm{})
}

func (r *linkRepo) CountCharacterStarships(dbc dbctx.Context) (int64, error) {
	return countRows(dbc, r.db, &types.CharacterStarship{})
}

func (r *linkRepo) CountFilmStarships(dbc dbctx.Context) (int64, error) {
	return countRows(dbc, r.db, &types.FilmStarship{})
}

func countRows(dbc dbctx.Context, db *gorm.DB, model any) (int64, error) {
	var n int64
	err := dbc.DB(db).Model(model).Count(&n).Error
	return n, err
}

// linkMissing links every left id to every right id. The current edge set is read once
// and only absent pairs are inserted; ON CONFLICT DO NOTHING covers concurrent writers.
// It returns the number of edges actually created.
func linkMissing[T any](dbc dbctx.Context, db *gorm.DB, leftCol, rightCol string, left, right []uint, mk func(a, b uint) T) (int, error) {
	if len(left) == 0 || len(right) == 0 {
		return 0, nil
	}
	t := dbc.DB(db)

	var rows []struct {
		A uint
		B uint
	}
	if err := t.Model(new(T)).
		Select(leftCol + " AS a, " + rightCol + " AS b").
		Scan(&rows).Error; err != nil {
		return 0, err
	}
	existing := make(map[pair]struct{}, len(rows))
	for _, e := range rows {
		existing[pair{e.A, e.B}] = struct{}{}
	}

	missing := make([]T, 0)
	for _, a := range left {
		for _, b := range right {
			if _, ok := existing[pair{a, b}]; ok {
				continue
			}
			missing = append(missing, mk(a, b))
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}
	res := t.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(missing, insertBatch*2)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
