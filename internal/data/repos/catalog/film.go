package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type FilmRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Film) (int, error)
	List(dbc dbctx.Context, skip, limit int) ([]*types.Film, error)
	SearchByTitle(dbc dbctx.Context, term string, skip, limit int) ([]*types.Film, error)
	IDs(dbc dbctx.Context) ([]uint, error)
	Count(dbc dbctx.Context) (int64, error)
}

type filmRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFilmRepo(db *gorm.DB, baseLog *logger.Logger) FilmRepo {
	return &filmRepo{
		db:  db,
		log: baseLog.With("repo", "FilmRepo"),
	}
}

func (r *filmRepo) Upsert(dbc dbctx.Context, rows []*types.Film) (int, error) {
	return upsertByKey(dbc, r.db, "title", rows, (*types.Film).Key)
}

func (r *filmRepo) List(dbc dbctx.Context, skip, limit int) ([]*types.Film, error) {
	var out []*types.Film
	q := dbc.DB(r.db).
		Preload("Characters", byID).
		Preload("Starships", byID).
		Order("id ASC")
	if err := page(q, skip, limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *filmRepo) SearchByTitle(dbc dbctx.Context, term string, skip, limit int) ([]*types.Film, error) {
	var out []*types.Film
	q := dbc.DB(r.db).
		Preload("Characters", byID).
		Preload("Starships", byID).
		Where("LOWER(title) LIKE LOWER(?) ESCAPE '!'", likePattern(term)).
		Order("id ASC")
	if err := page(q, skip, limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *filmRepo) IDs(dbc dbctx.Context) ([]uint, error) {
	return pluckIDs(dbc, r.db, &types.Film{})
}

func (r *filmRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Film{}).Count(&n).Error
	return n, err
}
