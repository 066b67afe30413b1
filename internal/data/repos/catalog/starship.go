package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type StarshipRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Starship) (int, error)
	List(dbc dbctx.Context, skip, limit int) ([]*types.Starship, error)
	SearchByName(dbc dbctx.Context, term string, skip, limit int) ([]*types.Starship, error)
	IDs(dbc dbctx.Context) ([]uint, error)
	Count(dbc dbctx.Context) (int64, error)
}

type starshipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStarshipRepo(db *gorm.DB, baseLog *logger.Logger) StarshipRepo {
	return &starshipRepo{
		db:  db,
		log: baseLog.With("repo", "StarshipRepo"),
	}
}

func (r *starshipRepo) Upsert(dbc dbctx.Context, rows []*types.Starship) (int, error) {
	return upsertByKey(dbc, r.db, "name", rows, (*types.Starship).Key)
}

func (r *starshipRepo) List(dbc dbctx.Context, skip, limit int) ([]*types.Starship, error) {
	var out []*types.Starship
	q := dbc.DB(r.db).
		Preload("Characters", byID).
		Preload("Films", byID).
		Order("id ASC")
	if err := page(q, skip, limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *starshipRepo) SearchByName(dbc dbctx.Context, term string, skip, limit int) ([]*types.Starship, error) {
	var out []*types.Starship
	q := dbc.DB(r.db).
		Preload("Characters", byID).
		Preload("Films", byID).
		Where("LOWER(name) LIKE LOWER(?) ESCAPE '!'", likePattern(term)).
		Order("id ASC")
	if err := page(q, skip, limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *starshipRepo) IDs(dbc dbctx.Context) ([]uint, error) {
	return pluckIDs(dbc, r.db, &types.Starship{})
}

func (r *starshipRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Starship{}).Count(&n).Error
	return n, err
}
