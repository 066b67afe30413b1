package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type CharacterRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Character) (int, error)
	List(dbc dbctx.Context, skip, limit int) ([]*types.Character, error)
	SearchByName(dbc dbctx.Context, term string, skip, limit int) ([]*types.Character, error)
	IDs(dbc dbctx.Context) ([]uint, error)
	Count(dbc dbctx.Context) (int64, error)
}

type characterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCharacterRepo(db *gorm.DB, baseLog *logger.Logger) CharacterRepo {
	return &characterRepo{
		db:  db,
		log: baseLog.With("repo", "CharacterRepo"),
	}
}

func (r *characterRepo) Upsert(dbc dbctx.Context, rows []*types.Character) (int, error) {
	return upsertByKey(dbc, r.db, "name", rows, (*types.Character).Key)
}

func (r *characterRepo) List(dbc dbctx.Context, skip, limit int) ([]*types.Character, error) {
	var out []*types.Character
	q := dbc.DB(r.db).
		Preload("Films", byID).
		Preload("Starships", byID).
		Order("id ASC")
	if err := page(q, skip, limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *characterRepo) SearchByName(dbc dbctx.Context, term string, skip, limit int) ([]*types.Character, error) {
	var out []*types.Character
	q := dbc.DB(r.db).
		Preload("Films", byID).
		Preload("Starships", byID).
		Where("LOWER(name) LIKE LOWER(?) ESCAPE '!'", likePattern(term)).
		Order("id ASC")
	if err := page(q, skip, limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *characterRepo) IDs(dbc dbctx.Context) ([]uint, error) {
	return pluckIDs(dbc, r.db, &types.Character{})
}

func (r *characterRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Character{}).Count(&n).Error
	return n, err
}
