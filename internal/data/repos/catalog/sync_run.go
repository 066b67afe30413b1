package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type SyncRunRepo interface {
	Create(dbc dbctx.Context, run *types.SyncRun) (*types.SyncRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SyncRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.SyncRun, error)
}

type syncRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncRunRepo(db *gorm.DB, baseLog *logger.Logger) SyncRunRepo {
	return &syncRunRepo{
		db:  db,
		log: baseLog.With("repo", "SyncRunRepo"),
	}
}

func (r *syncRunRepo) Create(dbc dbctx.Context, run *types.SyncRun) (*types.SyncRun, error) {
	if run == nil {
		return nil, errors.New("nil sync run")
	}
	if err := dbc.DB(r.db).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *syncRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.SyncRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// GetByID returns nil, nil when the run does not exist.
func (r *syncRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.SyncRun, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var run types.SyncRun
	err := dbc.DB(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *syncRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.SyncRun, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []*types.SyncRun
	if err := dbc.DB(r.db).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
