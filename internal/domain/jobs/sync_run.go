package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SyncState string

const (
	SyncIdle                 SyncState = "idle"
	SyncFetchingCharacters   SyncState = "fetching_characters"
	SyncStoringCharacters    SyncState = "storing_characters"
	SyncFetchingFilms        SyncState = "fetching_films"
	SyncStoringFilms         SyncState = "storing_films"
	SyncFetchingStarships    SyncState = "fetching_starships"
	SyncStoringStarships     SyncState = "storing_starships"
	SyncFillingRelationships SyncState = "filling_relationships"
	SyncDone                 SyncState = "done"
	SyncFailed               SyncState = "failed"
)

// Terminal reports whether no further transition can follow.
func (s SyncState) Terminal() bool { return s == SyncDone || s == SyncFailed }

const (
	ScopeAll        = "all"
	ScopeCharacters = "characters"
	ScopeFilms      = "films"
	ScopeStarships  = "starships"
)

// SyncRun records one orchestrator invocation and the last state it reached.
type SyncRun struct {
	ID         uuid.UUID      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Scope      string         `gorm:"column:scope;size:32;not null;index" json:"scope"`
	State      string         `gorm:"column:state;size:32;not null;index" json:"state"`
	Async      bool           `gorm:"column:async;not null;default:false" json:"async"`
	Counts     datatypes.JSON `gorm:"column:counts" json:"counts,omitempty"`
	Error      string         `gorm:"column:error;size:2048" json:"error,omitempty"`
	StartedAt  time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (SyncRun) TableName() string { return "sync_run" }

func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	if r.State == "" {
		r.State = string(SyncIdle)
	}
	return nil
}
