package services

import (
	"context"
	"time"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/swapi-mirror/internal/data/repos"
	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/domain/jobs"
	"github.com/yungbote/swapi-mirror/internal/observability"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/pkg/pointers"
	"github.com/yungbote/swapi-mirror/internal/platform/ctxutil"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

// runTracker follows one invocation through the sync state machine and mirrors it
// into its sync_run row. Persistence is best effort: a failed write is logged and
// never fails the sync.
type runTracker struct {
	id      uuid.UUID
	scope   string
	state   jobs.SyncState
	started time.Time
	runs    repos.SyncRunRepo
	log     *logger.Logger
}

func (s *syncService) begin(ctx context.Context, scope string, async bool) *runTracker {
	tr := &runTracker{
		scope:   scope,
		state:   jobs.SyncIdle,
		started: time.Now(),
		runs:    s.runs,
		log:     s.log.With(append(ctxutil.LogFields(ctx), "scope", scope)...),
	}
	if s.runs == nil {
		tr.id = uuid.New()
		return tr
	}
	run, err := s.runs.Create(dbctx.New(ctx), &types.SyncRun{
		ID:        uuid.New(),
		Scope:     scope,
		State:     string(jobs.SyncIdle),
		Async:     async,
		StartedAt: tr.started.UTC(),
	})
	if err != nil {
		tr.log.Warn("Could not record sync run", "error", err)
		if !async {
			tr.id = uuid.New()
		}
		return tr
	}
	tr.id = run.ID
	tr.log = tr.log.With("run_id", run.ID)
	return tr
}

func (t *runTracker) transition(ctx context.Context, next jobs.SyncState) {
	if t.state.Terminal() {
		return
	}
	t.log.Debug("Sync state", "from", t.state, "to", next)
	t.state = next
	t.save(ctx, map[string]interface{}{"state": string(next)})
}

func (t *runTracker) finish(ctx context.Context, result any, err error) {
	if t.state.Terminal() {
		return
	}
	final := jobs.SyncDone
	updates := map[string]interface{}{}
	if err != nil {
		final = jobs.SyncFailed
		updates["error"] = truncateUTF8(err.Error(), maxRunErrorBytes)
		t.log.Error("Sync failed", "state", t.state, "error", err)
	} else {
		t.log.Info("Sync finished", "duration", time.Since(t.started).String())
	}
	if result != nil {
		if raw, mErr := json.Marshal(result); mErr == nil {
			updates["counts"] = datatypes.JSON(raw)
		}
	}
	t.state = final
	updates["state"] = string(final)
	updates["finished_at"] = pointers.Ptr(time.Now().UTC())
	// The caller's context may already be cancelled; the final state must still land.
	t.save(context.WithoutCancel(ctx), updates)
	observability.Current().ObserveSyncRun(t.scope, string(final), time.Since(t.started))
}

func (t *runTracker) save(ctx context.Context, updates map[string]interface{}) {
	if t.runs == nil || t.id == uuid.Nil {
		return
	}
	if err := t.runs.UpdateFields(dbctx.New(ctx), t.id, updates); err != nil {
		t.log.Warn("Could not update sync run", "error", err)
	}
}

const maxRunErrorBytes = 2000

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
