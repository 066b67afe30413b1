package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/swapi-mirror/internal/clients/swapi"
	"github.com/yungbote/swapi-mirror/internal/data/dberr"
	"github.com/yungbote/swapi-mirror/internal/data/repos"
	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/domain/catalog"
	"github.com/yungbote/swapi-mirror/internal/domain/jobs"
	"github.com/yungbote/swapi-mirror/internal/observability"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/swapi-mirror/internal/pkg/errors"
	"github.com/yungbote/swapi-mirror/internal/platform/ctxutil"
	"github.com/yungbote/swapi-mirror/internal/platform/lock"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

const (
	syncLockKey       = "swapi-sync"
	syncAllMessage    = "All SWAPI data synced successfully"
	syncNothingFormat = "No %s found to sync"
	syncDoneFormat    = "%d %s synced successfully"
)

type KindResult struct {
	Kind    types.Kind `json:"kind"`
	Fetched int        `json:"fetched"`
	Added   int        `json:"added"`
	Message string     `json:"message"`
}

type SyncResult struct {
	RunID      uuid.UUID  `json:"run_id"`
	Characters KindResult `json:"characters"`
	Films      KindResult `json:"films"`
	Starships  KindResult `json:"starships"`
	Links      LinkCounts `json:"links"`
	Message    string     `json:"message"`
}

type SyncOptions struct {
	// FailFast makes an exhausted fetch abort the sync. When false the kind is
	// treated as empty and the sync continues.
	FailFast bool
}

// SyncService mirrors the remote catalog into the store. Invocations are serialised
// by the sync lock; each one is recorded as a sync run.
type SyncService interface {
	SyncAll(ctx context.Context) (*SyncResult, error)
	SyncCharacters(ctx context.Context) (*KindResult, error)
	SyncFilms(ctx context.Context) (*KindResult, error)
	SyncStarships(ctx context.Context) (*KindResult, error)
	SyncKind(ctx context.Context, kind types.Kind) (*KindResult, error)

	// StartSyncAll records a run and executes SyncAll in the background, bound to
	// the service lifetime rather than ctx.
	StartSyncAll(ctx context.Context) (uuid.UUID, error)
	GetRun(ctx context.Context, id uuid.UUID) (*types.SyncRun, error)
	ListRuns(ctx context.Context, limit int) ([]*types.SyncRun, error)
	// Wait blocks until background runs have returned.
	Wait()
}

type syncService struct {
	log     *logger.Logger
	baseCtx context.Context
	client  swapi.Client
	store   CatalogStore
	filler  RelationshipFiller
	runs    repos.SyncRunRepo
	locker  lock.Locker
	opts    SyncOptions
	wg      sync.WaitGroup
}

func NewSyncService(
	baseCtx context.Context,
	log *logger.Logger,
	client swapi.Client,
	store CatalogStore,
	filler RelationshipFiller,
	runs repos.SyncRunRepo,
	locker lock.Locker,
	opts SyncOptions,
) SyncService {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &syncService{
		log:     log.With("service", "SyncService"),
		baseCtx: baseCtx,
		client:  client,
		store:   store,
		filler:  filler,
		runs:    runs,
		locker:  locker,
		opts:    opts,
	}
}

func (s *syncService) SyncCharacters(ctx context.Context) (*KindResult, error) {
	return s.SyncKind(ctx, catalog.KindCharacters)
}

func (s *syncService) SyncFilms(ctx context.Context) (*KindResult, error) {
	return s.SyncKind(ctx, catalog.KindFilms)
}

func (s *syncService) SyncStarships(ctx context.Context) (*KindResult, error) {
	return s.SyncKind(ctx, catalog.KindStarships)
}

func (s *syncService) SyncKind(ctx context.Context, kind types.Kind) (*KindResult, error) {
	if kind.Endpoint() == "" {
		return nil, fmt.Errorf("unknown kind %q: %w", kind, pkgerrors.ErrInvalidArgument)
	}
	tr := s.begin(ctx, string(kind), false)
	release, err := s.locker.Acquire(ctx, syncLockKey)
	if err != nil {
		tr.finish(ctx, nil, err)
		return nil, err
	}
	defer release()

	ctx, span := observability.Tracer().Start(ctx, "sync."+string(kind),
		trace.WithAttributes(attribute.String("sync.run_id", tr.id.String())))
	defer span.End()

	res, err := s.syncKind(ctx, tr, kind)
	tr.finish(ctx, res, err)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return &res, nil
}

func (s *syncService) SyncAll(ctx context.Context) (*SyncResult, error) {
	tr := s.begin(ctx, jobs.ScopeAll, false)
	return s.runAll(ctx, tr)
}

func (s *syncService) StartSyncAll(ctx context.Context) (uuid.UUID, error) {
	tr := s.begin(ctx, jobs.ScopeAll, true)
	if tr.id == uuid.Nil {
		return uuid.Nil, errors.New("could not record sync run")
	}
	bg := ctxutil.Detach(ctx, s.baseCtx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.runAll(bg, tr); err != nil {
			s.log.Error("Background sync failed", append(ctxutil.LogFields(bg), "run_id", tr.id, "error", err)...)
		}
	}()
	return tr.id, nil
}

func (s *syncService) Wait() { s.wg.Wait() }

func (s *syncService) runAll(ctx context.Context, tr *runTracker) (*SyncResult, error) {
	release, err := s.locker.Acquire(ctx, syncLockKey)
	if err != nil {
		tr.finish(ctx, nil, err)
		return nil, err
	}
	defer release()

	ctx, span := observability.Tracer().Start(ctx, "sync.all",
		trace.WithAttributes(attribute.String("sync.run_id", tr.id.String())))
	defer span.End()

	out := &SyncResult{RunID: tr.id}
	fail := func(err error) (*SyncResult, error) {
		recordSpanError(span, err)
		tr.finish(ctx, out, err)
		return nil, err
	}

	if out.Characters, err = s.syncKind(ctx, tr, catalog.KindCharacters); err != nil {
		return fail(err)
	}
	if out.Films, err = s.syncKind(ctx, tr, catalog.KindFilms); err != nil {
		return fail(err)
	}
	if out.Starships, err = s.syncKind(ctx, tr, catalog.KindStarships); err != nil {
		return fail(err)
	}

	tr.transition(ctx, jobs.SyncFillingRelationships)
	fillCtx, fillSpan := observability.Tracer().Start(ctx, "sync.fill")
	out.Links, err = s.filler.Fill(fillCtx)
	if err != nil {
		recordSpanError(fillSpan, err)
	}
	fillSpan.End()
	if err != nil {
		return fail(err)
	}

	out.Message = syncAllMessage
	tr.finish(ctx, out, nil)
	return out, nil
}

func (s *syncService) syncKind(ctx context.Context, tr *runTracker, kind types.Kind) (KindResult, error) {
	res := KindResult{Kind: kind}

	tr.transition(ctx, fetchingState(kind))
	fetchCtx, fetchSpan := observability.Tracer().Start(ctx, "sync.fetch",
		trace.WithAttributes(attribute.String("swapi.kind", string(kind))))
	records, err := s.client.Fetch(fetchCtx, kind.Endpoint(), swapi.WithFailFast(s.opts.FailFast))
	if err != nil {
		recordSpanError(fetchSpan, err)
	}
	fetchSpan.End()
	if err != nil {
		return res, err
	}
	res.Fetched = len(records)

	tr.transition(ctx, storingState(kind))
	if len(records) == 0 {
		res.Message = fmt.Sprintf(syncNothingFormat, kind)
		return res, nil
	}
	storeCtx, storeSpan := observability.Tracer().Start(ctx, "sync.store",
		trace.WithAttributes(attribute.String("swapi.kind", string(kind)), attribute.Int("swapi.records", len(records))))
	added, err := s.store.Store(storeCtx, kind, records)
	if err != nil {
		recordSpanError(storeSpan, err)
	}
	storeSpan.End()
	if err != nil {
		return res, err
	}
	res.Added = added
	res.Message = fmt.Sprintf(syncDoneFormat, len(records), kind)
	return res, nil
}

func (s *syncService) GetRun(ctx context.Context, id uuid.UUID) (*types.SyncRun, error) {
	run, err := s.runs.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, dberr.Wrap(s.log, err, "loading sync run")
	}
	if run == nil {
		return nil, fmt.Errorf("sync run %s: %w", id, pkgerrors.ErrNotFound)
	}
	return run, nil
}

func (s *syncService) ListRuns(ctx context.Context, limit int) ([]*types.SyncRun, error) {
	runs, err := s.runs.ListRecent(dbctx.New(ctx), limit)
	if err != nil {
		return nil, dberr.Wrap(s.log, err, "listing sync runs")
	}
	return runs, nil
}

func fetchingState(kind types.Kind) jobs.SyncState {
	switch kind {
	case catalog.KindCharacters:
		return jobs.SyncFetchingCharacters
	case catalog.KindFilms:
		return jobs.SyncFetchingFilms
	}
	return jobs.SyncFetchingStarships
}

func storingState(kind types.Kind) jobs.SyncState {
	switch kind {
	case catalog.KindCharacters:
		return jobs.SyncStoringCharacters
	case catalog.KindFilms:
		return jobs.SyncStoringFilms
	}
	return jobs.SyncStoringStarships
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
