package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/data/dberr"
	"github.com/yungbote/swapi-mirror/internal/data/repos"
	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/domain/catalog"
	"github.com/yungbote/swapi-mirror/internal/observability"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

// CatalogStore persists fetched records, one transaction per call. Records whose
// natural key is already stored are skipped.
type CatalogStore interface {
	StoreCharacters(ctx context.Context, records []types.Record) (int, error)
	StoreFilms(ctx context.Context, records []types.Record) (int, error)
	StoreStarships(ctx context.Context, records []types.Record) (int, error)
	Store(ctx context.Context, kind types.Kind, records []types.Record) (int, error)
}

type catalogStore struct {
	db        *gorm.DB
	log       *logger.Logger
	chars     repos.CharacterRepo
	films     repos.FilmRepo
	starships repos.StarshipRepo
}

func NewCatalogStore(db *gorm.DB, baseLog *logger.Logger, chars repos.CharacterRepo, films repos.FilmRepo, starships repos.StarshipRepo) CatalogStore {
	return &catalogStore{
		db:        db,
		log:       baseLog.With("service", "CatalogStore"),
		chars:     chars,
		films:     films,
		starships: starships,
	}
}

func (s *catalogStore) Store(ctx context.Context, kind types.Kind, records []types.Record) (int, error) {
	switch kind {
	case catalog.KindCharacters:
		return s.StoreCharacters(ctx, records)
	case catalog.KindFilms:
		return s.StoreFilms(ctx, records)
	case catalog.KindStarships:
		return s.StoreStarships(ctx, records)
	}
	return 0, fmt.Errorf("unknown kind %q", kind)
}

func (s *catalogStore) StoreCharacters(ctx context.Context, records []types.Record) (int, error) {
	return s.store(ctx, catalog.KindCharacters, len(records), func(dbc dbctx.Context) (int, error) {
		rows := make([]*types.Character, 0, len(records))
		for _, r := range records {
			c, err := catalog.CharacterFromRecord(r)
			if err != nil {
				return 0, err
			}
			rows = append(rows, &c)
		}
		return s.chars.Upsert(dbc, rows)
	})
}

func (s *catalogStore) StoreFilms(ctx context.Context, records []types.Record) (int, error) {
	return s.store(ctx, catalog.KindFilms, len(records), func(dbc dbctx.Context) (int, error) {
		rows := make([]*types.Film, 0, len(records))
		for _, r := range records {
			f, err := catalog.FilmFromRecord(r)
			if err != nil {
				return 0, err
			}
			rows = append(rows, &f)
		}
		return s.films.Upsert(dbc, rows)
	})
}

func (s *catalogStore) StoreStarships(ctx context.Context, records []types.Record) (int, error) {
	return s.store(ctx, catalog.KindStarships, len(records), func(dbc dbctx.Context) (int, error) {
		rows := make([]*types.Starship, 0, len(records))
		for _, r := range records {
			st, err := catalog.StarshipFromRecord(r)
			if err != nil {
				return 0, err
			}
			rows = append(rows, &st)
		}
		return s.starships.Upsert(dbc, rows)
	})
}

func (s *catalogStore) store(ctx context.Context, kind types.Kind, total int, upsert func(dbctx.Context) (int, error)) (int, error) {
	added := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := upsert(dbctx.Context{Ctx: ctx, Tx: tx})
		if err != nil {
			return err
		}
		added = n
		return nil
	})
	if err != nil {
		return 0, dberr.Handle(s.log, err, "storing "+string(kind))
	}
	s.log.Info(fmt.Sprintf("Stored %d/%d %s", added, total, kind.Model()))
	observability.Current().AddRecordsStored(string(kind), added)
	return added, nil
}
