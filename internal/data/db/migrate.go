package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/swapi-mirror/internal/domain"
)

// Migrate creates every table the service needs. It is additive and safe to re-run.
func Migrate(gdb *gorm.DB) error {
	joins := []struct {
		model any
		field string
		join  any
	}{
		{&types.Character{}, "Films", &types.CharacterFilm{}},
		{&types.Character{}, "Starships", &types.CharacterStarship{}},
		{&types.Film{}, "Characters", &types.CharacterFilm{}},
		{&types.Film{}, "Starships", &types.FilmStarship{}},
		{&types.Starship{}, "Characters", &types.CharacterStarship{}},
		{&types.Starship{}, "Films", &types.FilmStarship{}},
	}
	for _, j := range joins {
		if err := gdb.SetupJoinTable(j.model, j.field, j.join); err != nil {
			return fmt.Errorf("setup join table %T.%s: %w", j.model, j.field, err)
		}
	}
	return gdb.AutoMigrate(
		// =========================
		// Catalog
		// =========================
		&types.Character{},
		&types.Film{},
		&types.Starship{},
		&types.CharacterFilm{},
		&types.CharacterStarship{},
		&types.FilmStarship{},

		// =========================
		// Sync audit
		// =========================
		&types.SyncRun{},
	)
}

func (s *Store) Migrate() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := Migrate(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	s.log.Info("Tables created or already exist")
	return nil
}
