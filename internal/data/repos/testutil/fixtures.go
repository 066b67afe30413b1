package testutil

import (
	"context"
	"strconv"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/swapi-mirror/internal/domain"
)

func SeedCharacter(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Character {
	tb.Helper()
	c := &types.Character{Name: name, Gender: "n/a", BirthYear: "unknown"}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed character: %v", err)
	}
	return c
}

func SeedFilm(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Film {
	tb.Helper()
	f := &types.Film{Title: title, Director: "George Lucas", ReleaseDate: "1977-05-25"}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed film: %v", err)
	}
	return f
}

func SeedStarship(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Starship {
	tb.Helper()
	s := &types.Starship{Name: name, Model: name, Manufacturer: "unknown"}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed starship: %v", err)
	}
	return s
}

// SeedCatalog stores n rows of each kind named "<kind> <i>".
func SeedCatalog(tb testing.TB, ctx context.Context, tx *gorm.DB, characters, films, starships int) {
	tb.Helper()
	for i := 0; i < characters; i++ {
		SeedCharacter(tb, ctx, tx, "character "+strconv.Itoa(i))
	}
	for i := 0; i < films; i++ {
		SeedFilm(tb, ctx, tx, "film "+strconv.Itoa(i))
	}
	for i := 0; i < starships; i++ {
		SeedStarship(tb, ctx, tx, "starship "+strconv.Itoa(i))
	}
}
