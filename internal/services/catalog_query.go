package services

import (
	"context"
	"strings"

	"github.com/yungbote/swapi-mirror/internal/data/dberr"
	"github.com/yungbote/swapi-mirror/internal/data/repos"
	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/pkg/dbctx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type FilmRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type NamedRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CharacterView struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Gender    string     `json:"gender"`
	BirthYear string     `json:"birth_year"`
	Films     []FilmRef  `json:"films"`
	Starships []NamedRef `json:"starships"`
}

type FilmView struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Director    string     `json:"director"`
	ReleaseDate string     `json:"release_date"`
	Characters  []NamedRef `json:"characters"`
	Starships   []NamedRef `json:"starships"`
}

type StarshipView struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Model        string     `json:"model"`
	Manufacturer string     `json:"manufacturer"`
	Characters   []NamedRef `json:"characters"`
	Films        []FilmRef  `json:"films"`
}

// CatalogQuery serves the read side: paginated lists and name/title search.
type CatalogQuery interface {
	ListCharacters(ctx context.Context, skip, limit int) ([]CharacterView, error)
	SearchCharacters(ctx context.Context, name string, skip, limit int) ([]CharacterView, error)
	ListFilms(ctx context.Context, skip, limit int) ([]FilmView, error)
	SearchFilms(ctx context.Context, title string, skip, limit int) ([]FilmView, error)
	ListStarships(ctx context.Context, skip, limit int) ([]StarshipView, error)
	SearchStarships(ctx context.Context, name string, skip, limit int) ([]StarshipView, error)
}

type catalogQuery struct {
	log        *logger.Logger
	chars      repos.CharacterRepo
	films      repos.FilmRepo
	starships  repos.StarshipRepo
	logFetched bool
}

func NewCatalogQuery(baseLog *logger.Logger, chars repos.CharacterRepo, films repos.FilmRepo, starships repos.StarshipRepo, logFetched bool) CatalogQuery {
	return &catalogQuery{
		log:        baseLog.With("service", "CatalogQuery"),
		chars:      chars,
		films:      films,
		starships:  starships,
		logFetched: logFetched,
	}
}

func (q *catalogQuery) ListCharacters(ctx context.Context, skip, limit int) ([]CharacterView, error) {
	rows, err := q.chars.List(dbctx.New(ctx), skip, limit)
	if err != nil {
		return nil, dberr.Wrap(q.log, err, "listing characters")
	}
	return q.characterViews("get_characters", rows), nil
}

func (q *catalogQuery) SearchCharacters(ctx context.Context, name string, skip, limit int) ([]CharacterView, error) {
	rows, err := q.chars.SearchByName(dbctx.New(ctx), name, skip, limit)
	if err != nil {
		return nil, dberr.Wrap(q.log, err, "searching characters")
	}
	return q.characterViews("search_characters", rows), nil
}

func (q *catalogQuery) ListFilms(ctx context.Context, skip, limit int) ([]FilmView, error) {
	rows, err := q.films.List(dbctx.New(ctx), skip, limit)
	if err != nil {
		return nil, dberr.Wrap(q.log, err, "listing films")
	}
	return q.filmViews("get_films", rows), nil
}

func (q *catalogQuery) SearchFilms(ctx context.Context, title string, skip, limit int) ([]FilmView, error) {
	rows, err := q.films.SearchByTitle(dbctx.New(ctx), title, skip, limit)
	if err != nil {
		return nil, dberr.Wrap(q.log, err, "searching films")
	}
	return q.filmViews("search_films", rows), nil
}

func (q *catalogQuery) ListStarships(ctx context.Context, skip, limit int) ([]StarshipView, error) {
	rows, err := q.starships.List(dbctx.New(ctx), skip, limit)
	if err != nil {
		return nil, dberr.Wrap(q.log, err, "listing starships")
	}
	return q.starshipViews("get_starships", rows), nil
}

func (q *catalogQuery) SearchStarships(ctx context.Context, name string, skip, limit int) ([]StarshipView, error) {
	rows, err := q.starships.SearchByName(dbctx.New(ctx), name, skip, limit)
	if err != nil {
		return nil, dberr.Wrap(q.log, err, "searching starships")
	}
	return q.starshipViews("search_starships", rows), nil
}

func (q *catalogQuery) fetched(route string, names []string) {
	if len(names) == 0 {
		q.log.Info(route + ": no data found")
		return
	}
	if q.logFetched {
		q.log.Info("Fetched: " + strings.Join(names, " | "))
	}
}

func (q *catalogQuery) characterViews(route string, rows []*types.Character) []CharacterView {
	out := make([]CharacterView, 0, len(rows))
	names := make([]string, 0, len(rows))
	for _, c := range rows {
		v := CharacterView{
			ID:        c.ID,
			Name:      c.Name,
			Gender:    c.Gender,
			BirthYear: c.BirthYear,
			Films:     make([]FilmRef, 0, len(c.Films)),
			Starships: make([]NamedRef, 0, len(c.Starships)),
		}
		for _, f := range c.Films {
			v.Films = append(v.Films, FilmRef{ID: f.ID, Title: f.Title})
		}
		for _, s := range c.Starships {
			v.Starships = append(v.Starships, NamedRef{ID: s.ID, Name: s.Name})
		}
		out = append(out, v)
		names = append(names, c.Name)
	}
	q.fetched(route, names)
	return out
}

func (q *catalogQuery) filmViews(route string, rows []*types.Film) []FilmView {
	out := make([]FilmView, 0, len(rows))
	names := make([]string, 0, len(rows))
	for _, f := range rows {
		v := FilmView{
			ID:          f.ID,
			Title:       f.Title,
			Director:    f.Director,
			ReleaseDate: f.ReleaseDate,
			Characters:  make([]NamedRef, 0, len(f.Characters)),
			Starships:   make([]NamedRef, 0, len(f.Starships)),
		}
		for _, c := range f.Characters {
			v.Characters = append(v.Characters, NamedRef{ID: c.ID, Name: c.Name})
		}
		for _, s := range f.Starships {
			v.Starships = append(v.Starships, NamedRef{ID: s.ID, Name: s.Name})
		}
		out = append(out, v)
		names = append(names, f.Title)
	}
	q.fetched(route, names)
	return out
}

func (q *catalogQuery) starshipViews(route string, rows []*types.Starship) []StarshipView {
	out := make([]StarshipView, 0, len(rows))
	names := make([]string, 0, len(rows))
	for _, s := range rows {
		v := StarshipView{
			ID:           s.ID,
			Name:         s.Name,
			Model:        s.Model,
			Manufacturer: s.Manufacturer,
			Characters:   make([]NamedRef, 0, len(s.Characters)),
			Films:        make([]FilmRef, 0, len(s.Films)),
		}
		for _, c := range s.Characters {
			v.Characters = append(v.Characters, NamedRef{ID: c.ID, Name: c.Name})
		}
		for _, f := range s.Films {
			v.Films = append(v.Films, FilmRef{ID: f.ID, Title: f.Title})
		}
		out = append(out, v)
		names = append(names, s.Name)
	}
	q.fetched(route, names)
	return out
}
