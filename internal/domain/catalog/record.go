package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingKey marks a record without its natural key. The key column is NOT NULL,
// so such a record fails the whole batch it belongs to.
var ErrMissingKey = errors.New("record has no natural key")

// Record is one upstream object as decoded from the remote source.
type Record map[string]any

// String returns the field as text. Missing and null fields are "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Key returns the natural key field. Missing and null values are rejected; an empty
// string is a present key.
func (r Record) Key(field string) (string, error) {
	if v, ok := r[field]; !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, field)
	}
	return r.String(field), nil
}

type Kind string

const (
	KindCharacters Kind = "characters"
	KindFilms      Kind = "films"
	KindStarships  Kind = "starships"
)

// Endpoint is the remote collection a kind is fetched from.
func (k Kind) Endpoint() string {
	switch k {
	case KindCharacters:
		return "people"
	case KindFilms:
		return "films"
	case KindStarships:
		return "starships"
	}
	return ""
}

// Model is the display name used in store log lines.
func (k Kind) Model() string {
	switch k {
	case KindCharacters:
		return "Character"
	case KindFilms:
		return "Film"
	case KindStarships:
		return "Starship"
	}
	return ""
}

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCharacters, "people":
		return KindCharacters, nil
	case KindFilms:
		return KindFilms, nil
	case KindStarships:
		return KindStarships, nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

func CharacterFromRecord(r Record) (Character, error) {
	name, err := r.Key("name")
	if err != nil {
		return Character{}, err
	}
	return Character{
		Name:      name,
		Gender:    r.String("gender"),
		BirthYear: r.String("birth_year"),
	}, nil
}

func FilmFromRecord(r Record) (Film, error) {
	title, err := r.Key("title")
	if err != nil {
		return Film{}, err
	}
	return Film{
		Title:       title,
		Director:    r.String("director"),
		ReleaseDate: r.String("release_date"),
	}, nil
}

func StarshipFromRecord(r Record) (Starship, error) {
	name, err := r.Key("name")
	if err != nil {
		return Starship{}, err
	}
	return Starship{
		Name:         name,
		Model:        r.String("model"),
		Manufacturer: r.String("manufacturer"),
	}, nil
}

func (c Character) Key() string { return c.Name }
func (f Film) Key() string      { return f.Title }
func (s Starship) Key() string  { return s.Name }
