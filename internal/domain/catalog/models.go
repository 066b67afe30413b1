package catalog

import "time"

type Character struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"column:name;size:255;not null;uniqueIndex:idx_character_name" json:"name"`
	Gender    string     `gorm:"column:gender;size:64" json:"gender"`
	BirthYear string     `gorm:"column:birth_year;size:64" json:"birth_year"`
	Films     []Film     `gorm:"many2many:character_film;joinForeignKey:CharacterID;joinReferences:FilmID" json:"-"`
	Starships []Starship `gorm:"many2many:character_starship;joinForeignKey:CharacterID;joinReferences:StarshipID" json:"-"`
	CreatedAt time.Time  `json:"-"`
}

func (Character) TableName() string { return "character" }

type Film struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string      `gorm:"column:title;size:255;not null;uniqueIndex:idx_film_title" json:"title"`
	Director    string      `gorm:"column:director;size:255" json:"director"`
	ReleaseDate string      `gorm:"column:release_date;size:32" json:"release_date"`
	Characters  []Character `gorm:"many2many:character_film;joinForeignKey:FilmID;joinReferences:CharacterID" json:"-"`
	Starships   []Starship  `gorm:"many2many:film_starship;joinForeignKey:FilmID;joinReferences:StarshipID" json:"-"`
	CreatedAt   time.Time   `json:"-"`
}

func (Film) TableName() string { return "film" }

type Starship struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string      `gorm:"column:name;size:255;not null;uniqueIndex:idx_starship_name" json:"name"`
	Model        string      `gorm:"column:model;size:255" json:"model"`
	Manufacturer string      `gorm:"column:manufacturer;size:255" json:"manufacturer"`
	Characters   []Character `gorm:"many2many:character_starship;joinForeignKey:StarshipID;joinReferences:CharacterID" json:"-"`
	Films        []Film      `gorm:"many2many:film_starship;joinForeignKey:StarshipID;joinReferences:FilmID" json:"-"`
	CreatedAt    time.Time   `json:"-"`
}

func (Starship) TableName() string { return "starship" }

// Join rows. Association tables carry no attributes beyond the pair.

type CharacterFilm struct {
	CharacterID uint `gorm:"primaryKey;autoIncrement:false" json:"character_id"`
	FilmID      uint `gorm:"primaryKey;autoIncrement:false" json:"film_id"`
}

func (CharacterFilm) TableName() string { return "character_film" }

type CharacterStarship struct {
	CharacterID uint `gorm:"primaryKey;autoIncrement:false" json:"character_id"`
	StarshipID  uint `gorm:"primaryKey;autoIncrement:false" json:"starship_id"`
}

func (CharacterStarship) TableName() string { return "character_starship" }

type FilmStarship struct {
	FilmID     uint `gorm:"primaryKey;autoIncrement:false" json:"film_id"`
	StarshipID uint `gorm:"primaryKey;autoIncrement:false" json:"starship_id"`
}

func (FilmStarship) TableName() string { return "film_starship" }
