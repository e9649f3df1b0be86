// Package model holds the film, genre and person records served by the
// storages. They are plain values decoded from search index documents.
package model

import "time"

// Role names a person's participation in a film.
type Role string

const (
	RoleActor    Role = "actor"
	RoleWriter   Role = "writer"
	RoleDirector Role = "director"
)

type FilmShort struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	IMDBRating float64 `json:"imdb_rating"`
}

type Film struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	IMDBRating   float64       `json:"imdb_rating"`
	Description  string        `json:"description"`
	CreationDate *time.Time    `json:"creation_date,omitempty"`
	Genres       []GenreShort  `json:"genres"`
	Actors       []PersonShort `json:"actors"`
	Writers      []PersonShort `json:"writers"`
	Directors    []PersonShort `json:"directors"`
}

// Short returns the listing form of the film.
func (f Film) Short() FilmShort {
	return FilmShort{ID: f.ID, Title: f.Title, IMDBRating: f.IMDBRating}
}

// FilmRoles is a film together with the roles one person had in it.
type FilmRoles struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	IMDBRating float64 `json:"imdb_rating"`
	Roles      []Role  `json:"roles"`
}

type GenreShort struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Genre is the detail form. Popularity is the average rating of the
// genre's rated films and is nil when none is rated.
type Genre struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Popularity  *float64 `json:"popularity"`
}

type PersonShort struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// Person is the detail form: every role the person had across films, and
// the films themselves.
type Person struct {
	ID       string      `json:"id"`
	FullName string      `json:"full_name"`
	Roles    []Role      `json:"roles"`
	Films    []FilmRoles `json:"films"`
}
