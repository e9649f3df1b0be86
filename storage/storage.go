// Package storage defines the lookup contracts services depend on, their
// search index implementations and their cached decorators.
//
// A GetItem on a missing id returns (nil, nil) and a listing that matches
// nothing returns an empty slice. Errors are reserved for malformed queries
// and unreachable backends.
package storage

import (
	"context"

	"github.com/goliatone/go-search-cache/model"
)

// FilmStorage looks up films.
type FilmStorage interface {
	GetItem(ctx context.Context, id string) (*model.Film, error)
	// GetItems dispatches on q.Filters, see DispatchFilms.
	GetItems(ctx context.Context, q Query) ([]model.FilmShort, error)
	ListFilms(ctx context.Context, opts ListOptions) ([]model.FilmShort, error)
	FilmsByGenre(ctx context.Context, genreID string, opts ListOptions) ([]model.FilmShort, error)
	// SimilarFilms returns films sharing a genre with filmID.
	SimilarFilms(ctx context.Context, filmID string, opts ListOptions) ([]model.FilmShort, error)
	FilmsByQuery(ctx context.Context, text string, opts ListOptions) ([]model.FilmShort, error)
	FilmsByPerson(ctx context.Context, personID string, opts ListOptions) ([]model.FilmShort, error)
	FilmsWithRolesByPerson(ctx context.Context, personID string, opts ListOptions) ([]model.FilmRoles, error)
}

// GenreStorage looks up genres. GetItems ignores filters.
type GenreStorage interface {
	// GetItem returns the genre without its popularity.
	GetItem(ctx context.Context, id string) (*model.Genre, error)
	GetItems(ctx context.Context, q Query) ([]model.GenreShort, error)
	// Popularity is the average rating of the genre's rated films, nil
	// when there are none.
	Popularity(ctx context.Context, genreID string) (*float64, error)
}

// PersonStorage looks up persons. GetItems matches FilterName, or
// FilterQuery when no name is given, against the full name.
type PersonStorage interface {
	GetItem(ctx context.Context, id string) (*model.PersonShort, error)
	GetItems(ctx context.Context, q Query) ([]model.PersonShort, error)
}

// DispatchFilms routes a filtered listing to the specialized lookup of s.
// Precedence is fixed: similar_to, then genre_id, then person_id, then
// query; other filters are ignored and no filter lists every film.
func DispatchFilms(ctx context.Context, s FilmStorage, q Query) ([]model.FilmShort, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if id, ok := q.Filters.Get(FilterSimilarTo); ok {
		return s.SimilarFilms(ctx, id, q.ListOptions)
	}
	if id, ok := q.Filters.Get(FilterGenreID); ok {
		return s.FilmsByGenre(ctx, id, q.ListOptions)
	}
	if id, ok := q.Filters.Get(FilterPersonID); ok {
		return s.FilmsByPerson(ctx, id, q.ListOptions)
	}
	if text, ok := q.Filters.Get(FilterQuery); ok {
		return s.FilmsByQuery(ctx, text, q.ListOptions)
	}
	return s.ListFilms(ctx, q.ListOptions)
}

// personName returns the name filter, falling back to the free-text query.
func personName(f Filters) (string, bool) {
	if name, ok := f.Get(FilterName); ok {
		return name, true
	}
	return f.Get(FilterQuery)
}
