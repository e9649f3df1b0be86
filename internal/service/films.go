package service

import (
	"context"

	"github.com/goliatone/go-search-cache/model"
	"github.com/goliatone/go-search-cache/storage"
)

type FilmService struct {
	films storage.FilmStorage
}

func NewFilmService(films storage.FilmStorage) *FilmService {
	return &FilmService{films: films}
}

// GetByID returns the film or nil when it does not exist.
func (s *FilmService) GetByID(ctx context.Context, id string) (*model.Film, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.films.GetItem(ctx, id)
}

// List returns one page of films. sort uses the "+field" / "-field"
// notation; similarTo wins over genreID when both are given.
func (s *FilmService) List(ctx context.Context, sort string, page *storage.Page, genreID, similarTo string) ([]model.FilmShort, error) {
	if err := validateOptionalID(genreID); err != nil {
		return nil, err
	}
	if err := validateOptionalID(similarTo); err != nil {
		return nil, err
	}

	q := storage.Query{
		Filters: storage.Filters{},
		ListOptions: storage.ListOptions{
			Sort: storage.ParseSort(sort),
			Page: page,
		},
	}
	if genreID != "" {
		q.Filters[storage.FilterGenreID] = genreID
	}
	if similarTo != "" {
		q.Filters[storage.FilterSimilarTo] = similarTo
	}
	return s.films.GetItems(ctx, q)
}

// Search runs a full-text match on film titles.
func (s *FilmService) Search(ctx context.Context, query string, page *storage.Page) ([]model.FilmShort, error) {
	return s.films.GetItems(ctx, storage.Query{
		Filters:     storage.Filters{storage.FilterQuery: query},
		ListOptions: storage.ListOptions{Page: page},
	})
}

func (s *FilmService) ByPerson(ctx context.Context, personID string, page *storage.Page) ([]model.FilmShort, error) {
	if err := validateID(personID); err != nil {
		return nil, err
	}
	return s.films.FilmsByPerson(ctx, personID, storage.ListOptions{Page: page})
}

func (s *FilmService) WithRolesByPerson(ctx context.Context, personID string, page *storage.Page) ([]model.FilmRoles, error) {
	if err := validateID(personID); err != nil {
		return nil, err
	}
	return s.films.FilmsWithRolesByPerson(ctx, personID, storage.ListOptions{Page: page})
}
