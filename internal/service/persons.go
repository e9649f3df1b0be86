package service

import (
	"context"

	"github.com/goliatone/go-search-cache/model"
	"github.com/goliatone/go-search-cache/pkg/log"
	"github.com/goliatone/go-search-cache/storage"
)

type PersonService struct {
	persons storage.PersonStorage
	films   storage.FilmStorage
}

func NewPersonService(persons storage.PersonStorage, films storage.FilmStorage) *PersonService {
	return &PersonService{persons: persons, films: films}
}

// GetByID returns the person with every film they took part in and the
// union of their roles. A missing person yields nil.
func (s *PersonService) GetByID(ctx context.Context, id string) (*model.Person, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	short, err := s.persons.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if short == nil {
		l := log.Ctx(ctx)
		l.Debug().Str(log.FieldDocumentID, id).Msg("person not found")
		return nil, nil
	}

	films, err := s.films.FilmsWithRolesByPerson(ctx, id, storage.ListOptions{})
	if err != nil {
		return nil, err
	}

	return &model.Person{
		ID:       short.ID,
		FullName: short.FullName,
		Roles:    rolesUnion(films),
		Films:    films,
	}, nil
}

// Search matches persons by full name.
func (s *PersonService) Search(ctx context.Context, name string, page *storage.Page) ([]model.PersonShort, error) {
	return s.persons.GetItems(ctx, storage.Query{
		Filters:     storage.Filters{storage.FilterName: name},
		ListOptions: storage.ListOptions{Page: page},
	})
}

// Films lists the person's films. A missing person yields nil, which
// callers can tell apart from an empty filmography.
func (s *PersonService) Films(ctx context.Context, personID string, page *storage.Page) ([]model.FilmShort, error) {
	if err := validateID(personID); err != nil {
		return nil, err
	}

	person, err := s.persons.GetItem(ctx, personID)
	if err != nil || person == nil {
		return nil, err
	}

	films, err := s.films.FilmsByPerson(ctx, personID, storage.ListOptions{Page: page})
	if err != nil {
		return nil, err
	}
	if films == nil {
		films = []model.FilmShort{}
	}
	return films, nil
}
