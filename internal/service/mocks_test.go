package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/goliatone/go-search-cache/model"
	"github.com/goliatone/go-search-cache/storage"
)

type mockFilmStorage struct {
	mock.Mock
}

func (m *mockFilmStorage) GetItem(ctx context.Context, id string) (*model.Film, error) {
	args := m.Called(ctx, id)
	film, _ := args.Get(0).(*model.Film)
	return film, args.Error(1)
}

func (m *mockFilmStorage) GetItems(ctx context.Context, q storage.Query) ([]model.FilmShort, error) {
	args := m.Called(ctx, q)
	films, _ := args.Get(0).([]model.FilmShort)
	return films, args.Error(1)
}

func (m *mockFilmStorage) ListFilms(ctx context.Context, opts storage.ListOptions) ([]model.FilmShort, error) {
	args := m.Called(ctx, opts)
	films, _ := args.Get(0).([]model.FilmShort)
	return films, args.Error(1)
}

func (m *mockFilmStorage) FilmsByGenre(ctx context.Context, genreID string, opts storage.ListOptions) ([]model.FilmShort, error) {
	args := m.Called(ctx, genreID, opts)
	films, _ := args.Get(0).([]model.FilmShort)
	return films, args.Error(1)
}

func (m *mockFilmStorage) SimilarFilms(ctx context.Context, filmID string, opts storage.ListOptions) ([]model.FilmShort, error) {
	args := m.Called(ctx, filmID, opts)
	films, _ := args.Get(0).([]model.FilmShort)
	return films, args.Error(1)
}

func (m *mockFilmStorage) FilmsByQuery(ctx context.Context, text string, opts storage.ListOptions) ([]model.FilmShort, error) {
	args := m.Called(ctx, text, opts)
	films, _ := args.Get(0).([]model.FilmShort)
	return films, args.Error(1)
}

func (m *mockFilmStorage) FilmsByPerson(ctx context.Context, personID string, opts storage.ListOptions) ([]model.FilmShort, error) {
	args := m.Called(ctx, personID, opts)
	films, _ := args.Get(0).([]model.FilmShort)
	return films, args.Error(1)
}

func (m *mockFilmStorage) FilmsWithRolesByPerson(ctx context.Context, personID string, opts storage.ListOptions) ([]model.FilmRoles, error) {
	args := m.Called(ctx, personID, opts)
	films, _ := args.Get(0).([]model.FilmRoles)
	return films, args.Error(1)
}

type mockGenreStorage struct {
	mock.Mock
}

func (m *mockGenreStorage) GetItem(ctx context.Context, id string) (*model.Genre, error) {
	args := m.Called(ctx, id)
	genre, _ := args.Get(0).(*model.Genre)
	return genre, args.Error(1)
}

func (m *mockGenreStorage) GetItems(ctx context.Context, q storage.Query) ([]model.GenreShort, error) {
	args := m.Called(ctx, q)
	genres, _ := args.Get(0).([]model.GenreShort)
	return genres, args.Error(1)
}

func (m *mockGenreStorage) Popularity(ctx context.Context, genreID string) (*float64, error) {
	args := m.Called(ctx, genreID)
	p, _ := args.Get(0).(*float64)
	return p, args.Error(1)
}

type mockPersonStorage struct {
	mock.Mock
}

func (m *mockPersonStorage) GetItem(ctx context.Context, id string) (*model.PersonShort, error) {
	args := m.Called(ctx, id)
	person, _ := args.Get(0).(*model.PersonShort)
	return person, args.Error(1)
}

func (m *mockPersonStorage) GetItems(ctx context.Context, q storage.Query) ([]model.PersonShort, error) {
	args := m.Called(ctx, q)
	persons, _ := args.Get(0).([]model.PersonShort)
	return persons, args.Error(1)
}
