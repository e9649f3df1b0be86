package storage

import (
	"context"

	"github.com/goliatone/go-search-cache/cache"
	"github.com/goliatone/go-search-cache/model"
)

// Cache identities. They are part of every stored key, so renaming one
// orphans the entries written under the old name.
const (
	identityFilmGetItem        = "films.get_item"
	identityFilmList           = "films.list"
	identityFilmsByGenre       = "films.by_genre"
	identityFilmsSimilar       = "films.similar"
	identityFilmsByQuery       = "films.by_query"
	identityFilmsByPerson      = "films.by_person"
	identityFilmsRolesByPerson = "films.with_roles_by_person"
	identityGenreGetItem       = "genres.get_item"
	identityGenreGetItems      = "genres.get_items"
	identityGenrePopularity    = "genres.popularity"
	identityPersonGetItem      = "persons.get_item"
	identityPersonGetItems     = "persons.get_items"
)

// listKwargs keys list lookups by their options.
func listKwargs(opts ListOptions) cache.Kwargs {
	return cache.Kwargs{"sort": opts.Sort.String(), "page": opts.Page}
}

// CachedFilmStorage decorates a FilmStorage with read-through caching.
type CachedFilmStorage struct {
	base  FilmStorage
	cache *cache.Decorator
}

var _ FilmStorage = (*CachedFilmStorage)(nil)

// NewCachedFilmStorage wraps base. Entries expire after d's window.
func NewCachedFilmStorage(base FilmStorage, d *cache.Decorator) *CachedFilmStorage {
	return &CachedFilmStorage{base: base, cache: d}
}

// GetItem retrieves a film by id, with caching. Missing films are cached too.
func (c *CachedFilmStorage) GetItem(ctx context.Context, id string) (*model.Film, error) {
	return cache.Through(ctx, c.cache, cache.Call{Identity: identityFilmGetItem, Args: []any{id}}, func(ctx context.Context) (*model.Film, error) {
		return c.base.GetItem(ctx, id)
	})
}

// GetItems dispatches to the cached specialized lookups.
func (c *CachedFilmStorage) GetItems(ctx context.Context, q Query) ([]model.FilmShort, error) {
	return DispatchFilms(ctx, c, q)
}

func (c *CachedFilmStorage) ListFilms(ctx context.Context, opts ListOptions) ([]model.FilmShort, error) {
	call := cache.Call{Identity: identityFilmList, Kwargs: listKwargs(opts)}
	return cache.Through(ctx, c.cache, call, func(ctx context.Context) ([]model.FilmShort, error) {
		return c.base.ListFilms(ctx, opts)
	})
}

func (c *CachedFilmStorage) FilmsByGenre(ctx context.Context, genreID string, opts ListOptions) ([]model.FilmShort, error) {
	call := cache.Call{Identity: identityFilmsByGenre, Args: []any{genreID}, Kwargs: listKwargs(opts)}
	return cache.Through(ctx, c.cache, call, func(ctx context.Context) ([]model.FilmShort, error) {
		return c.base.FilmsByGenre(ctx, genreID, opts)
	})
}

func (c *CachedFilmStorage) SimilarFilms(ctx context.Context, filmID string, opts ListOptions) ([]model.FilmShort, error) {
	call := cache.Call{Identity: identityFilmsSimilar, Args: []any{filmID}, Kwargs: listKwargs(opts)}
	return cache.Through(ctx, c.cache, call, func(ctx context.Context) ([]model.FilmShort, error) {
		return c.base.SimilarFilms(ctx, filmID, opts)
	})
}

func (c *CachedFilmStorage) FilmsByQuery(ctx context.Context, text string, opts ListOptions) ([]model.FilmShort, error) {
	call := cache.Call{Identity: identityFilmsByQuery, Args: []any{text}, Kwargs: listKwargs(opts)}
	return cache.Through(ctx, c.cache, call, func(ctx context.Context) ([]model.FilmShort, error) {
		return c.base.FilmsByQuery(ctx, text, opts)
	})
}

func (c *CachedFilmStorage) FilmsByPerson(ctx context.Context, personID string, opts ListOptions) ([]model.FilmShort, error) {
	call := cache.Call{Identity: identityFilmsByPerson, Args: []any{personID}, Kwargs: listKwargs(opts)}
	return cache.Through(ctx, c.cache, call, func(ctx context.Context) ([]model.FilmShort, error) {
		return c.base.FilmsByPerson(ctx, personID, opts)
	})
}

func (c *CachedFilmStorage) FilmsWithRolesByPerson(ctx context.Context, personID string, opts ListOptions) ([]model.FilmRoles, error) {
	call := cache.Call{Identity: identityFilmsRolesByPerson, Args: []any{personID}, Kwargs: listKwargs(opts)}
	return cache.Through(ctx, c.cache, call, func(ctx context.Context) ([]model.FilmRoles, error) {
		return c.base.FilmsWithRolesByPerson(ctx, personID, opts)
	})
}

// CachedGenreStorage decorates a GenreStorage with read-through caching.
type CachedGenreStorage struct {
	base  GenreStorage
	cache *cache.Decorator
}

var _ GenreStorage = (*CachedGenreStorage)(nil)

func NewCachedGenreStorage(base GenreStorage, d *cache.Decorator) *CachedGenreStorage {
	return &CachedGenreStorage{base: base, cache: d}
}

func (c *CachedGenreStorage) GetItem(ctx context.Context, id string) (*model.Genre, error) {
	return cache.Through(ctx, c.cache, cache.Call{Identity: identityGenreGetItem, Args: []any{id}}, func(ctx context.Context) (*model.Genre, error) {
		return c.base.GetItem(ctx, id)
	})
}

// GetItems keys on the list options only, since filters are ignored.
func (c *CachedGenreStorage) GetItems(ctx context.Context, q Query) ([]model.GenreShort, error) {
	call := cache.Call{Identity: identityGenreGetItems, Kwargs: listKwargs(q.ListOptions)}
	return cache.Through(ctx, c.cache, call, func(ctx context.Context) ([]model.GenreShort, error) {
		return c.base.GetItems(ctx, q)
	})
}

func (c *CachedGenreStorage) Popularity(ctx context.Context, genreID string) (*float64, error) {
	return cache.Through(ctx, c.cache, cache.Call{Identity: identityGenrePopularity, Args: []any{genreID}}, func(ctx context.Context) (*float64, error) {
		return c.base.Popularity(ctx, genreID)
	})
}

// CachedPersonStorage decorates a PersonStorage with read-through caching.
type CachedPersonStorage struct {
	base  PersonStorage
	cache *cache.Decorator
}

var _ PersonStorage = (*CachedPersonStorage)(nil)

func NewCachedPersonStorage(base PersonStorage, d *cache.Decorator) *CachedPersonStorage {
	return &CachedPersonStorage{base: base, cache: d}
}

func (c *CachedPersonStorage) GetItem(ctx context.Context, id string) (*model.PersonShort, error) {
	return cache.Through(ctx, c.cache, cache.Call{Identity: identityPersonGetItem, Args: []any{id}}, func(ctx context.Context) (*model.PersonShort, error) {
		return c.base.GetItem(ctx, id)
	})
}

func (c *CachedPersonStorage) GetItems(ctx context.Context, q Query) ([]model.PersonShort, error) {
	name, _ := personName(q.Filters)
	call := cache.Call{Identity: identityPersonGetItems, Args: []any{name}, Kwargs: listKwargs(q.ListOptions)}
	return cache.Through(ctx, c.cache, call, func(ctx context.Context) ([]model.PersonShort, error) {
		return c.base.GetItems(ctx, q)
	})
}
