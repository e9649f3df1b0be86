package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-search-cache/model"
)

var (
	filmShortSource   = []string{"id", "title", "imdb_rating"}
	genreShortSource  = []string{"id", "name"}
	personShortSource = []string{"id", "full_name"}
)

const popularityAgg = "avg_imdb_rating"

// inner hit name per nested role path
var roleInnerHits = map[string]model.Role{
	"actors_inner_hits":    model.RoleActor,
	"writers_inner_hits":   model.RoleWriter,
	"directors_inner_hits": model.RoleDirector,
}

var roleOrder = []model.Role{model.RoleActor, model.RoleWriter, model.RoleDirector}

// getDocument fetches and decodes a single document. Missing documents
// yield (nil, nil).
func getDocument[T any](ctx context.Context, index SearchIndex, collection, id string) (*T, error) {
	raw, err := index.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

// searchDocuments runs req and decodes every hit's source. A missing
// collection yields an empty list.
func searchDocuments[T any](ctx context.Context, index SearchIndex, collection string, req SearchRequest) ([]T, error) {
	res, err := index.Search(ctx, collection, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}

	docs := make([]T, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var doc T
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, hit.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func listRequest(query map[string]any, source []string, opts ListOptions) SearchRequest {
	return SearchRequest{
		Query:  query,
		Sort:   opts.Sort.String(),
		Page:   opts.Page,
		Source: source,
	}
}

func matchAll() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}

func nestedMatch(path, field, value string) map[string]any {
	return map[string]any{
		"nested": map[string]any{
			"path":  path,
			"query": map[string]any{"match": map[string]any{field: value}},
		},
	}
}

// personRolesQuery matches films where personID appears in any role. With
// innerHits each role clause reports its own match count.
func personRolesQuery(personID string, innerHits bool) map[string]any {
	should := make([]any, 0, len(roleOrder))
	for _, path := range []string{"actors", "writers", "directors"} {
		clause := nestedMatch(path, path+".id", personID)
		if innerHits {
			clause["nested"].(map[string]any)["inner_hits"] = map[string]any{
				"name": path + "_inner_hits",
				"size": 0,
			}
		}
		should = append(should, clause)
	}
	return map[string]any{
		"bool": map[string]any{"should": should, "minimum_should_match": 1},
	}
}

type filmSearch struct {
	index SearchIndex
}

var _ FilmStorage = (*filmSearch)(nil)

// NewFilmSearchStorage returns a FilmStorage over the movies collection.
func NewFilmSearchStorage(index SearchIndex) FilmStorage {
	return &filmSearch{index: index}
}

func (s *filmSearch) GetItem(ctx context.Context, id string) (*model.Film, error) {
	return getDocument[model.Film](ctx, s.index, CollectionFilms, id)
}

func (s *filmSearch) GetItems(ctx context.Context, q Query) ([]model.FilmShort, error) {
	return DispatchFilms(ctx, s, q)
}

func (s *filmSearch) ListFilms(ctx context.Context, opts ListOptions) ([]model.FilmShort, error) {
	return s.search(ctx, matchAll(), opts)
}

func (s *filmSearch) FilmsByGenre(ctx context.Context, genreID string, opts ListOptions) ([]model.FilmShort, error) {
	query := map[string]any{
		"bool": map[string]any{
			"must": []any{nestedMatch("genres", "genres.id", genreID)},
		},
	}
	return s.search(ctx, query, opts)
}

func (s *filmSearch) SimilarFilms(ctx context.Context, filmID string, opts ListOptions) ([]model.FilmShort, error) {
	film, err := s.GetItem(ctx, filmID)
	if err != nil {
		return nil, err
	}
	if film == nil || len(film.Genres) == 0 {
		return []model.FilmShort{}, nil
	}

	genreIDs := make([]string, 0, len(film.Genres))
	for _, g := range film.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	query := map[string]any{
		"bool": map[string]any{
			"filter": []any{
				map[string]any{
					"nested": map[string]any{
						"path":  "genres",
						"query": map[string]any{"terms": map[string]any{"genres.id": genreIDs}},
					},
				},
			},
			"must_not": []any{
				map[string]any{"ids": map[string]any{"values": []string{filmID}}},
			},
		},
	}
	return s.search(ctx, query, opts)
}

func (s *filmSearch) FilmsByQuery(ctx context.Context, text string, opts ListOptions) ([]model.FilmShort, error) {
	query := map[string]any{"match": map[string]any{"title": text}}
	return s.search(ctx, query, opts)
}

func (s *filmSearch) FilmsByPerson(ctx context.Context, personID string, opts ListOptions) ([]model.FilmShort, error) {
	return s.search(ctx, personRolesQuery(personID, false), opts)
}

func (s *filmSearch) FilmsWithRolesByPerson(ctx context.Context, personID string, opts ListOptions) ([]model.FilmRoles, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res, err := s.index.Search(ctx, CollectionFilms, listRequest(personRolesQuery(personID, true), filmShortSource, opts))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.FilmRoles{}, nil
		}
		return nil, err
	}

	films := make([]model.FilmRoles, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var short model.FilmShort
		if err := json.Unmarshal(hit.Source, &short); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", CollectionFilms, hit.ID, err)
		}
		films = append(films, model.FilmRoles{
			ID:         short.ID,
			Title:      short.Title,
			IMDBRating: short.IMDBRating,
			Roles:      parseRoles(hit.InnerHits),
		})
	}
	return films, nil
}

// parseRoles lists the roles whose inner hit matched, in a fixed order.
func parseRoles(innerHits map[string]int64) []model.Role {
	matched := make(map[model.Role]bool, len(innerHits))
	for name, total := range innerHits {
		if role, ok := roleInnerHits[name]; ok && total > 0 {
			matched[role] = true
		}
	}

	roles := make([]model.Role, 0, len(matched))
	for _, role := range roleOrder {
		if matched[role] {
			roles = append(roles, role)
		}
	}
	return roles
}

func (s *filmSearch) search(ctx context.Context, query map[string]any, opts ListOptions) ([]model.FilmShort, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return searchDocuments[model.FilmShort](ctx, s.index, CollectionFilms, listRequest(query, filmShortSource, opts))
}

type genreSearch struct {
	index SearchIndex
}

var _ GenreStorage = (*genreSearch)(nil)

// NewGenreSearchStorage returns a GenreStorage over the genres collection.
// Popularity is aggregated over the movies collection.
func NewGenreSearchStorage(index SearchIndex) GenreStorage {
	return &genreSearch{index: index}
}

func (s *genreSearch) GetItem(ctx context.Context, id string) (*model.Genre, error) {
	return getDocument[model.Genre](ctx, s.index, CollectionGenres, id)
}

func (s *genreSearch) GetItems(ctx context.Context, q Query) ([]model.GenreShort, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return searchDocuments[model.GenreShort](ctx, s.index, CollectionGenres, listRequest(matchAll(), genreShortSource, q.ListOptions))
}

func (s *genreSearch) Popularity(ctx context.Context, genreID string) (*float64, error) {
	req := SearchRequest{
		Query: map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"exists": map[string]any{"field": "imdb_rating"}},
					nestedMatch("genres", "genres.id", genreID),
				},
			},
		},
		Page:         &Page{Limit: 0},
		Aggregations: map[string]any{popularityAgg: map[string]any{"avg": map[string]any{"field": "imdb_rating"}}},
	}

	res, err := s.index.Search(ctx, CollectionFilms, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	raw, ok := res.Aggregations[popularityAgg]
	if !ok {
		return nil, nil
	}
	var agg struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, fmt.Errorf("decode %s aggregation: %w", popularityAgg, err)
	}
	return agg.Value, nil
}

type personSearch struct {
	index SearchIndex
}

var _ PersonStorage = (*personSearch)(nil)

// NewPersonSearchStorage returns a PersonStorage over the persons collection.
func NewPersonSearchStorage(index SearchIndex) PersonStorage {
	return &personSearch{index: index}
}

func (s *personSearch) GetItem(ctx context.Context, id string) (*model.PersonShort, error) {
	return getDocument[model.PersonShort](ctx, s.index, CollectionPersons, id)
}

func (s *personSearch) GetItems(ctx context.Context, q Query) ([]model.PersonShort, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := matchAll()
	if name, ok := personName(q.Filters); ok {
		query = map[string]any{"match": map[string]any{"full_name": name}}
	}
	return searchDocuments[model.PersonShort](ctx, s.index, CollectionPersons, listRequest(query, personShortSource, q.ListOptions))
}
