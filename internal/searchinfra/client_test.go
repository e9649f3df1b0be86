package searchinfra

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-search-cache/model"
	"github.com/goliatone/go-search-cache/pkg/testsupport"
	"github.com/goliatone/go-search-cache/storage"
)

type observed struct {
	op, collection string
	err            error
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observed
}

func (o *recordingObserver) ObserveSearch(op, collection string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observed{op: op, collection: collection, err: err})
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *testsupport.FakeElastic) {
	t.Helper()

	fake := testsupport.NewFakeElastic(t)
	client, err := New(Config{Addresses: []string{fake.URL()}}, opts...)
	require.NoError(t, err)
	return client, fake
}

func TestClient_Get(t *testing.T) {
	client, fake := newTestClient(t)
	const id = "3a7d1b2c-0000-4000-8000-000000000001"
	fake.AddDocument(storage.CollectionFilms, id, testsupport.Fixture(t, "film.json"))

	raw, err := client.Get(context.Background(), storage.CollectionFilms, id)
	require.NoError(t, err)

	var film model.Film
	require.NoError(t, json.Unmarshal(raw, &film))
	assert.Equal(t, "Alien", film.Title)
	assert.Equal(t, "Ridley Scott", film.Directors[0].FullName)
	require.NotNil(t, film.CreationDate)
	assert.Equal(t, 1979, film.CreationDate.Year())

	req := fake.LastRequest(t)
	assert.Equal(t, "/movies/_doc/"+id, req.Path)
}

func TestClient_GetNotFound(t *testing.T) {
	client, fake := newTestClient(t)
	fake.AddDocument(storage.CollectionFilms, "other", []byte(`{}`))

	_, err := client.Get(context.Background(), storage.CollectionFilms, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound, "missing document")

	_, err = client.Get(context.Background(), storage.CollectionGenres, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound, "missing index")
}

func TestClient_Search(t *testing.T) {
	client, fake := newTestClient(t)
	fake.SetSearchResponse(storage.CollectionFilms, testsupport.Fixture(t, "search_films_roles.json"))

	req := storage.SearchRequest{
		Query:  map[string]any{"match_all": map[string]any{}},
		Sort:   "imdb_rating:desc",
		Page:   &storage.Page{Offset: 10, Limit: 5},
		Source: []string{"id", "title", "imdb_rating"},
	}
	res, err := client.Search(context.Background(), storage.CollectionFilms, req)
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Total)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "3a7d1b2c-0000-4000-8000-000000000001", res.Hits[0].ID)
	assert.Equal(t, map[string]int64{
		"actors_inner_hits":    0,
		"writers_inner_hits":   1,
		"directors_inner_hits": 1,
	}, res.Hits[0].InnerHits)

	recorded := fake.LastRequest(t)
	assert.Equal(t, "/movies/_search", recorded.Path)
	assert.Equal(t, "imdb_rating:desc", recorded.Query.Get("sort"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorded.Body, &body))
	assert.EqualValues(t, 10, body["from"])
	assert.EqualValues(t, 5, body["size"])
	assert.Equal(t, []any{"id", "title", "imdb_rating"}, body["_source"])
	assert.Contains(t, body, "query")
}

func TestClient_SearchAggregations(t *testing.T) {
	client, fake := newTestClient(t)
	fake.SetSearchResponse(storage.CollectionFilms, testsupport.Fixture(t, "search_genre_popularity.json"))

	genres := storage.NewGenreSearchStorage(client)
	popularity, err := genres.Popularity(context.Background(), "0b4f7e1a-0000-4000-8000-0000000000a1")
	require.NoError(t, err)
	require.NotNil(t, popularity)
	assert.Equal(t, 6.75, *popularity)

	recorded := fake.LastRequest(t)
	assert.Empty(t, recorded.Query.Get("sort"), "aggregation searches carry no sort")
}

func TestClient_SearchMissingIndex(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Search(context.Background(), storage.CollectionPersons, storage.SearchRequest{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClient_ServerError(t *testing.T) {
	observer := &recordingObserver{}
	client, fake := newTestClient(t, WithObserver(observer))
	fake.FailWith(http.StatusInternalServerError)

	_, err := client.Search(context.Background(), storage.CollectionFilms, storage.SearchRequest{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "elasticsearch error")

	require.Len(t, observer.calls, 1)
	assert.Equal(t, "search", observer.calls[0].op)
	assert.Equal(t, storage.CollectionFilms, observer.calls[0].collection)
	assert.Error(t, observer.calls[0].err)
}

func TestClient_Ping(t *testing.T) {
	client, fake := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))

	fake.FailWith(http.StatusInternalServerError)
	assert.Error(t, client.Ping(context.Background()))
}

func TestClient_StorageEndToEnd(t *testing.T) {
	client, fake := newTestClient(t)
	fake.SetSearchResponse(storage.CollectionFilms, testsupport.Fixture(t, "search_films_roles.json"))

	films := storage.NewFilmSearchStorage(client)
	got, err := films.FilmsWithRolesByPerson(context.Background(), "5c2e9d3f-0000-4000-8000-0000000000b3", storage.ListOptions{})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, []model.Role{model.RoleWriter, model.RoleDirector}, got[0].Roles)
	assert.Equal(t, []model.Role{model.RoleDirector}, got[1].Roles)
	assert.Equal(t, "id:asc", fake.LastRequest(t).Query.Get("sort"))
}
