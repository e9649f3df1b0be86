package storage

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by a SearchIndex for a missing document or
// collection. Storages translate it into nil or an empty list.
var ErrNotFound = errors.New("storage: not found")

// Collections in the search index.
const (
	CollectionFilms   = "movies"
	CollectionGenres  = "genres"
	CollectionPersons = "persons"
)

// SearchIndex is the part of the search engine the storages consume.
// Implementations must be safe for concurrent use.
type SearchIndex interface {
	// Get returns the _source of the document id in collection.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	// Search runs req against collection.
	Search(ctx context.Context, collection string, req SearchRequest) (*SearchResult, error)
}

// SearchRequest is a search body plus the sort string. Query and
// Aggregations are plain query DSL maps.
type SearchRequest struct {
	Query        map[string]any
	Sort         string
	Page         *Page
	Source       []string
	Aggregations map[string]any
}

// Body returns the JSON request body for req. Sort travels separately as
// a URL parameter.
func (r SearchRequest) Body() map[string]any {
	body := map[string]any{}
	if r.Query != nil {
		body["query"] = r.Query
	}
	if r.Source != nil {
		body["_source"] = r.Source
	}
	if r.Aggregations != nil {
		body["aggs"] = r.Aggregations
	}
	if r.Page != nil {
		body["from"] = r.Page.Offset
		body["size"] = r.Page.Limit
	}
	return body
}

// Hit is one matched document.
type Hit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
	// InnerHits holds the total match count per named inner hit.
	InnerHits map[string]int64 `json:"-"`
}

// SearchResult is the decoded part of a search response the storages use.
type SearchResult struct {
	Total        int64
	Hits         []Hit
	Aggregations map[string]json.RawMessage
}
