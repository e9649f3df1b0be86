package searchinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-search-cache/pkg/log"
	"github.com/goliatone/go-search-cache/storage"
)

var _ storage.SearchIndex = (*Client)(nil)

// Observer receives the duration and outcome of every index call.
type Observer interface {
	ObserveSearch(op, collection string, took time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveSearch(string, string, time.Duration, error) {}

// Config holds the Elasticsearch connection settings.
type Config struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Validate checks that at least one address is configured.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addresses, validation.Required, validation.Each(is.URL)),
	)
}

// Client implements storage.SearchIndex over go-elasticsearch. The
// underlying client pools connections and is safe for concurrent use.
type Client struct {
	es       *elasticsearch.Client
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithObserver registers an observer for index calls.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// New creates a Client. It does not contact the cluster; call Ping for that.
func New(cfg Config, opts ...Option) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return NewFromClient(es, opts...), nil
}

// NewFromClient wraps an existing go-elasticsearch client.
func NewFromClient(es *elasticsearch.Client, opts ...Option) *Client {
	c := &Client{es: es, observer: nopObserver{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type getResponse struct {
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

// Get returns the _source of a document. Missing documents and missing
// collections yield storage.ErrNotFound.
func (c *Client) Get(ctx context.Context, collection, id string) (_ json.RawMessage, err error) {
	defer c.observe("get", collection, time.Now(), &err)

	res, err := c.es.Get(collection, id, c.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	defer res.Body.Close()

	if err := responseError(res); err != nil {
		return nil, err
	}

	var doc getResponse
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !doc.Found {
		return nil, storage.ErrNotFound
	}
	return doc.Source, nil
}

// esResponse is the part of a search response the storages need.
type esResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID        string          `json:"_id"`
			Source    json.RawMessage `json:"_source"`
			InnerHits map[string]struct {
				Hits struct {
					Total struct {
						Value int64 `json:"value"`
					} `json:"total"`
				} `json:"hits"`
			} `json:"inner_hits"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// Search runs req against collection. A missing collection yields
// storage.ErrNotFound.
func (c *Client) Search(ctx context.Context, collection string, req storage.SearchRequest) (_ *storage.SearchResult, err error) {
	defer c.observe("search", collection, time.Now(), &err)

	data, err := json.Marshal(req.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	options := []func(*esapi.SearchRequest){
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(collection),
		c.es.Search.WithBody(bytes.NewReader(data)),
	}
	if req.Sort != "" {
		options = append(options, c.es.Search.WithSort(req.Sort))
	}

	res, err := c.es.Search(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", collection, err)
	}
	defer res.Body.Close()

	if err := responseError(res); err != nil {
		return nil, err
	}

	var decoded esResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := &storage.SearchResult{
		Total:        decoded.Hits.Total.Value,
		Hits:         make([]storage.Hit, 0, len(decoded.Hits.Hits)),
		Aggregations: decoded.Aggregations,
	}
	for _, h := range decoded.Hits.Hits {
		hit := storage.Hit{ID: h.ID, Source: h.Source}
		if len(h.InnerHits) > 0 {
			hit.InnerHits = make(map[string]int64, len(h.InnerHits))
			for name, inner := range h.InnerHits {
				hit.InnerHits[name] = inner.Hits.Total.Value
			}
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// Ping checks the cluster answers.
func (c *Client) Ping(ctx context.Context) (err error) {
	defer c.observe("ping", "", time.Now(), &err)

	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	defer res.Body.Close()
	return responseError(res)
}

func (c *Client) observe(op, collection string, start time.Time, err *error) {
	took := time.Since(start)
	c.observer.ObserveSearch(op, collection, took, *err)
	if *err != nil && !errors.Is(*err, storage.ErrNotFound) {
		l := log.L()
		l.Debug().
			Err(*err).
			Str("op", op).
			Str(log.FieldCollection, collection).
			Dur(log.FieldLatency, took).
			Msg("search index call failed")
	}
}

// responseError maps an error status to an error. 404 is storage.ErrNotFound.
func responseError(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	if res.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, res.Body)
		return storage.ErrNotFound
	}
	return fmt.Errorf("elasticsearch error: %s", res.String())
}
