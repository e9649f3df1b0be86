package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-search-cache/cache"
	"github.com/goliatone/go-search-cache/internal/cacheinfra"
	"github.com/goliatone/go-search-cache/internal/config"
	"github.com/goliatone/go-search-cache/internal/observability"
	"github.com/goliatone/go-search-cache/internal/searchinfra"
	"github.com/goliatone/go-search-cache/internal/service"
	"github.com/goliatone/go-search-cache/storage"
)

// Container wires the service graph once per process. The key-value store
// and the search index client are shared by every cached storage.
type Container struct {
	config    config.Config
	store     cache.Store
	index     storage.SearchIndex
	collector *observability.Collector
	decorator *cache.Decorator

	films   storage.FilmStorage
	genres  storage.GenreStorage
	persons storage.PersonStorage

	filmService   *service.FilmService
	genreService  *service.GenreService
	personService *service.PersonService
}

// NewContainer builds the store selected by cfg.Backend and an
// Elasticsearch client, then wires them with NewContainerWithDeps.
// Connecting to Redis is verified here; Elasticsearch is contacted lazily.
func NewContainer(ctx context.Context, cfg config.Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	collector := observability.NewCollector(cfg.Metrics.Namespace)

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	index, err := searchinfra.New(cfg.Elasticsearch, searchinfra.WithObserver(collector))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	c, err := NewContainerWithDeps(cfg, store, index, collector)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return c, nil
}

func newStore(ctx context.Context, cfg config.Config) (cache.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		store, err := cacheinfra.NewMemoryStore(cfg.Memory)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendRedis:
		store, err := cacheinfra.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewContainerWithDeps wires caller-provided infrastructure. A nil
// collector gets a fresh one.
func NewContainerWithDeps(cfg config.Config, store cache.Store, index storage.SearchIndex, collector *observability.Collector) (*Container, error) {
	if store == nil || index == nil {
		return nil, errors.New("di: store and index are required")
	}
	if collector == nil {
		collector = observability.NewCollector(cfg.Metrics.Namespace)
	}

	decorator, err := cache.New(store, cfg.Cache, cache.WithObserver(collector))
	if err != nil {
		return nil, err
	}

	films := storage.NewCachedFilmStorage(storage.NewFilmSearchStorage(index), decorator.WithWindow(cfg.Windows.Films))
	genres := storage.NewCachedGenreStorage(storage.NewGenreSearchStorage(index), decorator.WithWindow(cfg.Windows.Genres))
	persons := storage.NewCachedPersonStorage(storage.NewPersonSearchStorage(index), decorator.WithWindow(cfg.Windows.Persons))

	return &Container{
		config:        cfg,
		store:         store,
		index:         index,
		collector:     collector,
		decorator:     decorator,
		films:         films,
		genres:        genres,
		persons:       persons,
		filmService:   service.NewFilmService(films),
		genreService:  service.NewGenreService(genres),
		personService: service.NewPersonService(persons, films),
	}, nil
}

func (c *Container) FilmService() *service.FilmService {
	return c.filmService
}

func (c *Container) GenreService() *service.GenreService {
	return c.genreService
}

func (c *Container) PersonService() *service.PersonService {
	return c.personService
}

// Films returns the cached film storage the services share.
func (c *Container) Films() storage.FilmStorage {
	return c.films
}

func (c *Container) Genres() storage.GenreStorage {
	return c.genres
}

func (c *Container) Persons() storage.PersonStorage {
	return c.persons
}

// Decorator returns the base decorator, configured with cfg.Cache.Window.
func (c *Container) Decorator() *cache.Decorator {
	return c.decorator
}

func (c *Container) Store() cache.Store {
	return c.store
}

func (c *Container) Collector() *observability.Collector {
	return c.collector
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() config.Config {
	return c.config
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the store and, when it supports it, the search index.
func (c *Container) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	if p, ok := c.index.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("search index: %w", err)
		}
	}
	return nil
}

// Close releases the store connection.
func (c *Container) Close() error {
	return c.store.Close()
}
