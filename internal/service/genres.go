package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-search-cache/model"
	"github.com/goliatone/go-search-cache/storage"
)

type GenreService struct {
	genres storage.GenreStorage
}

func NewGenreService(genres storage.GenreStorage) *GenreService {
	return &GenreService{genres: genres}
}

// GetByID returns the genre with its popularity, or nil when the genre does
// not exist. Both lookups run concurrently.
func (s *GenreService) GetByID(ctx context.Context, id string) (*model.Genre, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	var (
		genre      *model.Genre
		popularity *float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		genre, err = s.genres.GetItem(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		popularity, err = s.genres.Popularity(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if genre == nil {
		return nil, nil
	}
	out := *genre
	out.Popularity = popularity
	return &out, nil
}

func (s *GenreService) List(ctx context.Context, page *storage.Page) ([]model.GenreShort, error) {
	return s.genres.GetItems(ctx, storage.Query{ListOptions: storage.ListOptions{Page: page}})
}
