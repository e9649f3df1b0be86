package storage

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidQuery is returned for pages or sorts the backend cannot serve.
var ErrInvalidQuery = errors.New("storage: invalid query")

// Filter names understood by the storages.
const (
	FilterSimilarTo = "similar_to"
	FilterGenreID   = "genre_id"
	FilterPersonID  = "person_id"
	FilterQuery     = "query"
	FilterName      = "name"
)

// DefaultSortField is used when no usable sort is given.
const DefaultSortField = "id"

// Filters is an open set of named predicates. Empty values count as absent.
type Filters map[string]string

// Get returns the value of name and whether it is set to something non-empty.
func (f Filters) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok && v != ""
}

// Sort orders results by a single field.
type Sort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc,omitempty"`
}

// ParseSort reads "+field" as ascending and "-field" as descending.
// Any other input, including the empty string, yields nil, which the
// storages treat as DefaultSortField ascending.
func ParseSort(s string) *Sort {
	if len(s) < 2 {
		return nil
	}
	switch s[0] {
	case '+':
		return &Sort{Field: s[1:]}
	case '-':
		return &Sort{Field: s[1:], Desc: true}
	default:
		return nil
	}
}

// String renders the sort as "field:asc" or "field:desc". A nil sort is
// the default order.
func (s *Sort) String() string {
	if s == nil || s.Field == "" {
		return DefaultSortField + ":asc"
	}
	if s.Desc {
		return s.Field + ":desc"
	}
	return s.Field + ":asc"
}

// Page is an offset/limit window over a result list.
type Page struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func (p Page) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Offset, validation.Min(0)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1)),
	)
}

// ListOptions carry sort order and pagination. A nil Page means the
// backend default page.
type ListOptions struct {
	Sort *Sort `json:"sort"`
	Page *Page `json:"page"`
}

// Validate checks the page bounds and the sort field.
func (o ListOptions) Validate() error {
	if o.Page != nil {
		if err := o.Page.Validate(); err != nil {
			return fmt.Errorf("%w: page: %v", ErrInvalidQuery, err)
		}
	}
	if o.Sort != nil && strings.ContainsAny(o.Sort.Field, ": ") {
		return fmt.Errorf("%w: sort field %q", ErrInvalidQuery, o.Sort.Field)
	}
	return nil
}

// Query is what a service hands to GetItems.
type Query struct {
	Filters Filters `json:"filters"`
	ListOptions
}

// Validate checks the list options.
func (q Query) Validate() error {
	return q.ListOptions.Validate()
}
