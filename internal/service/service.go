// Package service holds the read use cases behind the public API: films,
// genres and persons. Services validate identifiers and paging, then
// delegate to the (usually cached) storages.
package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-search-cache/model"
	"github.com/goliatone/go-search-cache/storage"
)

// ErrInvalidID is returned for identifiers that are not UUIDs.
var ErrInvalidID = errors.New("service: invalid id")

// Paging defaults for 1-based page numbers.
const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// validateOptionalID accepts the empty string as "not set".
func validateOptionalID(id string) error {
	if id == "" {
		return nil
	}
	return validateID(id)
}

// PageFromNumber converts a 1-based page number and size into an offset
// window. Zero values select the first page and DefaultPageSize.
func PageFromNumber(number, size int) (*storage.Page, error) {
	if number == 0 {
		number = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if number < 1 || size < 1 || size > MaxPageSize {
		return nil, fmt.Errorf("%w: page %d of size %d", storage.ErrInvalidQuery, number, size)
	}
	return &storage.Page{Offset: (number - 1) * size, Limit: size}, nil
}

// rolesUnion merges the roles of every film, in actor, writer, director order.
func rolesUnion(films []model.FilmRoles) []model.Role {
	seen := make(map[model.Role]bool, 3)
	for _, f := range films {
		for _, r := range f.Roles {
			seen[r] = true
		}
	}

	roles := make([]model.Role, 0, len(seen))
	for _, r := range []model.Role{model.RoleActor, model.RoleWriter, model.RoleDirector} {
		if seen[r] {
			roles = append(roles, r)
		}
	}
	return roles
}
