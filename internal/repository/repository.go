package repository

import (
	"context"
	"errors"

	"libapi/internal/model"
	"libapi/internal/specification"
)

// Package repository contains the data access contract: a generic
// specification-driven Repository and the UnitOfWork that owns commits.
// Implementations live in subpackages (e.g., sqlstore).

var (
	// ErrNilEntity is returned when a nil entity is passed to Add, Update or Delete.
	ErrNilEntity = errors.New("entity is nil")
	// ErrUnknownInclude is returned when a specification names a relation the
	// repository cannot load.
	ErrUnknownInclude = errors.New("unknown include")
	ErrNoUpdateItem   = errors.New("no item has been updated")
	ErrNoDeleteItem   = errors.New("no item has been deleted")
)

// Entity is anything with an int64 identity.
type Entity interface {
	Identity() int64
}

// Repository executes specifications for one entity type and stages
// mutations. Staged mutations become durable only through
// UnitOfWork.SaveChanges.
type Repository[T Entity] interface {
	// FirstOrDefault returns the first entity selected by spec, or nil when
	// nothing matches. Absence is not an error.
	FirstOrDefault(ctx context.Context, spec specification.Specification[T]) (*T, error)

	// Get returns every entity selected by spec in the requested order.
	Get(ctx context.Context, spec specification.Specification[T]) ([]T, error)

	// Count returns the size of the filtered set. Ordering and paging on spec
	// are ignored.
	Count(ctx context.Context, spec specification.Specification[T]) (int, error)

	// Add stages an insert. The returned pointer is item; its identity is
	// populated when the change is committed.
	Add(ctx context.Context, item *T) (*T, error)

	// Update stages a whole-entity replace: every column is written, so the
	// last update of an entity wins.
	Update(ctx context.Context, item *T) error

	// Delete stages a removal.
	Delete(ctx context.Context, item *T) error
}

// UnitOfWork exposes one repository per entity type and commits their staged
// changes together.
type UnitOfWork interface {
	Authors() Repository[model.Author]
	Genres() Repository[model.Genre]
	Books() Repository[model.Book]
	Lendings() Repository[model.BookLending]

	// SaveChanges makes every staged change durable. Store errors are
	// returned unchanged.
	SaveChanges(ctx context.Context) error
}

// Factory creates a UnitOfWork scoped to one logical operation.
type Factory func() UnitOfWork
