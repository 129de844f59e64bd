package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libapi/internal/database"
	"libapi/internal/model"
	"libapi/internal/repository"
	"libapi/internal/specification"
	"libapi/internal/specs"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflicts with existing data")
	ErrInvalidPage     = errors.New("page and page size must not be negative")
	ErrBookUnavailable = errors.New("book is already lent")
	ErrAlreadyReturned = errors.New("lending already returned")
)

// ListQuery selects one page of a searchable listing. Zero Page or PageSize
// disables paging.
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

// Page is the service-level DTO for a paginated listing.
type Page[T any] struct {
	Items      []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// CatalogService defines the CRUD use cases of one catalog entity.
type CatalogService[T repository.Entity] interface {
	// List returns one page of entities matching q.Search and the size of
	// the whole filtered set.
	List(ctx context.Context, q ListQuery) (*Page[T], error)

	// Get returns a single entity by its ID.
	Get(ctx context.Context, id int64) (*T, error)

	// Create stores item and returns it with its generated ID.
	Create(ctx context.Context, item *T) (*T, error)

	// Update replaces every field of the entity with the given ID.
	Update(ctx context.Context, id int64, item *T) (*T, error)

	Delete(ctx context.Context, id int64) error
}

// Descriptor tells a Catalog how to reach and query one entity type.
type Descriptor[T repository.Entity] struct {
	Repo     func(repository.UnitOfWork) repository.Repository[T]
	ByID     func(id int64) specification.Specification[T]
	Filtered func(search string, pageNo, pageSize int) (specification.Specification[T], error)
	Count    func(search string) specification.Specification[T]
	// Stamp sets the identity and creation time of item.
	Stamp     func(item *T, id int64, createdAt time.Time)
	CreatedAt func(item *T) time.Time
}

// Catalog implements CatalogService on top of units of work.
type Catalog[T repository.Entity] struct {
	newUnit repository.Factory
	desc    Descriptor[T]
	now     func() time.Time
}

// NewCatalog constructs a CatalogService for the entity described by desc.
func NewCatalog[T repository.Entity](factory repository.Factory, desc Descriptor[T]) *Catalog[T] {
	return &Catalog[T]{newUnit: factory, desc: desc, now: func() time.Time { return time.Now().UTC() }}
}

func (c *Catalog[T]) List(ctx context.Context, q ListQuery) (*Page[T], error) {
	if q.Page < 0 || q.PageSize < 0 {
		return nil, ErrInvalidPage
	}
	spec, err := c.desc.Filtered(q.Search, q.Page, q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPage, err)
	}

	repo := c.desc.Repo(c.newUnit())
	items, err := repo.Get(ctx, spec)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx, c.desc.Count(q.Search))
	if err != nil {
		return nil, err
	}

	page := &Page[T]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}
	if q.Page == 0 || q.PageSize == 0 {
		page.Page, page.PageSize = 1, total
	}
	page.TotalPages = specs.TotalPages(total, page.PageSize)
	return page, nil
}

func (c *Catalog[T]) Get(ctx context.Context, id int64) (*T, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	return c.find(ctx, c.desc.Repo(c.newUnit()), id)
}

func (c *Catalog[T]) find(ctx context.Context, repo repository.Repository[T], id int64) (*T, error) {
	item, err := repo.FirstOrDefault(ctx, c.desc.ByID(id))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (c *Catalog[T]) Create(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, repository.ErrNilEntity
	}
	c.desc.Stamp(item, 0, c.now())

	uow := c.newUnit()
	if _, err := c.desc.Repo(uow).Add(ctx, item); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// Update keeps the stored creation time; every other field comes from item.
func (c *Catalog[T]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	if item == nil {
		return nil, repository.ErrNilEntity
	}

	uow := c.newUnit()
	repo := c.desc.Repo(uow)
	existing, err := c.find(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	c.desc.Stamp(item, id, c.desc.CreatedAt(existing))

	if err := repo.Update(ctx, item); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (c *Catalog[T]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrIDRequired
	}

	uow := c.newUnit()
	repo := c.desc.Repo(uow)
	existing, err := c.find(ctx, repo, id)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, existing); err != nil {
		return err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return translate(err)
	}
	return nil
}

// translate maps commit failures onto service errors, keeping the store
// error in the chain.
func translate(err error) error {
	switch {
	case database.IsConstraintViolation(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repository.ErrNoUpdateItem), errors.Is(err, repository.ErrNoDeleteItem):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// Descriptors of the catalog entities.
var (
	AuthorCatalog = Descriptor[model.Author]{
		Repo:     repository.UnitOfWork.Authors,
		ByID:     specs.AuthorByID,
		Filtered: specs.AuthorsFiltered,
		Count:    specs.AuthorsFilteredCount,
		Stamp: func(a *model.Author, id int64, at time.Time) {
			a.ID, a.CreatedAt = id, at
		},
		CreatedAt: func(a *model.Author) time.Time { return a.CreatedAt },
	}

	GenreCatalog = Descriptor[model.Genre]{
		Repo:     repository.UnitOfWork.Genres,
		ByID:     specs.GenreByID,
		Filtered: specs.GenresFiltered,
		Count:    specs.GenresFilteredCount,
		Stamp: func(g *model.Genre, id int64, at time.Time) {
			g.ID, g.CreatedAt = id, at
		},
		CreatedAt: func(g *model.Genre) time.Time { return g.CreatedAt },
	}

	BookCatalog = Descriptor[model.Book]{
		Repo:     repository.UnitOfWork.Books,
		ByID:     specs.BookByID,
		Filtered: specs.BooksFiltered,
		Count:    specs.BooksFilteredCount,
		Stamp: func(b *model.Book, id int64, at time.Time) {
			b.ID, b.CreatedAt = id, at
			b.Author, b.Genre = nil, nil
		},
		CreatedAt: func(b *model.Book) time.Time { return b.CreatedAt },
	}

	LendingCatalog = Descriptor[model.BookLending]{
		Repo:     repository.UnitOfWork.Lendings,
		ByID:     specs.LendingByID,
		Filtered: specs.LendingsFiltered,
		Count:    specs.LendingsFilteredCount,
		Stamp: func(l *model.BookLending, id int64, at time.Time) {
			l.ID = id
			if l.LentAt.IsZero() {
				l.LentAt = at
			}
			l.Book = nil
		},
		CreatedAt: func(l *model.BookLending) time.Time { return l.LentAt },
	}
)
