// Package specs holds the concrete, per-use-case specifications of the
// library catalog.
package specs

import (
	"strings"
	"time"

	"libapi/internal/model"
	"libapi/internal/specification"
)

// Author fields.
var (
	AuthorID        = specification.NewField("id", func(a *model.Author) int64 { return a.ID })
	AuthorFirstName = specification.NewField("first_name", func(a *model.Author) string { return a.FirstName })
	AuthorLastName  = specification.NewField("last_name", func(a *model.Author) string { return a.LastName })
)

// Genre fields.
var (
	GenreID   = specification.NewField("id", func(g *model.Genre) int64 { return g.ID })
	GenreName = specification.NewField("name", func(g *model.Genre) string { return g.Name })
)

// Book fields.
var (
	BookID       = specification.NewField("id", func(b *model.Book) int64 { return b.ID })
	BookTitle    = specification.NewField("title", func(b *model.Book) string { return b.Title })
	BookISBN     = specification.NewField("isbn", func(b *model.Book) string { return b.ISBN })
	BookAuthorID = specification.NewField("author_id", func(b *model.Book) int64 { return b.AuthorID })
	BookGenreID  = specification.NewField("genre_id", func(b *model.Book) int64 { return b.GenreID })
)

// Lending fields.
var (
	LendingID            = specification.NewField("id", func(l *model.BookLending) int64 { return l.ID })
	LendingBookID        = specification.NewField("book_id", func(l *model.BookLending) int64 { return l.BookID })
	LendingBorrowerName  = specification.NewField("borrower_name", func(l *model.BookLending) string { return l.BorrowerName })
	LendingBorrowerEmail = specification.NewField("borrower_email", func(l *model.BookLending) string { return l.BorrowerEmail })
	LendingLentAt        = specification.NewField("lent_at", func(l *model.BookLending) time.Time { return l.LentAt })
)

// TotalPages returns how many pages of pageSize hold total items.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// filtered applies the shared list recipe: case-insensitive search over
// textFields when term is not blank, ascending id order, and a page window
// when both page parameters were supplied (non-zero).
func filtered[T any](b *specification.Builder[T], term string, pageNo, pageSize int, id specification.Field[T], textFields ...specification.Field[T]) *specification.Builder[T] {
	search(b, term, textFields...)
	b.OrderBy(id)
	if pageNo != 0 && pageSize != 0 {
		b.Page(pageNo, pageSize)
	}
	return b
}

func search[T any](b *specification.Builder[T], term string, textFields ...specification.Field[T]) *specification.Builder[T] {
	if term = strings.TrimSpace(term); term != "" {
		b.Where(specification.ContainsFold(term, textFields...))
	}
	return b
}
