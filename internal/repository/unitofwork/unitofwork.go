// Package unitofwork wires the library entities onto the SQL store: one
// repository per entity sharing a single session, and the commit boundary.
package unitofwork

import (
	"context"
	"database/sql"

	"libapi/internal/model"
	"libapi/internal/repository"
	"libapi/internal/repository/sqlstore"
)

var (
	authorsTable  = sqlstore.MustTable[model.Author]("authors")
	genresTable   = sqlstore.MustTable[model.Genre]("genres")
	booksTable    = sqlstore.MustTable[model.Book]("books")
	lendingsTable = sqlstore.MustTable[model.BookLending]("book_lendings")
)

var (
	bookAuthor = sqlstore.BelongsTo(model.RelAuthor, authorsTable,
		func(b *model.Book) int64 { return b.AuthorID },
		func(b *model.Book, a *model.Author) { b.Author = a })
	bookGenre = sqlstore.BelongsTo(model.RelGenre, genresTable,
		func(b *model.Book) int64 { return b.GenreID },
		func(b *model.Book, g *model.Genre) { b.Genre = g })
	lendingBook = sqlstore.BelongsTo(model.RelBook, booksTable,
		func(l *model.BookLending) int64 { return l.BookID },
		func(l *model.BookLending, b *model.Book) { l.Book = b })
)

// UnitOfWork is the SQL-backed repository.UnitOfWork.
type UnitOfWork struct {
	session  *sqlstore.Session
	authors  *sqlstore.Repository[model.Author]
	genres   *sqlstore.Repository[model.Genre]
	books    *sqlstore.Repository[model.Book]
	lendings *sqlstore.Repository[model.BookLending]
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// New creates a unit of work over db.
func New(db *sql.DB, dialect sqlstore.Dialect, opts ...sqlstore.Option) *UnitOfWork {
	s := sqlstore.NewSession(db, dialect, opts...)
	return &UnitOfWork{
		session:  s,
		authors:  sqlstore.NewRepository(s, authorsTable),
		genres:   sqlstore.NewRepository(s, genresTable),
		books:    sqlstore.NewRepository(s, booksTable, bookAuthor, bookGenre),
		lendings: sqlstore.NewRepository(s, lendingsTable, lendingBook),
	}
}

// NewFactory returns a repository.Factory producing a fresh unit of work per call.
func NewFactory(db *sql.DB, dialect sqlstore.Dialect, opts ...sqlstore.Option) repository.Factory {
	return func() repository.UnitOfWork {
		return New(db, dialect, opts...)
	}
}

func (u *UnitOfWork) Authors() repository.Repository[model.Author]       { return u.authors }
func (u *UnitOfWork) Genres() repository.Repository[model.Genre]         { return u.genres }
func (u *UnitOfWork) Books() repository.Repository[model.Book]           { return u.books }
func (u *UnitOfWork) Lendings() repository.Repository[model.BookLending] { return u.lendings }

// SaveChanges commits every change staged through this unit of work.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	return u.session.SaveChanges(ctx)
}

// Discard drops staged changes without touching the store.
func (u *UnitOfWork) Discard() { u.session.Discard() }

// Pending returns the number of staged changes.
func (u *UnitOfWork) Pending() int { return u.session.Pending() }
