package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libapi/internal/config"
	"libapi/internal/database"
	"libapi/internal/database/migration"
	"libapi/internal/logging"
	"libapi/internal/model"
	"libapi/internal/repository"
	"libapi/internal/repository/mocks"
	"libapi/internal/repository/sqlstore"
	"libapi/internal/repository/unitofwork"
)

func sqliteFactory(t *testing.T) repository.Factory {
	t.Helper()
	db, err := database.NewSQLite(config.DatabaseConfig{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.EnsureMigrated(context.Background(), db, "sqlite", logging.Discard(), "memory"))
	return unitofwork.NewFactory(db, sqlstore.SQLite)
}

func seedBook(t *testing.T, factory repository.Factory) *model.Book {
	t.Helper()
	ctx := context.Background()
	author, err := NewCatalog(factory, AuthorCatalog).Create(ctx, &model.Author{FirstName: "Ann", LastName: "Leckie"})
	require.NoError(t, err)
	genre, err := NewCatalog(factory, GenreCatalog).Create(ctx, &model.Genre{Name: "Space Opera"})
	require.NoError(t, err)
	book, err := NewCatalog(factory, BookCatalog).Create(ctx, &model.Book{
		Title: "Ancillary Justice", ISBN: "978-0316246620", AuthorID: author.ID, GenreID: genre.ID, PublishedYear: 2013,
	})
	require.NoError(t, err)
	return book
}

func TestLending_LendAndReturn(t *testing.T) {
	ctx := context.Background()
	factory := sqliteFactory(t)
	book := seedBook(t, factory)

	svc := NewLendingService(factory).(*lendingService)
	svc.now = func() time.Time { return fixedNow }

	lent, err := svc.Lend(ctx, book.ID, LendRequest{BorrowerName: "Breq", BorrowerEmail: "breq@radch.example"})
	require.NoError(t, err)
	assert.NotZero(t, lent.ID)
	assert.True(t, lent.DueAt.Equal(fixedNow.AddDate(0, 0, DefaultLoanDays)))
	require.NotNil(t, lent.Book)
	assert.Equal(t, book.Title, lent.Book.Title)

	_, err = svc.Lend(ctx, book.ID, LendRequest{BorrowerName: "Seivarden", BorrowerEmail: "s@radch.example", Days: 7})
	assert.ErrorIs(t, err, ErrBookUnavailable)

	svc.now = func() time.Time { return fixedNow.Add(72 * time.Hour) }
	returned, err := svc.Return(ctx, lent.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnedAt)

	_, err = svc.Return(ctx, lent.ID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)

	again, err := svc.Lend(ctx, book.ID, LendRequest{BorrowerName: "Seivarden", BorrowerEmail: "s@radch.example", Days: 7})
	require.NoError(t, err)
	assert.True(t, again.DueAt.Equal(fixedNow.Add(72*time.Hour).AddDate(0, 0, 7)))

	page, err := NewCatalog(factory, LendingCatalog).List(ctx, ListQuery{Search: "radch", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.NotNil(t, page.Items[0].Book)
}

func TestLending_LendRacingAnotherCommit(t *testing.T) {
	ctx := context.Background()
	factory := sqliteFactory(t)
	book := seedBook(t, factory)

	// The rival lending is committed after the availability check has
	// passed, as a concurrent request would.
	svc := NewLendingService(factory).(*lendingService)
	svc.now = func() time.Time {
		rival := factory()
		_, err := rival.Lendings().Add(ctx, &model.BookLending{
			BookID: book.ID, BorrowerName: "Anaander", BorrowerEmail: "a@radch.example",
			LentAt: fixedNow, DueAt: fixedNow.AddDate(0, 0, DefaultLoanDays),
		})
		require.NoError(t, err)
		require.NoError(t, rival.SaveChanges(ctx))
		svc.now = func() time.Time { return fixedNow }
		return fixedNow
	}

	_, err := svc.Lend(ctx, book.ID, LendRequest{BorrowerName: "Breq", BorrowerEmail: "breq@radch.example"})
	assert.ErrorIs(t, err, ErrBookUnavailable)
	assert.True(t, database.IsUniqueViolation(err))

	page, err := NewCatalog(factory, LendingCatalog).List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Anaander", page.Items[0].BorrowerName)
}

func TestLending_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewLendingService(nil).Lend(ctx, 0, LendRequest{})
	assert.ErrorIs(t, err, ErrIDRequired)
	_, err = NewLendingService(nil).Return(ctx, 0)
	assert.ErrorIs(t, err, ErrIDRequired)

	uow := &mocks.MockUnitOfWork{}
	uow.BookRepo.On("FirstOrDefault", ctx, mock.Anything).Return(nil, nil)
	uow.LendingRepo.On("FirstOrDefault", ctx, mock.Anything).Return(nil, nil)

	svc := NewLendingService(uow.Factory())
	_, err = svc.Lend(ctx, 42, LendRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Return(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	uow.AssertAll(t)
}

func TestCatalog_ConstraintViolationIsConflict(t *testing.T) {
	ctx := context.Background()
	factory := sqliteFactory(t)
	book := seedBook(t, factory)

	authors := NewCatalog(factory, AuthorCatalog)
	err := authors.Delete(ctx, book.AuthorID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, database.IsConstraintViolation(err))

	genres := NewCatalog(factory, GenreCatalog)
	_, err = genres.Create(ctx, &model.Genre{Name: "Space Opera"})
	assert.ErrorIs(t, err, ErrConflict)

	books := NewCatalog(factory, BookCatalog)
	_, err = books.Create(ctx, &model.Book{Title: "Orphan", ISBN: "x-1", AuthorID: 999, GenreID: book.GenreID})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := books.Get(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Leckie", got.Author.LastName)
	require.NotNil(t, got.Genre)

	updated, err := books.Update(ctx, book.ID, &model.Book{Title: "Ancillary Justice", ISBN: book.ISBN, AuthorID: book.AuthorID, GenreID: book.GenreID, PublishedYear: 2014})
	require.NoError(t, err)
	assert.True(t, updated.CreatedAt.Equal(book.CreatedAt))
}
