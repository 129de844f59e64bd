package service

import (
	"context"
	"fmt"
	"time"

	"libapi/internal/database"
	"libapi/internal/model"
	"libapi/internal/repository"
	"libapi/internal/specs"
)

// DefaultLoanDays is used when a lend request names no duration.
const DefaultLoanDays = 14

// LendRequest describes who borrows a book and for how long.
type LendRequest struct {
	BorrowerName  string
	BorrowerEmail string
	Days          int
}

// LendingService defines the circulation use cases.
type LendingService interface {
	// Lend records bookID as lent. A book with an open lending cannot be
	// lent again until it is returned.
	Lend(ctx context.Context, bookID int64, req LendRequest) (*model.BookLending, error)

	// Return closes the lending with the given ID.
	Return(ctx context.Context, lendingID int64) (*model.BookLending, error)
}

type lendingService struct {
	newUnit repository.Factory
	now     func() time.Time
}

// NewLendingService constructs a LendingService.
func NewLendingService(factory repository.Factory) LendingService {
	return &lendingService{newUnit: factory, now: func() time.Time { return time.Now().UTC() }}
}

func (s *lendingService) Lend(ctx context.Context, bookID int64, req LendRequest) (*model.BookLending, error) {
	if bookID <= 0 {
		return nil, ErrIDRequired
	}

	uow := s.newUnit()
	book, err := uow.Books().FirstOrDefault(ctx, specs.BookByID(bookID))
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, ErrNotFound
	}

	history, err := uow.Lendings().Get(ctx, specs.OpenLendingsForBook(bookID))
	if err != nil {
		return nil, err
	}
	for _, l := range history {
		if l.ReturnedAt == nil {
			return nil, ErrBookUnavailable
		}
	}

	days := req.Days
	if days <= 0 {
		days = DefaultLoanDays
	}
	now := s.now()
	lending := &model.BookLending{
		BookID:        bookID,
		BorrowerName:  req.BorrowerName,
		BorrowerEmail: req.BorrowerEmail,
		LentAt:        now,
		DueAt:         now.AddDate(0, 0, days),
	}
	if _, err := uow.Lendings().Add(ctx, lending); err != nil {
		return nil, err
	}
	// A lending committed since the check above trips the open-lending
	// unique index.
	if err := uow.SaveChanges(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %w", ErrBookUnavailable, err)
		}
		return nil, translate(err)
	}
	lending.Book = book
	return lending, nil
}

func (s *lendingService) Return(ctx context.Context, lendingID int64) (*model.BookLending, error) {
	if lendingID <= 0 {
		return nil, ErrIDRequired
	}

	uow := s.newUnit()
	lending, err := uow.Lendings().FirstOrDefault(ctx, specs.LendingByID(lendingID))
	if err != nil {
		return nil, err
	}
	if lending == nil {
		return nil, ErrNotFound
	}
	if lending.ReturnedAt != nil {
		return nil, ErrAlreadyReturned
	}

	returned := s.now()
	lending.ReturnedAt = &returned
	if err := uow.Lendings().Update(ctx, lending); err != nil {
		return nil, err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, translate(err)
	}
	return lending, nil
}
