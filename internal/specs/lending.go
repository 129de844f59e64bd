package specs

import (
	"libapi/internal/model"
	"libapi/internal/specification"
)

func lendings() *specification.Builder[model.BookLending] {
	return specification.New[model.BookLending]().Include(model.RelBook)
}

func AllLendings() specification.Specification[model.BookLending] {
	return lendings().MustBuild()
}

func LendingByID(id int64) specification.Specification[model.BookLending] {
	return lendings().Where(specification.Eq(LendingID, id)).MustBuild()
}

// LendingsFiltered searches borrower names and emails.
func LendingsFiltered(term string, pageNo, pageSize int) (specification.Specification[model.BookLending], error) {
	return filtered(lendings(), term, pageNo, pageSize, LendingID, LendingBorrowerName, LendingBorrowerEmail).Build()
}

func LendingsFilteredCount(term string) specification.Specification[model.BookLending] {
	return search(specification.New[model.BookLending](), term, LendingBorrowerName, LendingBorrowerEmail).MustBuild()
}

// OpenLendingsForBook selects lendings of bookID, newest first. Whether a
// lending is still open is decided on ReturnedAt by the caller; the
// predicate language has no null test.
func OpenLendingsForBook(bookID int64) specification.Specification[model.BookLending] {
	return specification.New[model.BookLending]().
		Where(specification.Eq(LendingBookID, bookID)).
		OrderByDescending(LendingLentAt).
		MustBuild()
}
