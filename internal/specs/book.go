package specs

import (
	"libapi/internal/model"
	"libapi/internal/specification"
)

func books() *specification.Builder[model.Book] {
	return specification.New[model.Book]().Include(model.RelAuthor).Include(model.RelGenre)
}

// AllBooks returns every book with its author and genre.
func AllBooks() specification.Specification[model.Book] {
	return books().MustBuild()
}

func BookByID(id int64) specification.Specification[model.Book] {
	return books().Where(specification.Eq(BookID, id)).MustBuild()
}

// BooksFiltered searches titles and ISBNs.
func BooksFiltered(term string, pageNo, pageSize int) (specification.Specification[model.Book], error) {
	return filtered(books(), term, pageNo, pageSize, BookID, BookTitle, BookISBN).Build()
}

func BooksFilteredCount(term string) specification.Specification[model.Book] {
	return search(specification.New[model.Book](), term, BookTitle, BookISBN).MustBuild()
}

// BooksByAuthor lists an author's books, oldest first.
func BooksByAuthor(authorID int64) specification.Specification[model.Book] {
	return books().Where(specification.Eq(BookAuthorID, authorID)).OrderBy(BookID).MustBuild()
}
