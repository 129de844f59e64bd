package specs

import (
	"libapi/internal/model"
	"libapi/internal/specification"
)

func AllAuthors() specification.Specification[model.Author] {
	return specification.New[model.Author]().MustBuild()
}

func AuthorByID(id int64) specification.Specification[model.Author] {
	return specification.New[model.Author]().Where(specification.Eq(AuthorID, id)).MustBuild()
}

// AuthorsFiltered searches first and last names.
func AuthorsFiltered(term string, pageNo, pageSize int) (specification.Specification[model.Author], error) {
	return filtered(specification.New[model.Author](), term, pageNo, pageSize, AuthorID, AuthorFirstName, AuthorLastName).Build()
}

func AuthorsFilteredCount(term string) specification.Specification[model.Author] {
	return search(specification.New[model.Author](), term, AuthorFirstName, AuthorLastName).MustBuild()
}
