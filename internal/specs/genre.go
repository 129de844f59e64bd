package specs

import (
	"libapi/internal/model"
	"libapi/internal/specification"
)

func AllGenres() specification.Specification[model.Genre] {
	return specification.New[model.Genre]().MustBuild()
}

func GenreByID(id int64) specification.Specification[model.Genre] {
	return specification.New[model.Genre]().Where(specification.Eq(GenreID, id)).MustBuild()
}

func GenresFiltered(term string, pageNo, pageSize int) (specification.Specification[model.Genre], error) {
	return filtered(specification.New[model.Genre](), term, pageNo, pageSize, GenreID, GenreName).Build()
}

func GenresFilteredCount(term string) specification.Specification[model.Genre] {
	return search(specification.New[model.Genre](), term, GenreName).MustBuild()
}
