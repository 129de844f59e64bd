package handler

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"libapi/internal/model"
)

var validate = newValidator()

// newValidator reports fields by their JSON or query names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// entityRequest is a validated request body that becomes an entity of T.
type entityRequest[T any] interface {
	toEntity() *T
}

type listQuery struct {
	Search   string `query:"search" validate:"max=200"`
	Page     int    `query:"page" validate:"gte=0"`
	PageSize int    `query:"pageSize" validate:"gte=0"`
}

type authorRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

func (r authorRequest) toEntity() *model.Author {
	return &model.Author{FirstName: strings.TrimSpace(r.FirstName), LastName: strings.TrimSpace(r.LastName)}
}

type genreRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (r genreRequest) toEntity() *model.Genre {
	return &model.Genre{Name: strings.TrimSpace(r.Name)}
}

type bookRequest struct {
	Title         string `json:"title" validate:"required,max=300"`
	ISBN          string `json:"isbn" validate:"required,max=20"`
	AuthorID      int64  `json:"author_id" validate:"required,gt=0"`
	GenreID       int64  `json:"genre_id" validate:"required,gt=0"`
	PublishedYear int    `json:"published_year" validate:"gte=0,lte=9999"`
}

func (r bookRequest) toEntity() *model.Book {
	return &model.Book{
		Title:         strings.TrimSpace(r.Title),
		ISBN:          strings.TrimSpace(r.ISBN),
		AuthorID:      r.AuthorID,
		GenreID:       r.GenreID,
		PublishedYear: r.PublishedYear,
	}
}

type lendRequest struct {
	BorrowerName  string `json:"borrower_name" validate:"required,max=200"`
	BorrowerEmail string `json:"borrower_email" validate:"required,email"`
	Days          int    `json:"days" validate:"omitempty,gte=1,lte=365"`
}
