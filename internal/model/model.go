package model

import "time"

// Package model contains the library catalog domain models.
// Columns are declared with `db` tags; relation fields carry no tag and are
// populated only when a query asks for them to be included.

// Relation names usable as include hints.
const (
	RelAuthor = "Author"
	RelGenre  = "Genre"
	RelBook   = "Book"
)

// Author writes books.
type Author struct {
	ID        int64     `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (a Author) Identity() int64 { return a.ID }

// Genre classifies books. Names are unique.
type Genre struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (g Genre) Identity() int64 { return g.ID }

// Book belongs to one author and one genre. ISBNs are unique.
type Book struct {
	ID            int64     `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	ISBN          string    `db:"isbn" json:"isbn"`
	AuthorID      int64     `db:"author_id" json:"author_id"`
	GenreID       int64     `db:"genre_id" json:"genre_id"`
	PublishedYear int       `db:"published_year" json:"published_year"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	Author *Author `json:"author,omitempty"`
	Genre  *Genre  `json:"genre,omitempty"`
}

func (b Book) Identity() int64 { return b.ID }

// BookLending records a book lent to a borrower. ReturnedAt is nil while the
// book is still out.
type BookLending struct {
	ID            int64      `db:"id" json:"id"`
	BookID        int64      `db:"book_id" json:"book_id"`
	BorrowerName  string     `db:"borrower_name" json:"borrower_name"`
	BorrowerEmail string     `db:"borrower_email" json:"borrower_email"`
	LentAt        time.Time  `db:"lent_at" json:"lent_at"`
	DueAt         time.Time  `db:"due_at" json:"due_at"`
	ReturnedAt    *time.Time `db:"returned_at" json:"returned_at,omitempty"`

	Book *Book `json:"book,omitempty"`
}

func (l BookLending) Identity() int64 { return l.ID }
