package specs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libapi/internal/model"
	"libapi/internal/specification"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{7, 3, 3},
		{6, 3, 2},
		{1, 10, 1},
		{10, 0, 0},
		{10, -1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}
}

func TestAuthorsFiltered_Paging(t *testing.T) {
	s, err := AuthorsFiltered("", 2, 3)
	require.NoError(t, err)

	skip, take, enabled := s.Paging()
	assert.True(t, enabled)
	assert.Equal(t, 3, skip)
	assert.Equal(t, 3, take)
	assert.Nil(t, s.Criteria())
	assert.Equal(t, specification.Order{Column: "id", Direction: specification.Ascending}, s.Order())
}

func TestAuthorsFiltered_ZeroPageMeansNoPaging(t *testing.T) {
	for _, p := range [][2]int{{0, 0}, {0, 10}, {1, 0}} {
		s, err := AuthorsFiltered("x", p[0], p[1])
		require.NoError(t, err)
		_, _, enabled := s.Paging()
		assert.False(t, enabled, "page=%d size=%d", p[0], p[1])
	}
}

func TestAuthorsFiltered_NegativePaging(t *testing.T) {
	_, err := AuthorsFiltered("", -1, 10)
	assert.ErrorIs(t, err, specification.ErrNegativeSkip)

	_, err = AuthorsFiltered("", 1, -10)
	assert.ErrorIs(t, err, specification.ErrNegativeTake)
}

func TestFiltered_PageOffsetOverflowIsRejected(t *testing.T) {
	_, err := BooksFiltered("", math.MaxInt/4+2, 4)
	assert.ErrorIs(t, err, specification.ErrPageOverflow)

	_, err = LendingsFiltered("", math.MaxInt, 2)
	assert.ErrorIs(t, err, specification.ErrPageOverflow)
}

func TestAuthorsFiltered_SearchFields(t *testing.T) {
	authors := []model.Author{
		{ID: 1, FirstName: "Ursula", LastName: "Le Guin"},
		{ID: 2, FirstName: "Terry", LastName: "Pratchett"},
		{ID: 3, FirstName: "Iain", LastName: "Banks"},
	}

	s, err := AuthorsFiltered("  GUIN ", 0, 0)
	require.NoError(t, err)

	count := AuthorsFilteredCount("guin")
	assert.Equal(t, count.Criteria().Key(), s.Criteria().Key())

	var got []int64
	for i := range authors {
		if s.Criteria().Matches(&authors[i]) {
			got = append(got, authors[i].ID)
		}
	}
	assert.Equal(t, []int64{1}, got)
}

func TestFilteredCount_IgnoresOrderAndPaging(t *testing.T) {
	s := BooksFilteredCount("dune")
	assert.False(t, s.Order().IsSet())
	_, _, enabled := s.Paging()
	assert.False(t, enabled)
	assert.Empty(t, s.Includes())

	blank := GenresFilteredCount("   ")
	assert.Nil(t, blank.Criteria())
}

func TestBookSpecs_IncludeRelations(t *testing.T) {
	s, err := BooksFiltered("", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RelAuthor, model.RelGenre}, s.Includes())
	assert.Equal(t, []string{model.RelAuthor, model.RelGenre}, BookByID(1).Includes())
	assert.Equal(t, []string{model.RelAuthor, model.RelGenre}, AllBooks().Includes())

	l, err := LendingsFiltered("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{model.RelBook}, l.Includes())
}

func TestByID(t *testing.T) {
	g := model.Genre{ID: 4, Name: "Fantasy"}
	assert.True(t, GenreByID(4).Criteria().Matches(&g))
	assert.False(t, GenreByID(5).Criteria().Matches(&g))

	b := model.Book{ID: 9, AuthorID: 2}
	assert.True(t, BookByID(9).Criteria().Matches(&b))
	assert.True(t, BooksByAuthor(2).Criteria().Matches(&b))
	assert.False(t, BooksByAuthor(3).Criteria().Matches(&b))
}

func TestOpenLendingsForBook(t *testing.T) {
	s := OpenLendingsForBook(7)
	assert.Equal(t, specification.Order{Column: "lent_at", Direction: specification.Descending}, s.Order())

	l := model.BookLending{BookID: 7}
	assert.True(t, s.Criteria().Matches(&l))
	l.BookID = 8
	assert.False(t, s.Criteria().Matches(&l))
}

func TestAll(t *testing.T) {
	assert.Nil(t, AllAuthors().Criteria())
	assert.Nil(t, AllGenres().Criteria())
	assert.Nil(t, AllLendings().Criteria())
	_, _, enabled := AllAuthors().Paging()
	assert.False(t, enabled)
}
