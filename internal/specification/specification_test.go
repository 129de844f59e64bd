package specification

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Empty(t *testing.T) {
	s, err := New[item]().Build()
	require.NoError(t, err)

	assert.Nil(t, s.Criteria())
	assert.Empty(t, s.Includes())
	assert.False(t, s.Order().IsSet())
	skip, take, enabled := s.Paging()
	assert.Zero(t, skip)
	assert.Zero(t, take)
	assert.False(t, enabled)
}

func TestBuilder_WhereOrderIndependent(t *testing.T) {
	p := Gt(itemID, 1)
	q := ContainsFold("a", itemName)

	pq := New[item]().Where(p).Where(q).MustBuild()
	qp := New[item]().Where(q).Where(p).MustBuild()
	single := New[item]().Where(And(p, q)).MustBuild()

	assert.Equal(t, pq.Criteria().Key(), qp.Criteria().Key())
	assert.Equal(t, pq.Criteria().Key(), single.Criteria().Key())

	for _, it := range sampleItems() {
		it := it
		want := p.Matches(&it) && q.Matches(&it)
		assert.Equal(t, want, pq.Criteria().Matches(&it))
		assert.Equal(t, want, qp.Criteria().Matches(&it))
	}
}

func TestBuilder_WhereNTimes(t *testing.T) {
	preds := []*Predicate[item]{Gt(itemID, 1), Lt(itemID, 5), Ne(itemID, 3), ContainsFold("a", itemName)}

	b := New[item]()
	for _, p := range preds {
		b.Where(p)
	}
	s := b.MustBuild()

	reversed := New[item]()
	for i := len(preds) - 1; i >= 0; i-- {
		reversed.Where(preds[i])
	}

	assert.Equal(t, And(preds...).Key(), s.Criteria().Key())
	assert.Equal(t, s.Criteria().Key(), reversed.MustBuild().Criteria().Key())
}

func TestBuilder_IncludeDeduplicates(t *testing.T) {
	once := New[item]().Include("Author").Include("Genre").MustBuild()
	twice := New[item]().Include("Author").Include("Genre").Include("Author").MustBuild()

	assert.Equal(t, []string{"Author", "Genre"}, once.Includes())
	assert.Equal(t, once.Includes(), twice.Includes())
}

func TestBuilder_OrderLastWriteWins(t *testing.T) {
	s := New[item]().OrderBy(itemID).OrderByDescending(itemName).MustBuild()
	assert.Equal(t, Order{Column: "name", Direction: Descending}, s.Order())

	s = New[item]().OrderByDescending(itemName).OrderBy(itemID).MustBuild()
	assert.Equal(t, Order{Column: "id", Direction: Ascending}, s.Order())
	assert.True(t, s.Order().IsSet())
}

func TestBuilder_Paginate(t *testing.T) {
	s, err := New[item]().Paginate(3, 3).Build()
	require.NoError(t, err)

	skip, take, enabled := s.Paging()
	assert.Equal(t, 3, skip)
	assert.Equal(t, 3, take)
	assert.True(t, enabled)

	_, err = New[item]().Paginate(-1, 3).Build()
	assert.ErrorIs(t, err, ErrNegativeSkip)

	_, err = New[item]().Paginate(0, -3).Build()
	assert.ErrorIs(t, err, ErrNegativeTake)

	assert.Panics(t, func() { New[item]().Paginate(-1, -1).MustBuild() })
}

func TestBuilder_Page(t *testing.T) {
	s, err := New[item]().Page(3, 4).Build()
	require.NoError(t, err)
	skip, take, enabled := s.Paging()
	assert.Equal(t, 8, skip)
	assert.Equal(t, 4, take)
	assert.True(t, enabled)

	_, err = New[item]().Page(0, 4).Build()
	assert.ErrorIs(t, err, ErrNegativeSkip)

	_, err = New[item]().Page(1, -4).Build()
	assert.ErrorIs(t, err, ErrNegativeTake)

	_, err = New[item]().Page(math.MaxInt/4+2, 4).Build()
	assert.ErrorIs(t, err, ErrPageOverflow)

	s, err = New[item]().Page(math.MaxInt/4+1, 4).Build()
	require.NoError(t, err)
	skip, _, _ = s.Paging()
	assert.Equal(t, math.MaxInt/4*4, skip)
}

func TestBuilder_BuiltValueIsIndependent(t *testing.T) {
	b := New[item]().Include("Author")
	s := b.MustBuild()

	b.Include("Genre").Where(Eq(itemID, 1)).Paginate(0, 10)

	assert.Equal(t, []string{"Author"}, s.Includes())
	assert.Nil(t, s.Criteria())
	_, _, enabled := s.Paging()
	assert.False(t, enabled)

	inc := s.Includes()
	inc[0] = "changed"
	assert.Equal(t, []string{"Author"}, s.Includes())
}
