// Package specification describes queries as data: a filter predicate,
// related-data include hints, an ordering rule and a page window. A
// Specification never touches a store; repositories execute it.
package specification

import (
	"errors"
	"math"
)

var (
	ErrNegativeSkip = errors.New("specification: skip must not be negative")
	ErrNegativeTake = errors.New("specification: take must not be negative")
	ErrPageOverflow = errors.New("specification: page offset overflows")
)

// Direction of an ordering rule.
type Direction int

const (
	Unordered Direction = iota
	Ascending
	Descending
)

// Order is the single ordering rule of a specification.
type Order struct {
	Column    string
	Direction Direction
}

// IsSet reports whether an ordering rule was requested.
func (o Order) IsSet() bool { return o.Direction != Unordered && o.Column != "" }

// Specification is an immutable description of a query over T.
type Specification[T any] struct {
	criteria *Predicate[T]
	includes []string
	order    Order
	skip     int
	take     int
	paging   bool
}

// Criteria returns the filter predicate, nil when everything matches.
func (s Specification[T]) Criteria() *Predicate[T] { return s.criteria }

// Includes returns the relation names to eager-load, in insertion order.
func (s Specification[T]) Includes() []string { return append([]string(nil), s.includes...) }

// Order returns the ordering rule.
func (s Specification[T]) Order() Order { return s.order }

// Paging returns the page window and whether paging is enabled.
func (s Specification[T]) Paging() (skip, take int, enabled bool) {
	return s.skip, s.take, s.paging
}

// Builder accumulates specification intent. It is not safe for concurrent
// use; Build hands out an independent value.
type Builder[T any] struct {
	spec Specification[T]
	err  error
}

// New starts an empty specification for T.
func New[T any]() *Builder[T] {
	return &Builder[T]{}
}

// Where adds criteria. Repeated calls AND the predicates together.
func (b *Builder[T]) Where(p *Predicate[T]) *Builder[T] {
	if b.spec.criteria == nil {
		b.spec.criteria = p
		return b
	}
	b.spec.criteria = And(b.spec.criteria, p)
	return b
}

// Include asks the repository to load the named relation. Adding a name
// twice has no effect.
func (b *Builder[T]) Include(relation string) *Builder[T] {
	for _, name := range b.spec.includes {
		if name == relation {
			return b
		}
	}
	b.spec.includes = append(b.spec.includes, relation)
	return b
}

// OrderBy sorts ascending by field. It replaces any earlier ordering.
func (b *Builder[T]) OrderBy(field Field[T]) *Builder[T] {
	b.spec.order = Order{Column: field.Column, Direction: Ascending}
	return b
}

// OrderByDescending sorts descending by field. It replaces any earlier
// ordering.
func (b *Builder[T]) OrderByDescending(field Field[T]) *Builder[T] {
	b.spec.order = Order{Column: field.Column, Direction: Descending}
	return b
}

// Paginate sets the page window and enables paging.
func (b *Builder[T]) Paginate(skip, take int) *Builder[T] {
	switch {
	case skip < 0:
		b.fail(ErrNegativeSkip)
		return b
	case take < 0:
		b.fail(ErrNegativeTake)
		return b
	}
	b.spec.skip = skip
	b.spec.take = take
	b.spec.paging = true
	return b
}

// Page is Paginate for the 1-based page pageNo of pageSize items.
func (b *Builder[T]) Page(pageNo, pageSize int) *Builder[T] {
	switch {
	case pageNo < 1:
		b.fail(ErrNegativeSkip)
		return b
	case pageSize < 0:
		b.fail(ErrNegativeTake)
		return b
	case pageSize > 0 && pageNo-1 > math.MaxInt/pageSize:
		b.fail(ErrPageOverflow)
		return b
	}
	return b.Paginate((pageNo-1)*pageSize, pageSize)
}

func (b *Builder[T]) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build returns the finished specification or the first programming error
// recorded while building it.
func (b *Builder[T]) Build() (Specification[T], error) {
	if b.err != nil {
		return Specification[T]{}, b.err
	}
	out := b.spec
	out.includes = append([]string(nil), b.spec.includes...)
	return out, nil
}

// MustBuild is Build for specifications whose inputs are constants.
func (b *Builder[T]) MustBuild() Specification[T] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
