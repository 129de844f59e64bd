package sqlstore

import (
	"fmt"
	"strings"

	"libapi/internal/repository"
	"libapi/internal/specification"
)

// query is a specification folded into SQL for one table.
type query[T any] struct {
	table     *Table[T]
	args      argList
	where     string
	relations []Relation[T]
	orderBy   string
	paged     bool
	skip      int
	take      int
}

// buildQuery applies spec in pipeline order: filter, includes, ordering, paging.
func buildQuery[T any](t *Table[T], d Dialect, relations map[string]Relation[T], spec specification.Specification[T]) (*query[T], error) {
	q := &query[T]{table: t, args: argList{dialect: d}}

	if c := spec.Criteria(); c != nil {
		where, err := compilePredicate(c, t, &q.args)
		if err != nil {
			return nil, err
		}
		q.where = where
	}

	for _, name := range spec.Includes() {
		rel, ok := relations[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", repository.ErrUnknownInclude, name, t.name)
		}
		q.relations = append(q.relations, rel)
	}

	if o := spec.Order(); o.IsSet() {
		if !t.hasColumn(o.Column) {
			return nil, fmt.Errorf("%s: unknown order column %q", t.name, o.Column)
		}
		dir := "ASC"
		if o.Direction == specification.Descending {
			dir = "DESC"
		}
		q.orderBy = quoteIdentifier(o.Column) + " " + dir
	}

	q.skip, q.take, q.paged = spec.Paging()
	return q, nil
}

func (q *query[T]) selectSQL() (string, []any) {
	var b strings.Builder
	args := q.args
	args.args = append([]any(nil), q.args.args...)

	fmt.Fprintf(&b, "SELECT %s FROM %s", q.table.selectList(), quoteIdentifier(q.table.name))
	if q.where != "" {
		b.WriteString(" WHERE " + q.where)
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY " + q.orderBy)
	}
	if q.paged {
		limit := args.add(q.take)
		offset := args.add(q.skip)
		fmt.Fprintf(&b, " LIMIT %s OFFSET %s", limit, offset)
	}
	return b.String(), args.args
}

func (q *query[T]) countSQL() (string, []any) {
	s := "SELECT COUNT(*) FROM " + quoteIdentifier(q.table.name)
	if q.where != "" {
		s += " WHERE " + q.where
	}
	return s, append([]any(nil), q.args.args...)
}

// first narrows the query to a single row, keeping any page offset.
func (q *query[T]) first() (empty bool) {
	if q.paged && q.take == 0 {
		return true
	}
	q.paged = true
	q.take = 1
	return false
}
