package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// Relation loads related entities for the items a query returned.
type Relation[T any] interface {
	Name() string
	Load(ctx context.Context, q Querier, d Dialect, items []T) error
}

type belongsTo[T any, R any] struct {
	name       string
	target     *Table[R]
	foreignKey func(*T) int64
	assign     func(*T, *R)
}

// BelongsTo declares a to-one relation: foreignKey reads the referenced id
// from T and assign stores the loaded R on it.
func BelongsTo[T any, R any](name string, target *Table[R], foreignKey func(*T) int64, assign func(*T, *R)) Relation[T] {
	return &belongsTo[T, R]{name: name, target: target, foreignKey: foreignKey, assign: assign}
}

func (r *belongsTo[T, R]) Name() string { return r.name }

// Load fetches all referenced rows with one IN query.
func (r *belongsTo[T, R]) Load(ctx context.Context, q Querier, d Dialect, items []T) error {
	args := argList{dialect: d}
	seen := make(map[int64]struct{})
	var marks []string
	for i := range items {
		fk := r.foreignKey(&items[i])
		if fk == 0 {
			continue
		}
		if _, ok := seen[fk]; ok {
			continue
		}
		seen[fk] = struct{}{}
		marks = append(marks, args.add(fk))
	}
	if len(marks) == 0 {
		return nil
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)",
		r.target.selectList(),
		quoteIdentifier(r.target.name),
		quoteIdentifier(idColumn),
		strings.Join(marks, ", "),
	)
	rows, err := q.QueryContext(ctx, stmt, args.args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	loaded := make(map[int64]R, len(marks))
	for rows.Next() {
		var out R
		if err := rows.Scan(r.target.scanDestinations(&out)...); err != nil {
			return err
		}
		loaded[r.target.id(&out)] = out
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range items {
		if related, ok := loaded[r.foreignKey(&items[i])]; ok {
			related := related
			r.assign(&items[i], &related)
		}
	}
	return nil
}
