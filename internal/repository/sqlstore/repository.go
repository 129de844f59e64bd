package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"libapi/internal/repository"
	"libapi/internal/specification"
)

// Repository is the SQL implementation of repository.Repository. Reads run
// directly against the database; writes are staged on the Session.
type Repository[T repository.Entity] struct {
	session   *Session
	table     *Table[T]
	relations map[string]Relation[T]
}

// NewRepository creates a repository for table on session with the given
// includable relations.
func NewRepository[T repository.Entity](session *Session, table *Table[T], relations ...Relation[T]) *Repository[T] {
	r := &Repository[T]{
		session:   session,
		table:     table,
		relations: make(map[string]Relation[T], len(relations)),
	}
	for _, rel := range relations {
		r.relations[rel.Name()] = rel
	}
	return r
}

// FirstOrDefault returns the first entity selected by spec or nil.
func (r *Repository[T]) FirstOrDefault(ctx context.Context, spec specification.Specification[T]) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := buildQuery(r.table, r.session.dialect, r.relations, spec)
	if err != nil {
		return nil, err
	}
	if empty := q.first(); empty {
		return nil, nil
	}

	items, err := r.fetch(ctx, "first_or_default", q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// Get returns every entity selected by spec.
func (r *Repository[T]) Get(ctx context.Context, spec specification.Specification[T]) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := buildQuery(r.table, r.session.dialect, r.relations, spec)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, "get", q)
}

// Count returns the number of entities matching spec's criteria.
func (r *Repository[T]) Count(ctx context.Context, spec specification.Specification[T]) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q, err := buildQuery(r.table, r.session.dialect, r.relations, spec)
	if err != nil {
		return 0, err
	}

	stmt, args := q.countSQL()
	start := time.Now()
	var n int
	err = r.session.db.QueryRowContext(ctx, stmt, args...).Scan(&n)
	observe(ctx, r.session.observer, "count", r.table.name, stmt, start, err)
	if err != nil {
		return 0, contextError(ctx, err)
	}
	return n, nil
}

func (r *Repository[T]) fetch(ctx context.Context, operation string, q *query[T]) ([]T, error) {
	stmt, args := q.selectSQL()
	start := time.Now()
	items, err := r.scanAll(ctx, stmt, args)
	observe(ctx, r.session.observer, operation, r.table.name, stmt, start, err)
	if err != nil {
		return nil, contextError(ctx, err)
	}

	for _, rel := range q.relations {
		start := time.Now()
		err := rel.Load(ctx, r.session.db, r.session.dialect, items)
		observe(ctx, r.session.observer, "include:"+rel.Name(), r.table.name, "", start, err)
		if err != nil {
			return nil, contextError(ctx, err)
		}
	}
	return items, nil
}

func (r *Repository[T]) scanAll(ctx context.Context, stmt string, args []any) ([]T, error) {
	rows, err := r.session.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var item T
		if err := rows.Scan(r.table.scanDestinations(&item)...); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Add stages an insert of item. A zero id lets the store generate one; it
// is written back to item after a successful commit.
func (r *Repository[T]) Add(ctx context.Context, item *T) (*T, error) {
	if item == nil {
		return nil, repository.ErrNilEntity
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.session.stage(change{
		operation: "insert",
		entity:    r.table.name,
		run: func(ctx context.Context, q Querier) (string, func(), error) {
			cols, vals := r.table.values(item, r.table.id(item) != 0)
			args := argList{dialect: r.session.dialect}
			quoted := make([]string, len(cols))
			marks := make([]string, len(cols))
			for i, c := range cols {
				quoted[i] = quoteIdentifier(c)
				marks[i] = args.add(vals[i])
			}
			stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
				quoteIdentifier(r.table.name),
				strings.Join(quoted, ", "),
				strings.Join(marks, ", "),
				quoteIdentifier(idColumn),
			)

			var id int64
			if err := q.QueryRowContext(ctx, stmt, args.args...).Scan(&id); err != nil {
				return stmt, nil, err
			}
			return stmt, func() { r.table.setID(item, id) }, nil
		},
	})
	return item, nil
}

// Update stages a full replace of every column of item.
func (r *Repository[T]) Update(ctx context.Context, item *T) error {
	if item == nil {
		return repository.ErrNilEntity
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.session.stage(change{
		operation: "update",
		entity:    r.table.name,
		run: func(ctx context.Context, q Querier) (string, func(), error) {
			cols, vals := r.table.values(item, false)
			args := argList{dialect: r.session.dialect}
			sets := make([]string, len(cols))
			for i, c := range cols {
				sets[i] = quoteIdentifier(c) + " = " + args.add(vals[i])
			}
			stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
				quoteIdentifier(r.table.name),
				strings.Join(sets, ", "),
				quoteIdentifier(idColumn),
				args.add(r.table.id(item)),
			)
			return stmt, nil, execAffecting(ctx, q, stmt, args.args, repository.ErrNoUpdateItem)
		},
	})
	return nil
}

// Delete stages the removal of item.
func (r *Repository[T]) Delete(ctx context.Context, item *T) error {
	if item == nil {
		return repository.ErrNilEntity
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.session.stage(change{
		operation: "delete",
		entity:    r.table.name,
		run: func(ctx context.Context, q Querier) (string, func(), error) {
			args := argList{dialect: r.session.dialect}
			stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
				quoteIdentifier(r.table.name),
				quoteIdentifier(idColumn),
				args.add(r.table.id(item)),
			)
			return stmt, nil, execAffecting(ctx, q, stmt, args.args, repository.ErrNoDeleteItem)
		},
	})
	return nil
}

func execAffecting(ctx context.Context, q Querier, stmt string, args []any, none error) error {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return none
	}
	return nil
}
