package sqlstore

import (
	"fmt"
	"strings"

	"libapi/internal/specification"
)

// argList collects bind arguments and hands out dialect placeholders.
type argList struct {
	dialect Dialect
	args    []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return a.dialect.Placeholder(len(a.args))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// compilePredicate renders p as a SQL boolean expression over table t.
func compilePredicate[T any](p *specification.Predicate[T], t *Table[T], args *argList) (string, error) {
	switch p.Op() {
	case specification.OpAnd:
		children := p.Children()
		parts := make([]string, 0, len(children))
		for _, c := range children {
			sql, err := compilePredicate(c, t, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, sql)
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil

	case specification.OpContainsFold:
		fields := p.Fields()
		if len(fields) == 0 {
			return "", fmt.Errorf("%s: contains predicate without fields", t.name)
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(fmt.Sprint(p.Value()))) + "%"
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			if !t.hasColumn(f.Column) {
				return "", fmt.Errorf("%s: unknown column %q", t.name, f.Column)
			}
			parts = append(parts, fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, args.dialect.Lower(quoteIdentifier(f.Column)), args.add(pattern)))
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil

	case specification.OpEq, specification.OpNe, specification.OpGt,
		specification.OpGte, specification.OpLt, specification.OpLte:
		f := p.Fields()[0]
		if !t.hasColumn(f.Column) {
			return "", fmt.Errorf("%s: unknown column %q", t.name, f.Column)
		}
		op := string(p.Op())
		if p.Op() == specification.OpNe {
			op = "<>"
		}
		return fmt.Sprintf("%s %s %s", quoteIdentifier(f.Column), op, args.add(p.Value())), nil
	}

	return "", fmt.Errorf("%s: unsupported predicate %q", t.name, p.Op())
}
