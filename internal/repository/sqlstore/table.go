package sqlstore

import (
	"fmt"
	"reflect"
	"strings"
)

const idColumn = "id"

// Table maps an entity struct to a table. Columns come from `db` struct
// tags in field order; the `id` column holds the int64 identity.
type Table[T any] struct {
	name    string
	columns []string
	fields  []int
	idField int
}

// NewTable derives the table layout of T.
func NewTable[T any](name string) (*Table[T], error) {
	if err := sanitizeIdentifier(name); err != nil {
		return nil, fmt.Errorf("invalid table name: %w", err)
	}

	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("table %s: entity must be a struct", name)
	}

	t := &Table[T]{name: name, idField: -1}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		if err := sanitizeIdentifier(tag); err != nil {
			return nil, fmt.Errorf("invalid column name '%s': %w", tag, err)
		}
		if tag == idColumn {
			if field.Type.Kind() != reflect.Int64 {
				return nil, fmt.Errorf("table %s: id field must be int64", name)
			}
			t.idField = i
		}
		t.columns = append(t.columns, tag)
		t.fields = append(t.fields, i)
	}

	if t.idField < 0 {
		return nil, fmt.Errorf("table %s: no %q column", name, idColumn)
	}
	return t, nil
}

// MustTable is NewTable for package-level table definitions.
func MustTable[T any](name string) *Table[T] {
	t, err := NewTable[T](name)
	if err != nil {
		panic(err)
	}
	return t
}


func (t *Table[T]) hasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

func (t *Table[T]) selectList() string {
	quoted := make([]string, len(t.columns))
	for i, c := range t.columns {
		quoted[i] = quoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

func (t *Table[T]) scanDestinations(item *T) []any {
	v := reflect.ValueOf(item).Elem()
	dests := make([]any, len(t.fields))
	for i, idx := range t.fields {
		dests[i] = v.Field(idx).Addr().Interface()
	}
	return dests
}

// values returns the columns and values to write for item. The id column
// is skipped when withID is false.
func (t *Table[T]) values(item *T, withID bool) ([]string, []any) {
	v := reflect.ValueOf(item).Elem()
	cols := make([]string, 0, len(t.columns))
	vals := make([]any, 0, len(t.columns))
	for i, idx := range t.fields {
		if idx == t.idField && !withID {
			continue
		}
		cols = append(cols, t.columns[i])
		vals = append(vals, v.Field(idx).Interface())
	}
	return cols, vals
}

func (t *Table[T]) id(item *T) int64 {
	return reflect.ValueOf(item).Elem().Field(t.idField).Int()
}

func (t *Table[T]) setID(item *T, id int64) {
	reflect.ValueOf(item).Elem().Field(t.idField).SetInt(id)
}
