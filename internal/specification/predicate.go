package specification

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Op identifies the kind of a predicate node.
type Op string

const (
	OpEq           Op = "="
	OpNe           Op = "!="
	OpGt           Op = ">"
	OpGte          Op = ">="
	OpLt           Op = "<"
	OpLte          Op = "<="
	OpContainsFold Op = "contains_fold"
	OpAnd          Op = "and"
)

// Field names a store column of T and knows how to read it from an entity.
type Field[T any] struct {
	Column string
	get    func(*T) any
}

// NewField creates a Field for the given column using get as accessor.
func NewField[T any, V any](column string, get func(*T) V) Field[T] {
	return Field[T]{
		Column: column,
		get:    func(t *T) any { return get(t) },
	}
}

// Value reads the field from item.
func (f Field[T]) Value(item *T) any {
	if f.get == nil || item == nil {
		return nil
	}
	return f.get(item)
}

// Predicate is a boolean filter over T, represented as data so that store
// adapters can translate it. A nil *Predicate matches everything.
type Predicate[T any] struct {
	op       Op
	fields   []Field[T]
	value    any
	children []*Predicate[T]
	key      string
}

func compare[T any](op Op, field Field[T], value any) *Predicate[T] {
	p := &Predicate[T]{op: op, fields: []Field[T]{field}, value: value}
	p.key = fmt.Sprintf("%s %s %T(%v)", field.Column, op, value, value)
	return p
}

// Eq matches entities whose field equals value.
func Eq[T any](field Field[T], value any) *Predicate[T] { return compare(OpEq, field, value) }

// Ne matches entities whose field differs from value.
func Ne[T any](field Field[T], value any) *Predicate[T] { return compare(OpNe, field, value) }

func Gt[T any](field Field[T], value any) *Predicate[T]  { return compare(OpGt, field, value) }
func Gte[T any](field Field[T], value any) *Predicate[T] { return compare(OpGte, field, value) }
func Lt[T any](field Field[T], value any) *Predicate[T]  { return compare(OpLt, field, value) }
func Lte[T any](field Field[T], value any) *Predicate[T] { return compare(OpLte, field, value) }

// ContainsFold matches entities where at least one of fields contains term,
// ignoring case. The term is stored lower-cased, so terms differing only in
// case yield the same predicate.
func ContainsFold[T any](term string, fields ...Field[T]) *Predicate[T] {
	term = strings.ToLower(term)
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
	}
	return &Predicate[T]{
		op:     OpContainsFold,
		fields: append([]Field[T](nil), fields...),
		value:  term,
		key:    fmt.Sprintf("[%s] %s %q", strings.Join(cols, ","), OpContainsFold, term),
	}
}

// And conjoins predicates. Nil operands are ignored, nested conjunctions are
// flattened and structurally equal operands collapse into one, so And(p, p)
// is p and the result does not depend on operand order.
func And[T any](preds ...*Predicate[T]) *Predicate[T] {
	seen := make(map[string]struct{})
	var flat []*Predicate[T]
	var add func(p *Predicate[T])
	add = func(p *Predicate[T]) {
		if p == nil {
			return
		}
		if p.op == OpAnd {
			for _, c := range p.children {
				add(c)
			}
			return
		}
		if _, ok := seen[p.key]; ok {
			return
		}
		seen[p.key] = struct{}{}
		flat = append(flat, p)
	}
	for _, p := range preds {
		add(p)
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}

	sort.Slice(flat, func(i, j int) bool { return flat[i].key < flat[j].key })
	keys := make([]string, len(flat))
	for i, c := range flat {
		keys[i] = "(" + c.key + ")"
	}
	return &Predicate[T]{
		op:       OpAnd,
		children: flat,
		key:      strings.Join(keys, " and "),
	}
}

// Op returns the node kind.
func (p *Predicate[T]) Op() Op { return p.op }

// Fields returns the fields a leaf predicate reads. Empty for OpAnd.
func (p *Predicate[T]) Fields() []Field[T] { return append([]Field[T](nil), p.fields...) }

// Value returns the operand of a leaf predicate.
func (p *Predicate[T]) Value() any { return p.value }

// Children returns the operands of an OpAnd node.
func (p *Predicate[T]) Children() []*Predicate[T] {
	return append([]*Predicate[T](nil), p.children...)
}

// Key returns a canonical text form. Two predicates with the same key are
// equivalent.
func (p *Predicate[T]) Key() string {
	if p == nil {
		return "true"
	}
	return p.key
}

func (p *Predicate[T]) String() string { return p.Key() }

// Matches evaluates the predicate against item.
func (p *Predicate[T]) Matches(item *T) bool {
	if p == nil {
		return true
	}
	switch p.op {
	case OpAnd:
		for _, c := range p.children {
			if !c.Matches(item) {
				return false
			}
		}
		return true
	case OpContainsFold:
		term := fmt.Sprint(p.value)
		for _, f := range p.fields {
			if strings.Contains(strings.ToLower(fmt.Sprint(f.Value(item))), term) {
				return true
			}
		}
		return false
	}

	v := p.fields[0].Value(item)
	switch p.op {
	case OpEq:
		return equal(v, p.value)
	case OpNe:
		return !equal(v, p.value)
	}
	c, ok := compareValues(v, p.value)
	if !ok {
		return false
	}
	switch p.op {
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	}
	return false
}

func equal(a, b any) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

func compareValues(a, b any) (int, bool) {
	af, okA := toFloat64(a)
	bf, okB := toFloat64(b)
	if okA && okB {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt), true
		}
	}

	as, okA := a.(string)
	bs, okB := b.(string)
	if okA && okB {
		return strings.Compare(as, bs), true
	}

	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
