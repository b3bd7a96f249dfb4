// Package schema builds the immutable table registry consumed by the
// inference engine.
//
// A Registry is constructed once per analysis run from the full set of
// schema sources and never mutated afterwards, so it may be shared
// across any number of concurrent analyses without locking. A schema
// change means building a new registry, never editing the old one.
package schema

import (
	"github.com/syssam/surtype/types"
)

// A FieldDef is one declared field of a table.
type FieldDef struct {
	Name     string
	Type     *types.Type
	Optional bool
	Default  string
}

// A Table is one declared table. Fields preserve declaration order.
type Table struct {
	Name       string
	Schemafull bool
	Relation   bool
	From, To   string

	fields []*FieldDef
	index  map[string]int
}

// Field returns the named field definition, if declared.
func (t *Table) Field(name string) (*FieldDef, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.fields[i], true
}

// Fields returns the field definitions in declaration order.
func (t *Table) Fields() []*FieldDef {
	return t.fields
}

// ObjectType returns the table's full row shape as an Object type, in
// declaration order. Record links inside it stay unexpanded.
func (t *Table) ObjectType() *types.Type {
	fields := make([]types.Field, 0, len(t.fields))
	for _, f := range t.fields {
		ft := f.Type
		if f.Optional && ft.Kind != types.Option {
			ft = types.NewOption(ft)
		}
		fields = append(fields, types.Field{Name: f.Name, Type: ft})
	}
	return types.NewObject(fields)
}

// IDType returns the type of the table's implicit identity field.
func (t *Table) IDType() *types.Type {
	return types.NewRecord(t.Name)
}

func (t *Table) setField(def *FieldDef) {
	if i, ok := t.index[def.Name]; ok {
		t.fields[i] = def
		return
	}
	t.index[def.Name] = len(t.fields)
	t.fields = append(t.fields, def)
}

// A Registry is the immutable snapshot of every declared table.
type Registry struct {
	tables map[string]*Table
	order  []string
}

// Table returns the named table, if declared.
func (r *Registry) Table(name string) (*Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Tables returns every table in first-declaration order.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tables[name])
	}
	return out
}

// Len returns the number of declared tables.
func (r *Registry) Len() int { return len(r.order) }
