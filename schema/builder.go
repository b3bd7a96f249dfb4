package schema

import (
	"strings"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/parser"
	"github.com/syssam/surtype/types"
)

// A Builder aggregates schema definitions across source files into one
// Registry. It never throws away partial results: malformed statements
// become diagnostics plus Unknown-typed fields, and the rest of the
// file still contributes.
type Builder struct {
	tables   map[string]*Table
	order    []string
	declared map[string]bool
	// seen tracks (file, table, path) so a duplicated definition inside
	// one file is reported; across files the last definition wins with
	// a table-level warning instead.
	seen  map[string]bool
	diags diag.List
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		tables:   make(map[string]*Table),
		declared: make(map[string]bool),
		seen:     make(map[string]bool),
	}
}

// AddSource parses one schema file and applies its definitions.
func (b *Builder) AddSource(file, src string) {
	stmts, diags := parser.Parse(file, src)
	b.diags.Add(diags...)
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *parser.DefineTableStatement:
			b.defineTable(s)
		case *parser.DefineFieldStatement:
			b.defineField(file, s)
		case *parser.UnsupportedStatement:
			// Diagnostic already emitted by the parser.
		default:
			// Query statements inside schema files are legal SurrealQL
			// but contribute nothing to the registry.
		}
	}
}

// Build finalizes the registry. The Builder must not be reused after.
func (b *Builder) Build() (*Registry, diag.List) {
	return &Registry{tables: b.tables, order: b.order}, b.diags
}

func (b *Builder) table(name string) *Table {
	if t, ok := b.tables[name]; ok {
		return t
	}
	t := &Table{Name: name, index: make(map[string]int)}
	b.tables[name] = t
	b.order = append(b.order, name)
	return t
}

func (b *Builder) defineTable(s *parser.DefineTableStatement) {
	if b.declared[s.Name] {
		// Redefinition merges fields; mode and relation info follow the
		// latest definition.
		b.diags.Add(diag.Warnf(diag.TableRedefined, s.Loc, "table %q redefined; merging field definitions", s.Name))
	}
	b.declared[s.Name] = true
	t := b.table(s.Name)
	t.Schemafull = s.Schemafull
	t.Relation = s.Relation
	if s.From != "" {
		t.From = s.From
	}
	if s.To != "" {
		t.To = s.To
	}
}

func (b *Builder) defineField(file string, s *parser.DefineFieldStatement) {
	t := b.table(s.Table)

	key := file + "\x00" + s.Table + "\x00" + strings.Join(s.Path, ".")
	if b.seen[key] {
		b.diags.Add(diag.Errorf(diag.DuplicateFieldInSameDefinition, s.Loc,
			"field %q defined twice on table %q", strings.Join(s.Path, "."), s.Table))
	}
	b.seen[key] = true

	typ, optional := s.Type, false
	if typ.Kind == types.Option {
		typ, optional = typ.Elem, true
	}

	if len(s.Path) == 1 {
		t.setField(&FieldDef{Name: s.Path[0], Type: typ, Optional: optional, Default: s.Default})
		return
	}

	// Nested path: fold into an Object subtree on the root field. The
	// registry models a.b.c as nested objects, never flattened names.
	// Defaults are tracked for top-level fields only; an object member
	// has no FieldDef of its own to carry one.
	root := s.Path[0]
	var base *types.Type
	if existing, ok := t.Field(root); ok {
		base = existing.Type
	}
	sub := typ
	if optional {
		sub = types.NewOption(sub)
	}
	t.setField(&FieldDef{Name: root, Type: setNested(base, s.Path[1:], sub)})
}

// setNested returns a new Object type with the value at path replaced,
// preserving existing members and their order. A non-object base is
// replaced wholesale.
func setNested(base *types.Type, path []string, value *types.Type) *types.Type {
	if len(path) == 0 {
		return value
	}
	var fields []types.Field
	if base != nil && base.Kind == types.Object {
		fields = append(fields, base.Fields...)
	}
	for i, f := range fields {
		if f.Name == path[0] {
			fields[i] = types.Field{Name: f.Name, Type: setNested(f.Type, path[1:], value)}
			return types.NewObject(fields)
		}
	}
	fields = append(fields, types.Field{Name: path[0], Type: setNested(nil, path[1:], value)})
	return types.NewObject(fields)
}
