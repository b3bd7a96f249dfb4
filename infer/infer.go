// Package infer resolves the output type of every supported statement
// against an immutable schema registry.
//
// Infer is a pure function of its inputs: no state survives across
// calls, so one registry may serve unlimited concurrent invocations.
// Analysis never aborts on an error; it substitutes Unknown or empty
// results locally and keeps going, so one bad statement cannot block
// type generation for the rest of a file.
package infer

import (
	"fmt"
	"strings"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/parser"
	"github.com/syssam/surtype/schema"
	"github.com/syssam/surtype/types"
)

// Source identifies which statement kind produced a descriptor.
type Source uint8

const (
	SourceUnsupported Source = iota
	SourceSelect
	SourceCreate
	SourceInsert
	SourceUpdate
	SourceUpsert
	SourceDelete
	SourceRelate
)

var sourceNames = map[Source]string{
	SourceUnsupported: "unsupported",
	SourceSelect:      "select",
	SourceCreate:      "create",
	SourceInsert:      "insert",
	SourceUpdate:      "update",
	SourceUpsert:      "upsert",
	SourceDelete:      "delete",
	SourceRelate:      "relate",
}

// String returns the lowercase statement name.
func (s Source) String() string {
	if n, ok := sourceNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Source(%d)", s)
}

// A Field is one named output of a statement.
type Field struct {
	Name     string
	Type     *types.Type
	Nullable bool
}

// A Param is one inferred $name placeholder type.
type Param struct {
	Name string
	Type *types.Type
}

// A Descriptor is the self-contained typed description of one
// statement's output shape: the sole contract handed to code
// generators. Value is set for SELECT VALUE, whose single field is the
// bare element type rather than an object member.
type Descriptor struct {
	Source Source
	Value  bool
	Fields []Field
	Params []Param
}

// Infer resolves the output descriptor for one statement. It returns
// the diagnostics raised while resolving; the descriptor is always
// usable, with Unknown standing in for anything that failed.
func Infer(reg *schema.Registry, stmt parser.Statement) (Descriptor, diag.List) {
	e := &engine{reg: reg}
	var d Descriptor
	switch s := stmt.(type) {
	case *parser.SelectStatement:
		d = e.selectStmt(s)
	case *parser.CreateStatement:
		d = e.mutation(SourceCreate, s.Target, s.Content, s.Params, s.Loc)
	case *parser.InsertStatement:
		d = e.mutation(SourceInsert, s.Target, s.Content, s.Params, s.Loc)
	case *parser.UpdateStatement:
		d = e.mutation(SourceUpdate, s.Target, s.Content, s.Params, s.Loc)
	case *parser.UpsertStatement:
		d = e.mutation(SourceUpsert, s.Target, s.Content, s.Params, s.Loc)
	case *parser.DeleteStatement:
		d = e.deleteStmt(s)
	case *parser.RelateStatement:
		d = e.relate(s)
	case *parser.UnsupportedStatement:
		// The parser already reported the construct; the descriptor
		// stays empty rather than failing the file.
		d = Descriptor{Source: SourceUnsupported}
	case *parser.DefineTableStatement, *parser.DefineFieldStatement:
		// Schema statements inside query files produce no rows.
		d = Descriptor{Source: SourceUnsupported}
	}
	return d, e.diags
}

type engine struct {
	reg   *schema.Registry
	diags diag.List
}

func (e *engine) errorf(kind diag.Kind, loc diag.Location, format string, args ...any) {
	e.diags.Add(diag.Errorf(kind, loc, format, args...))
}

func (e *engine) warnf(kind diag.Kind, loc diag.Location, format string, args ...any) {
	e.diags.Add(diag.Warnf(kind, loc, format, args...))
}

// mutation infers CREATE/INSERT/UPDATE/UPSERT descriptors: these
// statements return the affected rows, so the descriptor mirrors the
// target table's full declared field set.
func (e *engine) mutation(src Source, target parser.TableRef, content []parser.ContentField, params []parser.ParamUse, loc diag.Location) Descriptor {
	d := Descriptor{Source: src}
	table, ok := e.reg.Table(target.Name)
	if !ok {
		e.errorf(diag.UndefinedTableRef, target.Loc, "table %q is not defined", target.Name)
		return d
	}
	for _, cf := range content {
		root := cf.Name
		if i := strings.IndexByte(root, '.'); i >= 0 {
			root = root[:i]
		}
		if _, ok := table.Field(root); !ok && table.Schemafull {
			e.errorf(diag.UndefinedField, cf.Loc, "field %q is not defined on table %q", cf.Name, target.Name)
		}
	}
	for _, f := range table.Fields() {
		d.Fields = append(d.Fields, Field{Name: f.Name, Type: f.Type, Nullable: f.Optional})
	}
	d.Params = e.inferParams(table, params)
	return d
}

// deleteStmt infers DELETE descriptors. The supported grammar has no
// RETURN clause, so the descriptor is the target's identity field only.
func (e *engine) deleteStmt(s *parser.DeleteStatement) Descriptor {
	d := Descriptor{Source: SourceDelete}
	table, ok := e.reg.Table(s.Target.Name)
	if !ok {
		e.errorf(diag.UndefinedTableRef, s.Target.Loc, "table %q is not defined", s.Target.Name)
		return d
	}
	d.Fields = append(d.Fields, Field{Name: "id", Type: table.IDType()})
	d.Params = e.inferParams(table, s.Params)
	return d
}

// relate infers RELATE descriptors: the created edge row, modeled as
// the implicit in/out record links plus the relation table's declared
// fields. Each undefined endpoint is reported independently.
func (e *engine) relate(s *parser.RelateStatement) Descriptor {
	d := Descriptor{Source: SourceRelate}
	if _, ok := e.reg.Table(s.In.Name); !ok {
		e.errorf(diag.UndefinedTableRef, s.In.Loc, "table %q is not defined", s.In.Name)
	} else {
		d.Fields = append(d.Fields, Field{Name: "in", Type: types.NewRecord(s.In.Name)})
	}
	if _, ok := e.reg.Table(s.Out.Name); !ok {
		e.errorf(diag.UndefinedTableRef, s.Out.Loc, "table %q is not defined", s.Out.Name)
	} else {
		d.Fields = append(d.Fields, Field{Name: "out", Type: types.NewRecord(s.Out.Name)})
	}
	rel, ok := e.reg.Table(s.Relation.Name)
	if !ok {
		e.errorf(diag.UndefinedTableRef, s.Relation.Loc, "table %q is not defined", s.Relation.Name)
		return d
	}
	for _, cf := range s.Content {
		if _, ok := rel.Field(cf.Name); !ok && rel.Schemafull {
			e.errorf(diag.UndefinedField, cf.Loc, "field %q is not defined on table %q", cf.Name, s.Relation.Name)
		}
	}
	for _, f := range rel.Fields() {
		d.Fields = append(d.Fields, Field{Name: f.Name, Type: f.Type, Nullable: f.Optional})
	}
	d.Params = e.inferParams(rel, s.Params)
	return d
}
