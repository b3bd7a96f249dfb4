// Package golang renders result descriptors as Go struct declarations
// for typed query bindings.
package golang

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/surtype/codegen"
	"github.com/syssam/surtype/infer"
	"github.com/syssam/surtype/types"
)

// Generator emits one Go source file per invocation.
type Generator struct {
	pkg string
}

// New returns a Go generator emitting into the given package name.
func New(pkg string) *Generator {
	if pkg == "" {
		pkg = "queries"
	}
	return &Generator{pkg: pkg}
}

// Generate renders every unit into one source file. Each statement of
// a unit becomes a <Name>Result row type (suffixed with its ordinal
// when the unit holds several statements); drivers decode result sets
// into []<Name>Result. Parameters become a <Name>Variables struct
// shared by the whole unit.
func (g *Generator) Generate(units []codegen.Unit) ([]byte, error) {
	f := jen.NewFile(g.pkg)
	f.HeaderComment("Code generated by surtype. DO NOT EDIT.")
	for _, u := range units {
		name := codegen.Export(u.Name)
		for i, d := range u.Descriptors {
			typeName := name + "Result"
			if len(u.Descriptors) > 1 {
				typeName = fmt.Sprintf("%sResult%d", name, i+1)
			}
			f.Comment(fmt.Sprintf("%s is the row shape returned by the %s statement in %s.", typeName, d.Source, u.Name))
			f.Type().Id(typeName).Add(rowType(d))
			f.Line()
		}
		if vars, ok := variablesStruct(u.Descriptors); ok {
			typeName := name + "Variables"
			f.Comment(fmt.Sprintf("%s holds the query parameters of %s.", typeName, u.Name))
			f.Type().Id(typeName).Add(vars)
			f.Line()
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("surtype/codegen/golang: render: %w", err)
	}
	return buf.Bytes(), nil
}

func rowType(d infer.Descriptor) jen.Code {
	if d.Source == infer.SourceUnsupported {
		return jen.Op("=").Any()
	}
	if d.Value {
		if len(d.Fields) == 0 {
			return jen.Op("=").Any()
		}
		return jen.Op("=").Add(fieldType(d.Fields[0].Type, d.Fields[0].Nullable))
	}
	fields := make([]jen.Code, 0, len(d.Fields))
	for _, f := range d.Fields {
		fields = append(fields, structField(f.Name, f.Type, f.Nullable))
	}
	return jen.Struct(fields...)
}

// variablesStruct merges the parameter sets of a unit's statements. A
// $name appearing in several statements keeps its first inferred type.
func variablesStruct(descs []infer.Descriptor) (jen.Code, bool) {
	var order []string
	seen := make(map[string]*types.Type)
	for _, d := range descs {
		for _, p := range d.Params {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			order = append(order, p.Name)
			seen[p.Name] = p.Type
		}
	}
	if len(order) == 0 {
		return nil, false
	}
	fields := make([]jen.Code, 0, len(order))
	for _, name := range order {
		t := seen[name]
		nullable := t != nil && t.Kind == types.Option
		if nullable {
			t = t.Elem
		}
		fields = append(fields, structField(name, t, nullable))
	}
	return jen.Struct(fields...), true
}

func structField(name string, t *types.Type, nullable bool) jen.Code {
	tag := name
	if nullable {
		tag += ",omitempty"
	}
	return jen.Id(codegen.Export(name)).Add(fieldType(t, nullable)).Tag(map[string]string{"json": tag})
}

// fieldType converts a value type to Go syntax. Nullable fields become
// pointers unless the type already has a natural absent value.
func fieldType(t *types.Type, nullable bool) jen.Code {
	inner := goType(t)
	if nullable && !nilable(t) {
		return jen.Op("*").Add(inner)
	}
	return inner
}

func goType(t *types.Type) jen.Code {
	if t == nil {
		return jen.Any()
	}
	switch t.Kind {
	case types.String:
		return jen.String()
	case types.Number:
		return jen.Float64()
	case types.Bool:
		return jen.Bool()
	case types.Datetime:
		return jen.Qual("time", "Time")
	case types.Duration:
		return jen.Qual("time", "Duration")
	case types.UUID:
		return jen.String()
	case types.Bytes:
		return jen.Index().Byte()
	case types.Geometry, types.Any, types.Unknown, types.Union:
		return jen.Any()
	case types.Record:
		// Record ids travel as strings over the wire.
		return jen.String()
	case types.Option:
		return fieldType(t.Elem, true)
	case types.Array:
		return jen.Index().Add(goType(t.Elem))
	case types.Object:
		fields := make([]jen.Code, 0, len(t.Fields))
		for _, f := range t.Fields {
			ft := f.Type
			nullable := ft != nil && ft.Kind == types.Option
			if nullable {
				ft = ft.Elem
			}
			fields = append(fields, structField(f.Name, ft, nullable))
		}
		return jen.Struct(fields...)
	}
	return jen.Any()
}

// nilable reports whether the Go rendering of t can already be nil or
// empty without a pointer wrapper.
func nilable(t *types.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind {
	case types.Array, types.Bytes, types.Any, types.Unknown, types.Union, types.Geometry:
		return true
	case types.Option:
		return true
	}
	return false
}
