// Package typescript renders result descriptors as TypeScript type
// declarations suitable for typed SurrealDB client calls.
package typescript

import (
	"fmt"
	"strings"

	"github.com/syssam/surtype/codegen"
	"github.com/syssam/surtype/infer"
	"github.com/syssam/surtype/types"
)

const header = "// Code generated by surtype. DO NOT EDIT.\n"

// Generator emits one .ts file per invocation. The zero value is ready
// to use.
type Generator struct{}

// New returns a TypeScript generator.
func New() *Generator { return &Generator{} }

// Generate renders every unit into one source file. For each unit it
// emits a <Name>Result type and, when the unit's statements use
// parameters, a <Name>Variables type.
func (g *Generator) Generate(units []codegen.Unit) ([]byte, error) {
	var body strings.Builder
	usesRecordID := false
	for _, u := range units {
		name := codegen.Export(u.Name)
		if q := strings.TrimSpace(u.Query); q != "" {
			body.WriteString(queryComment(q))
		}
		result, rec := resultType(u.Descriptors)
		usesRecordID = usesRecordID || rec
		fmt.Fprintf(&body, "export type %sResult = %s;\n", name, result)
		if vars, rec, ok := variablesType(u.Descriptors); ok {
			usesRecordID = usesRecordID || rec
			fmt.Fprintf(&body, "\nexport type %sVariables = %s;\n", name, vars)
		}
		body.WriteString("\n")
	}

	var out strings.Builder
	out.WriteString(header)
	if usesRecordID {
		out.WriteString("import type { RecordId } from \"surrealdb\";\n")
	}
	out.WriteString("\n")
	out.WriteString(strings.TrimRight(body.String(), "\n"))
	out.WriteString("\n")
	return []byte(out.String()), nil
}

// queryComment renders the original statement text above its types.
func queryComment(query string) string {
	var sb strings.Builder
	sb.WriteString("/**\n * ```surql\n")
	for _, line := range strings.Split(query, "\n") {
		sb.WriteString(" * ")
		sb.WriteString(strings.TrimRight(line, " \t"))
		sb.WriteString("\n")
	}
	sb.WriteString(" * ```\n */\n")
	return sb.String()
}

// resultType renders the result of all statements in a unit. A single
// statement maps to an array of its row shape; multiple statements map
// to a tuple of those arrays, mirroring how the database returns one
// result set per statement.
func resultType(descs []infer.Descriptor) (string, bool) {
	if len(descs) == 0 {
		return "never[]", false
	}
	if len(descs) == 1 {
		return statementType(descs[0])
	}
	parts := make([]string, len(descs))
	usesRecordID := false
	for i, d := range descs {
		s, rec := statementType(d)
		parts[i] = s
		usesRecordID = usesRecordID || rec
	}
	return "[" + strings.Join(parts, ", ") + "]", usesRecordID
}

func statementType(d infer.Descriptor) (string, bool) {
	if d.Source == infer.SourceUnsupported {
		return "unknown[]", false
	}
	if d.Value {
		// SELECT VALUE returns bare values, not row objects.
		if len(d.Fields) == 0 {
			return "unknown[]", false
		}
		s, rec := render(d.Fields[0].Type, 0)
		return arrayOf(s, d.Fields[0].Nullable), rec
	}
	var sb strings.Builder
	usesRecordID := false
	sb.WriteString("{\n")
	for _, f := range d.Fields {
		s, rec := render(f.Type, 1)
		usesRecordID = usesRecordID || rec
		fmt.Fprintf(&sb, "  %s%s: %s;\n", member(f.Name), optionalMark(f.Nullable), s)
	}
	sb.WriteString("}")
	return sb.String() + "[]", usesRecordID
}

// variablesType renders the merged parameter set of a unit. Statements
// in one file share a namespace, so a $name appearing twice keeps its
// first inferred type.
func variablesType(descs []infer.Descriptor) (string, bool, bool) {
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
		return "", false, false
	}
	var sb strings.Builder
	usesRecordID := false
	sb.WriteString("{\n")
	for _, name := range order {
		t := seen[name]
		nullable := t != nil && t.Kind == types.Option
		if nullable {
			t = t.Elem
		}
		s, rec := render(t, 1)
		usesRecordID = usesRecordID || rec
		fmt.Fprintf(&sb, "  %s%s: %s;\n", member(name), optionalMark(nullable), s)
	}
	sb.WriteString("}")
	return sb.String(), usesRecordID, true
}

// render converts a value type to TypeScript syntax. The second result
// reports whether a RecordId reference was emitted anywhere below.
func render(t *types.Type, depth int) (string, bool) {
	if t == nil {
		return "unknown", false
	}
	switch t.Kind {
	case types.String:
		return "string", false
	case types.Number:
		return "number", false
	case types.Bool:
		return "boolean", false
	case types.Datetime:
		return "Date", false
	case types.Duration, types.UUID:
		return "string", false
	case types.Bytes:
		return "Uint8Array", false
	case types.Geometry:
		return "unknown", false
	case types.Any, types.Unknown:
		return "unknown", false
	case types.Record:
		return fmt.Sprintf("RecordId<%q>", t.Table), true
	case types.Option:
		s, rec := render(t.Elem, depth)
		return parenthesize(s) + " | null", rec
	case types.Array:
		s, rec := render(t.Elem, depth)
		return arrayOf(s, false), rec
	case types.Object:
		indent := strings.Repeat("  ", depth+1)
		closing := strings.Repeat("  ", depth)
		var sb strings.Builder
		usesRecordID := false
		sb.WriteString("{\n")
		for _, f := range t.Fields {
			ft := f.Type
			nullable := ft != nil && ft.Kind == types.Option
			if nullable {
				ft = ft.Elem
			}
			s, rec := render(ft, depth+1)
			usesRecordID = usesRecordID || rec
			fmt.Fprintf(&sb, "%s%s%s: %s;\n", indent, member(f.Name), optionalMark(nullable), s)
		}
		sb.WriteString(closing + "}")
		return sb.String(), usesRecordID
	case types.Union:
		parts := make([]string, len(t.Alts))
		usesRecordID := false
		for i, a := range t.Alts {
			s, rec := render(a, depth)
			parts[i] = s
			usesRecordID = usesRecordID || rec
		}
		return strings.Join(parts, " | "), usesRecordID
	}
	return "unknown", false
}

func arrayOf(elem string, nullable bool) string {
	if nullable {
		elem = parenthesize(elem) + " | null"
	}
	if strings.ContainsAny(elem, "|&") || strings.HasSuffix(elem, "}") {
		return "Array<" + elem + ">"
	}
	return elem + "[]"
}

func parenthesize(s string) string {
	if strings.ContainsAny(s, "|&") {
		return "(" + s + ")"
	}
	return s
}

func optionalMark(nullable bool) string {
	if nullable {
		return "?"
	}
	return ""
}

// member quotes object keys that are not plain identifiers, which
// happens for dotted paths and traversal selectors.
func member(name string) string {
	for i, r := range name {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Sprintf("%q", name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}
