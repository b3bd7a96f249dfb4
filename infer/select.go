package infer

import (
	"strings"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/parser"
	"github.com/syssam/surtype/schema"
	"github.com/syssam/surtype/types"
)

func (e *engine) selectStmt(s *parser.SelectStatement) Descriptor {
	d := Descriptor{Source: SourceSelect, Value: s.Value}
	table, ok := e.reg.Table(s.Target.Name)
	if !ok {
		e.errorf(diag.UndefinedTableRef, s.Target.Loc, "table %q is not defined", s.Target.Name)
		return d
	}

	// FETCH targets must independently resolve to record links (or
	// arrays thereof); validation happens here, not at parse time.
	fetch := make(map[string]bool, len(s.Fetch))
	for _, f := range s.Fetch {
		name := strings.Join(f.Path, ".")
		fetch[name] = true
		t := e.resolvePath(table, f.Path, fetch, f.Loc)
		if t != nil && t.Unwrap().Kind != types.Unknown && !t.IsRecordLink() {
			e.errorf(diag.InvalidFetchTarget, f.Loc,
				"cannot fetch field %q of type %s; only record links and arrays of record links can be fetched", name, t)
			delete(fetch, name)
		}
	}

	for _, sel := range s.Selectors {
		switch {
		case sel.Wildcard:
			d.Fields = append(d.Fields, e.expandWildcard(table, s.Omit, fetch, sel.Loc)...)
		case sel.Traversal != nil:
			name := sel.Alias
			if name == "" {
				name = sel.Traversal.String()
			}
			d.Fields = append(d.Fields, Field{Name: name, Type: e.traversal(sel.Traversal)})
		default:
			if omitted(sel.Path, s.Omit) {
				continue
			}
			f := e.resolveSelector(table, sel, fetch)
			d.Fields = append(d.Fields, f)
		}
	}
	d.Params = e.inferParams(table, s.Params)
	return d
}

// resolveSelector resolves one named-path selector to an output field.
func (e *engine) resolveSelector(table *schema.Table, sel parser.Selector, fetch map[string]bool) Field {
	name := strings.Join(sel.Path, ".")
	t := e.resolvePath(table, sel.Path, fetch, sel.Loc)
	if fetch[name] {
		t = e.expandFetch(t, sel.Loc)
	}
	if sel.All {
		t = e.expandAll(t, name, sel.Loc)
	}
	if len(sel.Destructure) > 0 {
		t = restrict(t, sel.Destructure)
	}
	out := Field{Name: name, Type: t}
	if sel.Alias != "" {
		out.Name = sel.Alias
	}
	if len(sel.Path) == 1 {
		if fd, ok := table.Field(sel.Path[0]); ok {
			out.Nullable = fd.Optional
		}
	}
	if out.Type.Kind == types.Option {
		out.Nullable = true
		out.Type = out.Type.Elem
	}
	return out
}

// expandWildcard expands * to every declared field in declaration
// order, honoring OMIT and FETCH.
func (e *engine) expandWildcard(table *schema.Table, omit [][]string, fetch map[string]bool, loc diag.Location) []Field {
	var out []Field
	for _, fd := range table.Fields() {
		if omitted([]string{fd.Name}, omit) {
			continue
		}
		t := fd.Type
		for _, o := range omit {
			if len(o) > 1 && o[0] == fd.Name {
				t = removeNested(t, o[1:])
			}
		}
		if fetch[fd.Name] {
			t = e.expandFetch(t, loc)
		}
		out = append(out, Field{Name: fd.Name, Type: t, Nullable: fd.Optional})
	}
	return out
}

// resolvePath walks a dotted path through the table's declared types.
// A record-link segment may only be crossed when the path up to it is
// covered by a FETCH directive; otherwise the remaining path has no
// resolvable target and the selector degrades to Unknown.
func (e *engine) resolvePath(table *schema.Table, path []string, fetch map[string]bool, loc diag.Location) *types.Type {
	fd, ok := table.Field(path[0])
	if !ok {
		if table.Schemafull {
			e.errorf(diag.UndefinedField, loc, "field %q is not defined on table %q", path[0], table.Name)
		} else {
			e.warnf(diag.SchemalessUnknownField, loc, "field %q is not declared on schemaless table %q", path[0], table.Name)
		}
		return types.NewUnknown()
	}
	cur := fd.Type
	if fd.Optional {
		cur = types.NewOption(cur)
	}
	for i := 1; i < len(path); i++ {
		cur = e.step(cur, path[:i], path[i], fetch, loc)
	}
	return cur
}

// step resolves one path segment against the current type.
func (e *engine) step(cur *types.Type, prefix []string, seg string, fetch map[string]bool, loc diag.Location) *types.Type {
	switch t := cur.Unwrap(); t.Kind {
	case types.Object:
		ft, ok := t.Field(seg)
		if !ok {
			e.errorf(diag.UndefinedField, loc, "field %q has no member %q", strings.Join(prefix, "."), seg)
			return types.NewUnknown()
		}
		return ft
	case types.Record:
		if !fetch[strings.Join(prefix, ".")] {
			e.errorf(diag.InvalidFetchTarget, loc,
				"cannot access %q through record link %q without a FETCH directive", seg, strings.Join(prefix, "."))
			return types.NewUnknown()
		}
		target, ok := e.reg.Table(t.Table)
		if !ok {
			e.errorf(diag.UndefinedTableRef, loc, "table %q is not defined", t.Table)
			return types.NewUnknown()
		}
		fd, ok := target.Field(seg)
		if !ok {
			if target.Schemafull {
				e.errorf(diag.UndefinedField, loc, "field %q is not defined on table %q", seg, target.Name)
			} else {
				e.warnf(diag.SchemalessUnknownField, loc, "field %q is not declared on schemaless table %q", seg, target.Name)
			}
			return types.NewUnknown()
		}
		return fd.Type
	case types.Array:
		// Paths map over array elements: posts.title on
		// array<record<post>> is an array of titles.
		elem := e.step(t.Elem, prefix, seg, fetch, loc)
		return types.NewArray(elem)
	case types.Any:
		return types.NewAny()
	case types.Unknown:
		return types.NewUnknown()
	}
	if cur.Unwrap().Kind.Primitive() {
		e.errorf(diag.UndefinedField, loc, "cannot select %q from primitive type %s", seg, cur)
		return types.NewUnknown()
	}
	e.errorf(diag.UndefinedField, loc, "type %s has no member %q", cur, seg)
	return types.NewUnknown()
}

// expandFetch replaces record links with the full object type of their
// target table, exactly one level deep. Record links inside the fetched
// object stay unexpanded; that bounds expansion for self-referential
// schemas (a comment table linking to comment) without special cases.
func (e *engine) expandFetch(t *types.Type, loc diag.Location) *types.Type {
	if t == nil {
		return t
	}
	switch t.Kind {
	case types.Option:
		return types.NewOption(e.expandFetch(t.Elem, loc))
	case types.Array:
		return types.NewArrayLen(e.expandFetch(t.Elem, loc), t.Len)
	case types.Record:
		target, ok := e.reg.Table(t.Table)
		if !ok {
			e.errorf(diag.UndefinedTableRef, loc, "table %q is not defined", t.Table)
			return t
		}
		return target.ObjectType()
	}
	return t
}

// expandAll handles a trailing .* selector: it requires the resolved
// type to already be object-shaped. Bare record links must be fetched
// first.
func (e *engine) expandAll(t *types.Type, name string, loc diag.Location) *types.Type {
	switch u := t.Unwrap(); u.Kind {
	case types.Object, types.Any, types.Unknown:
		return t
	case types.Array:
		elem := e.expandAll(u.Elem, name, loc)
		if elem.Unwrap().Kind == types.Unknown {
			return types.NewUnknown()
		}
		return types.NewArrayLen(elem, u.Len)
	case types.Record:
		e.errorf(diag.InvalidFetchTarget, loc,
			"cannot expand %q: record link %q requires a FETCH directive", name+".*", name)
		return types.NewUnknown()
	}
	return t
}

// traversal types a graph traversal: always an array of the final
// target's object shape, since traversals are potentially multi-valued
// regardless of cardinality hints in the source.
func (e *engine) traversal(tr *parser.Traversal) *types.Type {
	for _, step := range tr.Steps {
		if _, ok := e.reg.Table(step.Table); !ok {
			e.errorf(diag.UndefinedTableRef, step.Loc, "table %q is not defined", step.Table)
		}
	}
	last := tr.Steps[len(tr.Steps)-1]
	target, ok := e.reg.Table(last.Table)
	if !ok {
		return types.NewUnknown()
	}
	obj := target.ObjectType()
	if len(tr.Destructure) > 0 {
		obj = restrict(obj, tr.Destructure)
	}
	return types.NewArray(obj)
}

// restrict narrows an object (or array of objects) to the named
// members, preserving declaration order.
func restrict(t *types.Type, names []string) *types.Type {
	switch t.Kind {
	case types.Option:
		return types.NewOption(restrict(t.Elem, names))
	case types.Array:
		return types.NewArrayLen(restrict(t.Elem, names), t.Len)
	case types.Object:
		var fields []types.Field
		for _, f := range t.Fields {
			for _, n := range names {
				if f.Name == n {
					fields = append(fields, f)
					break
				}
			}
		}
		return types.NewObject(fields)
	}
	return t
}

// removeNested drops the member at path from an object type,
// rebuilding the tree without mutating the declared one.
func removeNested(t *types.Type, path []string) *types.Type {
	if t == nil || len(path) == 0 {
		return t
	}
	switch t.Kind {
	case types.Option:
		return types.NewOption(removeNested(t.Elem, path))
	case types.Array:
		return types.NewArrayLen(removeNested(t.Elem, path), t.Len)
	case types.Object:
		var fields []types.Field
		for _, f := range t.Fields {
			if f.Name == path[0] {
				if len(path) == 1 {
					continue
				}
				fields = append(fields, types.Field{Name: f.Name, Type: removeNested(f.Type, path[1:])})
				continue
			}
			fields = append(fields, f)
		}
		return types.NewObject(fields)
	}
	return t
}

func omitted(path []string, omit [][]string) bool {
	for _, o := range omit {
		if len(o) != len(path) {
			continue
		}
		match := true
		for i := range o {
			if o[i] != path[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
