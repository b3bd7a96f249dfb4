package infer

import (
	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/parser"
	"github.com/syssam/surtype/schema"
	"github.com/syssam/surtype/types"
)

// inferParams resolves each $name placeholder from its comparison or
// assignment context against the table's declared types. Disagreeing
// contexts unify; a placeholder with no resolvable context infers to
// Unknown with a Warning, so callers still get partial output.
func (e *engine) inferParams(table *schema.Table, uses []parser.ParamUse) []Param {
	if len(uses) == 0 {
		return nil
	}
	var order []string
	inferred := make(map[string]*types.Type)
	weakened := make(map[string]bool)
	firstLoc := make(map[string]diag.Location)

	for _, use := range uses {
		if _, ok := firstLoc[use.Name]; !ok {
			order = append(order, use.Name)
			firstLoc[use.Name] = use.Loc
		}
		if len(use.FieldPath) == 0 {
			continue
		}
		t := paramContextType(table, use.FieldPath)
		if t == nil {
			continue
		}
		if prev, ok := inferred[use.Name]; ok {
			unified, weak := types.Unify(prev, t)
			inferred[use.Name] = unified
			weakened[use.Name] = weakened[use.Name] || weak
		} else {
			inferred[use.Name] = t
		}
	}

	out := make([]Param, 0, len(order))
	for _, name := range order {
		t, ok := inferred[name]
		switch {
		case !ok:
			e.warnf(diag.UnresolvedParam, firstLoc[name], "cannot infer a type for $%s; no resolvable context", name)
			t = types.NewUnknown()
		case weakened[name]:
			e.warnf(diag.UnionFallback, firstLoc[name], "$%s is used with disagreeing types; falling back to %s", name, t)
		}
		out = append(out, Param{Name: name, Type: t})
	}
	return out
}

// paramContextType resolves a field path for parameter inference. The
// walk is silent: a failure here only means "no context", which the
// caller reports as UnresolvedParam rather than a path error.
func paramContextType(table *schema.Table, path []string) *types.Type {
	fd, ok := table.Field(path[0])
	if !ok {
		return nil
	}
	cur := fd.Type
	for _, seg := range path[1:] {
		cur = cur.Unwrap()
		if cur.Kind == types.Array {
			cur = cur.Elem.Unwrap()
		}
		ft, ok := cur.Field(seg)
		if !ok {
			return nil
		}
		cur = ft
	}
	return cur
}
