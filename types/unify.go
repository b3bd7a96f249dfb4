package types

// Unify computes the least upper bound of two types. Identical types
// unify to themselves; any conflict involving Unknown collapses to
// Unknown; everything else falls back to a Union of the two.
//
// Any is deliberately not treated as the top type here: a side declared
// any carries no information, so unification keeps the other operand
// instead of erasing it. Widening to Any would make every parameter
// compared against an any-typed field untyped in the output.
//
// The second result reports whether unification had to weaken the
// result (a Union or Unknown fallback). Callers translate weakening
// into a Warning diagnostic; unification itself never fails.
func Unify(a, b *Type) (*Type, bool) {
	switch {
	case a == nil:
		return b, false
	case b == nil:
		return a, false
	case a.Equal(b):
		return a, false
	case a.Kind == Unknown || b.Kind == Unknown:
		return NewUnknown(), true
	case a.Kind == Any:
		return b, false
	case b.Kind == Any:
		return a, false
	}
	// Options unify on their inner types and stay optional.
	if a.Kind == Option || b.Kind == Option {
		inner, weak := Unify(a.Unwrap(), b.Unwrap())
		return NewOption(inner), weak
	}
	// Arrays of unifiable elements unify element-wise; a length
	// mismatch widens to an unbounded array without weakening.
	if a.Kind == Array && b.Kind == Array {
		elem, weak := Unify(a.Elem, b.Elem)
		if !weak {
			n := a.Len
			if a.Len != b.Len {
				n = 0
			}
			return NewArrayLen(elem, n), false
		}
	}
	u := NewUnion(a, b)
	return u, u.Kind == Union || u.Kind == Unknown
}

// UnifyAll folds Unify over a non-empty list of types. It reports
// whether any step weakened the result.
func UnifyAll(ts ...*Type) (*Type, bool) {
	if len(ts) == 0 {
		return NewUnknown(), true
	}
	out, weakened := ts[0], false
	for _, t := range ts[1:] {
		var weak bool
		out, weak = Unify(out, t)
		weakened = weakened || weak
	}
	return out, weakened
}
