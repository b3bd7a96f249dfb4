package types

import (
	"fmt"
	"strings"
)

// A Kind discriminates the variants of a Type. Every consumer that
// switches over kinds must handle all of them.
type Kind uint8

const (
	// Invalid is the zero Kind. It never appears in a well-formed Type.
	Invalid Kind = iota

	// Primitive kinds.
	String
	Number
	Bool
	Datetime
	Duration
	UUID
	Bytes
	Geometry
	Any

	// Composite kinds.
	Array
	Object
	Record
	Option
	Union

	// Unknown marks a type that could not be resolved. It always travels
	// with a diagnostic explaining why.
	Unknown
)

var kindNames = map[Kind]string{
	String:   "string",
	Number:   "number",
	Bool:     "bool",
	Datetime: "datetime",
	Duration: "duration",
	UUID:     "uuid",
	Bytes:    "bytes",
	Geometry: "geometry",
	Any:      "any",
	Array:    "array",
	Object:   "object",
	Record:   "record",
	Option:   "option",
	Union:    "union",
	Unknown:  "unknown",
}

// String returns the SurrealQL name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Primitive reports whether the kind is one of the scalar kinds.
func (k Kind) Primitive() bool {
	return k >= String && k <= Any
}

// A Field is a named member of an Object type. Order is significant and
// preserved from the declaration site.
type Field struct {
	Name string
	Type *Type
}

// A Type is a node in the recursive value-type algebra shared by the
// schema registry and the inference engine. Types are trees at
// declaration time; cycles occur only through Record indirection, which
// is never expanded implicitly.
//
// A Type is immutable once constructed. Consumers that need a modified
// variant must build a new one (see Object helpers below).
type Type struct {
	Kind Kind

	// Elem is the element type for Array and the wrapped type for Option.
	Elem *Type

	// Len is the fixed length for Array types declared as array<T, N>.
	// Zero means unbounded.
	Len int

	// Fields holds the ordered members of an Object type.
	Fields []Field

	// Table is the target table name for Record types.
	Table string

	// Alts holds the alternatives of a Union type. Unions appear only as
	// inference results, never in declared schema syntax.
	Alts []*Type
}

func primitive(k Kind) *Type { return &Type{Kind: k} }

// NewString returns the string primitive type.
func NewString() *Type { return primitive(String) }

// NewNumber returns the number primitive type.
func NewNumber() *Type { return primitive(Number) }

// NewBool returns the bool primitive type.
func NewBool() *Type { return primitive(Bool) }

// NewDatetime returns the datetime primitive type.
func NewDatetime() *Type { return primitive(Datetime) }

// NewDuration returns the duration primitive type.
func NewDuration() *Type { return primitive(Duration) }

// NewUUID returns the uuid primitive type.
func NewUUID() *Type { return primitive(UUID) }

// NewBytes returns the bytes primitive type.
func NewBytes() *Type { return primitive(Bytes) }

// NewGeometry returns the geometry primitive type.
func NewGeometry() *Type { return primitive(Geometry) }

// NewAny returns the any type.
func NewAny() *Type { return primitive(Any) }

// NewUnknown returns the unresolved type. Callers must attach a
// diagnostic describing the failure alongside it.
func NewUnknown() *Type { return primitive(Unknown) }

// NewArray returns an unbounded array of elem.
func NewArray(elem *Type) *Type {
	return &Type{Kind: Array, Elem: elem}
}

// NewArrayLen returns a fixed-length array of elem.
func NewArrayLen(elem *Type, n int) *Type {
	return &Type{Kind: Array, Elem: elem, Len: n}
}

// NewObject returns an object type with the given ordered fields.
func NewObject(fields []Field) *Type {
	return &Type{Kind: Object, Fields: fields}
}

// NewRecord returns a record link to the given table.
func NewRecord(table string) *Type {
	return &Type{Kind: Record, Table: table}
}

// NewOption returns the nullable wrapper around inner.
func NewOption(inner *Type) *Type {
	return &Type{Kind: Option, Elem: inner}
}

// NewUnion returns a union over the given alternatives. Duplicate
// alternatives are collapsed and nested unions flattened; a union of a
// single alternative is that alternative itself.
func NewUnion(alts ...*Type) *Type {
	var flat []*Type
	for _, a := range alts {
		if a == nil {
			continue
		}
		if a.Kind == Union {
			flat = append(flat, a.Alts...)
		} else {
			flat = append(flat, a)
		}
	}
	var uniq []*Type
	for _, a := range flat {
		dup := false
		for _, u := range uniq {
			if u.Equal(a) {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, a)
		}
	}
	switch len(uniq) {
	case 0:
		return NewUnknown()
	case 1:
		return uniq[0]
	}
	return &Type{Kind: Union, Alts: uniq}
}

// Field returns the named object field and reports whether it exists.
// It returns false for non-object types.
func (t *Type) Field(name string) (*Type, bool) {
	if t == nil || t.Kind != Object {
		return nil, false
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Unwrap strips Option wrappers and returns the underlying type.
func (t *Type) Unwrap() *Type {
	for t != nil && t.Kind == Option {
		t = t.Elem
	}
	return t
}

// IsRecordLink reports whether the type, ignoring Option wrappers, is a
// record link or an array of record links. These are the only types a
// FETCH directive may target.
func (t *Type) IsRecordLink() bool {
	t = t.Unwrap()
	if t == nil {
		return false
	}
	switch t.Kind {
	case Record:
		return true
	case Array:
		return t.Elem.Unwrap() != nil && t.Elem.Unwrap().Kind == Record
	}
	return false
}

// Equal reports deep structural equality.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Array:
		return t.Len == other.Len && t.Elem.Equal(other.Elem)
	case Option:
		return t.Elem.Equal(other.Elem)
	case Record:
		return t.Table == other.Table
	case Object:
		if len(t.Fields) != len(other.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != other.Fields[i].Name {
				return false
			}
			if !t.Fields[i].Type.Equal(other.Fields[i].Type) {
				return false
			}
		}
		return true
	case Union:
		if len(t.Alts) != len(other.Alts) {
			return false
		}
		// Unions are unordered sets.
		for _, a := range t.Alts {
			found := false
			for _, b := range other.Alts {
				if a.Equal(b) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	return true
}

// String renders the type in SurrealQL type syntax.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Array:
		if t.Len > 0 {
			return fmt.Sprintf("array<%s, %d>", t.Elem, t.Len)
		}
		return fmt.Sprintf("array<%s>", t.Elem)
	case Option:
		return fmt.Sprintf("option<%s>", t.Elem)
	case Record:
		return fmt.Sprintf("record<%s>", t.Table)
	case Object:
		var sb strings.Builder
		sb.WriteString("{ ")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %s", f.Name, f.Type)
		}
		sb.WriteString(" }")
		return sb.String()
	case Union:
		parts := make([]string, len(t.Alts))
		for i, a := range t.Alts {
			parts[i] = a.String()
		}
		return strings.Join(parts, " | ")
	}
	return t.Kind.String()
}
