package parser

import (
	"strings"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/types"
)

// A Statement is one parsed SurrealQL statement. The concrete type is
// one of the statement structs below; consumers switch exhaustively
// over them.
type Statement interface {
	Pos() diag.Location
	stmt()
}

// A TableRef names a statement target. ID is set when the source used a
// record id (user:jane); the table part alone participates in analysis.
type TableRef struct {
	Name string
	ID   string
	Loc  diag.Location
}

// String renders the reference as written.
func (r TableRef) String() string {
	if r.ID != "" {
		return r.Name + ":" + r.ID
	}
	return r.Name
}

// Direction is the orientation of one graph-traversal step.
type Direction uint8

const (
	// Out follows edges away from the current record (->).
	Out Direction = iota
	// In follows edges toward the current record (<-).
	In
)

// String returns the arrow syntax for the direction.
func (d Direction) String() string {
	if d == In {
		return "<-"
	}
	return "->"
}

// A TraversalStep is one hop through a relation or target table.
type TraversalStep struct {
	Dir   Direction
	Table string
	Loc   diag.Location
}

// A Traversal is a graph-traversal expression usable wherever a field
// selector target is expected. The final step may carry an expand-all
// (.*) or destructuring (.{a, b}) modifier.
type Traversal struct {
	Steps       []TraversalStep
	All         bool
	Destructure []string
}

// String renders the traversal path without modifiers, e.g. "->wrote->post".
func (t *Traversal) String() string {
	var sb strings.Builder
	for _, s := range t.Steps {
		sb.WriteString(s.Dir.String())
		sb.WriteString(s.Table)
	}
	return sb.String()
}

// A Selector is one entry of a SELECT field list: a plain name, the
// wildcard, a dotted path (optionally ending in .* or .{...}), or a
// graph traversal. Alias is set for "expr AS name".
type Selector struct {
	Wildcard    bool
	Path        []string
	All         bool
	Destructure []string
	Traversal   *Traversal
	Alias       string
	Loc         diag.Location
}

// A FetchRef is one entry of a FETCH clause.
type FetchRef struct {
	Path []string
	Loc  diag.Location
}

// A ParamUse records one $name placeholder together with the field path
// it was compared or assigned against, when one is syntactically
// adjacent. An empty FieldPath means the use has no inferable context.
type ParamUse struct {
	Name      string
	FieldPath []string
	Loc       diag.Location
}

// A ContentField is one key of a CONTENT/SET/VALUES payload. Param is
// set when the supplied value is a $name placeholder.
type ContentField struct {
	Name  string
	Param string
	Loc   diag.Location
}

// SelectStatement is a parsed SELECT. Value is set for SELECT VALUE,
// which carries exactly one selector.
type SelectStatement struct {
	Value     bool
	Selectors []Selector
	Omit      [][]string
	Target    TableRef
	Fetch     []FetchRef
	HasWhere  bool
	Params    []ParamUse
	Loc       diag.Location
}

// CreateStatement is a parsed CREATE.
type CreateStatement struct {
	Target  TableRef
	Content []ContentField
	Params  []ParamUse
	Loc     diag.Location
}

// InsertStatement is a parsed INSERT.
type InsertStatement struct {
	Target  TableRef
	Content []ContentField
	Params  []ParamUse
	Loc     diag.Location
}

// UpdateStatement is a parsed UPDATE.
type UpdateStatement struct {
	Target   TableRef
	Content  []ContentField
	HasWhere bool
	Params   []ParamUse
	Loc      diag.Location
}

// UpsertStatement is a parsed UPSERT.
type UpsertStatement struct {
	Target   TableRef
	Content  []ContentField
	HasWhere bool
	Params   []ParamUse
	Loc      diag.Location
}

// DeleteStatement is a parsed DELETE.
type DeleteStatement struct {
	Target   TableRef
	HasWhere bool
	Params   []ParamUse
	Loc      diag.Location
}

// RelateStatement is a parsed RELATE in->relation->out.
type RelateStatement struct {
	In       TableRef
	Relation TableRef
	Out      TableRef
	Content  []ContentField
	Params   []ParamUse
	Loc      diag.Location
}

// UnsupportedStatement is the opaque placeholder for statements outside
// the supported grammar. It carries no inferable fields; inference
// produces an empty descriptor for it. The accompanying diagnostic is
// emitted at parse time.
type UnsupportedStatement struct {
	Keyword string
	Loc     diag.Location
}

// DefineTableStatement is a parsed DEFINE TABLE.
type DefineTableStatement struct {
	Name       string
	Schemafull bool
	Relation   bool
	From, To   string
	Loc        diag.Location
}

// DefineFieldStatement is a parsed DEFINE FIELD. Type is the resolved
// type expression; Unknown when the syntax was not recognized (the
// parser emits the diagnostic).
type DefineFieldStatement struct {
	Path    []string
	Table   string
	Type    *types.Type
	Default string
	Loc     diag.Location
}

func (s *SelectStatement) Pos() diag.Location      { return s.Loc }
func (s *CreateStatement) Pos() diag.Location      { return s.Loc }
func (s *InsertStatement) Pos() diag.Location      { return s.Loc }
func (s *UpdateStatement) Pos() diag.Location      { return s.Loc }
func (s *UpsertStatement) Pos() diag.Location      { return s.Loc }
func (s *DeleteStatement) Pos() diag.Location      { return s.Loc }
func (s *RelateStatement) Pos() diag.Location      { return s.Loc }
func (s *UnsupportedStatement) Pos() diag.Location { return s.Loc }
func (s *DefineTableStatement) Pos() diag.Location { return s.Loc }
func (s *DefineFieldStatement) Pos() diag.Location { return s.Loc }

func (*SelectStatement) stmt()      {}
func (*CreateStatement) stmt()      {}
func (*InsertStatement) stmt()      {}
func (*UpdateStatement) stmt()      {}
func (*UpsertStatement) stmt()      {}
func (*DeleteStatement) stmt()      {}
func (*RelateStatement) stmt()      {}
func (*UnsupportedStatement) stmt() {}
func (*DefineTableStatement) stmt() {}
func (*DefineFieldStatement) stmt() {}
