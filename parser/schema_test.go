package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/types"
)

func parseOne(t *testing.T, src string) (Statement, diag.List) {
	t.Helper()
	stmts, diags := Parse("schema.surql", src)
	require.Len(t, stmts, 1)
	return stmts[0], diags
}

func TestDefineTable(t *testing.T) {
	require := require.New(t)

	stmt, diags := parseOne(t, "DEFINE TABLE user SCHEMAFULL;")
	require.Empty(diags)
	tbl, ok := stmt.(*DefineTableStatement)
	require.True(ok)
	require.Equal("user", tbl.Name)
	require.True(tbl.Schemafull)
	require.False(tbl.Relation)

	stmt, diags = parseOne(t, "DEFINE TABLE IF NOT EXISTS post SCHEMALESS;")
	require.Empty(diags)
	tbl = stmt.(*DefineTableStatement)
	require.Equal("post", tbl.Name)
	require.False(tbl.Schemafull)

	stmt, diags = parseOne(t, "DEFINE TABLE wrote SCHEMAFULL TYPE RELATION FROM user TO post;")
	require.Empty(diags)
	tbl = stmt.(*DefineTableStatement)
	require.True(tbl.Relation)
	require.Equal("user", tbl.From)
	require.Equal("post", tbl.To)

	stmt, diags = parseOne(t, "DEFINE TABLE likes TYPE RELATION IN user OUT post;")
	require.Empty(diags)
	tbl = stmt.(*DefineTableStatement)
	require.True(tbl.Relation)
	require.Equal("user", tbl.From)
	require.Equal("post", tbl.To)
}

func TestDefineField(t *testing.T) {
	tests := []struct {
		name string
		src  string
		typ  *types.Type
	}{
		{"string", "DEFINE FIELD name ON user TYPE string;", types.NewString()},
		{"int maps to number", "DEFINE FIELD age ON user TYPE int;", types.NewNumber()},
		{"bool", "DEFINE FIELD active ON user TYPE bool;", types.NewBool()},
		{"datetime", "DEFINE FIELD created ON user TYPE datetime;", types.NewDatetime()},
		{"array", "DEFINE FIELD tags ON user TYPE array<string>;", types.NewArray(types.NewString())},
		{"sized array", "DEFINE FIELD pair ON user TYPE array<number, 2>;", types.NewArrayLen(types.NewNumber(), 2)},
		{"set maps to array", "DEFINE FIELD roles ON user TYPE set<string>;", types.NewArray(types.NewString())},
		{"record", "DEFINE FIELD author ON post TYPE record<user>;", types.NewRecord("user")},
		{"option", "DEFINE FIELD bio ON user TYPE option<string>;", types.NewOption(types.NewString())},
		{"geometry subtype skipped", "DEFINE FIELD loc ON user TYPE geometry<point>;", types.NewGeometry()},
		{"bare object", "DEFINE FIELD extra ON user TYPE object;", types.NewAny()},
		{"object literal", "DEFINE FIELD meta ON post TYPE { views: number, author: record<user> };",
			types.NewObject([]types.Field{
				{Name: "views", Type: types.NewNumber()},
				{Name: "author", Type: types.NewRecord("user")},
			})},
		{"missing type clause", "DEFINE FIELD nick ON user;", types.NewAny()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, diags := parseOne(t, tt.src)
			require.Empty(t, diags)
			fld, ok := stmt.(*DefineFieldStatement)
			require.True(t, ok)
			require.True(t, tt.typ.Equal(fld.Type), "want %s, got %s", tt.typ, fld.Type)
		})
	}
}

func TestDefineFieldNestedPath(t *testing.T) {
	require := require.New(t)
	stmt, diags := parseOne(t, "DEFINE FIELD meta.views ON post TYPE number;")
	require.Empty(diags)
	fld := stmt.(*DefineFieldStatement)
	require.Equal([]string{"meta", "views"}, fld.Path)
	require.Equal("post", fld.Table)
}

func TestDefineFieldDefault(t *testing.T) {
	require := require.New(t)
	stmt, diags := parseOne(t, "DEFINE FIELD age ON user TYPE number DEFAULT 18;")
	require.Empty(diags)
	fld := stmt.(*DefineFieldStatement)
	require.Equal("18", fld.Default)

	stmt, _ = parseOne(t, `DEFINE FIELD role ON user TYPE string DEFAULT "member" PERMISSIONS FULL;`)
	fld = stmt.(*DefineFieldStatement)
	require.Equal(`"member"`, fld.Default)
}

func TestMalformedTypeSurvives(t *testing.T) {
	require := require.New(t)

	// Unrecognized type names degrade to Unknown with a finding; the
	// statement itself still registers the field.
	stmt, diags := parseOne(t, "DEFINE FIELD x ON user TYPE flavor;")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.InvalidTypeSyntax, diags[0].Kind)
	fld := stmt.(*DefineFieldStatement)
	require.Equal(types.Unknown, fld.Type.Kind)

	// Multi-table record links are unsupported.
	stmt, diags = parseOne(t, "DEFINE FIELD ref ON user TYPE record<a | b>;")
	require.Len(diags.Errors(), 1)
	fld = stmt.(*DefineFieldStatement)
	require.Equal(types.Unknown, fld.Type.Kind)
}

func TestDuplicateObjectMember(t *testing.T) {
	require := require.New(t)
	stmt, diags := parseOne(t, "DEFINE FIELD meta ON post TYPE { a: string, a: number };")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.DuplicateFieldInSameDefinition, diags[0].Kind)

	// First declaration wins.
	fld := stmt.(*DefineFieldStatement)
	ft, ok := fld.Type.Field("a")
	require.True(ok)
	require.Equal(types.String, ft.Kind)
}

func TestDefineOther(t *testing.T) {
	require := require.New(t)

	// Indexes and events are skipped without a finding.
	stmt, diags := parseOne(t, "DEFINE INDEX idx ON user FIELDS name UNIQUE;")
	require.Empty(diags)
	require.IsType(&UnsupportedStatement{}, stmt)

	// Unknown definition kinds are reported.
	stmt, diags = parseOne(t, "DEFINE FUNCTION fn::greet();")
	require.NotEmpty(diags)
	require.Equal(diag.UnsupportedConstruct, diags[0].Kind)
	require.IsType(&UnsupportedStatement{}, stmt)
}

func TestErrorRecoveryAcrossStatements(t *testing.T) {
	require := require.New(t)
	src := `
DEFINE FIELD ON user TYPE string;
DEFINE FIELD name ON user TYPE string;
`
	stmts, diags := Parse("schema.surql", src)
	require.Len(stmts, 2)
	require.Len(diags.Errors(), 1)
	require.IsType(&UnsupportedStatement{}, stmts[0])
	fld := stmts[1].(*DefineFieldStatement)
	require.Equal([]string{"name"}, fld.Path)
}

func TestCommentsAndCase(t *testing.T) {
	require := require.New(t)
	src := `
-- schema for users
/* block
   comment */
define field name on table user type string; // trailing
`
	stmts, diags := Parse("schema.surql", src)
	require.Empty(diags)
	require.Len(stmts, 1)
	fld := stmts[0].(*DefineFieldStatement)
	require.Equal("user", fld.Table)
	require.Equal(types.String, fld.Type.Kind)
}
