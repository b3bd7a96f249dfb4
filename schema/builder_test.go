package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/types"
)

func build(t *testing.T, sources ...string) (*Registry, diag.List) {
	t.Helper()
	b := NewBuilder()
	for i, src := range sources {
		b.AddSource([]string{"a.surql", "b.surql", "c.surql"}[i], src)
	}
	return b.Build()
}

func TestBuildRegistry(t *testing.T) {
	require := require.New(t)
	reg, diags := build(t, `
DEFINE TABLE user SCHEMAFULL;
DEFINE FIELD name ON user TYPE string;
DEFINE FIELD age ON user TYPE number;
DEFINE FIELD bio ON user TYPE option<string>;
DEFINE TABLE post SCHEMALESS;
DEFINE FIELD author ON post TYPE record<user>;
`)
	require.Empty(diags)
	require.Equal(2, reg.Len())

	user, ok := reg.Table("user")
	require.True(ok)
	require.True(user.Schemafull)
	require.Len(user.Fields(), 3)

	name, ok := user.Field("name")
	require.True(ok)
	require.Equal(types.String, name.Type.Kind)
	require.False(name.Optional)

	// Top-level option unwraps into the Optional flag.
	bio, ok := user.Field("bio")
	require.True(ok)
	require.True(bio.Optional)
	require.Equal(types.String, bio.Type.Kind)

	post, ok := reg.Table("post")
	require.True(ok)
	require.False(post.Schemafull)
	author, ok := post.Field("author")
	require.True(ok)
	require.Equal(types.Record, author.Type.Kind)
	require.Equal("user", author.Type.Table)
}

func TestDeclarationOrder(t *testing.T) {
	require := require.New(t)
	reg, _ := build(t, `
DEFINE TABLE user SCHEMAFULL;
DEFINE FIELD zeta ON user TYPE string;
DEFINE FIELD alpha ON user TYPE string;
DEFINE FIELD mid ON user TYPE string;
`)
	user, _ := reg.Table("user")
	var names []string
	for _, f := range user.Fields() {
		names = append(names, f.Name)
	}
	require.Equal([]string{"zeta", "alpha", "mid"}, names)

	obj := user.ObjectType()
	require.Equal("zeta", obj.Fields[0].Name)
	require.Equal("mid", obj.Fields[2].Name)
}

func TestNestedFieldPaths(t *testing.T) {
	require := require.New(t)
	reg, diags := build(t, `
DEFINE TABLE post SCHEMAFULL;
DEFINE FIELD meta ON post TYPE { views: number };
DEFINE FIELD meta.author ON post TYPE record<user>;
DEFINE FIELD stats.score ON post TYPE number;
`)
	require.Empty(diags)
	post, _ := reg.Table("post")

	meta, ok := post.Field("meta")
	require.True(ok)
	require.Equal(types.Object, meta.Type.Kind)
	views, ok := meta.Type.Field("views")
	require.True(ok)
	require.Equal(types.Number, views.Kind)
	author, ok := meta.Type.Field("author")
	require.True(ok)
	require.Equal(types.Record, author.Kind)

	// A nested path with no declared root synthesizes the object.
	stats, ok := post.Field("stats")
	require.True(ok)
	score, ok := stats.Type.Field("score")
	require.True(ok)
	require.Equal(types.Number, score.Kind)
}

func TestFieldDefaults(t *testing.T) {
	require := require.New(t)
	reg, diags := build(t, `
DEFINE TABLE post SCHEMAFULL;
DEFINE FIELD score ON post TYPE number DEFAULT 0;
DEFINE FIELD meta.views ON post TYPE number DEFAULT 0;
`)
	require.Empty(diags)
	post, _ := reg.Table("post")

	score, _ := post.Field("score")
	require.Equal("0", score.Default)

	// Defaults attach to top-level fields only; a nested member folds
	// into the root's object type without one.
	meta, _ := post.Field("meta")
	require.Empty(meta.Default)
	views, ok := meta.Type.Field("views")
	require.True(ok)
	require.Equal(types.Number, views.Kind)
}

func TestTableRedefinitionMerges(t *testing.T) {
	require := require.New(t)
	reg, diags := build(t,
		"DEFINE TABLE user SCHEMAFULL;\nDEFINE FIELD name ON user TYPE string;\n",
		"DEFINE TABLE user SCHEMALESS;\nDEFINE FIELD age ON user TYPE number;\n",
	)

	// Redefinition is a warning, not an error.
	require.False(diags.HasErrors())
	require.Len(diags.Warnings(), 1)
	require.Equal(diag.TableRedefined, diags.Warnings()[0].Kind)

	// Fields merge; mode follows the latest definition.
	user, _ := reg.Table("user")
	require.False(user.Schemafull)
	require.Len(user.Fields(), 2)
}

func TestLastDefinitionWins(t *testing.T) {
	require := require.New(t)
	reg, diags := build(t,
		"DEFINE TABLE user SCHEMAFULL;\nDEFINE FIELD name ON user TYPE string;\n",
		"DEFINE TABLE user SCHEMAFULL;\nDEFINE FIELD name ON user TYPE number;\n",
	)
	require.False(diags.HasErrors())
	user, _ := reg.Table("user")
	name, _ := user.Field("name")
	require.Equal(types.Number, name.Type.Kind)
	require.Len(user.Fields(), 1)
}

func TestDuplicateFieldInOneFile(t *testing.T) {
	require := require.New(t)
	reg, diags := build(t, `
DEFINE TABLE user SCHEMAFULL;
DEFINE FIELD name ON user TYPE string;
DEFINE FIELD name ON user TYPE number;
`)
	require.Len(diags.Errors(), 1)
	require.Equal(diag.DuplicateFieldInSameDefinition, diags.Errors()[0].Kind)

	// The registry still carries the field; the last definition wins.
	user, _ := reg.Table("user")
	name, _ := user.Field("name")
	require.Equal(types.Number, name.Type.Kind)
}

func TestPartialFailureTolerance(t *testing.T) {
	require := require.New(t)
	reg, diags := build(t, `
DEFINE FIELD name ON user TYPE string;
DEFINE FIELD weird ON user TYPE flavor;
DEFINE FIELD age ON user TYPE number;
`)
	// The malformed type is reported, the other definitions survive, and
	// the broken one degrades to Unknown instead of vanishing.
	require.Len(diags.Errors(), 1)
	user, ok := reg.Table("user")
	require.True(ok)
	require.Len(user.Fields(), 3)
	weird, _ := user.Field("weird")
	require.Equal(types.Unknown, weird.Type.Kind)
}

func TestRelationTable(t *testing.T) {
	require := require.New(t)
	reg, diags := build(t, `
DEFINE TABLE wrote SCHEMAFULL TYPE RELATION FROM user TO post;
DEFINE FIELD at ON wrote TYPE datetime;
`)
	require.Empty(diags)
	wrote, _ := reg.Table("wrote")
	require.True(wrote.Relation)
	require.Equal("user", wrote.From)
	require.Equal("post", wrote.To)
	require.Equal(types.Record, wrote.IDType().Kind)
	require.Equal("wrote", wrote.IDType().Table)
}

func TestObjectTypeRewrapsOptional(t *testing.T) {
	require := require.New(t)
	reg, _ := build(t, `
DEFINE TABLE user SCHEMAFULL;
DEFINE FIELD bio ON user TYPE option<string>;
`)
	user, _ := reg.Table("user")
	obj := user.ObjectType()
	bio, ok := obj.Field("bio")
	require.True(ok)
	require.Equal(types.Option, bio.Kind)
	require.Equal(types.String, bio.Elem.Kind)
}
