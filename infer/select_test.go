package infer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/surtype/diag"
	"github.com/syssam/surtype/schema"
	"github.com/syssam/surtype/types"
)

func TestSelectSingleField(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)

	d, diags := analyze(t, reg, "SELECT name FROM user;")
	require.Empty(diags)
	require.Equal(SourceSelect, d.Source)
	require.Len(d.Fields, 1)
	require.Equal("name", d.Fields[0].Name)
	require.Equal(types.String, d.Fields[0].Type.Kind)
	require.False(d.Fields[0].Nullable)
}

func TestSelectOptionalField(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT bio FROM user;")
	require.Empty(diags)
	require.True(d.Fields[0].Nullable)
	require.Equal(types.String, d.Fields[0].Type.Kind)
}

func TestSelectWildcardOrder(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT * FROM user;")
	require.Empty(diags)
	require.Equal([]string{"name", "age", "bio", "best_friend"}, fieldNames(d.Fields))
	require.True(d.Fields[2].Nullable)
	require.Equal(types.Record, d.Fields[3].Type.Kind)
}

func TestSelectAlias(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT name AS nick FROM user;")
	require.Empty(diags)
	require.Equal("nick", d.Fields[0].Name)
}

func TestSelectValue(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT VALUE name FROM user;")
	require.Empty(diags)
	require.True(d.Value)
	require.Len(d.Fields, 1)
	require.Equal(types.String, d.Fields[0].Type.Kind)
}

func TestSelectOmit(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT * OMIT bio, best_friend FROM user;")
	require.Empty(diags)
	require.Equal([]string{"name", "age"}, fieldNames(d.Fields))
}

func TestSelectNestedOmit(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT * OMIT meta.views FROM post;")
	require.Empty(diags)
	require.Equal([]string{"title", "author", "tags", "meta"}, fieldNames(d.Fields))
	meta := d.Fields[3].Type
	require.Equal(types.Object, meta.Kind)
	_, ok := meta.Field("views")
	require.False(ok)
}

func TestSelectUndefinedTable(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)

	// Exactly one finding; the unresolvable params are not piled on.
	d, diags := analyze(t, reg, "SELECT * FROM ghost WHERE x = $p;")
	require.Len(diags, 1)
	require.Equal(diag.UndefinedTableRef, diags[0].Kind)
	require.Empty(d.Fields)
	require.Empty(d.Params)
}

func TestSelectUndefinedField(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)

	d, diags := analyze(t, reg, "SELECT nope FROM user;")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.UndefinedField, diags[0].Kind)

	// The selector still appears, typed Unknown.
	require.Len(d.Fields, 1)
	require.Equal(types.Unknown, d.Fields[0].Type.Kind)
}

func TestSelectSchemalessUnknownField(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT anything FROM comment;")
	require.False(diags.HasErrors())
	require.Len(diags.Warnings(), 1)
	require.Equal(diag.SchemalessUnknownField, diags[0].Kind)
	require.Equal(types.Unknown, d.Fields[0].Type.Kind)
}

func TestSelectThroughPrimitive(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT name.length FROM user;")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.UndefinedField, diags[0].Kind)
	require.Contains(diags[0].Message, "primitive")
	require.Equal(types.Unknown, d.Fields[0].Type.Kind)
}

func TestSelectNestedPath(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT meta.views FROM post;")
	require.Empty(diags)
	require.Equal("meta.views", d.Fields[0].Name)
	require.Equal(types.Number, d.Fields[0].Type.Kind)
}

func TestRecordCrossingRequiresFetch(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)

	d, diags := analyze(t, reg, "SELECT author.name FROM post;")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.InvalidFetchTarget, diags[0].Kind)
	require.Equal(types.Unknown, d.Fields[0].Type.Kind)

	d, diags = analyze(t, reg, "SELECT author.name FROM post FETCH author;")
	require.Empty(diags)
	require.Equal(types.String, d.Fields[0].Type.Kind)
}

func TestFetchExpandsOneLevel(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT author FROM post FETCH author;")
	require.Empty(diags)

	author := d.Fields[0].Type
	require.Equal(types.Object, author.Kind)
	name, ok := author.Field("name")
	require.True(ok)
	require.Equal(types.String, name.Kind)

	// Record links inside the fetched object stay unexpanded.
	bf, ok := author.Field("best_friend")
	require.True(ok)
	require.Equal(types.Record, bf.Kind)
}

func TestFetchArrayOfRecordLinks(t *testing.T) {
	require := require.New(t)
	b := schema.NewBuilder()
	b.AddSource("schema.surql", `
DEFINE TABLE user SCHEMAFULL;
DEFINE FIELD name ON user TYPE string;
DEFINE FIELD age ON user TYPE number;
DEFINE FIELD posts ON user TYPE array<record<post>>;
DEFINE TABLE post SCHEMAFULL;
DEFINE FIELD title ON post TYPE string;
`)
	reg, diags := b.Build()
	require.Empty(diags)

	// Fetching an array of record links expands every element.
	d, ds := analyze(t, reg, "SELECT name, age, posts.* FROM user FETCH posts;")
	require.Empty(ds)
	require.Equal([]string{"name", "age", "posts"}, fieldNames(d.Fields))
	require.Equal(types.String, d.Fields[0].Type.Kind)
	require.Equal(types.Number, d.Fields[1].Type.Kind)

	posts := d.Fields[2].Type
	require.Equal(types.Array, posts.Kind)
	require.Equal(types.Object, posts.Elem.Kind)
	require.Len(posts.Elem.Fields, 1)
	title, ok := posts.Elem.Field("title")
	require.True(ok)
	require.Equal(types.String, title.Kind)

	// The bare selector fetches to the same shape.
	d, ds = analyze(t, reg, "SELECT posts FROM user FETCH posts;")
	require.Empty(ds)
	require.True(posts.Equal(d.Fields[0].Type))
}

func TestFetchOnWildcard(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT * FROM post FETCH author;")
	require.Empty(diags)
	require.Equal([]string{"title", "author", "tags", "meta"}, fieldNames(d.Fields))
	require.Equal(types.Object, d.Fields[1].Type.Kind)
}

func TestInvalidFetchTarget(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)

	// Only record links and arrays of record links can be fetched.
	d, diags := analyze(t, reg, "SELECT * FROM post FETCH title;")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.InvalidFetchTarget, diags[0].Kind)

	// The rest of the statement still resolves.
	require.Equal(types.String, d.Fields[0].Type.Kind)

	_, diags = analyze(t, reg, "SELECT * FROM post FETCH tags;")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.InvalidFetchTarget, diags[0].Kind)
}

func TestExpandAll(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)

	d, diags := analyze(t, reg, "SELECT meta.* FROM post;")
	require.Empty(diags)
	require.Equal(types.Object, d.Fields[0].Type.Kind)

	// A bare record link has no members to expand without FETCH.
	d, diags = analyze(t, reg, "SELECT author.* FROM post;")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.InvalidFetchTarget, diags[0].Kind)
	require.Equal(types.Unknown, d.Fields[0].Type.Kind)
}

func TestDestructure(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT author.{name, age} FROM post FETCH author;")
	require.Empty(diags)

	author := d.Fields[0].Type
	require.Equal(types.Object, author.Kind)
	require.Len(author.Fields, 2)
	require.Equal("name", author.Fields[0].Name)
	require.Equal("age", author.Fields[1].Name)
}

func TestTraversal(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)

	d, diags := analyze(t, reg, "SELECT ->wrote->post FROM user;")
	require.Empty(diags)
	require.Equal("->wrote->post", d.Fields[0].Name)

	// Traversals are always potentially multi-valued.
	tr := d.Fields[0].Type
	require.Equal(types.Array, tr.Kind)
	require.Equal(types.Object, tr.Elem.Kind)
	title, ok := tr.Elem.Field("title")
	require.True(ok)
	require.Equal(types.String, title.Kind)
}

func TestTraversalAlias(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT ->wrote->post AS posts FROM user;")
	require.Empty(diags)
	require.Equal("posts", d.Fields[0].Name)
}

func TestTraversalUndefinedStep(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)

	// Every undefined step is reported.
	d, diags := analyze(t, reg, "SELECT ->liked->post FROM user;")
	require.Len(diags.Errors(), 1)
	require.Equal(diag.UndefinedTableRef, diags[0].Kind)
	require.Equal(types.Array, d.Fields[0].Type.Kind)

	// An undefined final target degrades the whole traversal.
	d, diags = analyze(t, reg, "SELECT ->wrote->ghost FROM user;")
	require.Len(diags.Errors(), 1)
	require.Equal(types.Unknown, d.Fields[0].Type.Kind)
}

func TestTraversalDestructure(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT ->wrote->post.{title} FROM user;")
	require.Empty(diags)
	tr := d.Fields[0].Type
	require.Equal(types.Array, tr.Kind)
	require.Len(tr.Elem.Fields, 1)
	require.Equal("title", tr.Elem.Fields[0].Name)
}

func TestSelectParams(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT * FROM user WHERE age > $min AND name = $n;")
	require.Empty(diags)
	require.Len(d.Params, 2)
	require.Equal("min", d.Params[0].Name)
	require.Equal(types.Number, d.Params[0].Type.Kind)
	require.Equal("n", d.Params[1].Name)
	require.Equal(types.String, d.Params[1].Type.Kind)
}

func TestParamUnionFallback(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT * FROM user WHERE age = $p OR name = $p;")
	require.False(diags.HasErrors())
	require.Len(diags.Warnings(), 1)
	require.Equal(diag.UnionFallback, diags[0].Kind)
	require.Len(d.Params, 1)
	require.Equal(types.Union, d.Params[0].Type.Kind)
}

func TestParamUnresolved(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT * FROM user LIMIT $n;")
	require.False(diags.HasErrors())
	require.Len(diags.Warnings(), 1)
	require.Equal(diag.UnresolvedParam, diags[0].Kind)
	require.Len(d.Params, 1)
	require.Equal(types.Unknown, d.Params[0].Type.Kind)
}

func TestParamAgainstOptionalField(t *testing.T) {
	require := require.New(t)
	reg := testRegistry(t)
	d, diags := analyze(t, reg, "SELECT * FROM user WHERE bio = $b;")
	require.Empty(diags)
	require.Len(d.Params, 1)
	require.Equal(types.String, d.Params[0].Type.Kind)
}
