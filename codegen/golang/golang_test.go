package golang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/surtype/codegen"
	"github.com/syssam/surtype/infer"
	"github.com/syssam/surtype/types"
)

// flatten collapses gofmt's column alignment so assertions can match on
// single-space form.
func flatten(src []byte) string {
	return strings.Join(strings.Fields(string(src)), " ")
}

func TestGenerate(t *testing.T) {
	require := require.New(t)
	units := []codegen.Unit{{
		Name: "get_user",
		Descriptors: []infer.Descriptor{{
			Source: infer.SourceSelect,
			Fields: []infer.Field{
				{Name: "name", Type: types.NewString()},
				{Name: "age", Type: types.NewNumber()},
				{Name: "bio", Type: types.NewString(), Nullable: true},
				{Name: "created", Type: types.NewDatetime()},
				{Name: "tags", Type: types.NewArray(types.NewString())},
			},
			Params: []infer.Param{
				{Name: "min", Type: types.NewNumber()},
			},
		}},
	}}
	out, err := New("queries").Generate(units)
	require.NoError(err)
	require.True(strings.HasPrefix(string(out), "// Code generated by surtype. DO NOT EDIT."))

	src := flatten(out)
	require.Contains(src, "package queries")
	require.Contains(src, `"time"`)
	require.Contains(src, "type GetUserResult struct {")
	require.Contains(src, "Name string `json:\"name\"`")
	require.Contains(src, "Age float64 `json:\"age\"`")
	require.Contains(src, "Bio *string `json:\"bio,omitempty\"`")
	require.Contains(src, "Created time.Time `json:\"created\"`")
	require.Contains(src, "Tags []string `json:\"tags\"`")
	require.Contains(src, "type GetUserVariables struct {")
	require.Contains(src, "Min float64 `json:\"min\"`")
}

func TestGenerateMultiStatement(t *testing.T) {
	require := require.New(t)
	units := []codegen.Unit{{
		Name: "combo",
		Descriptors: []infer.Descriptor{
			{Source: infer.SourceSelect, Fields: []infer.Field{{Name: "a", Type: types.NewString()}}},
			{Source: infer.SourceDelete, Fields: []infer.Field{{Name: "id", Type: types.NewRecord("user")}}},
		},
	}}
	out, err := New("").Generate(units)
	require.NoError(err)
	src := flatten(out)
	require.Contains(src, "package queries")
	require.Contains(src, "type ComboResult1 struct {")
	require.Contains(src, "type ComboResult2 struct {")
	require.Contains(src, "Id string `json:\"id\"`")
}

func TestGenerateValue(t *testing.T) {
	require := require.New(t)
	units := []codegen.Unit{{
		Name: "names",
		Descriptors: []infer.Descriptor{{
			Source: infer.SourceSelect,
			Value:  true,
			Fields: []infer.Field{{Name: "name", Type: types.NewString()}},
		}},
	}}
	out, err := New("queries").Generate(units)
	require.NoError(err)
	require.Contains(flatten(out), "type NamesResult = string")
}

func TestGenerateNestedObject(t *testing.T) {
	require := require.New(t)
	units := []codegen.Unit{{
		Name: "stats",
		Descriptors: []infer.Descriptor{{
			Source: infer.SourceSelect,
			Fields: []infer.Field{{
				Name: "meta",
				Type: types.NewObject([]types.Field{
					{Name: "views", Type: types.NewNumber()},
					{Name: "note", Type: types.NewOption(types.NewString())},
				}),
			}},
		}},
	}}
	out, err := New("queries").Generate(units)
	require.NoError(err)
	src := flatten(out)
	require.Contains(src, "Meta struct {")
	require.Contains(src, "Views float64 `json:\"views\"`")
	require.Contains(src, "Note *string `json:\"note,omitempty\"`")
}
