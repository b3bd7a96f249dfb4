package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"get_user", "GetUser"},
		{"get-user", "GetUser"},
		{"getUser", "GetUser"},
		{"list_posts_by_author", "ListPostsByAuthor"},
		{"user", "User"},
		{"in", "In"},
		{"", "Query"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Export(tt.in), "Export(%q)", tt.in)
	}
}
