package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnify(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Type
		want     *Type
		weakened bool
	}{
		{
			name: "identical",
			a:    NewString(), b: NewString(),
			want: NewString(),
		},
		{
			name: "unknown absorbs",
			a:    NewString(), b: NewUnknown(),
			want: NewUnknown(), weakened: true,
		},
		{
			name: "any yields",
			a:    NewAny(), b: NewNumber(),
			want: NewNumber(),
		},
		{
			name: "any yields on either side",
			a:    NewNumber(), b: NewAny(),
			want: NewNumber(),
		},
		{
			name: "disagreement unions",
			a:    NewString(), b: NewNumber(),
			want: NewUnion(NewString(), NewNumber()), weakened: true,
		},
		{
			name: "option stays optional",
			a:    NewOption(NewString()), b: NewString(),
			want: NewOption(NewString()),
		},
		{
			name: "options of disagreeing inners",
			a:    NewOption(NewString()), b: NewOption(NewNumber()),
			want: NewOption(NewUnion(NewString(), NewNumber())), weakened: true,
		},
		{
			name: "array length mismatch widens",
			a:    NewArrayLen(NewString(), 2), b: NewArrayLen(NewString(), 3),
			want: NewArray(NewString()),
		},
		{
			name: "arrays of disagreeing elements union",
			a:    NewArray(NewString()), b: NewArray(NewNumber()),
			want: NewUnion(NewArray(NewString()), NewArray(NewNumber())), weakened: true,
		},
		{
			name: "nil left",
			a:    nil, b: NewString(),
			want: NewString(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, weakened := Unify(tt.a, tt.b)
			require.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			require.Equal(t, tt.weakened, weakened)
		})
	}
}

func TestUnifyAll(t *testing.T) {
	require := require.New(t)

	got, weakened := UnifyAll(NewString(), NewString(), NewString())
	require.True(NewString().Equal(got))
	require.False(weakened)

	got, weakened = UnifyAll(NewString(), NewNumber())
	require.Equal(Union, got.Kind)
	require.True(weakened)

	got, weakened = UnifyAll()
	require.Equal(Unknown, got.Kind)
	require.True(weakened)
}
