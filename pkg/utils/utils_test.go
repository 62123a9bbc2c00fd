package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"", []string{}},
		{"::", []string{}},
		{"x", []string{"x"}},
		{"::N::x", []string{"N", "x"}},
		{"std::map<a::b, c>::iterator", []string{"std", "map<a::b, c>", "iterator"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := SplitPath(tt.path)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "::", JoinPath(nil))
	assert.Equal(t, "N::C::m", JoinPath([]string{"N", "C", "m"}))
}

func TestIsValidCppIdentifier(t *testing.T) {
	assert.True(t, IsValidCppIdentifier("_value1"))
	assert.False(t, IsValidCppIdentifier("1value"))
	assert.False(t, IsValidCppIdentifier("a-b"))
	assert.False(t, IsValidCppIdentifier(""))
}

func TestRemoveTemplateParams(t *testing.T) {
	assert.Equal(t, "vector", RemoveTemplateParams("vector<pair<int, int>>"))
	assert.Equal(t, "Box", RemoveTemplateParams("Box<T> "))
}

func TestParseLookupPath(t *testing.T) {
	ids, err := ParseLookupPath("N::Box<int>::~Box")
	require.NoError(t, err)
	assert.Equal(t, []string{"N", "Box", "~Box"}, ids)

	ids, err = ParseLookupPath("C::operator+")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "operator +"}, ids)

	ids, err = ParseLookupPath("operatorX")
	require.NoError(t, err)
	assert.Equal(t, []string{"operatorX"}, ids)

	_, err = ParseLookupPath("N::1bad")
	assert.Error(t, err)
	_, err = ParseLookupPath("  ")
	assert.Error(t, err)
}
