package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexSearchRanksByBM25(t *testing.T) {
	idx := NewIndex()
	idx.Build([]Doc{
		{ID: "c1", Text: "late pickup policy for after hours appointments"},
		{ID: "c2", Text: "cancellation policy requires 24 hours notice"},
		{ID: "c3", Text: "parking is available in the garage next door"},
	})

	results := idx.Search("policy hours", 10)
	require.Len(t, results, 2)
	ids := []string{results[0].ID, results[1].ID}
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestIndexSearchEmptyQueryOrIndex(t *testing.T) {
	idx := NewIndex()
	assert.Empty(t, idx.Search("anything", 5))

	idx.Build([]Doc{{ID: "c1", Text: "hello world"}})
	assert.Empty(t, idx.Search("", 5))
	assert.Empty(t, idx.Search("   ", 5))
}

func TestIndexBuildIsFullReplace(t *testing.T) {
	idx := NewIndex()
	idx.Build([]Doc{{ID: "c1", Text: "parking garage"}})
	require.Len(t, idx.Search("parking", 10), 1)

	idx.Build([]Doc{{ID: "c2", Text: "policy hours"}})
	assert.Empty(t, idx.Search("parking", 10))
	require.Len(t, idx.Search("policy", 10), 1)
	assert.Equal(t, "c2", idx.Search("policy", 10)[0].ID)
}

func TestIndexSearchRespectsTopN(t *testing.T) {
	idx := NewIndex()
	idx.Build([]Doc{
		{ID: "c1", Text: "policy policy policy"},
		{ID: "c2", Text: "policy"},
		{ID: "c3", Text: "policy policy"},
	})
	results := idx.Search("policy", 2)
	assert.Len(t, results, 2)
}

func TestTokenizeIsCaseInsensitiveOnWhitespace(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("Hello   World"))
	assert.Equal(t, []string{"a", "b", "c"}, Tokenize("A b\tc"))
}
