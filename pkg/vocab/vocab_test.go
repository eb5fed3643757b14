package vocab

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry()
	tokens := []string{"the", "cat", "sat", "on", "the", "mat", "cat"}
	want := []ID{0, 1, 2, 3, 0, 4, 1}

	for i, tok := range tokens {
		id, err := r.GetOrAssign(tok)
		require.NoError(t, err)
		assert.Equal(t, want[i], id, "token %q", tok)
	}
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, []string{"the", "cat", "sat", "on", "mat"}, r.Words())
}

func TestRegistryIDStability(t *testing.T) {
	r := NewRegistry()
	a, err := r.GetOrAssign("alpha")
	require.NoError(t, err)
	b, err := r.GetOrAssign("beta")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	again, err := r.GetOrAssign("alpha")
	require.NoError(t, err)
	assert.Equal(t, a, again)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryInvertible(t *testing.T) {
	r := NewRegistry()
	for _, tok := range []string{"don't", "über", "42", "ς", "x"} {
		id, err := r.GetOrAssign(tok)
		require.NoError(t, err)
		word, ok := r.Word(id)
		require.True(t, ok)
		assert.Equal(t, tok, word)
	}
	_, ok := r.Word(ID(r.Len()))
	assert.False(t, ok)
}

func TestRegistryWordsIsCopy(t *testing.T) {
	r := NewRegistry()
	_, _ = r.GetOrAssign("one")
	words := r.Words()
	words[0] = "changed"
	w, _ := r.Word(0)
	assert.Equal(t, "one", w)
}

func TestVocabularyLookups(t *testing.T) {
	v, err := New([]string{"hello", "help", "world", "helm"})
	require.NoError(t, err)

	testCases := []struct {
		word string
		id   ID
		ok   bool
	}{
		{"hello", 0, true},
		{"help", 1, true},
		{"world", 2, true},
		{"helm", 3, true},
		{"hel", 0, false},
		{"helloo", 0, false},
		{"", 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.word, func(t *testing.T) {
			id, ok := v.ID(tc.word)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.id, id)
				w, ok := v.Word(id)
				require.True(t, ok)
				assert.Equal(t, tc.word, w)
			}
		})
	}
	assert.Equal(t, 4, v.Len())
}

func TestVocabularyRejectsBadListings(t *testing.T) {
	_, err := New([]string{"a", "b", "a"})
	assert.True(t, errors.Is(err, ErrDuplicateWord))

	_, err = New([]string{"a", ""})
	assert.True(t, errors.Is(err, ErrEmptyWord))
}

func TestVocabularyComplete(t *testing.T) {
	v, err := New([]string{"help", "hello", "world", "helm", "he"})
	require.NoError(t, err)

	assert.Equal(t, []string{"he", "hello", "helm", "help"}, v.Complete("he", 0))
	assert.Equal(t, []string{"hello", "helm"}, v.Complete("hel", 2))
	assert.Empty(t, v.Complete("zzz", 5))
	assert.Empty(t, v.Complete("", 5))
}
