package suggest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bastiangx/nextword/pkg/dictionary"
	"github.com/bastiangx/nextword/pkg/trigram"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

const corpus = `the quick brown fox jumps over the lazy dog
the quick brown fox jumps over the lazy cat
the quick brown cat sleeps under the warm sun
the quick brown fox runs past the lazy dog
a quick brown cat naps
i want to go home now
i want to eat something now
i want to sleep early
i want to go out
i want to read a book
i want to write a letter
i want to see the sea
i want to eat lunch
i want to read more
i want to write code
i want to see you
i want to sleep more
i want to run fast
i want to run away
`

func trainModel(t testing.TB, minCount uint32) *dictionary.Model {
	t.Helper()
	m, err := trigram.NewTrainer(trigram.Options{MinCount: minCount}).Train(context.Background(), strings.NewReader(corpus))
	require.NoError(t, err)
	return m
}

func TestPredictRanksByCount(t *testing.T) {
	p := NewPredictor(trainModel(t, 2))

	assert.Equal(t, []string{"fox", "cat"}, p.Predict("quick", "brown"))
	assert.Equal(t, []string{"jumps"}, p.Predict("brown", "fox"))
	// windows end with the line
	assert.Empty(t, p.Predict("lazy", "dog"))

	got := p.Lookup("quick", "brown", 0)
	assert.Equal(t, []Suggestion{{Word: "fox", Count: 3}, {Word: "cat", Count: 2}}, got)
}

func TestPredictBoundedOutput(t *testing.T) {
	p := NewPredictor(trainModel(t, 2))

	// "want to" has go, eat, sleep, read, write, see, run: seven, each twice
	got := p.Predict("want", "to")
	require.Len(t, got, MaxSuggestions)
	assert.Equal(t, []string{"go", "eat", "sleep", "read", "write"}, got)

	all := p.Lookup("want", "to", 100)
	assert.Len(t, all, 7)
	for _, s := range all {
		assert.Equal(t, uint32(2), s.Count)
	}
}

func TestPredictOutOfVocabulary(t *testing.T) {
	p := NewPredictor(trainModel(t, 2))

	testCases := []struct {
		w1, w2 string
	}{
		{"unknown", "to"},
		{"want", "unknown"},
		{"", ""},
		{"Want", "to"},
		{"to", "want"},
	}
	for _, tc := range testCases {
		t.Run(tc.w1+"_"+tc.w2, func(t *testing.T) {
			got := p.Predict(tc.w1, tc.w2)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

// TestPredictMatchesLinearScan checks the binary search against a brute
// force scan for every key in the index and a few keys that are not.
func TestPredictMatchesLinearScan(t *testing.T) {
	m := trainModel(t, 1)
	p := NewPredictor(m)

	type key struct{ w1, w2 string }
	expected := make(map[key][]string)
	for _, r := range m.Records {
		w1, _ := m.Vocab.Word(r.W1)
		w2, _ := m.Vocab.Word(r.W2)
		w3, _ := m.Vocab.Word(r.W3)
		k := key{w1, w2}
		expected[k] = append(expected[k], w3)
	}
	require.NotEmpty(t, expected)

	for k, words := range expected {
		got := p.Lookup(k.w1, k.w2, len(m.Records))
		gotWords := make([]string, len(got))
		for i, s := range got {
			gotWords[i] = s.Word
		}
		assert.Equal(t, words, gotWords, "context %q %q", k.w1, k.w2)

		want := words
		if len(want) > MaxSuggestions {
			want = want[:MaxSuggestions]
		}
		assert.Equal(t, want, p.Predict(k.w1, k.w2))
	}

	words := m.Vocab.Words()
	for _, w1 := range words[:5] {
		for _, w2 := range words[:5] {
			if _, ok := expected[key{w1, w2}]; ok {
				continue
			}
			assert.Empty(t, p.Predict(w1, w2), "context %q %q", w1, w2)
		}
	}
}

func TestPredictEmptyModel(t *testing.T) {
	m, err := trigram.NewTrainer(trigram.Options{}).Train(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	p := NewPredictor(m)
	assert.Empty(t, p.Predict("a", "b"))
	assert.Equal(t, map[string]int{"records": 0, "words": 0}, p.Stats())
}

func TestContextWords(t *testing.T) {
	testCases := []struct {
		text   string
		w1, w2 string
		ok     bool
	}{
		{"I want to", "want", "to", true},
		{"  WANT   TO  ", "want", "to", true},
		{"single", "", "", false},
		{"", "", "", false},
		{"hello, world!", "hello,", "world!", true},
		{"line one\nline two", "line", "two", true},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			w1, w2, ok := ContextWords(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.w1, w1)
			assert.Equal(t, tc.w2, w2)
		})
	}
}

func TestPredictContext(t *testing.T) {
	p := NewPredictor(trainModel(t, 2))
	assert.Equal(t, []string{"fox", "cat"}, p.PredictContext("The Quick Brown"))
	assert.Empty(t, p.PredictContext("brown"))
	assert.Empty(t, p.PredictContext("quick brown."))
}

// TestRoundTrip writes the model to disk, reloads it, and checks every
// context answers identically.
func TestRoundTrip(t *testing.T) {
	m := trainModel(t, 2)
	paths := dictionary.DefaultPaths(t.TempDir())
	require.NoError(t, dictionary.Save(paths, m))

	loaded, err := dictionary.Load(paths)
	require.NoError(t, err)

	before, after := NewPredictor(m), NewPredictor(loaded)
	for _, r := range m.Records {
		w1, _ := m.Vocab.Word(r.W1)
		w2, _ := m.Vocab.Word(r.W2)
		assert.Equal(t, before.Lookup(w1, w2, 0), after.Lookup(w1, w2, 0), fmt.Sprintf("%s %s", w1, w2))
	}
}
