package suggest

import (
	"sort"
	"strings"

	"github.com/bastiangx/nextword/pkg/dictionary"
	"github.com/bastiangx/nextword/pkg/trigram"
	"github.com/bastiangx/nextword/pkg/vocab"
)

// MaxSuggestions bounds every Predict result.
const MaxSuggestions = 5

// Suggestion is one ranked continuation.
type Suggestion struct {
	Word  string
	Count uint32
}

// Predictor answers queries against one immutable model. It holds no
// mutable state and may be shared by any number of goroutines.
type Predictor struct {
	records []dictionary.Record
	vocab   *vocab.Vocabulary
}

var _ IPredictor = (*Predictor)(nil)

// NewPredictor wraps a model that has passed dictionary.Validate, either
// through dictionary.Load or by coming straight out of a Trainer.
func NewPredictor(m *dictionary.Model) *Predictor {
	return &Predictor{records: m.Records, vocab: m.Vocab}
}

// Vocabulary returns the word listing behind the index.
func (p *Predictor) Vocabulary() *vocab.Vocabulary {
	return p.vocab
}

// Predict returns the words that followed w1 w2 in the corpus, best ranked
// first, at most MaxSuggestions of them. Unknown words or an unseen
// context give an empty result.
func (p *Predictor) Predict(w1, w2 string) []string {
	suggestions := p.Lookup(w1, w2, MaxSuggestions)
	words := make([]string, len(suggestions))
	for i, s := range suggestions {
		words[i] = s.Word
	}
	return words
}

// PredictContext applies Predict to the last two words of text.
func (p *Predictor) PredictContext(text string) []string {
	w1, w2, ok := ContextWords(text)
	if !ok {
		return []string{}
	}
	return p.Predict(w1, w2)
}

// Lookup returns up to limit suggestions in index order with their counts.
// A limit <= 0 means MaxSuggestions.
func (p *Predictor) Lookup(w1, w2 string, limit int) []Suggestion {
	if limit <= 0 {
		limit = MaxSuggestions
	}
	id1, ok := p.vocab.ID(w1)
	if !ok {
		return []Suggestion{}
	}
	id2, ok := p.vocab.ID(w2)
	if !ok {
		return []Suggestion{}
	}

	suggestions := []Suggestion{}
	for i := p.search(id1, id2); i < len(p.records) && len(suggestions) < limit; i++ {
		r := p.records[i]
		if r.W1 != id1 || r.W2 != id2 {
			break
		}
		word, ok := p.vocab.Word(r.W3)
		if !ok {
			continue
		}
		suggestions = append(suggestions, Suggestion{Word: word, Count: r.Count})
	}
	return suggestions
}

// search returns the index of the first record with key (id1, id2), or
// the position where it would be.
func (p *Predictor) search(id1, id2 vocab.ID) int {
	return sort.Search(len(p.records), func(i int) bool {
		r := p.records[i]
		return dictionary.CompareKey(r.W1, r.W2, id1, id2) >= 0
	})
}

// Stats returns statistics about the loaded index.
func (p *Predictor) Stats() map[string]int {
	return map[string]int{
		"records": len(p.records),
		"words":   p.vocab.Len(),
	}
}

// ContextWords lower-cases text, splits it on whitespace and returns its
// last two words. ok is false when fewer than two words are present.
// Punctuation is not stripped: the words are looked up as typed.
func ContextWords(text string) (w1, w2 string, ok bool) {
	fields := strings.Fields(trigram.NewTokenizer().Lower(text))
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[len(fields)-2], fields[len(fields)-1], true
}
