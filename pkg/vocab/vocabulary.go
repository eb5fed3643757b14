package vocab

import (
	"fmt"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Vocabulary is the read-only word listing used while serving.
// The slice position of a word is its id; the trie maps words back to ids.
type Vocabulary struct {
	words []string
	trie  *patricia.Trie
}

// New builds a Vocabulary from words in id order.
func New(words []string) (*Vocabulary, error) {
	if uint64(len(words)) > MaxWords {
		return nil, ErrVocabularyFull
	}
	trie := patricia.NewTrie()
	for i, w := range words {
		if w == "" {
			return nil, fmt.Errorf("id %d: %w", i, ErrEmptyWord)
		}
		if !trie.Insert(patricia.Prefix(w), ID(i)) {
			return nil, fmt.Errorf("id %d (%q): %w", i, w, ErrDuplicateWord)
		}
	}
	return &Vocabulary{words: words, trie: trie}, nil
}

// ID resolves a word to its id.
func (v *Vocabulary) ID(word string) (ID, bool) {
	if word == "" {
		return 0, false
	}
	item := v.trie.Get(patricia.Prefix(word))
	if item == nil {
		return 0, false
	}
	return item.(ID), true
}

// Word resolves an id to its word.
func (v *Vocabulary) Word(id ID) (string, bool) {
	if int(id) >= len(v.words) {
		return "", false
	}
	return v.words[id], true
}

// Len returns the number of words.
func (v *Vocabulary) Len() int {
	return len(v.words)
}

// Words returns a copy of the listing in id order.
func (v *Vocabulary) Words() []string {
	out := make([]string, len(v.words))
	copy(out, v.words)
	return out
}

// Complete lists up to limit known words starting with prefix, sorted
// alphabetically. A limit <= 0 returns every match.
func (v *Vocabulary) Complete(prefix string, limit int) []string {
	matches := []string{}
	if prefix == "" {
		return matches
	}
	_ = v.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		matches = append(matches, string(p))
		return nil
	})
	sort.Strings(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
