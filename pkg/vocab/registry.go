// Package vocab maps words to dense integer ids.
//
// A Registry is the mutable, build-time side: ids are handed out in
// first-seen order and never reused. A Vocabulary is the immutable,
// serve-time side rebuilt from a persisted word listing, safe for any number
// of concurrent readers.
package vocab

import (
	"errors"
	"math"
)

// ID is a dense, zero-based word identifier.
type ID uint32

// MaxWords is the largest vocabulary an ID can address.
const MaxWords uint64 = math.MaxUint32 + 1

var (
	ErrVocabularyFull = errors.New("vocabulary is full")
	ErrDuplicateWord  = errors.New("duplicate word in vocabulary")
	ErrEmptyWord      = errors.New("empty word in vocabulary")
)

// Registry assigns ids to tokens during a build. It is not safe for
// concurrent use.
type Registry struct {
	ids   map[string]ID
	words []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:   make(map[string]ID),
		words: make([]string, 0, 1024),
	}
}

// GetOrAssign returns the id of token, assigning the next free id the
// first time the token is seen.
func (r *Registry) GetOrAssign(token string) (ID, error) {
	if id, ok := r.ids[token]; ok {
		return id, nil
	}
	if uint64(len(r.words)) >= MaxWords {
		return 0, ErrVocabularyFull
	}
	id := ID(len(r.words))
	r.ids[token] = id
	r.words = append(r.words, token)
	return id, nil
}

// Lookup returns the id of an already registered token.
func (r *Registry) Lookup(token string) (ID, bool) {
	id, ok := r.ids[token]
	return id, ok
}

// Word returns the token registered under id.
func (r *Registry) Word(id ID) (string, bool) {
	if int(id) >= len(r.words) {
		return "", false
	}
	return r.words[id], true
}

// Len returns the number of registered tokens.
func (r *Registry) Len() int {
	return len(r.words)
}

// Words returns a copy of the tokens in id order.
func (r *Registry) Words() []string {
	out := make([]string, len(r.words))
	copy(out, r.words)
	return out
}
