// Package trigram turns raw text into a pruned, sorted trigram index.
//
// The pipeline is strictly sequential: Tokenize a line, register its tokens
// in a vocab.Registry, feed the ids to an Aggregator, and once the corpus is
// exhausted Prune the counts and Build the sorted records. Trainer runs the
// whole pipeline over an io.Reader.
package trigram

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenizer normalizes lines into word tokens. A Tokenizer holds a
// stateful case mapper and must not be shared between goroutines.
type Tokenizer struct {
	lower cases.Caser
}

// NewTokenizer returns a Tokenizer using language-neutral Unicode
// lower-casing.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{lower: cases.Lower(language.Und)}
}

// Lower lower-cases s.
func (t *Tokenizer) Lower(s string) string {
	return t.lower.String(s)
}

// Tokenize lower-cases line, splits it on whitespace and trims every piece
// of leading and trailing runes that are not letters or digits. Interior
// punctuation such as the apostrophe in "don't" is kept. Pieces that end up
// empty are dropped.
func (t *Tokenizer) Tokenize(line string) []string {
	fields := strings.Fields(t.Lower(line))
	tokens := fields[:0]
	for _, f := range fields {
		if w := strings.TrimFunc(f, notAlphanumeric); w != "" {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// Tokenize is a convenience wrapper around a fresh Tokenizer.
func Tokenize(line string) []string {
	return NewTokenizer().Tokenize(line)
}

func notAlphanumeric(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Other_Alphabetic, r))
}
