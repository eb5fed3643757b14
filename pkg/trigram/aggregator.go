package trigram

import (
	"math"

	"github.com/bastiangx/nextword/pkg/vocab"
)

// ContextKey is the ordered pair of word ids preceding a continuation.
type ContextKey struct {
	W1, W2 vocab.ID
}

// Counts maps a context to the occurrence count of each continuation.
type Counts map[ContextKey]map[vocab.ID]uint32

// Len returns the number of (context, continuation) entries.
func (c Counts) Len() int {
	n := 0
	for _, next := range c {
		n += len(next)
	}
	return n
}

// Aggregator accumulates trigram counts line by line.
type Aggregator struct {
	counts  Counts
	windows uint64
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{counts: make(Counts)}
}

// AddLine counts every window of three consecutive ids in one line.
// Windows never span lines; lines shorter than three ids add nothing.
func (a *Aggregator) AddLine(ids []vocab.ID) {
	for i := 0; i+2 < len(ids); i++ {
		key := ContextKey{W1: ids[i], W2: ids[i+1]}
		next, ok := a.counts[key]
		if !ok {
			next = make(map[vocab.ID]uint32, 1)
			a.counts[key] = next
		}
		// saturate instead of wrapping around
		if c := next[ids[i+2]]; c < math.MaxUint32 {
			next[ids[i+2]] = c + 1
		}
		a.windows++
	}
}

// Count returns how many times (w1, w2, w3) has been seen.
func (a *Aggregator) Count(w1, w2, w3 vocab.ID) uint32 {
	return a.counts[ContextKey{W1: w1, W2: w2}][w3]
}

// Windows returns the total number of windows added.
func (a *Aggregator) Windows() uint64 {
	return a.windows
}

// Contexts returns the number of distinct context keys.
func (a *Aggregator) Contexts() int {
	return len(a.counts)
}

// Len returns the number of distinct trigrams.
func (a *Aggregator) Len() int {
	return a.counts.Len()
}

// Counts exposes the accumulated counts. The map is owned by the
// Aggregator until aggregation is finished.
func (a *Aggregator) Counts() Counts {
	return a.counts
}
