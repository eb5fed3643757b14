package trigram

// DefaultMinCount is the pruning threshold used when none is configured.
const DefaultMinCount = 2

// Prune drops every continuation seen fewer than minCount times, and any
// context left without continuations. Surviving counts are not changed.
// counts is filtered in place and returned.
func Prune(counts Counts, minCount uint32) Counts {
	if minCount <= 1 {
		return counts
	}
	for key, next := range counts {
		for w3, c := range next {
			if c < minCount {
				delete(next, w3)
			}
		}
		if len(next) == 0 {
			delete(counts, key)
		}
	}
	return counts
}
