package trigram

import (
	"sort"

	"github.com/bastiangx/nextword/pkg/dictionary"
)

// Build flattens counts into index records sorted by context key. Within a
// key, records are ranked by descending count and then ascending
// continuation id, so the output is identical for identical counts no matter
// how the map iterates.
func Build(counts Counts) []dictionary.Record {
	records := make([]dictionary.Record, 0, counts.Len())
	for key, next := range counts {
		for w3, c := range next {
			records = append(records, dictionary.Record{W1: key.W1, W2: key.W2, W3: w3, Count: c})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return dictionary.Less(records[i], records[j])
	})
	return records
}
