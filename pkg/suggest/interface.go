// Package suggest is the query engine: it resolves a two-word context
// against a loaded index and returns ranked next-word suggestions.
package suggest

// IPredictor defines the interface for next-word engines
type IPredictor interface {
	// Predict returns at most MaxSuggestions words following w1 w2
	Predict(w1, w2 string) []string

	// PredictContext predicts from the last two words of free text
	PredictContext(text string) []string

	// Lookup returns up to limit ranked suggestions with their counts
	Lookup(w1, w2 string, limit int) []Suggestion

	// Stats returns statistics about the loaded index
	Stats() map[string]int
}
