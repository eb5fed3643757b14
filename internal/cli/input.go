// Package cli is an interactive prompt for trying a model: type some text,
// see what would come next.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Completer lists known words by prefix. *vocab.Vocabulary satisfies it.
type Completer interface {
	Complete(prefix string, limit int) []string
}

// InputHandler reads context lines and prints the predicted next words.
type InputHandler struct {
	predictor    suggest.IPredictor
	completer    Completer
	in           *bufio.Reader
	out          io.Writer
	limit        int
	showCounts   bool
	requestCount int
}

// NewInputHandler creates a handler. completer may be nil, in which case no
// word hints are shown for unknown context words. A limit outside
// 1..MaxSuggestions is replaced by MaxSuggestions, as on the IPC transport.
func NewInputHandler(predictor suggest.IPredictor, completer Completer, in io.Reader, out io.Writer, limit int, showCounts bool) *InputHandler {
	if limit < 1 || limit > suggest.MaxSuggestions {
		limit = suggest.MaxSuggestions
	}
	return &InputHandler{
		predictor:  predictor,
		completer:  completer,
		in:         bufio.NewReader(in),
		out:        out,
		limit:      limit,
		showCounts: showCounts,
	}
}

// Start runs the prompt loop until the input ends, ":q" is typed or ctx is
// cancelled. End of input is not an error.
func (h *InputHandler) Start(ctx context.Context) error {
	fmt.Fprintln(h.out, "nextword cli")
	fmt.Fprintln(h.out, "type some text and press Enter to see the next word (:q to exit):")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(h.out, "> ")
		line, err := h.in.ReadString('\n')
		text := strings.TrimSpace(line)
		if text == ":q" {
			return nil
		}
		if text != "" {
			h.handleInput(text)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(h.out)
				return nil
			}
			return err
		}
	}
}

// handleInput predicts from the last two words of text and prints them.
func (h *InputHandler) handleInput(text string) {
	h.requestCount++

	w1, w2, ok := suggest.ContextWords(text)
	if !ok {
		fmt.Fprintln(h.out, "need at least two words of context")
		return
	}

	start := time.Now()
	suggestions := h.predictor.Lookup(w1, w2, h.limit)
	log.Debugf("Took [ %v ] for context '%s %s'", time.Since(start), w1, w2)

	if len(suggestions) == 0 {
		fmt.Fprintf(h.out, "no suggestions after '%s %s'\n", w1, w2)
		h.printHints(w1, w2)
		return
	}

	header := []string{"#", "WORD"}
	if h.showCounts {
		header = append(header, "COUNT")
	}
	table := NewTable(h.out, header)
	for i, s := range suggestions {
		row := []string{strconv.Itoa(i + 1), s.Word}
		if h.showCounts {
			row = append(row, strconv.FormatUint(uint64(s.Count), 10))
		}
		table.Append(row)
	}
	table.Render()
}

// printHints lists known words starting like the context words, which helps
// spot a typo or a word that never made it into the vocabulary.
func (h *InputHandler) printHints(words ...string) {
	if h.completer == nil {
		return
	}
	for _, w := range words {
		known := h.completer.Complete(w, 1)
		if len(known) == 1 && known[0] == w {
			continue
		}
		if hints := h.completer.Complete(w, 5); len(hints) > 0 {
			fmt.Fprintf(h.out, "'%s' is not a known word; known words: %s\n", w, strings.Join(hints, ", "))
		} else {
			fmt.Fprintf(h.out, "'%s' is not a known word\n", w)
		}
	}
}
