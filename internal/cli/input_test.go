package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/bastiangx/nextword/pkg/trigram"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func newHandler(t *testing.T, input string, showCounts bool) (*InputHandler, *bytes.Buffer) {
	t.Helper()
	m, err := trigram.NewTrainer(trigram.Options{MinCount: 1}).Train(context.Background(),
		strings.NewReader("see you later today\nsee you later again\nsee you soon\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	p := suggest.NewPredictor(m)
	return NewInputHandler(p, p.Vocabulary(), strings.NewReader(input), &out, 5, showCounts), &out
}

func TestInputHandlerPredicts(t *testing.T) {
	h, out := newHandler(t, "See you\n", true)
	require.NoError(t, h.Start(context.Background()))

	text := out.String()
	assert.Contains(t, text, "later")
	assert.Contains(t, text, "soon")
	assert.Contains(t, text, "COUNT")
	assert.Less(t, strings.Index(text, "later"), strings.Index(text, "soon"))
	assert.Equal(t, 1, h.requestCount)
}

func TestInputHandlerWithoutCounts(t *testing.T) {
	h, out := newHandler(t, "see you", false)
	require.NoError(t, h.Start(context.Background()))
	assert.Contains(t, out.String(), "later")
	assert.NotContains(t, out.String(), "COUNT")
}

func TestInputHandlerShortAndUnknown(t *testing.T) {
	h, out := newHandler(t, "you\nsee yo\n\n", false)
	require.NoError(t, h.Start(context.Background()))

	text := out.String()
	assert.Contains(t, text, "need at least two words")
	assert.Contains(t, text, "no suggestions after 'see yo'")
	assert.Contains(t, text, "'yo' is not a known word; known words: you")
	assert.NotContains(t, text, "'see' is not a known word")
	assert.Equal(t, 2, h.requestCount)
}

func TestInputHandlerQuit(t *testing.T) {
	h, _ := newHandler(t, ":q\nsee you\n", false)
	require.NoError(t, h.Start(context.Background()))
	assert.Equal(t, 0, h.requestCount)
}

func TestInputHandlerCancelled(t *testing.T) {
	h, _ := newHandler(t, "see you\n", false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.Start(ctx))
	assert.Equal(t, 0, h.requestCount)
}

func TestInputHandlerLimitBounded(t *testing.T) {
	for _, limit := range []int{0, -1, 6, 50} {
		h := NewInputHandler(nil, nil, strings.NewReader(""), &bytes.Buffer{}, limit, false)
		assert.Equal(t, suggest.MaxSuggestions, h.limit, "limit %d", limit)
	}
	h := NewInputHandler(nil, nil, strings.NewReader(""), &bytes.Buffer{}, 3, false)
	assert.Equal(t, 3, h.limit)
}
