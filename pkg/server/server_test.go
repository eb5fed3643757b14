package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/bastiangx/nextword/pkg/trigram"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func init() {
	log.SetLevel(log.ErrorLevel)
	gin.SetMode(gin.TestMode)
}

const corpus = `i want to go home
i want to go out
i want to eat now
you want to eat
`

func newPredictor(t *testing.T) *suggest.Predictor {
	t.Helper()
	m, err := trigram.NewTrainer(trigram.Options{MinCount: 1}).Train(context.Background(), strings.NewReader(corpus))
	require.NoError(t, err)
	return suggest.NewPredictor(m)
}

// runIPC feeds the encoded requests to a server and returns a decoder over
// everything it wrote, positioned after the ready message.
func runIPC(t *testing.T, requests ...any) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}

	s := NewServer(newPredictor(t), &in, &out)
	require.NoError(t, s.Start(context.Background()))

	dec := msgpack.NewDecoder(&out)
	var ready map[string]string
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready["status"])
	return dec
}

func TestIPCPredict(t *testing.T) {
	dec := runIPC(t, PredictRequest{ID: "r1", Context: "I want to"})

	var resp PredictResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, 2, resp.Count)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))

	// go was seen first, both have count 2, so go ranks first
	assert.Equal(t, []PredictSuggestion{
		{Word: "go", Rank: 1, Count: 2},
		{Word: "eat", Rank: 2, Count: 2},
	}, resp.Suggestions)
}

func TestIPCLimitAndUnknown(t *testing.T) {
	dec := runIPC(t,
		PredictRequest{ID: "limited", Context: "want to", Limit: 1},
		PredictRequest{ID: "oov", Context: "purple elephants"},
		PredictRequest{ID: "short", Context: "to"},
	)

	var resp PredictResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "limited", resp.ID)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "go", resp.Suggestions[0].Word)

	for _, id := range []string{"oov", "short"} {
		resp = PredictResponse{}
		require.NoError(t, dec.Decode(&resp))
		assert.Equal(t, id, resp.ID)
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Suggestions)
	}
}

func TestIPCHealthAndErrors(t *testing.T) {
	dec := runIPC(t,
		PredictRequest{ID: "h1", Action: ActionHealth},
		PredictRequest{ID: "x1", Action: "reload"},
		7,
		PredictRequest{ID: "after", Context: "i want"},
	)

	var h HealthResponse
	require.NoError(t, dec.Decode(&h))
	assert.Equal(t, "h1", h.ID)
	assert.Equal(t, "ok", h.Status)
	assert.Positive(t, h.Records)
	assert.Positive(t, h.Words)

	var e PredictError
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, "x1", e.ID)
	assert.Equal(t, 400, e.Code)
	assert.Contains(t, e.Error, "reload")

	e = PredictError{}
	require.NoError(t, dec.Decode(&e))
	assert.Equal(t, 400, e.Code)

	// the stream survives a bad message
	var resp PredictResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "after", resp.ID)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "to", resp.Suggestions[0].Word)
}

func TestIPCStopsOnCancel(t *testing.T) {
	pr, pw := net.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	s := NewServer(newPredictor(t), pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop after cancel")
	}

	// closing the input releases the read loop
	select {
	case <-s.Stopped():
	case <-time.After(time.Second):
		t.Fatal("read loop still blocked after cancel")
	}
}

func TestHTTPPredict(t *testing.T) {
	h := NewHTTPServer(newPredictor(t), 0).Handler()

	tests := []struct {
		name    string
		body    string
		code    int
		suggest []string
	}{
		{"known context", `{"context":"I want to"}`, http.StatusOK, []string{"go", "eat"}},
		{"unknown context", `{"context":"purple elephants"}`, http.StatusOK, []string{}},
		{"short context", `{"context":"to"}`, http.StatusOK, []string{}},
		{"empty body field", `{}`, http.StatusOK, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			h.ServeHTTP(w, req)

			require.Equal(t, tt.code, w.Code)
			var resp HTTPPredictResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.suggest, resp.Suggestions)
			assert.NotContains(t, w.Body.String(), "null")
			assert.NotEmpty(t, w.Header().Get(requestIDHeader))
		})
	}
}

func TestHTTPBadJSON(t *testing.T) {
	h := NewHTTPServer(newPredictor(t), 0).Handler()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"context":`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestHTTPHealth(t *testing.T) {
	p := newPredictor(t)
	h := NewHTTPServer(p, 0).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, p.Stats()["records"], resp.Records)
	assert.Equal(t, p.Stats()["words"], resp.Words)
}

func TestHTTPRequestIDPassthrough(t *testing.T) {
	h := NewHTTPServer(newPredictor(t), 0).Handler()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestHTTPCORSPreflight(t *testing.T) {
	h := NewHTTPServer(newPredictor(t), 0).Handler()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "vscode-webview://extension")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewHTTPServer(newPredictor(t), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/predict", "application/json",
		strings.NewReader(`{"context":"want to"}`))
	require.NoError(t, err)
	var body HTTPPredictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, []string{"go", "eat"}, body.Suggestions)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
