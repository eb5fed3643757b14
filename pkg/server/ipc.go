package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/bastiangx/nextword/internal/logger"
	"github.com/bastiangx/nextword/internal/utils"
	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles msgpack IPC for next-word predictions.
type Server struct {
	predictor suggest.IPredictor
	in        io.Reader
	decoder   *msgpack.Decoder
	out       *bufio.Writer
	encoder   *msgpack.Encoder
	logger    *log.Logger
	requests  atomic.Uint64
	stopped   chan struct{}
}

// NewServer creates an IPC server reading requests from r and writing
// responses to w. The command wires these to stdin and stdout.
func NewServer(predictor suggest.IPredictor, r io.Reader, w io.Writer) *Server {
	out := bufio.NewWriter(w)
	return &Server{
		predictor: predictor,
		in:        r,
		decoder:   msgpack.NewDecoder(bufio.NewReader(r)),
		out:       out,
		encoder:   msgpack.NewEncoder(out),
		logger:    logger.New("ipc"),
		stopped:   make(chan struct{}),
	}
}

// Start announces readiness and serves requests until the input is closed
// or ctx is cancelled. A clean end of input returns nil.
//
// On cancel, the input is closed when it is an io.Closer so the read loop
// exits; with any other reader the loop stays blocked until a read returns.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting IPC server")
	if err := s.send(map[string]string{"status": "ready"}); err != nil {
		return fmt.Errorf("write ready message: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		defer close(s.stopped)
		done <- s.loop()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.logger.Debugf("IPC server stopping after %d requests", s.requests.Load())
		if c, ok := s.in.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.logger.Warnf("Closing input: %v", err)
			}
		}
		return nil
	}
}

// Stopped is closed once the read loop has exited.
func (s *Server) Stopped() <-chan struct{} {
	return s.stopped
}

func (s *Server) loop() error {
	for {
		var raw msgpack.RawMessage
		if err := s.decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debugf("Input closed after %d requests", s.requests.Load())
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}
		s.requests.Add(1)

		var req PredictRequest
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Errorf("Decoding request: %v", err)
			if err := s.sendError("", "invalid msgpack request", 400); err != nil {
				return err
			}
			continue
		}
		if err := s.handleRequest(req); err != nil {
			return err
		}
	}
}

// handleRequest dispatches on the action. Only write failures are returned.
func (s *Server) handleRequest(req PredictRequest) error {
	switch req.Action {
	case "", ActionPredict:
		return s.send(s.predict(req))
	case ActionHealth:
		return s.send(health(req.ID, s.predictor))
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

// predict resolves the request context. Limits outside 1..MaxSuggestions
// fall back to MaxSuggestions.
func (s *Server) predict(req PredictRequest) PredictResponse {
	limit := req.Limit
	if limit < 1 || limit > suggest.MaxSuggestions {
		limit = suggest.MaxSuggestions
	}

	start := time.Now()
	var found []suggest.Suggestion
	if w1, w2, ok := suggest.ContextWords(req.Context); ok {
		found = s.predictor.Lookup(w1, w2, limit)
	}
	elapsed := time.Since(start)

	ranks := utils.CreateRankList(len(found))
	suggestions := make([]PredictSuggestion, len(found))
	for i, f := range found {
		suggestions[i] = PredictSuggestion{Word: f.Word, Rank: ranks[i], Count: f.Count}
	}
	s.logger.Debugf("id=%s context=%q suggestions=%d took=%s", req.ID, req.Context, len(suggestions), elapsed)

	return PredictResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	}
}

func health(id string, p suggest.IPredictor) HealthResponse {
	stats := p.Stats()
	return HealthResponse{
		ID:      id,
		Status:  "ok",
		Records: stats["records"],
		Words:   stats["words"],
	}
}

// send encodes one response and flushes it so the client sees it at once.
func (s *Server) send(v any) error {
	if err := s.encoder.Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(PredictError{ID: id, Error: message, Code: code})
}
