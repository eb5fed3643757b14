package trigram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/nextword/internal/logger"
	"github.com/bastiangx/nextword/pkg/dictionary"
	"github.com/bastiangx/nextword/pkg/vocab"
	"github.com/charmbracelet/log"
)

// DefaultProgressEvery is how many lines pass between progress logs.
const DefaultProgressEvery = 100_000

var ErrInvalidEncoding = errors.New("line is not valid UTF-8")

// Options tune a training run.
type Options struct {
	// MinCount is the pruning threshold; 0 means DefaultMinCount.
	MinCount uint32
	// ProgressEvery logs progress every n lines; 0 means DefaultProgressEvery.
	ProgressEvery int
}

// Report summarizes a finished training run.
type Report struct {
	Lines    int
	Tokens   int
	Windows  uint64
	Trigrams int // distinct trigrams before pruning
	Records  int // distinct trigrams after pruning
	Words    int
	MinCount uint32
	Elapsed  time.Duration
}

// Trainer runs the build pipeline. It is single-use and not safe for
// concurrent use.
type Trainer struct {
	opts     Options
	tok      *Tokenizer
	registry *vocab.Registry
	agg      *Aggregator
	logger   *log.Logger
	report   Report
	ids      []vocab.ID
	started  time.Time
}

// NewTrainer returns a Trainer with defaults applied to opts.
func NewTrainer(opts Options) *Trainer {
	if opts.MinCount == 0 {
		opts.MinCount = DefaultMinCount
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	return &Trainer{
		opts:     opts,
		tok:      NewTokenizer(),
		registry: vocab.NewRegistry(),
		agg:      NewAggregator(),
		logger:   logger.New("trainer"),
		started:  time.Now(),
	}
}

// AddLine feeds one corpus line through the pipeline. Lines with fewer than
// three tokens are skipped before their tokens are registered.
func (t *Trainer) AddLine(line string) error {
	if t.report.Lines%t.opts.ProgressEvery == 0 {
		t.logger.Debugf("Processed %d lines", t.report.Lines)
	}
	t.report.Lines++

	if !utf8.ValidString(line) {
		return fmt.Errorf("line %d: %w", t.report.Lines, ErrInvalidEncoding)
	}
	tokens := t.tok.Tokenize(line)
	t.report.Tokens += len(tokens)
	if len(tokens) < 3 {
		return nil
	}

	t.ids = t.ids[:0]
	for _, tok := range tokens {
		id, err := t.registry.GetOrAssign(tok)
		if err != nil {
			return fmt.Errorf("line %d: %w", t.report.Lines, err)
		}
		t.ids = append(t.ids, id)
	}
	t.agg.AddLine(t.ids)
	return nil
}

// Train reads r to the end, one line at a time, and returns the finished
// model. ctx is checked between lines.
func (t *Trainer) Train(ctx context.Context, r io.Reader) (*dictionary.Model, error) {
	reader := bufio.NewReaderSize(r, 256*1024)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if addErr := t.AddLine(line); addErr != nil {
				return nil, addErr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
	}
	return t.Finish()
}

// TrainFile opens path and trains on it.
func (t *Trainer) TrainFile(ctx context.Context, path string) (*dictionary.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	m, err := t.Train(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return m, nil
}

// Finish prunes and flattens the counts collected so far.
func (t *Trainer) Finish() (*dictionary.Model, error) {
	t.report.Windows = t.agg.Windows()
	t.report.Trigrams = t.agg.Len()

	t.logger.Debug("Pruning rare entries", "min_count", t.opts.MinCount)
	counts := Prune(t.agg.Counts(), t.opts.MinCount)

	t.logger.Debug("Flattening model", "contexts", len(counts))
	records := Build(counts)

	v, err := vocab.New(t.registry.Words())
	if err != nil {
		return nil, fmt.Errorf("freeze vocabulary: %w", err)
	}

	t.report.Records = len(records)
	t.report.Words = v.Len()
	t.report.MinCount = t.opts.MinCount
	t.report.Elapsed = time.Since(t.started)
	return &dictionary.Model{Records: records, Vocab: v}, nil
}

// Report returns the statistics of the run so far.
func (t *Trainer) Report() Report {
	return t.report
}
