package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bastiangx/nextword/internal/utils"
	"github.com/bastiangx/nextword/pkg/vocab"
	"github.com/charmbracelet/log"
)

const (
	DefaultIndexFile = "model.bin"
	DefaultVocabFile = "vocab.txt"
)

// Model is a loaded or freshly built index with its vocabulary.
// It is never mutated after construction.
type Model struct {
	Records []Record
	Vocab   *vocab.Vocabulary
}

// Paths locates the two model files.
type Paths struct {
	Dir       string
	IndexFile string
	VocabFile string
}

// DefaultPaths returns the standard file names inside dir.
func DefaultPaths(dir string) Paths {
	return Paths{Dir: dir, IndexFile: DefaultIndexFile, VocabFile: DefaultVocabFile}
}

// Index returns the full path of the index file.
func (p Paths) Index() string {
	return p.join(p.IndexFile, DefaultIndexFile)
}

// Vocab returns the full path of the vocabulary file.
func (p Paths) Vocab() string {
	return p.join(p.VocabFile, DefaultVocabFile)
}

func (p Paths) join(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.Dir, name)
}

// Save writes both files atomically. Both are fully written to temp files
// before either is renamed, so a failed save leaves any previous model
// untouched.
func Save(paths Paths, m *Model) error {
	vocabFile, err := utils.CreateAtomic(paths.Vocab())
	if err != nil {
		return fmt.Errorf("create vocab %s: %w", paths.Vocab(), err)
	}
	defer vocabFile.Abort()

	indexFile, err := utils.CreateAtomic(paths.Index())
	if err != nil {
		return fmt.Errorf("create index %s: %w", paths.Index(), err)
	}
	defer indexFile.Abort()

	if err := WriteVocab(vocabFile, m.Vocab.Words()); err != nil {
		return fmt.Errorf("write vocab %s: %w", paths.Vocab(), err)
	}
	if err := vocabFile.Close(); err != nil {
		return fmt.Errorf("flush vocab %s: %w", paths.Vocab(), err)
	}
	if err := WriteIndex(indexFile, m.Records); err != nil {
		return fmt.Errorf("write index %s: %w", paths.Index(), err)
	}
	if err := indexFile.Close(); err != nil {
		return fmt.Errorf("flush index %s: %w", paths.Index(), err)
	}

	if err := vocabFile.Commit(); err != nil {
		return fmt.Errorf("publish vocab %s: %w", paths.Vocab(), err)
	}
	if err := indexFile.Commit(); err != nil {
		return fmt.Errorf("publish index %s: %w", paths.Index(), err)
	}
	log.Debugf("Saved %d records and %d words to %s", len(m.Records), m.Vocab.Len(), paths.Dir)
	return nil
}

// Load reads and verifies a model. Any format violation is an error; a
// model that fails here must not be served.
func Load(paths Paths) (*Model, error) {
	start := time.Now()

	if err := ValidateFileFormat(paths.Vocab(), FormatVocab); err != nil {
		return nil, err
	}
	if err := ValidateFileFormat(paths.Index(), FormatIndex); err != nil {
		return nil, err
	}

	vf, err := os.Open(paths.Vocab())
	if err != nil {
		return nil, fmt.Errorf("open vocab %s: %w", paths.Vocab(), err)
	}
	words, err := ReadVocab(vf)
	vf.Close()
	if err != nil {
		return nil, fmt.Errorf("read vocab %s: %w", paths.Vocab(), err)
	}
	v, err := vocab.New(words)
	if err != nil {
		return nil, fmt.Errorf("vocab %s: %w", paths.Vocab(), err)
	}

	data, err := os.ReadFile(paths.Index())
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", paths.Index(), err)
	}
	records, err := DecodeIndex(data)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", paths.Index(), err)
	}
	if err := Validate(records, v.Len()); err != nil {
		return nil, fmt.Errorf("index %s: %w", paths.Index(), err)
	}

	log.Debugf("Loaded %d records and %d words in %v", len(records), v.Len(), time.Since(start))
	return &Model{Records: records, Vocab: v}, nil
}

// Stats summarizes a model.
type Stats struct {
	Records          int
	Words            int
	Contexts         int
	MaxContinuations int
	MaxCount         uint32
}

// ContextInfo describes one context key run.
type ContextInfo struct {
	W1, W2        vocab.ID
	Continuations int
	Total         uint64
}

// Stats walks the records once.
func (m *Model) Stats() Stats {
	st := Stats{Records: len(m.Records), Words: m.Vocab.Len()}
	forEachRun(m.Records, func(run []Record) {
		st.Contexts++
		if len(run) > st.MaxContinuations {
			st.MaxContinuations = len(run)
		}
		for _, r := range run {
			if r.Count > st.MaxCount {
				st.MaxCount = r.Count
			}
		}
	})
	return st
}

// TopContexts returns the n context keys with the most continuations,
// ties broken by total count and then key order.
func (m *Model) TopContexts(n int) []ContextInfo {
	var infos []ContextInfo
	forEachRun(m.Records, func(run []Record) {
		info := ContextInfo{W1: run[0].W1, W2: run[0].W2, Continuations: len(run)}
		for _, r := range run {
			info.Total += uint64(r.Count)
		}
		infos = append(infos, info)
	})
	sort.SliceStable(infos, func(i, j int) bool {
		if infos[i].Continuations != infos[j].Continuations {
			return infos[i].Continuations > infos[j].Continuations
		}
		return infos[i].Total > infos[j].Total
	})
	if n >= 0 && len(infos) > n {
		infos = infos[:n]
	}
	return infos
}

func forEachRun(records []Record, fn func(run []Record)) {
	for start := 0; start < len(records); {
		end := start + 1
		for end < len(records) && records[end].W1 == records[start].W1 && records[end].W2 == records[start].W2 {
			end++
		}
		fn(records[start:end])
		start = end
	}
}
