package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrTruncatedIndex = errors.New("index length is not a multiple of the record size")
	ErrWordOutOfRange = errors.New("record references a word id outside the vocabulary")
	ErrUnsortedIndex  = errors.New("index records are not sorted by context key")
	ErrInvalidWord    = errors.New("word contains a line break")
)

// writeBatch is how many records are encoded per Write call.
const writeBatch = 4096

// WriteIndex encodes records in order.
func WriteIndex(w io.Writer, records []Record) error {
	buf := make([]byte, 0, writeBatch*RecordSize)
	var scratch [RecordSize]byte
	for i, r := range records {
		r.put(scratch[:])
		buf = append(buf, scratch[:]...)
		if len(buf) == cap(buf) || i == len(records)-1 {
			if _, err := w.Write(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}
	}
	return nil
}

// ReadIndex decodes a whole index. A trailing partial record is reported
// as ErrTruncatedIndex, never silently dropped.
func ReadIndex(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeIndex(data)
}

// DecodeIndex decodes an in-memory index image.
func DecodeIndex(data []byte) ([]Record, error) {
	if rem := len(data) % RecordSize; rem != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTruncatedIndex, rem)
	}
	records := make([]Record, len(data)/RecordSize)
	for i := range records {
		off := i * RecordSize
		records[i] = decodeRecord(data[off : off+RecordSize])
	}
	return records, nil
}

// Validate checks that every id fits a vocabulary of vocabSize words and
// that records are non-decreasing by context key, so each key is a single
// contiguous run.
func Validate(records []Record, vocabSize int) error {
	size := uint64(vocabSize)
	for i, r := range records {
		if uint64(r.W1) >= size || uint64(r.W2) >= size || uint64(r.W3) >= size {
			return fmt.Errorf("%w: record %d (%d, %d, %d) with %d words",
				ErrWordOutOfRange, i, r.W1, r.W2, r.W3, vocabSize)
		}
		if i > 0 {
			prev := records[i-1]
			if CompareKey(prev.W1, prev.W2, r.W1, r.W2) > 0 {
				return fmt.Errorf("%w: record %d (%d, %d) follows (%d, %d)",
					ErrUnsortedIndex, i, r.W1, r.W2, prev.W1, prev.W2)
			}
		}
	}
	return nil
}

// WriteVocab writes one word per line in id order.
func WriteVocab(w io.Writer, words []string) error {
	bw := bufio.NewWriter(w)
	for i, word := range words {
		if strings.ContainsAny(word, "\r\n") {
			return fmt.Errorf("%w: id %d", ErrInvalidWord, i)
		}
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadVocab reads a word listing; line i becomes id i. Lines have no
// length limit, matching what WriteVocab accepts.
func ReadVocab(r io.Reader) ([]string, error) {
	reader := bufio.NewReaderSize(r, 64*1024)

	var words []string
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			words = append(words, strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if errors.Is(err, io.EOF) {
			return words, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
