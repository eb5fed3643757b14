/*
Package dictionary defines the on-disk model shared by the build pipeline and
the query engine.

A model is two files living in one data directory:

	model.bin   flat sequence of 16-byte records, no header or footer
	vocab.txt   one word per line, line i holds the word with id i

Each record stores four little-endian uint32 fields in this order:

	offset 0   w1     first context word id
	offset 4   w2     second context word id
	offset 8   w3     continuation word id
	offset 12  count  occurrences of (w1, w2, w3) in the corpus

Records are sorted by (w1, w2) so that every context key forms one
contiguous run; inside a run they are ranked by descending count, then
ascending w3. The file itself carries no marker of this order, so Load
verifies it before a model is handed to the query engine.
*/
package dictionary

import (
	"encoding/binary"
	"fmt"

	"github.com/bastiangx/nextword/pkg/vocab"
)

// RecordSize is the encoded width of one Record in bytes.
const RecordSize = 16

// ByteOrder is the byte order of every integer in model.bin.
var ByteOrder = binary.LittleEndian

// Record is one surviving (context, continuation) observation.
type Record struct {
	W1    vocab.ID
	W2    vocab.ID
	W3    vocab.ID
	Count uint32
}

// MarshalBinary encodes r into RecordSize bytes.
func (r Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordSize)
	r.put(b)
	return b, nil
}

// UnmarshalBinary decodes exactly RecordSize bytes into r.
func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) != RecordSize {
		return fmt.Errorf("record needs %d bytes, got %d", RecordSize, len(b))
	}
	*r = decodeRecord(b)
	return nil
}

func (r Record) put(b []byte) {
	ByteOrder.PutUint32(b[0:4], uint32(r.W1))
	ByteOrder.PutUint32(b[4:8], uint32(r.W2))
	ByteOrder.PutUint32(b[8:12], uint32(r.W3))
	ByteOrder.PutUint32(b[12:16], r.Count)
}

func decodeRecord(b []byte) Record {
	return Record{
		W1:    vocab.ID(ByteOrder.Uint32(b[0:4])),
		W2:    vocab.ID(ByteOrder.Uint32(b[4:8])),
		W3:    vocab.ID(ByteOrder.Uint32(b[8:12])),
		Count: ByteOrder.Uint32(b[12:16]),
	}
}

// CompareKey orders two context keys, returning -1, 0 or 1.
func CompareKey(a1, a2, b1, b2 vocab.ID) int {
	switch {
	case a1 < b1:
		return -1
	case a1 > b1:
		return 1
	case a2 < b2:
		return -1
	case a2 > b2:
		return 1
	}
	return 0
}

// Less reports whether a ranks before b in index order.
func Less(a, b Record) bool {
	if c := CompareKey(a.W1, a.W2, b.W1, b.W2); c != 0 {
		return c < 0
	}
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.W3 < b.W3
}
