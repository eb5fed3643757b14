package dictionary

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents the files that make up a model
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatIndex              // Binary record index
	FormatVocab              // Plain text word listing
)

// FormatInfo contains metadata about a model file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	Unit        int64 // File size must be a multiple of this
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatIndex: {
		Format:      FormatIndex,
		Description: "Binary Trigram Index",
		Extensions:  []string{".bin"},
		Unit:        RecordSize,
	},
	FormatVocab: {
		Format:      FormatVocab,
		Description: "Vocabulary Listing",
		Extensions:  []string{".txt"},
		Unit:        1,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// ValidateFileFormat checks if a file matches the expected format. The
// extension is not enforced; the size and readability checks are.
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	// names are configurable, so an unusual extension is only worth a note
	if !hasExtension(filename, formatInfo.Extensions) {
		log.Debugf("File %s does not use a usual %s extension %v", filename, formatInfo.Description, formatInfo.Extensions)
	}

	if rem := fileInfo.Size() % formatInfo.Unit; rem != 0 {
		return fmt.Errorf("file %s (%d bytes): %w: %d trailing bytes",
			filename, fileInfo.Size(), ErrTruncatedIndex, rem)
	}

	if expectedFormat == FormatVocab {
		return validateTextFormat(filename)
	}
	log.Debugf("Index file %s validated: %d records", filename, fileInfo.Size()/RecordSize)
	return nil
}

func hasExtension(filename string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// validateTextFormat checks the listing is readable
func validateTextFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	buffer := make([]byte, 1024)
	if _, err := file.Read(buffer); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read from text file %s: %w", filename, err)
	}

	log.Debugf("Text file %s validated", filename)
	return nil
}

// DetectFileFormat guesses the format of a model file from its extension
// and validates it against that format.
func DetectFileFormat(filename string) (FileFormat, error) {
	for format, info := range supportedFormats {
		if !hasExtension(filename, info.Extensions) {
			continue
		}
		if err := ValidateFileFormat(filename, format); err != nil {
			return FormatUnknown, err
		}
		return format, nil
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}
