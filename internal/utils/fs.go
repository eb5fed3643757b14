package utils

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DirCheckResult represents the result of dir checks
type DirCheckResult struct {
	Exists   bool
	Writable bool
	Error    error
}

// FileExists simply checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0755)
}

// SaveTOMLFile saves a struct to a TOML file
func SaveTOMLFile(data any, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		log.Errorf("Failed to create file: %v", err)
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(data)
}

// GetAbsolutePath returns the absolute path of a file
func GetAbsolutePath(path string) string {
	if path == "" {
		return "unknown"
	}
	if !filepath.IsAbs(path) {
		if absPath, err := filepath.Abs(path); err == nil {
			return absPath
		}
	}
	return path
}

// testWriteAccess tests if a directory can be written to
func testWriteAccess(dirPath string) bool {
	testFile := filepath.Join(dirPath, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		log.Warnf("Cannot write to directory %s: %v", dirPath, err)
		return false
	}
	file.Close()
	os.Remove(testFile)
	return true
}

// GetExecutableDir returns the directory of the current executable
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// CheckDirStatus tests if directory exists, can be created, and is writable
func CheckDirStatus(dirPath string) DirCheckResult {
	result := DirCheckResult{}
	if _, err := os.Stat(dirPath); err == nil {
		result.Exists = true
		result.Writable = testWriteAccess(dirPath)
		return result
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		result.Error = err
		log.Warnf("Cannot create directory %s: %v", dirPath, err)
		return result
	}
	result.Exists = true
	result.Writable = testWriteAccess(dirPath)
	return result
}

// AtomicFile buffers writes into a temp file next to its destination.
// Nothing appears at the destination until Commit.
type AtomicFile struct {
	dest string
	tmp  *os.File
	buf  *bufio.Writer
	done bool
}

// CreateAtomic opens a temp file in the directory of dest.
func CreateAtomic(dest string) (*AtomicFile, error) {
	dir := filepath.Dir(dest)
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return nil, err
	}
	_ = os.Chmod(tmp.Name(), 0644)
	return &AtomicFile{
		dest: dest,
		tmp:  tmp,
		buf:  bufio.NewWriterSize(tmp, 64*1024),
	}, nil
}

// Write implements io.Writer.
func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.buf.Write(p)
}

// Close flushes and fsyncs the temp file without publishing it.
func (a *AtomicFile) Close() error {
	if err := a.buf.Flush(); err != nil {
		return err
	}
	if err := a.tmp.Sync(); err != nil {
		return err
	}
	return a.tmp.Close()
}

// Commit renames the closed temp file onto its destination.
func (a *AtomicFile) Commit() error {
	if err := os.Rename(a.tmp.Name(), a.dest); err != nil {
		return err
	}
	a.done = true
	syncDir(filepath.Dir(a.dest))
	return nil
}

// Abort discards the temp file. It is a no-op after a successful Commit.
func (a *AtomicFile) Abort() {
	if a.done {
		return
	}
	_ = a.tmp.Close()
	_ = os.Remove(a.tmp.Name())
}

// syncDir persists directory metadata after a rename, best effort.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}
