package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileWriter writes product records as JSON files into a working directory
type FileWriter struct {
	fs  afero.Fs
	dir string
}

// NewFileWriter creates a writer rooted at dir, creating the directory if needed
func NewFileWriter(fs afero.Fs, dir string) (*FileWriter, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileWriter{fs: fs, dir: dir}, nil
}

// Save writes record to fileName inside the working directory, replacing any
// existing file, and returns the full path. Filesystem errors are returned as-is.
func (w *FileWriter) Save(record json.RawMessage, fileName string) (string, error) {
	if !json.Valid(record) {
		return "", fmt.Errorf("record for %s is not valid JSON", fileName)
	}

	path := filepath.Join(w.dir, filepath.Base(fileName))
	if err := afero.WriteFile(w.fs, path, record, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Dir returns the working directory
func (w *FileWriter) Dir() string {
	return w.dir
}
