package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileReader reads files and keeps their contents until they change on disk
type FileReader struct {
	contents *FileCache[[]byte]
}

// NewFileReader creates a reader with an empty cache
func NewFileReader() *FileReader {
	return &FileReader{contents: NewFileCache[[]byte]()}
}

// ReadFile returns the contents of path, from the cache when the file is unchanged
func (fr *FileReader) ReadFile(path string) ([]byte, error) {
	if err := NotEmpty("path")(path); err != nil {
		return nil, err
	}
	clean := filepath.Clean(path)

	if cached, ok := fr.contents.Get(clean); ok {
		return cached, nil
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath.Base(clean), err)
	}

	// A file removed between ReadFile and Stat is simply not cached.
	_ = fr.contents.Set(clean, data)
	return data, nil
}

// Invalidate drops the cached contents of path
func (fr *FileReader) Invalidate(path string) {
	fr.contents.Delete(filepath.Clean(path))
}

// Cached returns the number of cached files
func (fr *FileReader) Cached() int {
	return fr.contents.Size()
}
