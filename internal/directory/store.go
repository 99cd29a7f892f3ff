package directory

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrMissingRecordsFile is returned when a store is created without a path.
var ErrMissingRecordsFile = errors.New("directory: records file path is required")

// Store provides the records a search runs against. Implementations must
// be safe for concurrent use and must not modify a returned slice after
// handing it out.
type Store interface {
	Records(ctx context.Context) ([]Record, error)
}

// FileStore reads its records file again on every call, so edits to the
// file are visible to the next search.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, ErrMissingRecordsFile
	}
	return &FileStore{path: path}, nil
}

// Path returns the records file path.
func (s *FileStore) Path() string {
	return s.path
}

// Records loads the records file.
func (s *FileStore) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.path)
}

// LoadFile reads all records from the file at path.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("directory: open records file: %w", err)
	}
	defer f.Close()

	return ReadRecords(f)
}
