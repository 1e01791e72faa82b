package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BlobStore keeps the raw bytes of uploaded files.
type BlobStore interface {
	// Save stores content and returns the location to read it back from.
	Save(filename string, content []byte) (string, error)
	Load(location string) ([]byte, error)
}

// LocalStore writes each upload as its own file under a directory.
type LocalStore struct {
	dir string
	now func() time.Time
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, now: time.Now}, nil
}

// Save writes content to <dir>/<random>-<unix millis>-<base name>.
func (s *LocalStore) Save(filename string, content []byte) (string, error) {
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitize(filename))

	f, err := os.CreateTemp(s.dir, "*-"+name)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return f.Name(), nil
}

// Load reads a stored upload. Locations outside the store directory are refused.
func (s *LocalStore) Load(location string) ([]byte, error) {
	rel, err := filepath.Rel(s.dir, location)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("location %q is outside the upload dir", location)
	}
	return os.ReadFile(location)
}

// sanitize keeps only the base name so client-supplied paths cannot escape the dir.
func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "upload"
	}
	return base
}
