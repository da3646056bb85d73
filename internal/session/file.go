package session

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the session as a JSON document inside the briefing
// directory. This is the default backend.
type FileStore struct {
	path string
}

// NewFileStore creates a store rooted at the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the persisted session if present.
func (s *FileStore) Load(ctx context.Context) (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return Decode(data)
}

// Save writes the session to disk with best-effort atomicity.
func (s *FileStore) Save(ctx context.Context, sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	encoded, err := Encode(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, encoded, 0o644)
}

// Clear removes the persisted session. Clearing an absent session is not
// an error.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
