package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/basewire/basewire-go/internal/constants"
)

// Store persists an auth credential across client restarts.
type Store interface {
	// Load returns the stored credential, or (nil, nil) when none exists.
	Load() (*Credential, error)
	// Save persists the credential.
	Save(cred *Credential) error
	// Clear removes the stored credential.
	Clear() error
}

// NoopStore is a Store that persists nothing. A session backed by it is
// purely in-memory.
type NoopStore struct{}

// Load always returns no credential.
func (NoopStore) Load() (*Credential, error) { return nil, nil }

// Save does nothing.
func (NoopStore) Save(*Credential) error { return nil }

// Clear does nothing.
func (NoopStore) Clear() error { return nil }

// FileStore persists the credential as JSON in a 0600 file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store at the given path. Parent directories
// are created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the credential file. A missing file is not an error.
func (s *FileStore) Load() (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	var cred Credential

	err = json.Unmarshal(data, &cred)
	if err != nil {
		return nil, fmt.Errorf("parsing credential file: %w", err)
	}

	return &cred, nil
}

// Save writes the credential file with owner-only permissions.
func (s *FileStore) Save(cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	err = os.WriteFile(s.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}

	return nil
}

// Clear removes the credential file. A missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credential file: %w", err)
	}

	return nil
}
