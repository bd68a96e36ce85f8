package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// TokenStore persists the auth token between runs. Only the token is ever
// written: user details and lifecycle flags are recomputed from the server
// on startup, never trusted from disk.
type TokenStore interface {
	// Load returns the persisted token, or "" when none is stored.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// fileTokenStore keeps the token in a mode-0600 JSON file.
type fileTokenStore struct {
	path string
}

// tokenFile is the on-disk shape. A struct rather than a bare string so the
// format can grow without breaking old files.
type tokenFile struct {
	AuthToken string `json:"auth_token"`
}

// NewFileTokenStore creates a token store at the given path. The parent
// directory is created on first save.
func NewFileTokenStore(path string) TokenStore {
	return &fileTokenStore{path: path}
}

// Load reads the persisted token. A missing file is not an error.
func (s *fileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}

	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil {
		// A corrupt file is treated as no token; the next save rewrites it.
		return "", nil
	}
	return f.AuthToken, nil
}

// Save writes the token with owner-only permissions.
func (s *fileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	data, err := json.Marshal(tokenFile{AuthToken: token})
	if err != nil {
		return fmt.Errorf("encoding token file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear removes the persisted token. Clearing an absent file is a no-op.
func (s *fileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
