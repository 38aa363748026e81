package trail

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CredentialStore persists the bearer credential across process restarts.
// It is a pure key-value boundary: the token's shape is never validated
// here. At most one credential exists at a time.
type CredentialStore interface {
	// Has reports whether a credential is currently persisted.
	Has() bool

	// Get returns the persisted credential, or "" when absent.
	Get() string

	// Set persists the credential, replacing any prior value.
	Set(token string) error

	// Clear removes any persisted credential. Clearing an absent
	// credential is not an error.
	Clear() error
}

const credentialsFileName = "credentials.json"

type credentialsFile struct {
	Token string `json:"token"`
}

// FileCredentialStore keeps the credential in a JSON file, by default
// ~/.trailctl/credentials.json, so the session survives process
// restarts.
type FileCredentialStore struct {
	path string
}

// NewFileCredentialStore creates a store backed by the file at path.
// An empty path selects the default location under the user's home.
func NewFileCredentialStore(path string) (*FileCredentialStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		path = filepath.Join(home, ".trailctl", credentialsFileName)
	}
	return &FileCredentialStore{path: path}, nil
}

// Path returns the credential file location.
func (s *FileCredentialStore) Path() string {
	return s.path
}

// Get returns the stored credential, or "" if the file is missing or
// unreadable.
func (s *FileCredentialStore) Get() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return strings.TrimSpace(creds.Token)
}

// Has reports whether a non-empty credential is stored.
func (s *FileCredentialStore) Has() bool {
	return s.Get() != ""
}

// Set writes the credential, creating the parent directory if needed.
// The file is written with 0600 permissions.
func (s *FileCredentialStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(credentialsFile{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the credential file. Removing an absent file is a no-op.
func (s *FileCredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// MemCredentialStore holds the credential in memory only. Useful for
// tests and for embedding the client without touching the filesystem.
type MemCredentialStore struct {
	token string
}

// NewMemCredentialStore creates an empty in-memory store.
func NewMemCredentialStore() *MemCredentialStore {
	return &MemCredentialStore{}
}

func (s *MemCredentialStore) Has() bool { return s.token != "" }

func (s *MemCredentialStore) Get() string { return s.token }

func (s *MemCredentialStore) Set(token string) error { s.token = token; return nil }

func (s *MemCredentialStore) Clear() error { s.token = ""; return nil }
