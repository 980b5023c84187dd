package client

import (
	"os"
	"path/filepath"
	"strings"
)

// TokenStore holds the single bearer credential for this profile.
// The store never judges expiry; that is a property of the decoded
// claims, checked by callers.
type TokenStore interface {
	Set(token string) error
	Get() (string, bool)
	Clear() error
}

const tokenFileName = "token"

// FileTokenStore persists the credential to a fixed file so the
// session survives restarts.
type FileTokenStore struct {
	path string
}

// DefaultTokenPath returns the per-user location of the token file.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sidour-avoda", tokenFileName), nil
}

// NewFileTokenStore builds a store at the given path; an empty path
// selects the default per-user location.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		var err error
		path, err = DefaultTokenPath()
		if err != nil {
			return nil, err
		}
	}
	return &FileTokenStore{path: path}, nil
}

func (s *FileTokenStore) Set(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *FileTokenStore) Get() (string, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryTokenStore is an in-process store used in tests.
type MemoryTokenStore struct {
	token string
	set   bool
}

func (s *MemoryTokenStore) Set(token string) error {
	s.token = token
	s.set = token != ""
	return nil
}

func (s *MemoryTokenStore) Get() (string, bool) {
	if !s.set {
		return "", false
	}
	return s.token, true
}

func (s *MemoryTokenStore) Clear() error {
	s.token = ""
	s.set = false
	return nil
}
