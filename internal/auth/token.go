// Package auth provides access to the bearer token used against the document
// backend. The token is provisioned out of band (login happens elsewhere);
// this package only reads it.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ErrNoToken indicates that no token is available.
var ErrNoToken = errors.New("no auth token available")

// Source yields the current bearer token.
type Source interface {
	// Token returns the token, or ErrNoToken when none is stored.
	Token() (string, error)
}

// FileStore reads the token from a file. The file is re-read on every call
// so an external refresh is picked up without restarting.
type FileStore struct {
	path string
}

// NewFileStore creates a store reading from path. An empty path selects
// DefaultTokenPath.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultTokenPath()
	}
	return &FileStore{path: path}
}

// DefaultTokenPath returns the conventional token location under the user's
// XDG data directory.
func DefaultTokenPath() string {
	return filepath.Join(xdg.DataHome, "docsync", "token")
}

// Path returns the file the store reads from.
func (s *FileStore) Path() string { return s.path }

// Token reads and trims the token file.
func (s *FileStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoToken, s.path)
		}
		return "", fmt.Errorf("read token file: %w", err)
	}

	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrNoToken, s.path)
	}
	return tok, nil
}

// StaticToken is a fixed in-memory token, used by CLI flags and tests.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	if t == "" {
		return "", ErrNoToken
	}
	return string(t), nil
}
