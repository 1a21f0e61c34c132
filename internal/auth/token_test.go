package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  tok-abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok != "tok-abc123" {
		t.Errorf("token = %q, want trimmed tok-abc123", tok)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope"))

	_, err := s.Token()
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileStore(path).Token()
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken for empty file, got %v", err)
	}
}

func TestFileStoreRereadsOnEachCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	if tok, _ := s.Token(); tok != "first" {
		t.Fatalf("token = %q, want first", tok)
	}

	if err := os.WriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}
	if tok, _ := s.Token(); tok != "second" {
		t.Errorf("token = %q, want second after rewrite", tok)
	}
}

func TestDefaultPath(t *testing.T) {
	s := NewFileStore("")
	if s.Path() != DefaultTokenPath() {
		t.Errorf("empty path should select default, got %q", s.Path())
	}
	if filepath.Base(s.Path()) != "token" {
		t.Errorf("default path should end in token: %q", s.Path())
	}
}

func TestStaticToken(t *testing.T) {
	tok, err := StaticToken("abc").Token()
	if err != nil || tok != "abc" {
		t.Errorf("StaticToken = %q, %v", tok, err)
	}
	if _, err := StaticToken("").Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("empty StaticToken should return ErrNoToken, got %v", err)
	}
}
