// Package storage keeps material files on local disk, one directory per
// chat session.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrOutsideRoot = errors.New("path is outside the storage root")

	unsafeNameChars = regexp.MustCompile(`[^a-z0-9._\- ]`)
)

type FileStore struct {
	root string
}

// NewFileStore creates root if needed. Paths handed out are absolute.
func NewFileStore(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir failed: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir failed: %w", err)
	}
	return &FileStore{root: abs}, nil
}

func (s *FileStore) Root() string {
	return s.root
}

// Save writes r to <root>/<sessionID>/<materialID>-<sanitized name>.
func (s *FileStore) Save(sessionID, materialID, name string, r io.Reader) (string, int64, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create session dir failed: %w", err)
	}

	path := filepath.Join(dir, materialID+"-"+SanitizeFileName(name))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create material file failed: %w", err)
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write material file failed: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("close material file failed: %w", closeErr)
	}
	return path, n, nil
}

func (s *FileStore) Read(path string) ([]byte, error) {
	if err := s.checkInside(path); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read material file failed: %w", err)
	}
	return b, nil
}

func (s *FileStore) Remove(path string) error {
	if err := s.checkInside(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove material file failed: %w", err)
	}
	return nil
}

// RemoveSessionDir deletes the session directory and anything left in it.
func (s *FileStore) RemoveSessionDir(sessionID string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove session dir failed: %w", err)
	}
	return nil
}

func (s *FileStore) sessionDir(sessionID string) (string, error) {
	if sessionID == "" || sessionID != filepath.Base(sessionID) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return filepath.Join(s.root, sessionID), nil
}

func (s *FileStore) checkInside(path string) error {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return nil
}

// SanitizeFileName lowercases name and replaces anything outside
// [a-z0-9._- ] with an underscore.
func SanitizeFileName(name string) string {
	name = strings.ToLower(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return unsafeNameChars.ReplaceAllString(name, "_")
}
