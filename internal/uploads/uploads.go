// Package uploads stores processed item images in a local directory.
package uploads

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for names that would escape the upload directory.
var ErrInvalidName = errors.New("invalid upload name")

// Store writes and removes image files under Dir.
type Store struct {
	Dir string
}

// New creates the directory if needed and returns a Store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Save writes data under a fresh random name and returns that name.
func (s *Store) Save(data []byte, ext string) (string, error) {
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Store) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// Handler serves stored files. Mount it with http.StripPrefix.
func (s *Store) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.Dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if checkName(name) != nil || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
