// Package media stores uploaded product images under a media root.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// ImageDir is the directory under the media root that holds product images
const ImageDir = "product_images"

// ErrName indicates an upload name or stored path that cannot be used
var ErrName = errors.New("Invalid media name")

// ErrExists indicates that no free name was found for an upload
var ErrExists = errors.New("Media name taken")

// maxAttempts bounds the numbered names Save tries for one upload
const maxAttempts = 1000

// Store writes and removes files relative to a root directory
type Store struct {
	Root string
}

// New returns a Store rooted at root
func New(root string) *Store { return &Store{Root: root} }

// Save writes data under product_images/ and returns the relative path it
// created. Only the final element of name is kept. An existing file is never
// overwritten: a taken name gets a numbered suffix before its extension.
func (s *Store) Save(name string, data []byte) (string, error) {
	base := path.Base(filepath.ToSlash(name))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", fmt.Errorf("%w: %q", ErrName, name)
	}

	dir, err := s.abs(ImageDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 0; i < maxAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = stem + "_" + strconv.Itoa(i) + ext
		}
		rel := path.Join(ImageDir, candidate)
		if err := create(filepath.Join(dir, candidate), data); errors.Is(err, fs.ErrExist) {
			continue
		} else if err != nil {
			return "", err
		}
		return rel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrExists, base)
}

// create writes a new file and fails with fs.ErrExist if one is already there
func create(abs string, data []byte) error {
	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(abs)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(abs)
		return err
	}
	return nil
}

// Remove deletes the file at a relative path returned by Save
func (s *Store) Remove(rel string) error {
	abs, err := s.abs(rel)
	if err != nil {
		return err
	}
	return os.Remove(abs)
}

// Path resolves a relative path against the root. Paths that escape the
// root are rejected.
func (s *Store) Path(rel string) (string, error) { return s.abs(rel) }

func (s *Store) abs(rel string) (string, error) {
	clean := path.Clean(filepath.ToSlash(rel))
	if clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrName, rel)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}
