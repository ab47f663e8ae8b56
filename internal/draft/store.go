// Package draft keeps in-progress invoice parameters between runs so an
// interrupted invoice can be picked up again.
package draft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var ErrInvalidKey = errors.New("invalid draft key")

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Store writes one YAML file per draft under a directory
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Key builds a draft key such as "printjob-7"
func Key(kind string, id int64) string {
	return fmt.Sprintf("%s-%d", kind, id)
}

func (s *Store) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".yaml"), nil
}

// Save replaces the draft stored under key
func (s *Store) Save(key string, v any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create draft directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load decodes the draft into v. It reports false when there is none.
func (s *Store) Load(key string, v any) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read draft: %w", err)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode draft %s: %w", key, err)
	}
	return true, nil
}

// Clear removes the draft. Missing drafts are not an error.
func (s *Store) Clear(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove draft: %w", err)
	}
	return nil
}
