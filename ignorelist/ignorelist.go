// Package ignorelist persists the snippets of recurring page chrome the
// user has asked the reader to skip.
package ignorelist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gap "github.com/muesli/go-app-paths"
)

const fileName = "ignorelist.json"

// Store is a JSON-file-backed list of ignored snippets. Entries accumulate;
// there is no pruning, matching the expectation that page chrome is stable.
type Store struct {
	path string
}

// NewStore places the list in the user data directory for the app.
func NewStore(appName string) (*Store, error) {
	scope := gap.NewScope(gap.User, appName)
	dir, err := scope.DataPath("")
	if err != nil {
		return nil, fmt.Errorf("ignorelist: resolving data dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ignorelist: creating data dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, fileName)}, nil
}

// NewStoreAt uses an explicit file path. Tests and custom setups use this.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Load reads all stored snippets. A missing file is an empty list.
func (s *Store) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ignorelist: reading %s: %w", s.path, err)
	}

	var snippets []string
	if err := json.Unmarshal(data, &snippets); err != nil {
		return nil, fmt.Errorf("ignorelist: parsing %s: %w", s.path, err)
	}
	return snippets, nil
}

// Append adds a snippet and writes the list back. Blank snippets and exact
// duplicates are ignored.
func (s *Store) Append(snippet string) error {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return nil
	}

	snippets, err := s.Load()
	if err != nil {
		return err
	}
	for _, existing := range snippets {
		if existing == snippet {
			return nil
		}
	}
	snippets = append(snippets, snippet)

	data, err := json.MarshalIndent(snippets, "", "  ")
	if err != nil {
		return fmt.Errorf("ignorelist: encoding: %w", err)
	}

	// Write via a temp file so a crash cannot truncate the list.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ignorelist: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ignorelist: replacing %s: %w", s.path, err)
	}
	return nil
}

// Path reports where the list lives on disk.
func (s *Store) Path() string {
	return s.path
}
