// Package blacklist holds the key patterns that keep document entries from
// ever being offered for translation.
//
// A pattern is a suffix of the public (dot-joined) form of a flattened key:
// "description.value" excludes "system:::description:::value" as well as
// "items:::0:::description:::value".
package blacklist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ZaguanLabs/tlunit"
	"gopkg.in/yaml.v3"
)

// Provider supplies the current blacklist.
type Provider interface {
	Blacklist() []string
}

// List is a fixed blacklist.
type List []string

// Blacklist returns the patterns.
func (l List) Blacklist() []string {
	return l
}

// Matches reports whether a flattened key ends with any pattern once
// rewritten with the public separator. Empty patterns are ignored.
func Matches(key string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	public := tlunit.PublicKey(key)
	for _, p := range patterns {
		if p != "" && strings.HasSuffix(public, p) {
			return true
		}
	}
	return false
}

// FileStore is a blacklist persisted as a JSON or YAML list of strings.
// The format follows the file extension (.yaml/.yml, otherwise JSON).
type FileStore struct {
	path  string
	mu    sync.RWMutex
	items map[string]bool
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, items: make(map[string]bool)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load re-reads the file, replacing the in-memory set.
func (s *FileStore) Load() error {
	data, err := os.ReadFile(s.path) // #nosec G304 - path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		s.mu.Lock()
		s.items = make(map[string]bool)
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading blacklist %s: %w", s.path, err)
	}

	var list []string
	if s.isYAML() {
		err = yaml.Unmarshal(data, &list)
	} else if len(strings.TrimSpace(string(data))) > 0 {
		err = json.Unmarshal(data, &list)
	}
	if err != nil {
		return fmt.Errorf("parsing blacklist %s: %w", s.path, err)
	}

	items := make(map[string]bool, len(list))
	for _, p := range list {
		if p = strings.TrimSpace(p); p != "" {
			items[p] = true
		}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Save writes the set back to disk, sorted.
func (s *FileStore) Save() error {
	list := s.Blacklist()

	var data []byte
	var err error
	if s.isYAML() {
		data, err = yaml.Marshal(list)
	} else {
		data, err = json.MarshalIndent(list, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding blacklist: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Add inserts a pattern and saves. It reports false for empty patterns.
func (s *FileStore) Add(pattern string) (bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false, nil
	}
	s.mu.Lock()
	s.items[pattern] = true
	s.mu.Unlock()
	return true, s.Save()
}

// Remove deletes a pattern and saves. It reports false if it was absent.
func (s *FileStore) Remove(pattern string) (bool, error) {
	s.mu.Lock()
	_, ok := s.items[pattern]
	delete(s.items, pattern)
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, s.Save()
}

// Has reports whether the exact pattern is stored.
func (s *FileStore) Has(pattern string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[pattern]
}

// Blacklist returns the stored patterns, sorted.
func (s *FileStore) Blacklist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]string, 0, len(s.items))
	for p := range s.items {
		list = append(list, p)
	}
	sort.Strings(list)
	return list
}

func (s *FileStore) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(s.path))
	return ext == ".yaml" || ext == ".yml"
}

var (
	_ Provider = List(nil)
	_ Provider = (*FileStore)(nil)
)
