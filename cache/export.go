package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ExportVersion is written into every export.
const ExportVersion = "2.0"

// ExportFormat is the JSON document written by Export and read by Import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []Entry           `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type lister interface {
	Entries() ([]Entry, error)
}

// Exporter writes translation memory contents as JSON.
type Exporter struct {
	cache TranslationCache
}

// NewExporter creates an exporter. The store must be able to list its
// entries; see EntryStore.
func NewExporter(cache TranslationCache) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes every entry to w.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	l, ok := e.cache.(lister)
	if !ok {
		return fmt.Errorf("cache type %T does not support export", e.cache)
	}
	entries, err := l.Entries()
	if err != nil {
		return fmt.Errorf("getting cache entries: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}

	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports the cache to a file.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := e.Export(f, metadata); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Importer loads an export into a store.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int // entries with an empty value
	Failed   int
}

// Import reads an export from r. Provenance is kept when the store supports
// it; version 1.0 exports without a source are imported as manual entries.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	setter, keepsSource := i.cache.(interface{ SetEntry(Entry) error })
	for _, entry := range export.Entries {
		if entry.Value == "" {
			result.Skipped++
			continue
		}
		if entry.Source == "" {
			entry.Source = SourceManual
		}

		var err error
		if keepsSource {
			err = setter.SetEntry(entry)
		} else {
			err = i.cache.Set(entry.Key, entry.Value)
		}
		if err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}
