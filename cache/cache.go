// Package cache provides translation memory stores.
//
// Keys are built with tlunit.CacheKey, so one store can hold translations
// for several target languages.
package cache

import (
	"time"

	"github.com/ZaguanLabs/tlunit"
)

// TranslationCache is the lookup interface the Localizer consumes.
type TranslationCache = tlunit.TranslationCache

// Source records where a translation came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceManual   Source = "manual"
	SourceGlossary Source = "glossary"
)

// Entry is one translation memory record.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Source    Source    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// EntryStore is implemented by stores that keep provenance and can list
// their contents for export.
type EntryStore interface {
	TranslationCache
	SetEntry(e Entry) error
	Entries() ([]Entry, error)
}

// Stats counts lookups against a store.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// HitRate returns the share of lookups that were hits.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
