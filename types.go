package tlunit

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TranslationStyle controls the tone and formality of translations.
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language suitable for official documents.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language.
	StyleCasual TranslationStyle = "casual"
	// StyleTechnical uses precise, technical language for rules text and documentation.
	StyleTechnical TranslationStyle = "technical"
)

// Content types understood by the bundled processors.
const (
	ContentJavaScript = "javascript"
	ContentTypeScript = "typescript"
	ContentTSX        = "tsx"
	ContentJSON       = "json"
	ContentYAML       = "yaml"
)

// KeySeparator joins nested property names in a flattened document key.
// Property names may contain dots, so a multi-character sentinel is used.
const KeySeparator = ":::"

// PublicSeparator replaces KeySeparator when a key is shown to users or
// matched against blacklist patterns.
const PublicSeparator = "."

// Point is a position in source text. Line is 1-based, Column is a 0-based
// byte offset within the line.
type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Loc spans the first and last position of a literal.
type Loc struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Range is the half-open byte range [Start, End) of a literal in the exact
// buffer it was scanned from.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Overlaps reports whether r and o share at least one byte.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Unit is a translatable string literal found in a script.
//
// A Unit is only meaningful for the scan that produced it: its ID is derived
// from byte offsets, so any edit that shifts the source invalidates it.
type Unit struct {
	ID       string `json:"id"`       // "<start>-<end>"
	Original string `json:"original"` // decoded literal value
	Context  string `json:"context"`  // trimmed source line the literal starts on
	Range    Range  `json:"range"`
	Loc      Loc    `json:"loc"`
}

// UnitID returns the identity of a literal spanning [start, end).
func UnitID(start, end int) string {
	return fmt.Sprintf("%d-%d", start, end)
}

// Entry is one string leaf of a flattened document.
type Entry struct {
	Key   string `json:"key"` // property names joined with KeySeparator
	Value string `json:"value"`
}

// PublicKey rewrites an internal flattened key with PublicSeparator.
func PublicKey(key string) string {
	return strings.ReplaceAll(key, KeySeparator, PublicSeparator)
}

// Segment is a value offered to a translator. Processors produce segments
// from either identity scheme: script segments carry a Unit ID, document
// segments carry an Entry key.
type Segment struct {
	ID      string // Unit ID or Entry key
	Text    string // original value
	Hash    string // HashText(Text), the translation memory key
	Kind    string // content type that produced the segment
	Context string // disambiguation hint for the translator
}

// Result is the outcome of localizing one piece of content.
type Result struct {
	Content         string // rewritten content
	TotalSegments   int    // segments extracted
	TranslatedCount int    // segments translated by the provider
	CachedCount     int    // segments served from translation memory
	AppliedCount    int    // segments whose value actually changed
}

// PatchReport describes what a patch pass did with a translation map.
type PatchReport struct {
	Applied   []string // ids written back
	Unmatched []string // ids absent from the fresh scan
	Skipped   []string // ids whose replacement cannot be encoded in the literal
}

var contentTypesByExt = map[string]string{
	".js":   ContentJavaScript,
	".mjs":  ContentJavaScript,
	".cjs":  ContentJavaScript,
	".jsx":  ContentJavaScript,
	".ts":   ContentTypeScript,
	".mts":  ContentTypeScript,
	".cts":  ContentTypeScript,
	".tsx":  ContentTSX,
	".json": ContentJSON,
	".yaml": ContentYAML,
	".yml":  ContentYAML,
}

// DetectContentType maps a file name to a content type by extension.
func DetectContentType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := contentTypesByExt[ext]; ok {
		return ct, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedContent, ext)
}

// IsScript reports whether contentType is handled by the script processor.
func IsScript(contentType string) bool {
	switch contentType {
	case ContentJavaScript, ContentTypeScript, ContentTSX:
		return true
	}
	return false
}
