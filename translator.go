package tlunit

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
)

// Localizer drives the caller side of the workflow: it extracts segments with
// a registered processor, fills them from translation memory or an AI
// provider, and writes the results back through the same processor.
type Localizer struct {
	targetLang    string
	sourceLang    string
	provider      AIProvider
	cache         TranslationCache
	excludedTerms []string
	context       string
	glossary      map[string]string
	style         TranslationStyle
	processors    map[string]ContentProcessor
	logger        zerolog.Logger

	parallelThreshold int
}

// AIProvider is the interface for AI translation backends.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts         []string
	TargetLang    string
	SourceLang    string
	ExcludedTerms []string
	Context       string
	TextContexts  []string
	Glossary      map[string]string
	Style         TranslationStyle
}

// TranslationCache is the interface for translation memory.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor extracts segments from content and applies translations
// keyed by segment ID back to it.
type ContentProcessor interface {
	Extract(content string) (interface{}, []Segment, error)
	Apply(parsed interface{}, segments []Segment, translations map[string]string) (string, error)
	ContentType() string
}

// LocalizerOption is a functional option for configuring the Localizer.
type LocalizerOption func(*Localizer)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) LocalizerOption {
	return func(l *Localizer) {
		l.sourceLang = lang
	}
}

// WithCache sets the translation memory.
func WithCache(cache TranslationCache) LocalizerOption {
	return func(l *Localizer) {
		l.cache = cache
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) LocalizerOption {
	return func(l *Localizer) {
		l.excludedTerms = terms
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) LocalizerOption {
	return func(l *Localizer) {
		l.context = ctx
	}
}

// WithGlossary sets preferred translations for specific terms.
func WithGlossary(glossary map[string]string) LocalizerOption {
	return func(l *Localizer) {
		l.glossary = glossary
	}
}

// WithStyle sets the translation style.
func WithStyle(style TranslationStyle) LocalizerOption {
	return func(l *Localizer) {
		l.style = style
	}
}

// WithProcessor registers a content processor under its content type.
func WithProcessor(processor ContentProcessor) LocalizerOption {
	return func(l *Localizer) {
		l.processors[processor.ContentType()] = processor
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) LocalizerOption {
	return func(l *Localizer) {
		l.logger = logger
	}
}

// WithParallelLookup makes translation memory lookups concurrent for content
// with at least threshold segments. Zero disables it.
func WithParallelLookup(threshold int) LocalizerOption {
	return func(l *Localizer) {
		l.parallelThreshold = threshold
	}
}

// NewLocalizer creates a Localizer for the given target language.
func NewLocalizer(targetLang string, provider AIProvider, opts ...LocalizerOption) *Localizer {
	l := &Localizer{
		targetLang: targetLang,
		sourceLang: "en",
		provider:   provider,
		style:      StyleNeutral,
		processors: make(map[string]ContentProcessor),
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Process localizes content of the given type.
func (l *Localizer) Process(ctx context.Context, content string, contentType string) (*Result, error) {
	if l.IsSourceLang() {
		return &Result{Content: content}, nil
	}

	processor, ok := l.processors[contentType]
	if !ok {
		return nil, ErrUnsupportedContent
	}

	parsed, segments, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	if len(segments) == 0 {
		return &Result{Content: content}, nil
	}

	translated, cachedCount, translatedCount, err := l.translateBatch(ctx, segments)
	if err != nil {
		return nil, err
	}

	translations := make(map[string]string)
	for _, seg := range segments {
		text, ok := translated[seg.Hash]
		if !ok || text == "" || text == seg.Text {
			continue
		}
		translations[seg.ID] = text
	}

	out, err := processor.Apply(parsed, segments, translations)
	if err != nil {
		return nil, err
	}

	l.logger.Debug().
		Str("type", contentType).
		Int("segments", len(segments)).
		Int("cached", cachedCount).
		Int("translated", translatedCount).
		Int("applied", len(translations)).
		Msg("content localized")

	return &Result{
		Content:         out,
		TotalSegments:   len(segments),
		TranslatedCount: translatedCount,
		CachedCount:     cachedCount,
		AppliedCount:    len(translations),
	}, nil
}

// ProcessFile reads path, detects its content type and localizes it.
// Parse failures are annotated with the path.
func (l *Localizer) ProcessFile(ctx context.Context, path string) (*Result, error) {
	contentType, err := DetectContentType(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 - caller chooses the files
	if err != nil {
		return nil, err
	}

	result, err := l.Process(ctx, string(data), contentType)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return nil, err
	}
	return result, nil
}

// translateBatch resolves segment texts, keyed by hash, using translation
// memory where possible and the provider for the rest.
func (l *Localizer) translateBatch(ctx context.Context, segments []Segment) (map[string]string, int, int, error) {
	var translations map[string]string
	var misses []Segment
	cachedCount := 0

	if l.cache != nil && l.parallelThreshold > 0 && len(segments) >= l.parallelThreshold {
		translations, misses, cachedCount = ParallelCacheLookup(l.cache, segments, l.targetLang)
	} else {
		translations = make(map[string]string)
		seenHashes := make(map[string]bool)
		for _, seg := range segments {
			if l.cache != nil {
				if cached, ok := l.cache.Get(CacheKey(seg.Hash, l.targetLang)); ok {
					translations[seg.Hash] = cached
					cachedCount++
					continue
				}
			}

			if !seenHashes[seg.Hash] {
				misses = append(misses, seg)
				seenHashes[seg.Hash] = true
			}
		}
	}

	translatedCount, err := l.translateMisses(ctx, misses, translations)
	if err != nil {
		return nil, 0, 0, err
	}

	return translations, cachedCount, translatedCount, nil
}

// translateMisses sends segments to the provider, records the results in
// translations and stores non-empty ones in translation memory.
func (l *Localizer) translateMisses(ctx context.Context, misses []Segment, translations map[string]string) (int, error) {
	if len(misses) == 0 || l.provider == nil {
		return 0, nil
	}

	texts := make([]string, len(misses))
	textContexts := make([]string, len(misses))
	for i, seg := range misses {
		texts[i] = seg.Text
		textContexts[i] = seg.Context
	}

	results, err := l.provider.Translate(ctx, TranslateRequest{
		Texts:         texts,
		TargetLang:    l.targetLang,
		SourceLang:    l.sourceLang,
		ExcludedTerms: l.excludedTerms,
		Context:       l.context,
		TextContexts:  textContexts,
		Glossary:      l.glossary,
		Style:         l.style,
	})
	if err != nil {
		return 0, err
	}
	if len(results) != len(misses) {
		return 0, &CountMismatchError{Expected: len(misses), Got: len(results)}
	}

	for i, seg := range misses {
		translations[seg.Hash] = results[i]
		if l.cache != nil && results[i] != "" {
			if err := l.cache.Set(CacheKey(seg.Hash, l.targetLang), results[i]); err != nil {
				l.logger.Warn().Err(err).Msg("translation memory write failed")
			}
		}
	}

	return len(misses), nil
}

// TargetLang returns the target language.
func (l *Localizer) TargetLang() string {
	return l.targetLang
}

// SourceLang returns the source language.
func (l *Localizer) SourceLang() string {
	return l.sourceLang
}

// IsSourceLang reports whether the target language is the source language,
// in which case content passes through untouched.
func (l *Localizer) IsSourceLang() bool {
	return SameBaseLanguage(l.targetLang, l.sourceLang)
}

// Glossary returns the glossary of preferred translations.
func (l *Localizer) Glossary() map[string]string {
	return l.glossary
}

// Style returns the translation style.
func (l *Localizer) Style() TranslationStyle {
	return l.style
}
