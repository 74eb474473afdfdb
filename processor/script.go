package processor

import (
	"errors"
	"sort"
	"strings"

	"github.com/ZaguanLabs/tlunit"
)

// ScriptProcessor finds translatable string literals in JavaScript and
// TypeScript source and writes translations back into them.
//
// Units are identified by byte offsets, so a translation map is only valid
// for the exact source it was scanned from. Patch re-scans before writing
// and ignores ids that no longer exist.
type ScriptProcessor struct {
	contentType string
	source      LiteralSource
}

// ScriptOption configures the script processor.
type ScriptOption func(*ScriptProcessor)

// WithTypeScript parses sources with the TypeScript grammar.
func WithTypeScript() ScriptOption {
	return func(p *ScriptProcessor) {
		p.contentType = tlunit.ContentTypeScript
	}
}

// WithTSX parses sources with the TypeScript JSX grammar.
func WithTSX() ScriptOption {
	return func(p *ScriptProcessor) {
		p.contentType = tlunit.ContentTSX
	}
}

// WithLiteralSource replaces the tree-sitter parser.
func WithLiteralSource(src LiteralSource) ScriptOption {
	return func(p *ScriptProcessor) {
		p.source = src
	}
}

// NewScriptProcessor creates a processor for JavaScript unless an option
// selects another grammar.
func NewScriptProcessor(opts ...ScriptOption) *ScriptProcessor {
	p := &ScriptProcessor{contentType: tlunit.ContentJavaScript}
	for _, opt := range opts {
		opt(p)
	}
	if p.source == nil {
		// only the grammars selectable through options reach this point
		src, err := NewTreeSitterSource(p.contentType)
		if err != nil {
			panic(err)
		}
		p.source = src
	}
	return p
}

// NewScriptProcessorFor returns the processor for a script content type.
func NewScriptProcessorFor(contentType string) (*ScriptProcessor, error) {
	src, err := NewTreeSitterSource(contentType)
	if err != nil {
		return nil, err
	}
	return &ScriptProcessor{contentType: contentType, source: src}, nil
}

// ContentType returns the content type this processor handles.
func (p *ScriptProcessor) ContentType() string {
	return p.contentType
}

// candidate is a literal that became a unit, with what Patch needs to write
// it back.
type candidate struct {
	unit     tlunit.Unit
	quote    byte
	verbatim bool
}

// Scan returns the translatable units of src ordered by ascending start
// offset. A source that does not parse yields a *tlunit.ParseError and no
// units.
func (p *ScriptProcessor) Scan(src string) ([]tlunit.Unit, error) {
	cands, err := p.scan(src)
	if err != nil {
		return nil, err
	}
	units := make([]tlunit.Unit, len(cands))
	for i, c := range cands {
		units[i] = c.unit
	}
	return units, nil
}

func (p *ScriptProcessor) scan(src string) ([]candidate, error) {
	lits, err := p.source.Literals([]byte(src))
	if err != nil {
		var perr *tlunit.ParseError
		if errors.As(err, &perr) && perr.ContentType == "" {
			perr.ContentType = p.contentType
		}
		return nil, err
	}

	var cands []candidate
	for _, lit := range lits {
		if excluded(lit) || !IsTranslatable(lit.Value) {
			continue
		}
		cands = append(cands, candidate{
			unit: tlunit.Unit{
				ID:       tlunit.UnitID(lit.Range.Start, lit.Range.End),
				Original: lit.Value,
				Context:  lineAt(src, lit.Range.Start),
				Range:    lit.Range,
				Loc:      lit.Loc,
			},
			quote:    src[lit.Range.Start],
			verbatim: lit.Verbatim,
		})
	}
	return cands, nil
}

// Patch rewrites the literals named in translations. Unknown ids and empty
// translations are ignored; with nothing to apply the source is returned
// unchanged.
func (p *ScriptProcessor) Patch(src string, translations map[string]string) (string, error) {
	out, _, err := p.PatchWithReport(src, translations)
	return out, err
}

// PatchWithReport is Patch plus an account of every id in translations.
func (p *ScriptProcessor) PatchWithReport(src string, translations map[string]string) (string, *tlunit.PatchReport, error) {
	report := &tlunit.PatchReport{}
	if len(translations) == 0 {
		return src, report, nil
	}

	cands, err := p.scan(src)
	if err != nil {
		return "", nil, err
	}

	seen := make(map[string]bool, len(cands))
	var edits []Edit
	for _, c := range cands {
		seen[c.unit.ID] = true
		text, ok := translations[c.unit.ID]
		if !ok || text == "" {
			continue
		}
		if containsLineTerminator(text) || (c.verbatim && strings.IndexByte(text, c.quote) >= 0) {
			report.Skipped = append(report.Skipped, c.unit.ID)
			continue
		}
		if !c.verbatim {
			text = escapeQuote(text, c.quote)
		}
		q := string(c.quote)
		edits = append(edits, Edit{Range: c.unit.Range, Text: q + text + q})
		report.Applied = append(report.Applied, c.unit.ID)
	}

	for id := range translations {
		if !seen[id] {
			report.Unmatched = append(report.Unmatched, id)
		}
	}
	sort.Strings(report.Unmatched)

	out, err := ApplyEdits(src, edits)
	if err != nil {
		return "", nil, err
	}
	return out, report, nil
}

// Extract implements tlunit.ContentProcessor. The parsed value is the source
// itself since Apply re-scans it.
func (p *ScriptProcessor) Extract(content string) (interface{}, []tlunit.Segment, error) {
	units, err := p.Scan(content)
	if err != nil {
		return nil, nil, err
	}

	segments := make([]tlunit.Segment, len(units))
	for i, u := range units {
		segments[i] = tlunit.Segment{
			ID:      u.ID,
			Text:    u.Original,
			Hash:    tlunit.HashText(u.Original),
			Kind:    p.contentType,
			Context: u.Context,
		}
	}
	return content, segments, nil
}

// Apply implements tlunit.ContentProcessor.
func (p *ScriptProcessor) Apply(parsed interface{}, _ []tlunit.Segment, translations map[string]string) (string, error) {
	src, ok := parsed.(string)
	if !ok {
		return "", &tlunit.ParseError{ContentType: p.contentType, Cause: errInvalidParsed}
	}
	return p.Patch(src, translations)
}

// excluded reports whether a literal's syntactic position marks it as code
// regardless of its value.
func excluded(lit Literal) bool {
	switch lit.Role {
	case RoleModuleSource, RolePropertyKey, RoleDirective, RoleComparison, RoleType:
		return true
	case RoleArgument:
		return isLookupCall(lit.Call)
	}
	return false
}

// isLookupCall recognizes localization, settings and hook registration
// calls whose string arguments are keys rather than text.
func isLookupCall(c *Call) bool {
	if c == nil || c.Index < 0 {
		return false
	}
	member := c.Receiver != ""

	switch {
	case member && (c.Method == "localize" || c.Method == "format"):
		return true
	case member && c.Method == "get" && c.Argc == 2 && c.Index <= 1:
		return true
	case member && c.Method == "get" && c.Index == 1:
		return true
	case member && c.Method == "get" && c.ReceiverName() == "modules" && c.Index == 0:
		return true
	case c.Receiver == "Hooks" && c.Index == 0:
		return true
	case c.Receiver == "libWrapper" && c.Index <= 1:
		return true
	}
	return false
}

// lineAt returns the trimmed line of src containing offset.
func lineAt(src string, offset int) string {
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	end := strings.IndexByte(src[offset:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += offset
	}
	return strings.TrimSpace(src[start:end])
}

var _ tlunit.ContentProcessor = (*ScriptProcessor)(nil)
