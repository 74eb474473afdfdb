package processor

import (
	"github.com/ZaguanLabs/tlunit"
	"github.com/ZaguanLabs/tlunit/blacklist"
	"gopkg.in/yaml.v3"
)

// DocumentProcessor localizes JSON and YAML data documents. Segments are
// identified by flattened key path, which stays stable across reloads of
// the same document.
type DocumentProcessor struct {
	codec     Codec
	blacklist blacklist.Provider
	bilingual int
}

// DocumentOption configures the document processor.
type DocumentOption func(*DocumentProcessor)

// WithBlacklist drops entries whose key matches one of the provider's
// patterns at extraction time.
func WithBlacklist(p blacklist.Provider) DocumentOption {
	return func(d *DocumentProcessor) {
		d.blacklist = p
	}
}

// WithBilingual merges each translated document with its original using the
// given threshold. Zero or less turns merging off.
func WithBilingual(threshold int) DocumentOption {
	return func(d *DocumentProcessor) {
		d.bilingual = threshold
	}
}

// NewDocumentProcessor creates a processor for tlunit.ContentJSON or
// tlunit.ContentYAML.
func NewDocumentProcessor(contentType string, opts ...DocumentOption) (*DocumentProcessor, error) {
	codec, err := CodecFor(contentType)
	if err != nil {
		return nil, err
	}
	d := &DocumentProcessor{codec: codec}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ContentType returns the document format.
func (d *DocumentProcessor) ContentType() string {
	return d.codec.Format()
}

// parsedDocument holds a decoded JSON value in doc, or a YAML node tree in
// node. Both are nil for malformed input.
type parsedDocument struct {
	doc  any
	node *yaml.Node
	raw  string
}

// Extract implements tlunit.ContentProcessor. A malformed document has
// nothing to translate: it yields no segments and Apply hands the content
// back untouched.
func (d *DocumentProcessor) Extract(content string) (interface{}, []tlunit.Segment, error) {
	var patterns []string
	if d.blacklist != nil {
		patterns = d.blacklist.Blacklist()
	}

	if yc, ok := d.codec.(YAMLCodec); ok {
		node, err := yc.DecodeNode([]byte(content))
		if err != nil || node.Kind == 0 {
			return &parsedDocument{raw: content}, nil, nil
		}
		return &parsedDocument{node: node, raw: content}, d.segments(FlattenYAML(node, patterns)), nil
	}

	doc, err := d.codec.Decode([]byte(content))
	if err != nil {
		return &parsedDocument{raw: content}, nil, nil
	}
	return &parsedDocument{doc: doc, raw: content}, d.segments(FlattenEntries(doc, patterns)), nil
}

func (d *DocumentProcessor) segments(entries []tlunit.Entry) []tlunit.Segment {
	segments := make([]tlunit.Segment, len(entries))
	for i, e := range entries {
		segments[i] = tlunit.Segment{
			ID:      e.Key,
			Text:    e.Value,
			Hash:    tlunit.HashText(e.Value),
			Kind:    d.codec.Format(),
			Context: tlunit.PublicKey(e.Key),
		}
	}
	return segments
}

// Apply implements tlunit.ContentProcessor.
func (d *DocumentProcessor) Apply(parsed interface{}, _ []tlunit.Segment, translations map[string]string) (string, error) {
	pd, ok := parsed.(*parsedDocument)
	if !ok {
		return "", &tlunit.DocumentError{Format: d.codec.Format(), Cause: errInvalidParsed}
	}

	var data []byte
	var err error
	switch {
	case pd.node != nil:
		data, err = YAMLCodec{}.EncodeNode(OverlayYAML(pd.node, translations, d.bilingual))
	case pd.doc != nil:
		out := Overlay(pd.doc, translations)
		if d.bilingual > 0 {
			out = MergeBilingual(out, pd.doc, d.bilingual)
		}
		data, err = d.codec.Encode(out)
	default:
		return pd.raw, nil
	}
	if err != nil {
		return "", &tlunit.DocumentError{Format: d.codec.Format(), Cause: err}
	}
	return string(data), nil
}

var _ tlunit.ContentProcessor = (*DocumentProcessor)(nil)
