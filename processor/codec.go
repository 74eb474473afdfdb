package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ZaguanLabs/tlunit"
	"gopkg.in/yaml.v3"
)

// Codec decodes a data document into ordered values (*Object, []any, string,
// json.Number or YAML scalars, bool, nil) and encodes them back.
type Codec interface {
	Decode(data []byte) (any, error)
	Encode(doc any) ([]byte, error)
	Format() string
}

// CodecFor returns the codec for a document content type.
func CodecFor(contentType string) (Codec, error) {
	switch contentType {
	case tlunit.ContentJSON:
		return JSONCodec{}, nil
	case tlunit.ContentYAML:
		return YAMLCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %q is not a document format", tlunit.ErrUnsupportedContent, contentType)
}

// ParseDocument decodes data, reporting malformed input as a
// *tlunit.DocumentError.
func ParseDocument(data []byte, contentType string) (any, error) {
	codec, err := CodecFor(contentType)
	if err != nil {
		return nil, err
	}
	doc, err := codec.Decode(data)
	if err != nil {
		return nil, &tlunit.DocumentError{Format: codec.Format(), Cause: err}
	}
	return doc, nil
}

// FlattenSource decodes and flattens data in one step. A document that does
// not decode has nothing to translate and yields an empty map.
func FlattenSource(data []byte, contentType string, patterns []string) map[string]string {
	entries, err := FlattenData(data, contentType, patterns)
	if err != nil {
		return map[string]string{}
	}
	flat := make(map[string]string, len(entries))
	for _, e := range entries {
		flat[e.Key] = e.Value
	}
	return flat
}

// FlattenData decodes data and returns its string leaves in document order,
// keyed the way DocumentProcessor identifies its segments.
func FlattenData(data []byte, contentType string, patterns []string) ([]tlunit.Entry, error) {
	if contentType == tlunit.ContentYAML {
		node, err := YAMLCodec{}.DecodeNode(data)
		if err != nil {
			return nil, &tlunit.DocumentError{Format: tlunit.ContentYAML, Cause: err}
		}
		return FlattenYAML(node, patterns), nil
	}
	doc, err := ParseDocument(data, contentType)
	if err != nil {
		return nil, err
	}
	return FlattenEntries(doc, patterns), nil
}

// EncodeDocument encodes doc in the given format.
func EncodeDocument(doc any, contentType string) ([]byte, error) {
	codec, err := CodecFor(contentType)
	if err != nil {
		return nil, err
	}
	return codec.Encode(doc)
}

// JSONCodec reads and writes JSON. Numbers are kept as json.Number so they
// are written back exactly as read.
type JSONCodec struct{}

// Format returns "json".
func (JSONCodec) Format() string { return tlunit.ContentJSON }

// Decode parses a single JSON value.
func (JSONCodec) Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not a string", kt)
			}
			v, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected %q", delim)
}

// Encode writes doc indented by two spaces without HTML escaping.
func (JSONCodec) Encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// YAMLCodec reads and writes YAML.
type YAMLCodec struct{}

// Format returns "yaml".
func (YAMLCodec) Format() string { return tlunit.ContentYAML }

// Decode parses the first YAML document in data. Empty input decodes to nil.
func (YAMLCodec) Decode(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return fromYAMLNode(&node)
}

func fromYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			val, err := fromYAMLNode(v)
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d", n.Kind)
}

// Encode writes doc with two-space indentation.
func (YAMLCodec) Encode(doc any) ([]byte, error) {
	return encodeYAML(doc)
}

func encodeYAML(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
