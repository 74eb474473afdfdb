package processor

import (
	"strconv"

	"github.com/ZaguanLabs/tlunit"
	"github.com/ZaguanLabs/tlunit/blacklist"
	"gopkg.in/yaml.v3"
)

// YAML documents are localized on their node tree. Only string scalars are
// rewritten, so comments, anchors and aliases, tags, timestamps and quoting
// all come back as they were read.

// DecodeNode parses the first YAML document in data.
func (YAMLCodec) DecodeNode(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeNode writes a node tree with two-space indentation.
func (YAMLCodec) EncodeNode(n *yaml.Node) ([]byte, error) {
	return encodeYAML(n)
}

// FlattenYAML is FlattenEntries over a YAML node tree. Aliases are not
// leaves: the anchored value is visited where it is defined.
func FlattenYAML(root *yaml.Node, patterns []string) []tlunit.Entry {
	var entries []tlunit.Entry
	walkYAMLStrings(root, nil, func(path []string, n *yaml.Node) {
		key := pathKey(path)
		if blacklist.Matches(key, patterns) {
			return
		}
		entries = append(entries, tlunit.Entry{Key: key, Value: n.Value})
	})
	return entries
}

// OverlayYAML returns a copy of root with string scalars replaced by the
// non-empty values of flat at the same path. A positive threshold also
// applies the bilingual rule of MergeBilingual to replaced scalars.
func OverlayYAML(root *yaml.Node, flat map[string]string, threshold int) *yaml.Node {
	out := cloneYAML(root, map[*yaml.Node]*yaml.Node{})
	walkYAMLStrings(out, nil, func(path []string, n *yaml.Node) {
		t, ok := flat[pathKey(path)]
		if !ok || t == "" {
			return
		}
		if threshold > 0 && utf16Len(n.Value) < threshold && t != n.Value {
			t = t + " " + n.Value
		}
		n.Value = t
	})
	return out
}

func walkYAMLStrings(n *yaml.Node, path []string, fn func(path []string, n *yaml.Node)) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			walkYAMLStrings(c, path, fn)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			walkYAMLChild(n.Content[i+1], childPath(path, n.Content[i].Value), fn)
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			walkYAMLChild(c, childPath(path, strconv.Itoa(i)), fn)
		}
	}
}

func walkYAMLChild(n *yaml.Node, path []string, fn func(path []string, n *yaml.Node)) {
	if n.Kind == yaml.ScalarNode {
		if n.ShortTag() == "!!str" {
			fn(path, n)
		}
		return
	}
	walkYAMLStrings(n, path, fn)
}

// cloneYAML deep-copies a node tree. Aliases in the copy point at the copied
// anchors.
func cloneYAML(n *yaml.Node, seen map[*yaml.Node]*yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if c, ok := seen[n]; ok {
		return c
	}
	c := *n
	seen[n] = &c
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneYAML(child, seen)
		}
	}
	c.Alias = cloneYAML(n.Alias, seen)
	return &c
}
