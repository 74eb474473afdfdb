package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ZaguanLabs/tlunit"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

var errSyntax = errors.New("syntax error")

// comparisonOperators are the binary operators whose string operands are
// treated as code sentinels.
var comparisonOperators = map[string]bool{
	"==": true, "===": true, "!=": true, "!==": true,
	"<": true, ">": true, "<=": true, ">=": true,
	"in": true, "instanceof": true,
}

// TreeSitterSource is a LiteralSource backed by a tree-sitter grammar.
// It is safe for concurrent use; every call builds its own parser.
type TreeSitterSource struct {
	contentType string
	language    *sitter.Language
}

// NewTreeSitterSource returns a source for tlunit.ContentJavaScript (which
// includes JSX), tlunit.ContentTypeScript or tlunit.ContentTSX.
func NewTreeSitterSource(contentType string) (*TreeSitterSource, error) {
	var lang *sitter.Language
	switch contentType {
	case tlunit.ContentJavaScript:
		lang = javascript.GetLanguage()
	case tlunit.ContentTypeScript:
		lang = typescript.GetLanguage()
	case tlunit.ContentTSX:
		lang = tsx.GetLanguage()
	default:
		return nil, fmt.Errorf("%w: no grammar for %q", tlunit.ErrUnsupportedContent, contentType)
	}
	return &TreeSitterSource{contentType: contentType, language: lang}, nil
}

// Literals implements LiteralSource.
func (s *TreeSitterSource) Literals(src []byte) ([]Literal, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(s.language)

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &tlunit.ParseError{ContentType: s.contentType, Cause: err}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		perr := &tlunit.ParseError{ContentType: s.contentType, Cause: errSyntax}
		if bad := firstErrorNode(root); bad != nil {
			p := bad.StartPoint()
			perr.Line = int(p.Row) + 1
			perr.Column = int(p.Column)
		}
		return nil, perr
	}

	var lits []Literal
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type() == "string" {
			lit, err := s.literal(n, src)
			if err != nil {
				p := n.StartPoint()
				return nil, &tlunit.ParseError{
					ContentType: s.contentType,
					Line:        int(p.Row) + 1,
					Column:      int(p.Column),
					Cause:       err,
				}
			}
			lits = append(lits, lit)
			continue
		}

		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}

	sort.SliceStable(lits, func(i, j int) bool {
		return lits[i].Range.Start < lits[j].Range.Start
	})
	return lits, nil
}

func (s *TreeSitterSource) literal(n *sitter.Node, src []byte) (Literal, error) {
	start, end := int(n.StartByte()), int(n.EndByte())
	raw := string(src[start:end])

	lit := Literal{
		Range: tlunit.Range{Start: start, End: end},
		Loc: tlunit.Loc{
			Start: point(n.StartPoint()),
			End:   point(n.EndPoint()),
		},
	}

	if parent := n.Parent(); parent != nil && parent.Type() == "jsx_attribute" {
		if len(raw) < 2 {
			return Literal{}, fmt.Errorf("truncated attribute value %q", raw)
		}
		lit.Value = raw[1 : len(raw)-1]
		lit.Verbatim = true
	} else {
		v, err := decodeJSString(raw)
		if err != nil {
			return Literal{}, err
		}
		lit.Value = v
	}

	lit.Role, lit.Call = role(n, src)
	return lit, nil
}

// role classifies the syntactic position of a string node from its
// immediate ancestors.
func role(n *sitter.Node, src []byte) (Role, *Call) {
	parent := n.Parent()
	if parent == nil {
		return RoleValue, nil
	}

	switch parent.Type() {
	case "import_statement", "export_statement":
		if source := parent.ChildByFieldName("source"); source != nil && sameNode(source, n) {
			return RoleModuleSource, nil
		}
	case "import_require_clause", "external_module_reference", "module":
		return RoleModuleSource, nil
	case "pair", "pair_pattern":
		if key := parent.ChildByFieldName("key"); key != nil && sameNode(key, n) {
			return RolePropertyKey, nil
		}
	case "expression_statement":
		if isDirective(parent) {
			return RoleDirective, nil
		}
	case "literal_type":
		return RoleType, nil
	case "arguments":
		if call := parent.Parent(); call != nil && call.Type() == "call_expression" {
			return RoleArgument, describeCall(call, parent, n, src)
		}
	}

	p := parent
	for p != nil && p.Type() == "parenthesized_expression" {
		p = p.Parent()
	}
	if p != nil && p.Type() == "binary_expression" {
		if op := p.ChildByFieldName("operator"); op != nil && comparisonOperators[op.Type()] {
			return RoleComparison, nil
		}
	}

	return RoleValue, nil
}

func describeCall(call, args, lit *sitter.Node, src []byte) *Call {
	c := &Call{Index: -1}

	pos := 0
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "comment" {
			continue
		}
		if sameNode(arg, lit) {
			c.Index = pos
		}
		pos++
	}
	c.Argc = pos

	fn := call.ChildByFieldName("function")
	if fn == nil {
		return c
	}
	switch fn.Type() {
	case "member_expression":
		if obj := fn.ChildByFieldName("object"); obj != nil {
			c.Receiver = obj.Content(src)
		}
		if prop := fn.ChildByFieldName("property"); prop != nil {
			c.Method = prop.Content(src)
		}
	case "identifier":
		c.Method = fn.Content(src)
	}
	return c
}

// isDirective reports whether stmt belongs to the directive prologue of a
// script or function body: a run of string-only expression statements at
// the start of the block.
func isDirective(stmt *sitter.Node) bool {
	if stmt.NamedChildCount() != 1 {
		return false
	}
	block := stmt.Parent()
	if block == nil {
		return false
	}
	switch block.Type() {
	case "program":
	case "statement_block":
		owner := block.Parent()
		if owner == nil || !(strings.Contains(owner.Type(), "function") || owner.Type() == "method_definition") {
			return false
		}
	default:
		return false
	}

	for i := 0; i < int(block.NamedChildCount()); i++ {
		sib := block.NamedChild(i)
		switch {
		case sib.Type() == "comment" || sib.Type() == "hash_bang_line":
			continue
		case sameNode(sib, stmt):
			return true
		case sib.Type() == "expression_statement" && sib.NamedChildCount() == 1 && sib.NamedChild(0).Type() == "string":
			continue
		default:
			return false
		}
	}
	return false
}

// firstErrorNode returns the innermost syntax error below n. A MISSING node
// sits where a token was expected. An ERROR node with no error inside it is
// located by its last child, where recovery gave up.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsMissing() {
			if bad := firstErrorNode(child); bad != nil {
				return bad
			}
		}
	}
	switch {
	case n.IsMissing():
		return n
	case n.IsError():
		if c := int(n.ChildCount()); c > 0 {
			return n.Child(c - 1)
		}
		return n
	}
	return nil
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func point(p sitter.Point) tlunit.Point {
	return tlunit.Point{Line: int(p.Row) + 1, Column: int(p.Column)}
}

var _ LiteralSource = (*TreeSitterSource)(nil)
