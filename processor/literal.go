package processor

import (
	"github.com/ZaguanLabs/tlunit"
)

// Role is the syntactic position of a string literal, as far as the
// extraction rules care about it.
type Role int

const (
	// RoleValue is any position without a more specific role.
	RoleValue Role = iota
	// RoleModuleSource is the module path of an import or export.
	RoleModuleSource
	// RolePropertyKey is a non-computed object property key.
	RolePropertyKey
	// RoleDirective is a prologue directive such as "use strict".
	RoleDirective
	// RoleComparison is an operand of a comparison operator.
	RoleComparison
	// RoleType is a literal type in a type annotation.
	RoleType
	// RoleArgument is an argument of a call expression; see Literal.Call.
	RoleArgument
)

// Call describes the call a RoleArgument literal is passed to.
type Call struct {
	Receiver string // source text of the callee object ("game.modules"); empty for plain calls
	Method   string // property name for member calls, identifier for plain calls
	Index    int    // argument position of the literal
	Argc     int    // number of arguments
}

// ReceiverName returns the last dotted segment of the receiver, so
// "game.modules" yields "modules".
func (c *Call) ReceiverName() string {
	r := c.Receiver
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == '.' {
			return r[i+1:]
		}
	}
	return r
}

// Literal is one string literal of a parsed script.
type Literal struct {
	Value string       // decoded value
	Range tlunit.Range // byte range including the quotes
	Loc   tlunit.Loc
	Role  Role
	Call  *Call // set when Role == RoleArgument

	// Verbatim literals have no escape sequences (JSX attribute values), so
	// a replacement containing the quote character cannot be written back.
	Verbatim bool
}

// LiteralSource parses a script and reports every string literal with its
// byte range and syntactic role, ordered by ascending start offset. A source
// that does not parse yields a *tlunit.ParseError and no literals.
//
// Keeping the parser behind this interface lets the extraction rules and the
// patcher stay independent of any particular syntax tree library.
type LiteralSource interface {
	Literals(src []byte) ([]Literal, error)
}
