package processor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Verdict names the classifier rule that decided a value.
type Verdict int

const (
	Accept Verdict = iota
	RejectTooShort
	RejectReservedPrefix
	RejectPathLike
	RejectDottedKey
	RejectNoLetters
	RejectCodeIdentifier
	RejectConstant
	RejectMarkupOnly
)

var verdictNames = [...]string{
	Accept:               "accept",
	RejectTooShort:       "too-short",
	RejectReservedPrefix: "reserved-prefix",
	RejectPathLike:       "path",
	RejectDottedKey:      "dotted-key",
	RejectNoLetters:      "no-letters",
	RejectCodeIdentifier: "code-identifier",
	RejectConstant:       "constant",
	RejectMarkupOnly:     "markup-only",
}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return "unknown"
}

// reservedPrefixes mark references, template expressions and private keys.
const reservedPrefixes = "@#$!{_"

var (
	identifierPattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9_.-]*$`)
	constantPattern   = regexp.MustCompile(`^[A-Z0-9_]+$`)
)

// Classify decides whether a string value reads like text meant for a human.
// Rules are checked in order and the first match wins. The classifier leans
// towards rejection: a skipped sentence can be promoted by hand, a translated
// identifier breaks the program that reads it.
func Classify(value string) Verdict {
	s := strings.TrimSpace(value)

	if utf8.RuneCountInString(s) < 2 {
		return RejectTooShort
	}

	first, _ := utf8.DecodeRuneInString(s)
	if strings.ContainsRune(reservedPrefixes, first) {
		return RejectReservedPrefix
	}

	hasSpace := strings.Contains(s, " ")

	if !hasSpace && strings.ContainsAny(s, `/\`) {
		return RejectPathLike
	}

	if !hasSpace && strings.Contains(s, ".") {
		return RejectDottedKey
	}

	if !hasLetter(s) {
		return RejectNoLetters
	}

	if !hasSpace {
		if identifierPattern.MatchString(s) {
			return RejectCodeIdentifier
		}
		if constantPattern.MatchString(s) {
			return RejectConstant
		}
	}

	if strings.Contains(s, "<") && strings.Contains(s, ">") && strings.TrimSpace(stripMarkup(s)) == "" {
		return RejectMarkupOnly
	}

	return Accept
}

// IsTranslatable reports whether value is a translation candidate.
func IsTranslatable(value string) bool {
	return Classify(value) == Accept
}

// hasLetter reports whether s contains a Latin or Han letter.
func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && (unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Han, r)) {
			return true
		}
	}
	return false
}
