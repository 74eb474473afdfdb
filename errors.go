package tlunit

import (
	"errors"
	"fmt"
)

// ErrUnsupportedContent is returned for files no processor understands.
var ErrUnsupportedContent = errors.New("unsupported content type")

// ParseError indicates a script file is not syntactically valid. A scan that
// fails this way returns no units at all; the caller should skip the file.
type ParseError struct {
	ContentType string
	Path        string // optional, set by callers that know the file
	Line        int    // 1-based; 0 when unknown
	Column      int
	Cause       error
}

func (e *ParseError) Error() string {
	where := e.ContentType
	if e.Path != "" {
		where = e.Path
	}
	msg := fmt.Sprintf("parse error (%s)", where)
	if e.Line > 0 {
		msg += fmt.Sprintf(" at %d:%d", e.Line, e.Column)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// DocumentError indicates data that could not be decoded as a structured
// document.
type DocumentError struct {
	Format string
	Cause  error
}

func (e *DocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s document: %v", e.Format, e.Cause)
	}
	return fmt.Sprintf("malformed %s document", e.Format)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// PathCollisionError reports a property name that cannot be told apart from
// KeySeparator once joined, which would make two distinct nested keys
// flatten to the same path.
type PathCollisionError struct {
	Key string // public form of the offending path
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("property name at %q collides with the reserved separator %q", e.Key, KeySeparator)
}

// ProviderError indicates an AI provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a translation memory failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the provider returned a different number of
// translations than it was asked for.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
