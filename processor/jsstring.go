package processor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeJSString decodes a quoted JavaScript string literal, quotes
// included, into its value.
func decodeJSString(raw string) (string, error) {
	if len(raw) < 2 || (raw[0] != '"' && raw[0] != '\'') || raw[len(raw)-1] != raw[0] {
		return "", fmt.Errorf("not a quoted string literal: %q", raw)
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	var pendingHigh rune = -1

	flushHigh := func() {
		if pendingHigh >= 0 {
			b.WriteRune(utf8.RuneError)
			pendingHigh = -1
		}
	}
	writeUnit := func(u rune) {
		switch {
		case utf16.IsSurrogate(u) && u < 0xDC00:
			flushHigh()
			pendingHigh = u
		case utf16.IsSurrogate(u):
			if pendingHigh >= 0 {
				b.WriteRune(utf16.DecodeRune(pendingHigh, u))
				pendingHigh = -1
			} else {
				b.WriteRune(utf8.RuneError)
			}
		default:
			flushHigh()
			b.WriteRune(u)
		}
	}

	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			flushHigh()
			r, size := utf8.DecodeRuneInString(body[i:])
			b.WriteRune(r)
			i += size
			continue
		}

		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in %q", raw)
		}
		c = body[i]
		switch c {
		case 'n':
			writeUnit('\n')
			i++
		case 't':
			writeUnit('\t')
			i++
		case 'r':
			writeUnit('\r')
			i++
		case 'b':
			writeUnit('\b')
			i++
		case 'f':
			writeUnit('\f')
			i++
		case 'v':
			writeUnit('\v')
			i++
		case '\r':
			// line continuation, CRLF or CR
			i++
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case '\n':
			i++
		case 'x':
			if i+3 > len(body) {
				return "", fmt.Errorf("short \\x escape in %q", raw)
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape in %q: %w", raw, err)
			}
			writeUnit(rune(v))
			i += 3
		case 'u':
			v, n, err := parseUnicodeEscape(body[i+1:])
			if err != nil {
				return "", fmt.Errorf("bad \\u escape in %q: %w", raw, err)
			}
			writeUnit(v)
			i += 1 + n
		default:
			if c >= '0' && c <= '7' {
				// \0 and legacy octal escapes
				j := i
				for j < len(body) && j-i < 3 && body[j] >= '0' && body[j] <= '7' {
					j++
				}
				v, _ := strconv.ParseUint(body[i:j], 8, 16)
				if v > 0xFF {
					j--
					v, _ = strconv.ParseUint(body[i:j], 8, 16)
				}
				writeUnit(rune(v))
				i = j
				continue
			}
			r, size := utf8.DecodeRuneInString(body[i:])
			if r == '\u2028' || r == '\u2029' {
				i += size
				continue
			}
			writeUnit(r)
			i += size
		}
	}
	flushHigh()

	return b.String(), nil
}

// parseUnicodeEscape parses the part after "\u": either four hex digits or
// a braced code point. It returns the value and the bytes consumed.
func parseUnicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, fmt.Errorf("unterminated code point")
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, fmt.Errorf("invalid code point %q", s[1:end])
		}
		return rune(v), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("need four hex digits")
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, err
	}
	return rune(v), 4, nil
}

// containsLineTerminator reports whether s holds a character that may not
// appear unescaped in a quote-delimited literal.
func containsLineTerminator(s string) bool {
	return strings.ContainsAny(s, "\n\r")
}

// escapeQuote escapes every occurrence of quote in s and nothing else.
func escapeQuote(s string, quote byte) string {
	q := string(quote)
	return strings.ReplaceAll(s, q, `\`+q)
}
