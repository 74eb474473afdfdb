package processor

import "testing"

func TestDecodeJSString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"Hello"`, "Hello"},
		{`'Hello'`, "Hello"},
		{`"It\'s"`, "It's"},
		{`'say \"hi\"'`, `say "hi"`},
		{`"a\nb\tc"`, "a\nb\tc"},
		{`"\x41B\u{43}"`, "ABC"},
		{`"😀"`, "😀"},
		{`"\u{1F600}"`, "😀"},
		{`"back\\slash"`, `back\slash`},
		{`"\0"`, "\x00"},
		{`"\101"`, "A"},
		{"\"line\\\ncontinued\"", "linecontinued"},
		{"\"line\\\r\ncontinued\"", "linecontinued"},
		{`"\q"`, "q"},
		{`"你好"`, "你好"},
	}

	for _, tt := range tests {
		got, err := decodeJSString(tt.raw)
		if err != nil {
			t.Errorf("decodeJSString(%s) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("decodeJSString(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDecodeJSString_Invalid(t *testing.T) {
	for _, raw := range []string{``, `"`, `"abc'`, "`tpl`", `"\x4"`, `"\u12"`, `"\u{110000}"`} {
		if _, err := decodeJSString(raw); err == nil {
			t.Errorf("decodeJSString(%s) should fail", raw)
		}
	}
}

func TestEscapeQuote(t *testing.T) {
	if got := escapeQuote(`it's "fine"`, '\''); got != `it\'s "fine"` {
		t.Errorf("single quote: got %s", got)
	}
	if got := escapeQuote(`it's "fine"`, '"'); got != `it's \"fine\"` {
		t.Errorf("double quote: got %s", got)
	}
}

func TestContainsLineTerminator(t *testing.T) {
	if !containsLineTerminator("a\nb") || !containsLineTerminator("a\rb") {
		t.Error("expected line terminators to be detected")
	}
	if containsLineTerminator("a b") {
		t.Error("plain text has no line terminator")
	}
}
