package tlunit

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// rtlScripts are the scripts written right to left.
var rtlScripts = map[string]bool{
	"Arab": true,
	"Hebr": true,
	"Thaa": true,
	"Syrc": true,
	"Nkoo": true,
	"Adlm": true,
	"Rohg": true,
}

// ParseLang parses a locale code written with either "_" or "-".
func ParseLang(code string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(code, "_", "-"))
}

// GetLanguageName returns the English name for a language code, for use in
// prompts. Falls back to the code itself if it cannot be parsed.
func GetLanguageName(code string) string {
	tag, err := ParseLang(code)
	if err != nil {
		return code
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	if IsRTL(code) {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language's likely script is written right to left.
func IsRTL(code string) bool {
	tag, err := ParseLang(code)
	if err != nil {
		return false
	}
	script, _ := tag.Script()
	return rtlScripts[script.String()]
}

// NormalizeLocale converts a language code to underscore form ("zh-CN" → "zh_CN").
func NormalizeLocale(code string) string {
	return strings.ReplaceAll(code, "-", "_")
}

// SameBaseLanguage reports whether two codes share a base language, e.g.
// "en" and "en_GB".
func SameBaseLanguage(a, b string) bool {
	ta, errA := ParseLang(a)
	tb, errB := ParseLang(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(baseCode(a), baseCode(b))
	}
	ba, _ := ta.Base()
	bb, _ := tb.Base()
	return ba == bb
}

func baseCode(code string) string {
	return strings.SplitN(NormalizeLocale(code), "_", 2)[0]
}

// GetStyleDescription returns prompt text describing a translation register.
func GetStyleDescription(style TranslationStyle) string {
	switch style {
	case StyleFormal:
		return "Use a formal, polished register."
	case StyleCasual:
		return "Use a relaxed, conversational register."
	case StyleTechnical:
		return "Use precise terminology. Keep game rules terms consistent and unambiguous."
	default:
		return "Use a neutral register."
	}
}
