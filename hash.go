package tlunit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text. It is the
// translation memory identity of a value, independent of where it occurs.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a translation memory key from a text hash and target language.
func CacheKey(hash, targetLang string) string {
	return hash + ":" + NormalizeLocale(targetLang)
}
