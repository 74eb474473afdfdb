package processor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripMarkup returns the text content of an HTML fragment, with tags and
// attributes removed and entities decoded. Input that cannot be parsed is
// returned unchanged so it is never mistaken for empty markup.
func stripMarkup(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
