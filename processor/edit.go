package processor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ZaguanLabs/tlunit"
)

// ErrEditOverlap is returned by ApplyEdits when two edits touch the same bytes.
var ErrEditOverlap = errors.New("overlapping edits")

// Edit replaces the bytes of Range in the original buffer with Text.
type Edit struct {
	Range tlunit.Range
	Text  string
}

// ApplyEdits applies edits against src in one sweep. Offsets always refer to
// src, never to a partially edited buffer; bytes outside every edit range
// are copied through unchanged.
func ApplyEdits(src string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start < sorted[j].Range.Start
	})

	grow := len(src)
	for i, e := range sorted {
		if e.Range.Start < 0 || e.Range.End > len(src) || e.Range.Start > e.Range.End {
			return "", fmt.Errorf("edit %d-%d out of bounds for %d bytes", e.Range.Start, e.Range.End, len(src))
		}
		if i > 0 && sorted[i-1].Range.Overlaps(e.Range) {
			return "", fmt.Errorf("%w: %d-%d and %d-%d", ErrEditOverlap,
				sorted[i-1].Range.Start, sorted[i-1].Range.End, e.Range.Start, e.Range.End)
		}
		grow += len(e.Text) - e.Range.Len()
	}

	var b strings.Builder
	if grow > 0 {
		b.Grow(grow)
	}
	pos := 0
	for _, e := range sorted {
		b.WriteString(src[pos:e.Range.Start])
		b.WriteString(e.Text)
		pos = e.Range.End
	}
	b.WriteString(src[pos:])
	return b.String(), nil
}
