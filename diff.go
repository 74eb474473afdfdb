package tlunit

// UnitMatch pairs a unit from an earlier scan with its counterpart in a
// later scan of the same file.
type UnitMatch struct {
	Old Unit
	New Unit
}

// Moved reports whether the unit's byte range changed between scans.
func (m UnitMatch) Moved() bool {
	return m.Old.Range != m.New.Range
}

// DiffResult is the difference between two scans of a script.
type DiffResult struct {
	Added   []Unit      // values that only occur in the new scan
	Removed []Unit      // values that only occur in the old scan
	Matched []UnitMatch // same value and occurrence index in both
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Moved     int
	Unchanged int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	s := DiffStats{Added: len(d.Added), Removed: len(d.Removed)}
	for _, m := range d.Matched {
		if m.Moved() {
			s.Moved++
		} else {
			s.Unchanged++
		}
	}
	return s
}

// HasChanges reports whether any unit was added or removed.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// NeedsTranslation returns the units of the new scan that have no
// counterpart in the old one.
func (d *DiffResult) NeedsTranslation() []Unit {
	return d.Added
}

// occurrenceKey identifies the n-th unit carrying a given value.
type occurrenceKey struct {
	value string
	n     int
}

func indexOccurrences(units []Unit) (map[occurrenceKey]Unit, []occurrenceKey) {
	seen := make(map[string]int)
	index := make(map[occurrenceKey]Unit, len(units))
	order := make([]occurrenceKey, 0, len(units))
	for _, u := range units {
		k := occurrenceKey{value: u.Original, n: seen[u.Original]}
		seen[u.Original]++
		index[k] = u
		order = append(order, k)
	}
	return index, order
}

// DiffUnits compares two scans of the same file. Units are matched by value
// and occurrence index (the second "Attack" in the old scan matches the
// second "Attack" in the new scan), never by ID, since IDs are byte offsets.
func DiffUnits(oldUnits, newUnits []Unit) *DiffResult {
	result := &DiffResult{}

	oldIndex, oldOrder := indexOccurrences(oldUnits)
	newIndex, newOrder := indexOccurrences(newUnits)

	for _, k := range oldOrder {
		if nu, ok := newIndex[k]; ok {
			result.Matched = append(result.Matched, UnitMatch{Old: oldIndex[k], New: nu})
		} else {
			result.Removed = append(result.Removed, oldIndex[k])
		}
	}
	for _, k := range newOrder {
		if _, ok := oldIndex[k]; !ok {
			result.Added = append(result.Added, newIndex[k])
		}
	}

	return result
}

// Rebase re-keys translations recorded against an earlier scan so they can
// be applied to a fresh scan of the edited source. Translations for units
// that no longer exist are dropped.
func Rebase(oldUnits []Unit, translations map[string]string, newUnits []Unit) map[string]string {
	out := make(map[string]string, len(translations))
	for _, m := range DiffUnits(oldUnits, newUnits).Matched {
		if text, ok := translations[m.Old.ID]; ok {
			out[m.New.ID] = text
		}
	}
	return out
}
