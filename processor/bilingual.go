package processor

// DefaultBilingualThreshold is the original length below which a string is
// shown as "translation original".
const DefaultBilingualThreshold = 50

// MergeBilingual zips a translated document with the original it came from.
// A string whose original is shorter than threshold and differs from its
// translation becomes "translated original"; longer strings keep only the
// translation. Arrays are zipped by index and objects by the translated
// object's keys. A missing original falls back to the translated value,
// which leaves it unchanged. Length is counted in UTF-16 code units.
func MergeBilingual(translated, original any, threshold int) any {
	switch t := translated.(type) {
	case string:
		o, ok := original.(string)
		if ok && utf16Len(o) < threshold && t != o {
			return t + " " + o
		}
		return t
	case []any:
		orig, _ := original.([]any)
		out := make([]any, len(t))
		for i, item := range t {
			var o any = item
			if i < len(orig) && orig[i] != nil {
				o = orig[i]
			}
			out[i] = MergeBilingual(item, o, threshold)
		}
		return out
	}

	tobj, ok := objectOf(translated)
	if !ok {
		return translated
	}
	oobj, _ := objectOf(original)

	out := NewObject()
	for _, k := range tobj.Keys() {
		tv, _ := tobj.Get(k)
		ov := tv
		if oobj != nil {
			if v, ok := oobj.Get(k); ok && v != nil {
				ov = v
			}
		}
		out.Set(k, MergeBilingual(tv, ov, threshold))
	}
	return out
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
