package processor

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ZaguanLabs/tlunit"
)

// canonical renders a document as JSON with sorted keys for comparison.
func canonical(t *testing.T, doc any) string {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, err = json.Marshal(generic)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestFlatten(t *testing.T) {
	doc := map[string]any{
		"PF1": map[string]any{
			"Title":   "Pathfinder",
			"Actions": map[string]any{"Attack": "Attack", "Version": 2},
		},
		"items": []any{"first", map[string]any{"name": "second"}},
		"flag":  true,
		"none":  nil,
	}

	flat := Flatten(doc, nil)
	want := map[string]string{
		"PF1:::Title":            "Pathfinder",
		"PF1:::Actions:::Attack": "Attack",
		"items:::0":              "first",
		"items:::1:::name":       "second",
	}
	if len(flat) != len(want) {
		t.Fatalf("got %v, want %v", flat, want)
	}
	for k, v := range want {
		if flat[k] != v {
			t.Errorf("flat[%q] = %q, want %q", k, flat[k], v)
		}
	}
}

func TestFlatten_Blacklist(t *testing.T) {
	doc := map[string]any{
		"system": map[string]any{
			"description": map[string]any{"value": "Long text"},
			"img":         "icons/a.png",
			"name":        "Sword",
		},
	}
	flat := Flatten(doc, []string{"description.value", "img"})
	if len(flat) != 1 || flat["system:::name"] != "Sword" {
		t.Errorf("got %v", flat)
	}
}

func TestFlatten_DottedPropertyNames(t *testing.T) {
	doc := map[string]any{"PF1.Title": "Pathfinder", "a": map[string]any{"b.c": "Nested"}}
	flat := Flatten(doc, nil)
	if flat["PF1.Title"] != "Pathfinder" || flat["a:::b.c"] != "Nested" {
		t.Errorf("got %v", flat)
	}
	if got := canonical(t, Unflatten(flat)); got != canonical(t, doc) {
		t.Errorf("round trip: %s", got)
	}
}

func TestUnflattenRoundTrip(t *testing.T) {
	docs := []map[string]any{
		{"a": "x"},
		{"a": map[string]any{"b": map[string]any{"c": "deep"}}, "d": "top"},
		{"Label": "Label", "nested": map[string]any{"Hint": "Hint text", "Other": "Other text"}},
	}
	for _, doc := range docs {
		if got, want := canonical(t, Unflatten(Flatten(doc, nil))), canonical(t, doc); got != want {
			t.Errorf("round trip = %s, want %s", got, want)
		}
	}
}

func TestUnflatten_ArraysBecomeObjects(t *testing.T) {
	got := canonical(t, Unflatten(map[string]string{"list:::0": "a", "list:::1": "b"}))
	if want := `{"list":{"0":"a","1":"b"}}`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestUnflattenEntries_KeepsOrder(t *testing.T) {
	obj := UnflattenEntries([]tlunit.Entry{
		{Key: "z", Value: "last letter"},
		{Key: "a:::y", Value: "nested"},
		{Key: "a:::b", Value: "nested too"},
	})
	b, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"z":"last letter","a":{"y":"nested","b":"nested too"}}`; string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestOverlay(t *testing.T) {
	doc, err := JSONCodec{}.Decode([]byte(`{"title":"Hello","count":3,"tags":["Red","Blue"],"meta":{"on":true,"note":"Keep"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	out := Overlay(doc, map[string]string{
		"title":       "Bonjour",
		"tags:::1":    "Bleu",
		"meta:::note": "",
		"missing":     "ignored",
	})

	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"title":"Bonjour","count":3,"tags":["Red","Bleu"],"meta":{"on":true,"note":"Keep"}}`; string(b) != want {
		t.Errorf("got %s\nwant %s", b, want)
	}

	orig, _ := json.Marshal(doc)
	if want := `{"title":"Hello","count":3,"tags":["Red","Blue"],"meta":{"on":true,"note":"Keep"}}`; string(orig) != want {
		t.Errorf("Overlay modified its input: %s", orig)
	}
}

func TestCheckKeys(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		key  string
	}{
		{"dotted names", map[string]any{"a": map[string]any{"b.c": "ok"}}, ""},
		{"empty names", map[string]any{"": map[string]any{"": "ok"}, "a": "ok"}, ""},
		{"separator inside a name", map[string]any{"a": map[string]any{"b:::c": "bad"}}, "a.b.c"},
		{"colon before the separator", map[string]any{"a:": map[string]any{"b": "bad"}}, "a.:b"},
		{"inside an array", map[string]any{"list": []any{map[string]any{"x:::y": "bad"}}}, "list.0.x.y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckKeys(tt.doc)
			if tt.key == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var perr *tlunit.PathCollisionError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *tlunit.PathCollisionError, got %v", err)
			}
			if perr.Key != tt.key {
				t.Errorf("Key = %q, want %q", perr.Key, tt.key)
			}
		})
	}
}

func TestFlatten_EmptyPropertyNames(t *testing.T) {
	doc, err := JSONCodec{}.Decode([]byte(`{"":{"a":"inner"},"a":"outer"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	flat := Flatten(doc, nil)
	if len(flat) != 2 || flat[":::a"] != "inner" || flat["a"] != "outer" {
		t.Errorf("an empty name must keep its own segment, got %v", flat)
	}
	if got, want := canonical(t, UnflattenEntries(FlattenEntries(doc, nil))), canonical(t, doc); got != want {
		t.Errorf("round trip: got %s, want %s", got, want)
	}

	top, err := JSONCodec{}.Decode([]byte(`{"":"Hello","b":"World"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := json.Marshal(Overlay(top, map[string]string{"": "Bonjour"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"":"Bonjour","b":"World"}`; string(out) != want {
		t.Errorf("top-level empty name: got %s, want %s", out, want)
	}
}

func TestIsBabele(t *testing.T) {
	tests := []struct {
		doc  any
		want bool
	}{
		{map[string]any{"label": "Items", "entries": map[string]any{}}, true},
		{map[string]any{"label": "Items", "mapping": map[string]any{}}, true},
		{map[string]any{"label": "Items"}, false},
		{map[string]any{"entries": map[string]any{}}, false},
		{[]any{"label"}, false},
		{"label", false},
	}
	for i, tt := range tests {
		if got := IsBabele(tt.doc); got != tt.want {
			t.Errorf("case %d: IsBabele = %v, want %v", i, got, tt.want)
		}
	}
}
