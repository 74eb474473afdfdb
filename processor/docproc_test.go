package processor

import (
	"strings"
	"testing"

	"github.com/ZaguanLabs/tlunit"
	"github.com/ZaguanLabs/tlunit/blacklist"
)

func TestDocumentProcessor_ExtractApply(t *testing.T) {
	p, err := NewDocumentProcessor(tlunit.ContentJSON, WithBlacklist(blacklist.List{"img"}))
	if err != nil {
		t.Fatalf("NewDocumentProcessor failed: %v", err)
	}
	if p.ContentType() != tlunit.ContentJSON {
		t.Errorf("ContentType() = %q", p.ContentType())
	}

	src := `{"name":"Sword","img":"icons/sword.png","system":{"description":"A sharp blade","weight":3}}`
	parsed, segments, err := p.Extract(src)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[1].ID != "system:::description" || segments[1].Context != "system.description" {
		t.Errorf("unexpected segment %+v", segments[1])
	}

	out, err := p.Apply(parsed, segments, map[string]string{"name": "Épée", "system:::description": "Une lame"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	want := `{
  "name": "Épée",
  "img": "icons/sword.png",
  "system": {
    "description": "Une lame",
    "weight": 3
  }
}
`
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestDocumentProcessor_Bilingual(t *testing.T) {
	p, err := NewDocumentProcessor(tlunit.ContentYAML, WithBilingual(DefaultBilingualThreshold))
	if err != nil {
		t.Fatalf("NewDocumentProcessor failed: %v", err)
	}

	parsed, segments, err := p.Extract("label: Attack\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	out, err := p.Apply(parsed, segments, map[string]string{"label": "攻击"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if want := "label: 攻击 Attack\n"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestDocumentProcessor_YAMLKeepsUntranslatedText(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		translations map[string]string
		ids          []string
		want         string
		contains     []string
	}{
		{
			name:         "comments and dates",
			src:          "# module strings\nrelease: 2024-01-01\ntitle: Fire Bolt # spell\n",
			translations: map[string]string{"title": "火焰箭"},
			ids:          []string{"title"},
			want:         "# module strings\nrelease: 2024-01-01\ntitle: 火焰箭 # spell\n",
		},
		{
			name:         "anchors and aliases",
			src:          "base: &base\n  label: Attack\ncopy: *base\n",
			translations: map[string]string{"base:::label": "攻击"},
			ids:          []string{"base:::label"},
			contains:     []string{"&base", "label: 攻击", "copy: *base"},
		},
		{
			name:         "non-string scalars",
			src:          "count: 3\nenabled: true\nquoted: \"yes\"\n",
			translations: map[string]string{"quoted": "oui"},
			ids:          []string{"quoted"},
			want:         "count: 3\nenabled: true\nquoted: \"oui\"\n",
		},
	}

	p, err := NewDocumentProcessor(tlunit.ContentYAML)
	if err != nil {
		t.Fatalf("NewDocumentProcessor failed: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, segments, err := p.Extract(tt.src)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if len(segments) != len(tt.ids) {
				t.Fatalf("expected %d segments, got %+v", len(tt.ids), segments)
			}
			for i, id := range tt.ids {
				if segments[i].ID != id {
					t.Errorf("segment %d is %q, want %q", i, segments[i].ID, id)
				}
			}

			out, err := p.Apply(parsed, segments, tt.translations)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if tt.want != "" && out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
			for _, c := range tt.contains {
				if !strings.Contains(out, c) {
					t.Errorf("output lost %q:\n%s", c, out)
				}
			}

			again, _, err := p.Extract(tt.src)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if unchanged, _ := p.Apply(again, nil, nil); strings.Contains(unchanged, "T00:00:00Z") {
				t.Errorf("dates must not be rewritten: %q", unchanged)
			}
		})
	}
}

func TestDocumentProcessor_YAMLApplyLeavesParsedTree(t *testing.T) {
	p, err := NewDocumentProcessor(tlunit.ContentYAML)
	if err != nil {
		t.Fatalf("NewDocumentProcessor failed: %v", err)
	}

	parsed, segments, err := p.Extract("label: Attack\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, err := p.Apply(parsed, segments, map[string]string{"label": "攻击"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	out, err := p.Apply(parsed, segments, map[string]string{"label": "Angriff"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "label: Angriff\n" {
		t.Errorf("a second Apply must start from the source, got %q", out)
	}
}

func TestDocumentProcessor_MalformedHasNothingToTranslate(t *testing.T) {
	p, err := NewDocumentProcessor(tlunit.ContentJSON)
	if err != nil {
		t.Fatalf("NewDocumentProcessor failed: %v", err)
	}

	src := `{"name": "Sword"`
	parsed, segments, err := p.Extract(src)
	if err != nil {
		t.Fatalf("Extract should not fail: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("expected no segments, got %d", len(segments))
	}
	out, err := p.Apply(parsed, segments, nil)
	if err != nil || out != src {
		t.Errorf("Apply = %q, %v", out, err)
	}
}

func TestNewDocumentProcessor_Unsupported(t *testing.T) {
	if _, err := NewDocumentProcessor("xml"); err == nil {
		t.Error("expected an error for xml")
	}
}
