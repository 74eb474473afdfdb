package cache

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestExporter_Export(t *testing.T) {
	c := NewInMemoryCache(3600)
	c.Set("key1", "value1")
	c.SetEntry(Entry{Key: "key2", Value: "<b>value2</b>", Source: SourceManual})

	var buf bytes.Buffer
	if err := NewExporter(c).Export(&buf, map[string]string{"lang": "zh-CN"}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if export.Version != ExportVersion {
		t.Errorf("Expected version %s, got %s", ExportVersion, export.Version)
	}
	if len(export.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(export.Entries))
	}
	if export.Entries[1].Source != SourceManual {
		t.Errorf("source not exported: %+v", export.Entries[1])
	}
	if export.Metadata["lang"] != "zh-CN" {
		t.Errorf("Expected metadata lang=zh-CN, got %v", export.Metadata)
	}
	if !strings.Contains(buf.String(), "<b>value2</b>") {
		t.Error("export should not escape HTML")
	}
}

func TestImporter_Import(t *testing.T) {
	jsonData := `{
		"version": "1.0",
		"exported_at": "2024-01-01T00:00:00Z",
		"entries": [
			{"key": "key1", "value": "value1"},
			{"key": "key2", "value": "value2", "source": "ai"},
			{"key": "key3", "value": ""}
		],
		"metadata": {"lang": "zh-CN"}
	}`

	c := NewInMemoryCache(3600)
	result, err := NewImporter(c).Import(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 || result.Skipped != 1 || result.Failed != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Version != "1.0" || result.Metadata["lang"] != "zh-CN" {
		t.Errorf("unexpected header %+v", result)
	}

	entries, _ := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %+v", entries)
	}
	if entries[0].Source != SourceManual || entries[1].Source != SourceAI {
		t.Errorf("unexpected sources %+v", entries)
	}
}

func TestExportImport_RoundTripFile(t *testing.T) {
	src := NewInMemoryCache(0)
	src.Set("hash1:zh-CN", "你好")
	src.SetEntry(Entry{Key: "hash2:zh-CN", Value: "世界", Source: SourceGlossary})

	path := filepath.Join(t.TempDir(), "tm.json")
	if err := NewExporter(src).ExportToFile(path, nil); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	dst := NewInMemoryCache(0)
	result, err := NewImporter(dst).ImportFromFile(path)
	if err != nil {
		t.Fatalf("ImportFromFile failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}

	want, _ := src.Entries()
	got, _ := dst.Entries()
	for i := range want {
		if got[i].Key != want[i].Key || got[i].Value != want[i].Value || got[i].Source != want[i].Source {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExporter_EmptyCache(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(NewInMemoryCache(3600)).Export(&buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"entries": []`) {
		t.Errorf("empty export should list no entries: %s", buf.String())
	}
}

type plainCache map[string]string

func (p plainCache) Get(key string) (string, bool) { v, ok := p[key]; return v, ok }
func (p plainCache) Set(key, value string) error   { p[key] = value; return nil }

func TestExporter_Unsupported(t *testing.T) {
	if err := NewExporter(plainCache{}).Export(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected an error for a store that cannot list entries")
	}
}

func TestImporter_PlainStore(t *testing.T) {
	dst := plainCache{}
	_, err := NewImporter(dst).Import(strings.NewReader(`{"version":"2.0","entries":[{"key":"k","value":"v"}]}`))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if dst["k"] != "v" {
		t.Errorf("got %v", dst)
	}
}

func TestImporter_InvalidJSON(t *testing.T) {
	if _, err := NewImporter(NewInMemoryCache(3600)).Import(strings.NewReader("invalid json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
