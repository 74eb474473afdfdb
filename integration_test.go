package tlunit_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZaguanLabs/tlunit"
	"github.com/ZaguanLabs/tlunit/blacklist"
	"github.com/ZaguanLabs/tlunit/cache"
	"github.com/ZaguanLabs/tlunit/processor"
	"github.com/ZaguanLabs/tlunit/provider"
)

const moduleScript = `Hooks.once("ready", () => {
  ui.notifications.info("Hello world");
  const label = game.i18n.localize("PF1.Attack");
});
`

func newLocalizer(t *testing.T, p tlunit.AIProvider, opts ...tlunit.LocalizerOption) *tlunit.Localizer {
	t.Helper()
	jsonProc, err := processor.NewDocumentProcessor(tlunit.ContentJSON, processor.WithBlacklist(blacklist.List{"img"}))
	if err != nil {
		t.Fatal(err)
	}
	yamlProc, err := processor.NewDocumentProcessor(tlunit.ContentYAML, processor.WithBilingual(processor.DefaultBilingualThreshold))
	if err != nil {
		t.Fatal(err)
	}
	base := []tlunit.LocalizerOption{
		tlunit.WithProcessor(processor.NewScriptProcessor()),
		tlunit.WithProcessor(jsonProc),
		tlunit.WithProcessor(yamlProc),
	}
	return tlunit.NewLocalizer("zh_CN", p, append(base, opts...)...)
}

func TestIntegration_Script(t *testing.T) {
	p := provider.NewMockProvider()
	l := newLocalizer(t, p, tlunit.WithCache(cache.NewInMemoryCache(3600)))

	result, err := l.Process(context.Background(), moduleScript, tlunit.ContentJavaScript)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := strings.Replace(moduleScript, `"Hello world"`, `"你好世界"`, 1)
	if result.Content != want {
		t.Errorf("got:\n%s\nwant:\n%s", result.Content, want)
	}
	if result.TotalSegments != 1 || result.TranslatedCount != 1 || result.AppliedCount != 1 {
		t.Errorf("unexpected counts %+v", result)
	}
	if req := p.LastRequest(); req == nil || req.TextContexts[0] != `ui.notifications.info("Hello world");` {
		t.Errorf("the source line should travel as context: %+v", req)
	}
}

func TestIntegration_MemoryHit(t *testing.T) {
	p := provider.NewMockProvider()
	l := newLocalizer(t, p, tlunit.WithCache(cache.NewInMemoryCache(3600)))
	ctx := context.Background()

	if _, err := l.Process(ctx, moduleScript, tlunit.ContentJavaScript); err != nil {
		t.Fatal(err)
	}
	second, err := l.Process(ctx, moduleScript, tlunit.ContentJavaScript)
	if err != nil {
		t.Fatal(err)
	}

	if second.CachedCount != 1 || second.TranslatedCount != 0 {
		t.Errorf("second pass should come from memory: %+v", second)
	}
	if p.CallCount() != 1 {
		t.Errorf("provider called %d times, want 1", p.CallCount())
	}
}

func TestIntegration_JSONDocument(t *testing.T) {
	p := provider.NewMockProvider()
	l := newLocalizer(t, p)

	src := `{"PF1": {"Attack": "Attack", "img": "icons/attack.svg", "Door": "Open the gate"}}`
	result, err := l.Process(context.Background(), src, tlunit.ContentJSON)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := `{
  "PF1": {
    "Attack": "攻击",
    "img": "icons/attack.svg",
    "Door": "[Open the gate]"
  }
}
`
	if result.Content != want {
		t.Errorf("got:\n%s\nwant:\n%s", result.Content, want)
	}
	if result.TotalSegments != 2 {
		t.Errorf("blacklisted keys must not be offered, got %d segments", result.TotalSegments)
	}
	if req := p.LastRequest(); req.TextContexts[0] != "PF1.Attack" {
		t.Errorf("document segments should carry their public key, got %q", req.TextContexts[0])
	}
}

func TestIntegration_YAMLBilingual(t *testing.T) {
	l := newLocalizer(t, provider.NewMockProvider())

	result, err := l.Process(context.Background(), "label: Attack\n", tlunit.ContentYAML)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Content != "label: 攻击 Attack\n" {
		t.Errorf("got %q", result.Content)
	}
}

func TestIntegration_MalformedDocumentUntouched(t *testing.T) {
	p := provider.NewMockProvider()
	l := newLocalizer(t, p)

	src := `{"label": "Attack",`
	result, err := l.Process(context.Background(), src, tlunit.ContentJSON)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Content != src || result.TotalSegments != 0 || p.CallCount() != 0 {
		t.Errorf("malformed document should pass through: %+v", result)
	}
}

func TestIntegration_SourceEqualsTarget(t *testing.T) {
	p := provider.NewMockProvider()
	l := tlunit.NewLocalizer("en_US", p, tlunit.WithProcessor(processor.NewScriptProcessor()))

	result, err := l.Process(context.Background(), moduleScript, tlunit.ContentJavaScript)
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != moduleScript || p.CallCount() != 0 {
		t.Error("content in the source language should pass through untouched")
	}
}

func TestIntegration_RetryableProvider(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.Err = &tlunit.ProviderError{Message: "overloaded", Retryable: true}

	p := tlunit.NewRetryableProvider(mock, tlunit.RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	})
	l := newLocalizer(t, p)

	_, err := l.Process(context.Background(), moduleScript, tlunit.ContentJavaScript)

	var perr *tlunit.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a ProviderError, got %v", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.CallCount())
	}

	mock.Reset()
	mock.Err = &tlunit.ProviderError{Message: "invalid API key"}
	if _, err := l.Process(context.Background(), moduleScript, tlunit.ContentJavaScript); err == nil {
		t.Fatal("expected an error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("final errors must not be retried, got %d attempts", mock.CallCount())
	}
}

func TestIntegration_ProcessFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"main.js":      moduleScript,
		"broken.js":    "const a = (\n",
		"lang/en.json": `{"Attack": "Attack"}`,
	}
	var paths []string
	for _, name := range []string{"main.js", "broken.js", "lang/en.json"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	l := newLocalizer(t, provider.NewMockProvider(), tlunit.WithCache(cache.NewInMemoryCache(0)))
	results := l.ProcessFiles(context.Background(), paths, 2)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("result %d is for %s, want %s", i, r.Path, paths[i])
		}
	}

	failed := tlunit.Failed(results)
	if len(failed) != 1 || failed[0].Path != paths[1] {
		t.Fatalf("expected only broken.js to fail, got %+v", failed)
	}
	var perr *tlunit.ParseError
	if !errors.As(failed[0].Err, &perr) || perr.Path != paths[1] {
		t.Errorf("failure should name the file: %v", failed[0].Err)
	}
	if results[2].Result.Content != "{\n  \"Attack\": \"攻击\"\n}\n" {
		t.Errorf("unexpected document output %q", results[2].Result.Content)
	}
}
