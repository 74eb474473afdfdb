package provider

import (
	"context"
	"sync"
)

// MockProvider answers from a fixed table and records what it was asked.
// Unknown values come back wrapped in brackets.
type MockProvider struct {
	Translations map[string]string
	Err          error

	mu       sync.Mutex
	requests []TranslateRequest
}

// NewMockProvider creates a mock with a few Simplified Chinese translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello world":     "你好世界",
			"Attack":          "攻击",
			"Open the door":   "打开门",
			"Roll initiative": "投掷先攻",
		},
	}
}

// Translate returns the table translations, or Err if set.
func (m *MockProvider) Translate(_ context.Context, req TranslateRequest) ([]string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = "[" + text + "]"
		}
	}
	return results, nil
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

// Reset forgets recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	m.requests = nil
	m.mu.Unlock()
}

var _ AIProvider = (*MockProvider)(nil)
