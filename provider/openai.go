package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ZaguanLabs/tlunit"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when OpenAIConfig.Model is empty.
const DefaultModel = "gpt-4o-mini"

// OpenAIProvider implements AIProvider against any OpenAI-compatible chat
// completion endpoint.
type OpenAIProvider struct {
	client       *openai.Client
	model        string
	temperature  float32
	systemPrompt string
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string
	Model       string  // default DefaultModel
	Temperature float32 // default 0.3
	BaseURL     string  // e.g. DeepSeekBaseURL
	// SystemPrompt replaces the generated role and style sections. Glossary,
	// exclusions and the output format are still appended.
	SystemPrompt string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(config),
		model:        model,
		temperature:  temperature,
		systemPrompt: cfg.SystemPrompt,
	}
}

// Model returns the model name requests are sent to.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Translate translates a batch of unit values. The reply must hold exactly
// one translation per input, in order.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &tlunit.ProviderError{
			Message:   "chat completion failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &tlunit.ProviderError{
			Message:   "empty completion",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	targetName := tlunit.GetLanguageName(req.TargetLang)

	var b strings.Builder
	if p.systemPrompt != "" {
		b.WriteString(p.systemPrompt)
	} else {
		sourceLang := req.SourceLang
		if sourceLang == "" {
			sourceLang = "en"
		}

		contextText := "The strings come from a Foundry VTT module: user interface labels, notifications, chat messages and rules text."
		if req.Context != "" {
			contextText = fmt.Sprintf("The strings come from: %s.", req.Context)
		}

		fmt.Fprintf(&b, `# Role
You are a professional translator of tabletop RPG software. You translate %s strings into %s.

# Context
%s

# Register
%s

# Rules
- **Terminology**: Use the established %s names for game terms, conditions, abilities and statistics.
- **Code Safety**: Never translate variable names, function names, HTML tags, Handlebars syntax ({{...}}), format placeholders ({name}, %%s, $1) or escape sequences.
- **Keys and Paths**: If a string looks like a system key (e.g. "ui.notifications") or a file path, return it unchanged.
- **Whitespace**: Preserve leading and trailing spaces and newlines.`,
			tlunit.GetLanguageName(sourceLang), targetName, contextText,
			tlunit.GetStyleDescription(req.Style), targetName)

		if tlunit.GetDirection(req.TargetLang) == "rtl" {
			fmt.Fprintf(&b, "\n- **Direction**: %s is written right to left. Keep placeholders, HTML tags and untranslated Latin-script terms intact and do not add bidirectional control characters.", targetName)
		}
	}

	if len(req.Glossary) > 0 {
		terms := make([]string, 0, len(req.Glossary))
		for term := range req.Glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		b.WriteString("\n\n# Glossary\nTranslate these terms exactly as given:")
		for _, term := range terms {
			fmt.Fprintf(&b, "\n- %q → %q", term, req.Glossary[term])
		}
	}

	if len(req.ExcludedTerms) > 0 {
		b.WriteString("\n\n# Exclusions\nKeep these terms exactly as they appear:\n- ")
		b.WriteString(strings.Join(req.ExcludedTerms, "\n- "))
	}

	b.WriteString(`

# Format
Return a JSON object with a single key "translations" holding an array of strings in the same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
Do NOT wrap the object in Markdown code blocks.`)

	return b.String()
}

func (p *OpenAIProvider) buildUserMessage(req TranslateRequest) string {
	hasContexts := false
	for _, c := range req.TextContexts {
		if c != "" {
			hasContexts = true
			break
		}
	}

	if !hasContexts {
		data, _ := json.Marshal(req.Texts)
		return string(data)
	}

	// Each value is sent with the source line or key it came from.
	type item struct {
		Text    string `json:"text"`
		Context string `json:"context,omitempty"`
	}

	items := make([]item, len(req.Texts))
	for i, text := range req.Texts {
		items[i].Text = text
		if i < len(req.TextContexts) {
			items[i].Context = req.TextContexts[i]
		}
	}

	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

// parseResponse accepts {"translations": [...]}, any object with a single
// array value, or a bare array. Markdown fences are tolerated.
func parseResponse(content string, expectedCount int) ([]string, error) {
	content = stripFence(content)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if arr, ok := obj["translations"].([]interface{}); ok {
			return toStringSlice(arr, expectedCount)
		}

		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, ok := obj[k].([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arr []interface{}
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return toStringSlice(arr, expectedCount)
	}

	return nil, &tlunit.ProviderError{
		Message:   "unrecognized completion format",
		Retryable: true,
	}
}

func stripFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(content), "```"))
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	if len(arr) != expectedCount {
		return nil, &tlunit.CountMismatchError{
			Expected: expectedCount,
			Got:      len(arr),
		}
	}

	result := make([]string, len(arr))
	for i, v := range arr {
		switch t := v.(type) {
		case string:
			result[i] = t
		case nil:
			result[i] = ""
		default:
			result[i] = fmt.Sprint(t)
		}
	}
	return result, nil
}

func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "connection reset", "temporary"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

var _ AIProvider = (*OpenAIProvider)(nil)
