// Package provider contains the AI backends that translate batches of unit
// values for the Localizer.
package provider

import "github.com/ZaguanLabs/tlunit"

// AIProvider is an alias of tlunit.AIProvider.
type AIProvider = tlunit.AIProvider

// TranslateRequest is an alias of tlunit.TranslateRequest.
type TranslateRequest = tlunit.TranslateRequest

// Known OpenAI-compatible endpoints.
const (
	NameOpenAI   = "openai"
	NameDeepSeek = "deepseek"

	DeepSeekBaseURL = "https://api.deepseek.com/v1"
)

// BaseURLFor returns the endpoint for a named backend, or "" for the
// client library default.
func BaseURLFor(name string) string {
	if name == NameDeepSeek {
		return DeepSeekBaseURL
	}
	return ""
}
