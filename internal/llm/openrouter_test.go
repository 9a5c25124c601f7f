package llm

import (
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "openai/gpt-4o"})
	assert.Error(t, err, "API key is required")

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", p.ModelID(), "vendor ids are not remapped")
	assert.Equal(t, ProviderOpenRouter, p.Name())
	assert.Equal(t, ProviderOpenRouter, providerName(p))
}

func TestOpenRouterProvider_Generate(t *testing.T) {
	paths := make(chan string, 1)
	headers := make(chan http.Header, 1)
	base := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		headers <- r.Header.Clone()
		openAICompletion(validOptionSet, openai.FinishReasonStop)(w, r)
	})

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "openai/gpt-4o", BaseURL: base})
	require.NoError(t, err)

	resp, err := generateQuestion(t, p, optionSchema())
	require.NoError(t, err)
	assert.JSONEq(t, validOptionSet, string(resp.Content))
	assert.Equal(t, "/v1/chat/completions", <-paths)

	h := <-headers
	assert.Equal(t, openRouterTitle, h.Get("X-Title"))
	assert.Equal(t, openRouterReferer, h.Get("HTTP-Referer"))
	assert.Equal(t, "Bearer sk-or-test", h.Get("Authorization"))
}
