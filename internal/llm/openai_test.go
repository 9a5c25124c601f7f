package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openAIServer serves handler under /v1 and returns its base URL.
func openAIServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: openAIServer(t, handler)})
	require.NoError(t, err)
	return p
}

func openAICompletion(content string, finish openai.FinishReason) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini-2024-07-18",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}
}

func openAIError(status int, code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "error", "message": "nope", "code": code},
		})
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies <- body
		openAICompletion(validOptionSet, openai.FinishReasonStop)(w, r)
	})

	resp, err := p.Generate(t.Context(), Request{
		System:          "You write grade 3 maths questions.",
		Messages:        []Message{{Role: RoleUser, Content: "Generate a question."}},
		Schema:          optionSchema(),
		MaxTokens:       256,
		PresencePenalty: 0.5,
	})
	require.NoError(t, err)
	assert.JSONEq(t, validOptionSet, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}, resp.Usage)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)

	sent := <-bodies
	assert.Equal(t, "gpt-4o-mini", sent["model"])
	assert.InDelta(t, 0.5, sent["presence_penalty"], 1e-6)
	messages, _ := sent["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].(map[string]any)["role"])
	format, _ := sent["response_format"].(map[string]any)
	require.NotNil(t, format)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "test-option-set", format["json_schema"].(map[string]any)["name"])
}

func TestOpenAIProvider_OutputProblems(t *testing.T) {
	t.Run("no choices", func(t *testing.T) {
		p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"x","object":"chat.completion","model":"gpt-4o-mini","choices":[]}`))
		})
		_, err := generateQuestion(t, p, optionSchema())
		assert.ErrorIs(t, err, errEmptyContent)
	})
	t.Run("fenced", func(t *testing.T) {
		p := newTestOpenAIProvider(t, openAICompletion("```json\n"+validOptionSet+"\n```", openai.FinishReasonStop))
		resp, err := generateQuestion(t, p, optionSchema())
		require.NoError(t, err)
		assert.JSONEq(t, validOptionSet, string(resp.Content))
	})
	t.Run("truncated", func(t *testing.T) {
		p := newTestOpenAIProvider(t, openAICompletion(`{"stem":"What`, openai.FinishReasonLength))
		_, err := generateQuestion(t, p, optionSchema())
		var maxTok *ErrMaxTokensExceeded
		assert.True(t, errors.As(err, &maxTok), "got %T", err)
	})
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		retryable bool
		check     func(error) bool
	}{
		{
			name:      "rate limit",
			handler:   openAIError(http.StatusTooManyRequests, "rate_limit_exceeded"),
			retryable: true,
			check:     func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) },
		},
		{
			name:      "server error",
			handler:   openAIError(http.StatusInternalServerError, "server_error"),
			retryable: true,
			check:     func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) },
		},
		{
			name:      "unknown model",
			handler:   openAIError(http.StatusNotFound, "model_not_found"),
			retryable: false,
			check:     func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) && e.StatusCode == 404 },
		},
		{
			name: "non-json gateway error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("<html>bad gateway</html>"))
			},
			retryable: true,
			check:     func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := generateQuestion(t, newTestOpenAIProvider(t, tt.handler), nil)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %T (%v)", err, err)
			assert.Equal(t, tt.retryable, Retryable(err))
		})
	}
}

func TestOpenAIProvider_Identity(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
	assert.Equal(t, ProviderOpenAI, p.Name())

	_, err = NewOpenAIProvider(OpenAIConfig{})
	assert.Error(t, err)
}
