package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"mock", Config{Provider: ProviderMock, Timeout: time.Second}, ProviderMock, false},
		{"openai", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "k", Model: "gpt-4o"}}, ProviderOpenAI, false},
		{"openrouter", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "k", Model: "openai/gpt-4o"}}, ProviderOpenRouter, false},
		{"anthropic", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, ProviderAnthropic, false},
		{"missing key", Config{Provider: ProviderAnthropic}, "", true},
		{"unknown", Config{Provider: "carrier-pigeon"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.cfg, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, isLogging := p.(*LoggingProvider)
			assert.True(t, isLogging, "logging is the outermost layer")
			assert.Equal(t, tt.wantName, providerName(p))
		})
	}
}
