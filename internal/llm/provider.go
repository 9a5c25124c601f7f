// Package llm is the model-provider layer: one Provider interface, one
// implementation per vendor SDK, and decorators for timeouts, retries and
// call recording. Question and topic generation only ever see Provider.
package llm

import (
	"context"
	"encoding/json"
)

// Provider turns one prompt into one document. Implementations make a
// single attempt per call.
type Provider interface {
	// Generate returns the model output. With req.Schema set, the output
	// is requested in the vendor's structured mode and validated locally
	// before it is returned.
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Named reports the backend a Provider talks to ("openai", "gemini", ...).
// Decorators forward it from the provider they wrap.
type Named interface {
	Name() string
}

func providerName(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	return p.ModelID()
}

// resolveModel maps a friendly name to the vendor's model ID. Anything
// not in models is taken to already be an ID.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

type Request struct {
	System   string
	Messages []Message

	// Schema, when set, constrains the output to a JSON document. Without
	// it Response.Content carries plain text.
	Schema *Schema

	MaxTokens int

	// Zero values leave the vendor defaults. Vendors lacking a knob
	// ignore it.
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema is a named JSON Schema. Name keys the compiled-schema cache, so
// two schemas must not share a name.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a successful generation. Content has surrounding whitespace
// and any markdown fence removed and, when a Schema was given, has passed
// validation.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string // model that served the call, which may be a dated variant
	StopReason string // StopEnd or StopMaxTokens
}

const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
