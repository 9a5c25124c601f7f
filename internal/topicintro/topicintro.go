// Package topicintro generates the short introduction shown when a learner
// meets a topic for the first time.
package topicintro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/quizwhiz/internal/content"
	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/llm"
)

// Purpose labels introduction calls in the LLM event log.
const Purpose = "topic-intro"

// Detail is a generated topic introduction.
type Detail struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	KeyPoints   []string `json:"keyPoints"`
	Examples    []string `json:"examples"`
}

// Input selects the topic to introduce.
type Input struct {
	Subject curriculum.Subject
	Grade   int
	Topic   string
}

// Config holds introduction generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	Retry       llm.RetryConfig
}

// DefaultConfig returns the settings used for introductions.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.7,
		Retry:       llm.DefaultConfig().Retry,
	}
}

// ErrIncomplete is returned when the model omits required content.
var ErrIncomplete = errors.New("topic introduction is incomplete")

// Service generates topic introductions.
type Service struct {
	provider llm.Provider
	catalog  *curriculum.Catalog
	cfg      Config
}

// NewService wraps provider with retries per cfg.Retry. A nil catalog uses
// curriculum.Default.
func NewService(provider llm.Provider, catalog *curriculum.Catalog, cfg Config) *Service {
	if catalog == nil {
		catalog = curriculum.Default()
	}
	if cfg.Retry.MaxAttempts > 1 {
		provider = llm.WithRetry(provider, cfg.Retry)
	}
	return &Service{provider: provider, catalog: catalog, cfg: cfg}
}

// Generate produces an introduction for input.Topic.
func (s *Service) Generate(ctx context.Context, input Input) (*Detail, error) {
	if err := s.catalog.Validate(input.Subject, input.Grade, input.Topic); err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: s.buildUserMessage(input)},
		},
		Schema:      DetailSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("topic introduction: %w", err)
	}

	var d Detail
	if err := json.Unmarshal(resp.Content, &d); err != nil {
		return nil, fmt.Errorf("parse topic introduction: %w", err)
	}

	d.Title = content.FormatForDisplay(d.Title)
	d.Description = content.FormatForDisplay(d.Description)
	d.KeyPoints = nonEmpty(content.FormatAll(d.KeyPoints))
	d.Examples = nonEmpty(content.FormatAll(d.Examples))

	if d.Title == "" || d.Description == "" || len(d.KeyPoints) == 0 {
		return nil, ErrIncomplete
	}
	return &d, nil
}

const systemPrompt = `You are an experienced educator who excels at introducing new topics to students in a clear, engaging way. Return valid JSON with clean formatting.`

func (s *Service) buildUserMessage(input Input) string {
	var b strings.Builder

	name := s.catalog.DisplayName(input.Grade, input.Subject, input.Topic)
	fmt.Fprintf(&b, "Generate a comprehensive introduction for the topic %q in %s for grade %d students.\n", name, input.Subject, input.Grade)

	if subs, err := s.catalog.Subtopics(input.Subject, input.Topic); err == nil && len(subs) > 0 {
		fmt.Fprintf(&b, "The topic covers: %s.\n", strings.Join(subs, ", "))
	}

	b.WriteString(`Include:
1. A clear, age-appropriate description
2. 3-5 key learning points
3. 2-3 simple examples

Do not use LaTeX. Write multiplication as ×.`)

	return b.String()
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
