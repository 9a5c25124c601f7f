package problemgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/quizwhiz/internal/content"
	"github.com/abhisek/quizwhiz/internal/llm"
	"github.com/abhisek/quizwhiz/internal/logger"
	"github.com/abhisek/quizwhiz/internal/qcache"
	"github.com/abhisek/quizwhiz/internal/telemetry"
)

// Purpose labels generation calls in the LLM event log.
const Purpose = "question-gen"

// Acquirer obtains one validated, unique question.
type Acquirer interface {
	Acquire(ctx context.Context, input AcquireInput) (*Question, error)
}

// Claim holds an acquired question's place in the uniqueness cache until
// the caller keeps it with Commit or gives it back with Abort.
// *qcache.Reservation satisfies it.
type Claim interface {
	Commit()
	Abort()
}

// DeferredAcquirer is an Acquirer that can leave the decision to cache a
// question to its caller. A caller that may still discard the question
// after it arrives uses AcquireDeferred and resolves the Claim once it
// knows.
type DeferredAcquirer interface {
	Acquirer
	AcquireDeferred(ctx context.Context, input AcquireInput) (*Question, Claim, error)
}

// Pipeline builds a prompt, calls the provider, and formats, deduplicates
// and validates the result, retrying up to Config.MaxAttempts times.
// Retries live here; the provider is expected not to retry on its own.
type Pipeline struct {
	provider llm.Provider
	cache    *qcache.Cache
	config   Config
	log      *logger.Logger
	tracer   trace.Tracer
	newID    func() string
}

var _ DeferredAcquirer = (*Pipeline)(nil)

// NewPipeline wires a pipeline. log may be nil.
func NewPipeline(provider llm.Provider, cache *qcache.Cache, cfg Config, log *logger.Logger) *Pipeline {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		provider: provider,
		cache:    cache,
		config:   cfg,
		log:      log,
		tracer:   telemetry.Tracer("quizwhiz/problemgen"),
		newID:    uuid.NewString,
	}
}

// Acquire returns a question for input or an error. When every attempt
// fails the error is an *ExhaustedError. When ctx ends first, ctx.Err() is
// returned and the cache is left untouched by the abandoned attempt.
func (p *Pipeline) Acquire(ctx context.Context, input AcquireInput) (*Question, error) {
	q, claim, err := p.AcquireDeferred(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		claim.Abort()
		return nil, err
	}
	claim.Commit()
	return q, nil
}

// AcquireDeferred is Acquire with the accepted question reserved rather
// than committed in the cache. The reservation blocks duplicates like an
// accepted question. The caller must Commit or Abort the returned Claim.
func (p *Pipeline) AcquireDeferred(ctx context.Context, input AcquireInput) (*Question, Claim, error) {
	if input.CacheKey == "" {
		input.CacheKey = qcache.MakeKey(input.Subject, input.Grade, input.Topic, input.Level)
	}
	log := p.log.With("cache_key", input.CacheKey)

	ctx = llm.WithPurpose(ctx, Purpose)
	ctx, span := p.tracer.Start(ctx, "problemgen.Acquire", trace.WithAttributes(
		attribute.String("quiz.cache_key", input.CacheKey),
		attribute.Int("quiz.grade", input.Grade),
		attribute.String("quiz.level", input.Level.String()),
	))
	defer span.End()

	var last error
	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "cancelled")
			return nil, nil, err
		}

		q, claim, err := p.attempt(ctx, input, attempt)
		if err == nil {
			span.SetAttributes(attribute.Int("quiz.attempts", attempt))
			log.Debug("question accepted", "attempt", attempt, "question_id", q.ID)
			return q, claim, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.SetStatus(codes.Error, "cancelled")
			return nil, nil, ctxErr
		}

		last = err
		log.Warn("question attempt rejected", "attempt", attempt, "reason", describe(err), "error", err)

		// A rejected request (bad key, unknown model) fails identically on
		// every attempt.
		var rejected *llm.ErrRequestRejected
		if errors.As(err, &rejected) {
			return nil, nil, p.exhausted(span, log, attempt, err)
		}
		if d := llm.RetryAfter(err); d > 0 && attempt < p.config.MaxAttempts {
			if werr := wait(ctx, d); werr != nil {
				return nil, nil, werr
			}
		}
	}

	return nil, nil, p.exhausted(span, log, p.config.MaxAttempts, last)
}

func (p *Pipeline) exhausted(span trace.Span, log *logger.Logger, attempts int, last error) error {
	err := &ExhaustedError{Attempts: attempts, Last: last}
	span.RecordError(err)
	span.SetStatus(codes.Error, "exhausted")
	log.Error("question generation exhausted", "attempts", attempts, "error", last)
	return err
}

func (p *Pipeline) attempt(ctx context.Context, input AcquireInput, n int) (*Question, Claim, error) {
	ctx = llm.WithAttempt(ctx, n)
	ctx, span := p.tracer.Start(ctx, "problemgen.attempt", trace.WithAttributes(attribute.Int("quiz.attempt", n)))
	defer span.End()

	q, claim, err := p.generateOnce(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, describe(err))
	}
	return q, claim, err
}

func (p *Pipeline) generateOnce(ctx context.Context, input AcquireInput) (*Question, Claim, error) {
	prior := p.cache.Recent(input.CacheKey, p.config.MaxPriorQuestions)

	resp, err := p.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, prior, p.config)},
		},
		Schema:           QuestionSchema,
		MaxTokens:        p.config.MaxTokens,
		Temperature:      p.config.Temperature,
		PresencePenalty:  p.config.PresencePenalty,
		FrequencyPenalty: p.config.FrequencyPenalty,
	})
	if err != nil {
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) {
			return nil, nil, &MalformedOutputError{Content: string(inv.Content), Err: err}
		}
		var truncated *llm.ErrMaxTokensExceeded
		if errors.As(err, &truncated) {
			return nil, nil, &MalformedOutputError{Content: string(truncated.Content), Err: err}
		}
		return nil, nil, fmt.Errorf("generation call failed: %w", err)
	}

	c, err := parseCandidate(resp.Content)
	if err != nil {
		return nil, nil, err
	}
	formatCandidate(c)

	tx := p.cache.Begin(input.CacheKey)
	defer tx.Close()

	if tx.IsDuplicate(str(c.QuestionText), c.Options) {
		return nil, nil, ErrDuplicate
	}

	q, err := Validate(c, input)
	if err != nil {
		return nil, nil, err
	}
	if verr := runValidators(p.config.Validators, q); verr != nil {
		return nil, nil, verr
	}

	// A superseded or expired request must not leave a trace in the cache.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	q.ID = p.newID()
	return q, tx.Reserve(q.Text, q.Options, p.cache.Now()), nil
}

func parseCandidate(raw json.RawMessage) (*Candidate, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &MalformedOutputError{}
	}
	var c Candidate
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, &MalformedOutputError{Content: string(raw), Err: err}
	}
	return &c, nil
}

// formatCandidate applies display formatting to every text field.
func formatCandidate(c *Candidate) {
	for _, f := range []*string{c.QuestionText, c.CorrectAnswer, c.Hint, c.Explanation} {
		if f != nil {
			*f = content.FormatForDisplay(*f)
		}
	}
	if c.Options != nil {
		c.Options = content.FormatAll(c.Options)
	}
}

// describe maps an attempt failure to a short log reason.
func describe(err error) string {
	var verr *ValidationError
	var malformed *MalformedOutputError
	var rl *llm.ErrRateLimit
	var rejected *llm.ErrRequestRejected
	switch {
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.As(err, &verr):
		return string(verr.Reason)
	case errors.As(err, &malformed):
		return "malformed_output"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &rejected):
		return "request_rejected"
	default:
		return "provider_error"
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
