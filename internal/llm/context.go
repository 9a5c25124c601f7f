package llm

import "context"

type ctxKey int

const (
	purposeKey ctxKey = iota
	attemptKey
)

// WithPurpose labels the calls made under ctx, e.g. "question-gen". The
// label ends up in the stored request event.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// WithAttempt records which attempt of a caller-owned retry loop a call
// belongs to. Attempts count from 1.
func WithAttempt(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, attemptKey, n)
}

// AttemptFrom returns the attempt set by WithAttempt, or 0 when the caller
// does not track attempts.
func AttemptFrom(ctx context.Context) int {
	n, _ := ctx.Value(attemptKey).(int)
	return n
}
