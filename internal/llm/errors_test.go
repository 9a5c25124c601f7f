package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("sdk error")
	tests := []struct {
		status    int
		retryable bool
		check     func(error) bool
	}{
		{http.StatusTooManyRequests, true, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{http.StatusRequestTimeout, true, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{http.StatusInternalServerError, true, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{529, true, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{0, true, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{http.StatusUnauthorized, false, func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) && e.StatusCode == 401 }},
		{http.StatusBadRequest, false, func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) }},
		{http.StatusNotFound, false, func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := classifyStatus(tt.status, 0, cause)
			assert.True(t, tt.check(err), "got %T", err)
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, tt.retryable, Retryable(err))
		})
	}
}

func TestClassifyStatus_KeepsRetryAfter(t *testing.T) {
	err := classifyStatus(http.StatusTooManyRequests, 3*time.Second, errors.New("slow down"))
	assert.Equal(t, 3*time.Second, RetryAfter(err))
	assert.Zero(t, RetryAfter(errors.New("other")))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"missing", "", 0},
		{"seconds", "12", 12 * time.Second},
		{"zero seconds", "0", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"date in the past", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			assert.Equal(t, tt.want, parseRetryAfter(h, now))
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), false},
		{"truncated", &ErrMaxTokensExceeded{}, false},
		{"rejected", &ErrRequestRejected{StatusCode: 403}, false},
		{"rate limited", &ErrRateLimit{}, true},
		{"invalid response", &ErrInvalidResponse{Err: errEmptyContent}, true},
		{"unclassified", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "LLM provider unavailable", (&ErrProviderUnavailable{}).Error())
	assert.Contains(t, (&ErrRequestRejected{StatusCode: 401, Err: errors.New("bad key")}).Error(), "HTTP 401")
	assert.Contains(t, (&ErrRateLimit{RetryAfter: time.Second, Err: errors.New("x")}).Error(), "1s")
}
