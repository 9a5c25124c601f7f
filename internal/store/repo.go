package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// QueryOpts configures record queries with filtering and pagination.
// Results are ordered newest first.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// apply adds the window and ordering to sel.
func (o QueryOpts) apply(sel *entsql.Selector) *entsql.Selector {
	var preds []*entsql.Predicate
	if o.After > 0 {
		preds = append(preds, entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		preds = append(preds, entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", o.From))
	}
	if !o.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", o.To))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if o.Limit > 0 {
		sel.Limit(o.Limit)
	}
	return sel
}

// LLMRequestEventData captures the data for a single LLM request event.
// Attempt is 0 for calls made outside the question pipeline.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	Attempt      int
	StopReason   string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMEventFilter narrows an LLM event query. Zero values match everything.
type LLMEventFilter struct {
	QueryOpts
	Purpose    string
	Provider   string
	FailedOnly bool
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, filter LLMEventFilter) ([]LLMEventRecord, error)
	// GetLLMEvent returns nil when no event has the given id.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
}

// ReportData is a finalized quiz report ready to be persisted. Report is
// marshalled to JSON as-is.
type ReportData struct {
	SessionID      string
	Subject        string
	Grade          int
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
	Report         any
}

// ReportRecord is a stored quiz report. Data holds the JSON body.
type ReportRecord struct {
	ID             int
	Sequence       int64
	Timestamp      time.Time
	SessionID      string
	Subject        string
	Grade          int
	TotalQuestions int
	TotalCorrect   int
	Accuracy       float64
	Data           json.RawMessage
}

// Decode unmarshals the stored report body into v.
func (r *ReportRecord) Decode(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode report %s: %w", r.SessionID, err)
	}
	return nil
}

// ReportRepo persists finalized quiz reports.
type ReportRepo interface {
	// SaveReport stores a report. A second report for the same session
	// fails with ErrReportExists.
	SaveReport(ctx context.Context, data ReportData) error
	ListReports(ctx context.Context, opts QueryOpts) ([]ReportRecord, error)
}

// FeedbackTag classifies a learner's complaint about a question.
type FeedbackTag string

const (
	FeedbackNoCorrectAnswer     FeedbackTag = "no_correct_answer"
	FeedbackExplanationMismatch FeedbackTag = "explanation_mismatch"
	FeedbackHintUnclear         FeedbackTag = "hint_unclear"
	FeedbackQuestionUnclear     FeedbackTag = "question_unclear"
	FeedbackMultipleCorrect     FeedbackTag = "multiple_correct"
	FeedbackOther               FeedbackTag = "other"
)

var feedbackTags = []FeedbackTag{
	FeedbackNoCorrectAnswer,
	FeedbackExplanationMismatch,
	FeedbackHintUnclear,
	FeedbackQuestionUnclear,
	FeedbackMultipleCorrect,
	FeedbackOther,
}

// FeedbackTags returns every tag in display order.
func FeedbackTags() []FeedbackTag {
	return append([]FeedbackTag(nil), feedbackTags...)
}

// FeedbackTagValues returns the tags as strings.
func FeedbackTagValues() []string {
	out := make([]string, len(feedbackTags))
	for i, t := range feedbackTags {
		out[i] = string(t)
	}
	return out
}

// ParseFeedbackTag validates s as a FeedbackTag.
func ParseFeedbackTag(s string) (FeedbackTag, error) {
	for _, t := range feedbackTags {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown feedback tag %q", s)
}

// Label is the human-readable form of the tag.
func (t FeedbackTag) Label() string {
	switch t {
	case FeedbackNoCorrectAnswer:
		return "No correct answer"
	case FeedbackExplanationMismatch:
		return "Explanation doesn't match"
	case FeedbackHintUnclear:
		return "Hint is unclear"
	case FeedbackQuestionUnclear:
		return "Question is unclear"
	case FeedbackMultipleCorrect:
		return "More than one correct answer"
	default:
		return "Something else"
	}
}

// FeedbackData is a single question feedback entry.
type FeedbackData struct {
	SessionID    string
	QuestionID   string
	QuestionText string
	Tag          FeedbackTag
	Note         string
}

// FeedbackRecord is a stored feedback entry.
type FeedbackRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	FeedbackData
}

// FeedbackRepo appends and lists question feedback.
type FeedbackRepo interface {
	AppendFeedback(ctx context.Context, data FeedbackData) error
	ListFeedback(ctx context.Context, opts QueryOpts) ([]FeedbackRecord, error)
}

var (
	_ EventRepo    = (*SQLEventRepo)(nil)
	_ ReportRepo   = (*SQLReportRepo)(nil)
	_ FeedbackRepo = (*SQLFeedbackRepo)(nil)
)
