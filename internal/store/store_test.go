package store

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"entgo.io/ent"
	entschema "github.com/abhisek/quizwhiz/ent/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quizwhiz.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Driver() == nil {
		t.Fatal("expected non-nil driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	// Pin one connection beyond the idle one so the check also covers a
	// freshly dialled connection.
	busy, err := db.Conn(context.Background())
	require.NoError(t, err)
	defer busy.Close()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"llm_request_events", "quiz_reports", "question_feedbacks", "sequences"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizwhiz.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "question-gen", Success: true}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	events, err := s.EventRepo().QueryLLMEvents(ctx, LLMEventFilter{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSequence_Next(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.seq.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Named sequences are independent.
	other := &sequence{drv: s.drv, name: "other"}
	got, err := other.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestSequence_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizwhiz.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.seq.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestLLMEvents_AppendQueryGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, purpose := range []string{"question-gen", "topic-intro", "question-gen"} {
		errMsg := ""
		if i == 1 {
			errMsg = "rate limited"
		}
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "openai",
			Model:        "gpt-4o",
			Purpose:      purpose,
			Attempt:      i,
			StopReason:   "end",
			InputTokens:  100 + i,
			OutputTokens: 50,
			LatencyMs:    int64(200 * (i + 1)),
			Success:      i != 1,
			ErrorMessage: errMsg,
			RequestBody:  "[user]\nquestion",
			ResponseBody: `{"questionText":"q"}`,
		})
		require.NoError(t, err)
	}

	events, err := repo.QueryLLMEvents(ctx, LLMEventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, 102, events[0].InputTokens, "newest first")
	assert.Greater(t, events[0].Sequence, events[1].Sequence)
	assert.False(t, events[1].Success)
	assert.Equal(t, "rate limited", events[1].ErrorMessage)
	assert.WithinDuration(t, time.Now(), events[0].Timestamp, time.Minute)

	limited, err := repo.QueryLLMEvents(ctx, LLMEventFilter{QueryOpts: QueryOpts{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	after, err := repo.QueryLLMEvents(ctx, LLMEventFilter{QueryOpts: QueryOpts{After: events[1].Sequence}})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, events[0].ID, after[0].ID)

	got, err := repo.GetLLMEvent(ctx, events[2].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "question-gen", got.Purpose)
	assert.Equal(t, `{"questionText":"q"}`, got.ResponseBody)
	assert.Equal(t, 0, got.Attempt)
	assert.Equal(t, "end", got.StopReason)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLLMEvents_Filter(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	seed := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o", Purpose: "question-gen", Success: true},
		{Provider: "openai", Model: "gpt-4o", Purpose: "question-gen", Success: false, ErrorMessage: "bad json"},
		{Provider: "anthropic", Model: "claude", Purpose: "topic-intro", Success: false, ErrorMessage: "down"},
		{Provider: "anthropic", Model: "claude", Purpose: "question-gen", Success: true},
	}
	for _, d := range seed {
		require.NoError(t, repo.AppendLLMRequest(ctx, d))
	}

	tests := []struct {
		name   string
		filter LLMEventFilter
		want   []string // error messages, newest first
	}{
		{"all", LLMEventFilter{}, []string{"", "down", "bad json", ""}},
		{"failed only", LLMEventFilter{FailedOnly: true}, []string{"down", "bad json"}},
		{"purpose", LLMEventFilter{Purpose: "topic-intro"}, []string{"down"}},
		{"provider and failed", LLMEventFilter{Provider: "openai", FailedOnly: true}, []string{"bad json"}},
		{"limit after filter", LLMEventFilter{Purpose: "question-gen", QueryOpts: QueryOpts{Limit: 2}}, []string{"", "bad json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := repo.QueryLLMEvents(ctx, tt.filter)
			require.NoError(t, err)
			var got []string
			for _, e := range events {
				got = append(got, e.ErrorMessage)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

type storedReport struct {
	Accuracy       float64  `json:"accuracy"`
	RevisionNeeded []string `json:"revisionNeeded"`
}

func TestReports_SaveListDecode(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReportRepo()
	ctx := context.Background()

	err := repo.SaveReport(ctx, ReportData{
		SessionID:      "s-1",
		Subject:        "mathematics",
		Grade:          3,
		TotalQuestions: 4,
		TotalCorrect:   3,
		Accuracy:       75,
		Report:         storedReport{Accuracy: 75, RevisionNeeded: []string{"fractions"}},
	})
	require.NoError(t, err)

	err = repo.SaveReport(ctx, ReportData{SessionID: "s-1", Subject: "mathematics", Grade: 3})
	assert.True(t, errors.Is(err, ErrReportExists), "got %v", err)

	assert.Error(t, repo.SaveReport(ctx, ReportData{}))

	reports, err := repo.ListReports(ctx, QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "s-1", reports[0].SessionID)
	assert.Equal(t, 3, reports[0].Grade)
	assert.InDelta(t, 75.0, reports[0].Accuracy, 0.001)

	var body storedReport
	require.NoError(t, reports[0].Decode(&body))
	assert.Equal(t, []string{"fractions"}, body.RevisionNeeded)
}

func TestFeedback_AppendList(t *testing.T) {
	s := openTestStore(t)
	repo := s.FeedbackRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendFeedback(ctx, FeedbackData{
		SessionID:    "s-1",
		QuestionID:   "q-1",
		QuestionText: "What is 2 + 2?",
		Tag:          FeedbackMultipleCorrect,
		Note:         "4 appears twice",
	}))

	err := repo.AppendFeedback(ctx, FeedbackData{QuestionID: "q-1", Tag: "rude"})
	assert.Error(t, err)

	err = repo.AppendFeedback(ctx, FeedbackData{Tag: FeedbackOther})
	assert.Error(t, err)

	items, err := repo.ListFeedback(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, FeedbackMultipleCorrect, items[0].Tag)
	assert.Equal(t, "4 appears twice", items[0].Note)
}

func TestParseFeedbackTag(t *testing.T) {
	for _, tag := range FeedbackTags() {
		got, err := ParseFeedbackTag(string(tag))
		require.NoError(t, err)
		assert.Equal(t, tag, got)
		assert.NotEmpty(t, tag.Label())
	}
	_, err := ParseFeedbackTag("nope")
	assert.Error(t, err)
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "question-gen"}))
	require.NoError(t, s.FeedbackRepo().AppendFeedback(ctx, FeedbackData{QuestionID: "q", Tag: FeedbackOther}))
	require.NoError(t, s.ReportRepo().SaveReport(ctx, ReportData{SessionID: "s", Report: map[string]any{}}))

	events, _ := s.EventRepo().QueryLLMEvents(ctx, LLMEventFilter{})
	feedback, _ := s.FeedbackRepo().ListFeedback(ctx, QueryOpts{})
	reports, _ := s.ReportRepo().ListReports(ctx, QueryOpts{})

	assert.Equal(t, int64(1), events[0].Sequence)
	assert.Equal(t, int64(2), feedback[0].Sequence)
	assert.Equal(t, int64(3), reports[0].Sequence)
}

// schemaFields lists the field names an ent schema declares, mixins included.
func schemaFields(fields []ent.Field, mixins []ent.Mixin) []string {
	var names []string
	for _, m := range mixins {
		for _, f := range m.Fields() {
			names = append(names, f.Descriptor().Name)
		}
	}
	for _, f := range fields {
		names = append(names, f.Descriptor().Name)
	}
	sort.Strings(names)
	return names
}

func tableColumns(cols []string) []string {
	// Every table has an implicit "id" primary key in ent.
	var names []string
	for _, c := range cols {
		if c != "id" {
			names = append(names, c)
		}
	}
	sort.Strings(names)
	return names
}

func TestTablesMatchEntSchema(t *testing.T) {
	tests := []struct {
		name    string
		fields  []ent.Field
		mixins  []ent.Mixin
		columns []string
	}{
		{"llm_request_events", entschema.LLMRequestEvent{}.Fields(), entschema.LLMRequestEvent{}.Mixin(), llmEventColumns},
		{"quiz_reports", entschema.QuizReport{}.Fields(), entschema.QuizReport{}.Mixin(), reportColumns},
		{"question_feedbacks", entschema.QuestionFeedback{}.Fields(), entschema.QuestionFeedback{}.Mixin(), feedbackColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, schemaFields(tt.fields, tt.mixins), tableColumns(tt.columns))
		})
	}

	var declared []string
	for _, tbl := range Tables {
		declared = append(declared, tbl.Name)
	}
	assert.ElementsMatch(t, []string{"llm_request_events", "quiz_reports", "question_feedbacks"}, declared)
}
