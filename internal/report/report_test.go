package report

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newAcc() *Accumulator {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return NewAccumulator(Meta{SessionID: "s-1", Subject: "mathematics", Grade: 3}, fixedClock(start))
}

func TestRecordOutcome_FractionsScenario(t *testing.T) {
	acc := newAcc()
	correct := []bool{true, false, true}
	times := []int{10, 20, 15}
	hints := []bool{false, true, false}
	attempts := []int{1, 2, 1}

	streak := 0
	for i := range correct {
		if correct[i] {
			streak++
		} else {
			streak = 0
		}
		require.NoError(t, acc.RecordOutcome(Outcome{
			QuestionID:     "q",
			Topic:          "fractions",
			Level:          curriculum.Medium,
			Correct:        correct[i],
			AttemptsNeeded: attempts[i],
			TimeSpent:      times[i],
			HintUsed:       hints[i],
			StreakAfter:    streak,
		}))
	}

	r := acc.Snapshot()
	assert.Equal(t, TopicStats{Total: 3, Correct: 2, TotalAttempts: 4, TotalTime: 45, HintsUsed: 1}, r.TopicStats["fractions"])
	assert.Equal(t, 3, r.TotalQuestions)
	assert.Equal(t, 2, r.CorrectAnswers)
	assert.Equal(t, 1, r.HintsUsed)
	assert.Equal(t, 4, r.TotalAttempts)
	assert.Equal(t, 45, r.TimeTaken)
	assert.InDelta(t, 15.0, r.AverageTimePerQuestion, 1e-9)
	assert.Equal(t, 1, r.BestStreak)
	require.Len(t, r.QuestionsData, 3)
	assert.Equal(t, QuestionRecord{QuestionID: "q", Topic: "fractions", AttemptsNeeded: 2, HintUsed: true, TimeTaken: 20, Correct: false, Difficulty: curriculum.Medium}, r.QuestionsData[1])
}

func TestRecordOutcome_BestStreakIsMax(t *testing.T) {
	acc := newAcc()
	for _, s := range []int{1, 2, 3, 0, 1} {
		require.NoError(t, acc.RecordOutcome(Outcome{Topic: "addition", StreakAfter: s, Correct: s > 0}))
	}
	assert.Equal(t, 3, acc.Snapshot().BestStreak)
}

func TestFinalize_Idempotent(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start
	acc := NewAccumulator(Meta{SessionID: "s-1"}, func() time.Time { return now })
	require.NoError(t, acc.RecordOutcome(Outcome{Topic: "addition", Correct: true, AttemptsNeeded: 1, TimeSpent: 5}))

	now = start.Add(15 * time.Minute)
	first := acc.Finalize()
	assert.True(t, first.Finalized)
	assert.Equal(t, now, first.FinishedAt)
	assert.Equal(t, 1.0, first.Accuracy)

	now = start.Add(time.Hour)
	second := acc.Finalize()
	assert.Equal(t, first, second)
	assert.True(t, acc.Finalized())

	assert.ErrorIs(t, acc.RecordOutcome(Outcome{Topic: "addition"}), ErrFinalized)
	assert.ErrorIs(t, acc.MarkTopicCompleted("addition"), ErrFinalized)
	assert.Equal(t, 1, acc.Snapshot().TotalQuestions)
}

func TestFinalize_RevisionNeeded(t *testing.T) {
	acc := newAcc()
	record := func(topic string, results ...bool) {
		for _, c := range results {
			require.NoError(t, acc.RecordOutcome(Outcome{Topic: topic, Correct: c}))
		}
	}
	record("fractions", true, false, false)             // 33%, 3 answers
	record("division", false, false)                    // too few answers
	record("multiplication", true, true, false)         // 67%
	record("geometry", true, false, true, false, false) // 40%

	r := acc.Finalize()
	assert.Equal(t, []string{"fractions", "geometry"}, r.RevisionNeeded)
	assert.InDelta(t, 5.0/13.0, r.Accuracy, 1e-9)
}

func TestMarkTopicCompleted_Dedupes(t *testing.T) {
	acc := newAcc()
	require.NoError(t, acc.MarkTopicCompleted("multiplication"))
	require.NoError(t, acc.MarkTopicCompleted("multiplication"))
	require.NoError(t, acc.MarkTopicCompleted("division"))
	assert.Equal(t, []string{"multiplication", "division"}, acc.Snapshot().TopicsCompleted)
}

func TestSnapshot_IsACopy(t *testing.T) {
	acc := newAcc()
	require.NoError(t, acc.RecordOutcome(Outcome{Topic: "addition", Correct: true}))

	snap := acc.Snapshot()
	snap.TopicStats["addition"] = TopicStats{Total: 99}
	snap.QuestionsData[0].Correct = false

	again := acc.Snapshot()
	assert.Equal(t, 1, again.TopicStats["addition"].Total)
	assert.True(t, again.QuestionsData[0].Correct)
}

func TestEmptyReport(t *testing.T) {
	r := newAcc().Finalize()
	assert.Zero(t, r.Accuracy)
	assert.Zero(t, r.AverageTimePerQuestion)

	raw, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"questionsData":[]`)
	assert.Contains(t, string(raw), `"revisionNeeded":[]`)
}

func TestJSONUsesLevelNames(t *testing.T) {
	acc := newAcc()
	require.NoError(t, acc.RecordOutcome(Outcome{Topic: "addition", Level: curriculum.Challenging}))
	raw, err := json.Marshal(acc.Snapshot())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"difficulty":"challenging"`)
}

func TestRecordOutcome_Concurrent(t *testing.T) {
	acc := newAcc()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = acc.RecordOutcome(Outcome{Topic: "addition", Correct: true, TimeSpent: 2})
		}()
	}
	wg.Wait()
	r := acc.Snapshot()
	assert.Equal(t, 50, r.TotalQuestions)
	assert.Equal(t, 100, r.TimeTaken)
}
