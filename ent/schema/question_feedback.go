package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuestionFeedback records a learner's report of a problem with a question.
type QuestionFeedback struct {
	ent.Schema
}

func (QuestionFeedback) Mixin() []ent.Mixin {
	return []ent.Mixin{RecordMixin{}}
}

func (QuestionFeedback) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id"),
		field.String("question_id"),
		field.Text("question_text").
			Default(""),
		field.Enum("tag").
			Values("no_correct_answer", "explanation_mismatch", "hint_unclear",
				"question_unclear", "multiple_correct", "other"),
		field.Text("note").
			Default(""),
	}
}

func (QuestionFeedback) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("question_id"),
		index.Fields("tag"),
	}
}
