package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuizReport stores a finalized session report. The report body is kept
// as JSON so new report fields need no migration.
type QuizReport struct {
	ent.Schema
}

func (QuizReport) Mixin() []ent.Mixin {
	return []ent.Mixin{RecordMixin{}}
}

func (QuizReport) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			Unique().
			Immutable(),
		field.String("subject"),
		field.Int("grade"),
		field.Int("total_questions").
			Default(0),
		field.Int("total_correct").
			Default(0),
		field.Float("accuracy").
			Default(0),
		field.JSON("data", map[string]any{}).
			Comment("Full SessionReport"),
	}
}

func (QuizReport) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("subject", "grade"),
	}
}
