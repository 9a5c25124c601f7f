package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions mirror the declarations in ent/schema and are applied by
// the ent migrator on Open.

var (
	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "attempt", Type: field.TypeInt, Default: 0},
		{Name: "stop_reason", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_sequence", Columns: []*schema.Column{LLMRequestEventsColumns[1]}},
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[2]}},
			{Name: "llmrequestevent_provider", Columns: []*schema.Column{LLMRequestEventsColumns[3]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{LLMRequestEventsColumns[11]}},
		},
	}

	// QuizReportsColumns holds the columns for the "quiz_reports" table.
	QuizReportsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString, Unique: true},
		{Name: "subject", Type: field.TypeString},
		{Name: "grade", Type: field.TypeInt},
		{Name: "total_questions", Type: field.TypeInt, Default: 0},
		{Name: "total_correct", Type: field.TypeInt, Default: 0},
		{Name: "accuracy", Type: field.TypeFloat64, Default: 0},
		{Name: "data", Type: field.TypeJSON},
	}
	// QuizReportsTable holds the schema information for the "quiz_reports" table.
	QuizReportsTable = &schema.Table{
		Name:       "quiz_reports",
		Columns:    QuizReportsColumns,
		PrimaryKey: []*schema.Column{QuizReportsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizreport_sequence", Columns: []*schema.Column{QuizReportsColumns[1]}},
			{Name: "quizreport_timestamp", Columns: []*schema.Column{QuizReportsColumns[2]}},
			{Name: "quizreport_subject_grade", Columns: []*schema.Column{QuizReportsColumns[4], QuizReportsColumns[5]}},
		},
	}

	// QuestionFeedbacksColumns holds the columns for the "question_feedbacks" table.
	QuestionFeedbacksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "question_text", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "tag", Type: field.TypeEnum, Enums: FeedbackTagValues()},
		{Name: "note", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// QuestionFeedbacksTable holds the schema information for the "question_feedbacks" table.
	QuestionFeedbacksTable = &schema.Table{
		Name:       "question_feedbacks",
		Columns:    QuestionFeedbacksColumns,
		PrimaryKey: []*schema.Column{QuestionFeedbacksColumns[0]},
		Indexes: []*schema.Index{
			{Name: "questionfeedback_sequence", Columns: []*schema.Column{QuestionFeedbacksColumns[1]}},
			{Name: "questionfeedback_timestamp", Columns: []*schema.Column{QuestionFeedbacksColumns[2]}},
			{Name: "questionfeedback_question_id", Columns: []*schema.Column{QuestionFeedbacksColumns[4]}},
			{Name: "questionfeedback_tag", Columns: []*schema.Column{QuestionFeedbacksColumns[6]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		QuizReportsTable,
		QuestionFeedbacksTable,
	}
)
