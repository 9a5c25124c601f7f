package problemgen

import "github.com/abhisek/quizwhiz/internal/llm"

// QuestionSchema is the structured-output contract for generation.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A single multiple-choice quiz question with hint and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": "Any identifier; it is replaced on receipt",
			},
			"questionText": map[string]any{
				"type":        "string",
				"description": "The question shown to the learner, without LaTeX delimiters",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Exactly 4 distinct answer options",
			},
			"correctAnswer": map[string]any{
				"type":        "string",
				"description": "The exact text of the correct option",
			},
			"hint": map[string]any{
				"type":        "string",
				"description": "A helpful clue that does not reveal the answer",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Step-by-step solution suitable for a child",
			},
			"level": map[string]any{
				"type": "string",
				"enum": []any{"very_easy", "easy", "medium", "challenging", "hard"},
			},
			"topic": map[string]any{"type": "string"},
			"grade": map[string]any{"type": "integer"},
		},
		"required":             []any{"id", "questionText", "options", "correctAnswer", "hint", "explanation", "level", "topic", "grade"},
		"additionalProperties": false,
	},
}
