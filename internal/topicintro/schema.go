package topicintro

import "github.com/abhisek/quizwhiz/internal/llm"

// DetailSchema defines the JSON schema for topic introductions.
var DetailSchema = &llm.Schema{
	Name:        "topic-detail",
	Description: "An age-appropriate introduction to a curriculum topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Topic title",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "A clear explanation of the topic",
			},
			"keyPoints": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3-5 key learning points",
			},
			"examples": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2-3 simple examples",
			},
		},
		"required":             []any{"title", "description", "keyPoints", "examples"},
		"additionalProperties": false,
	},
}
