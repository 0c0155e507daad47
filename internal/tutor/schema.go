package tutor

import "github.com/qudurat/qudurat/internal/llm"

// AnalysisSchema is the JSON schema for level feedback.
var AnalysisSchema = &llm.Schema{
	Name:        "level-analysis",
	Description: "Arabic analysis of a student's placement quiz with weak areas and a study plan",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "2-4 sentence overview of the performance, in Arabic",
			},
			"weak_areas": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Categories or question types that need work, in Arabic",
			},
			"study_plan": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3-6 ordered study steps, in Arabic",
			},
		},
		"required":             []any{"summary", "weak_areas", "study_plan"},
		"additionalProperties": false,
	},
}
