package grader

// GradeSchema defines the JSON schema for grading responses.
var GradeSchema = &Schema{
	Name:        "answer-grade",
	Description: "Score and feedback for a learner's answer against a model answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "How well the answer covers the model answer, 0 to 100",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Two or three sentences: what was good, what was missing or wrong",
			},
		},
		"required":             []any{"score", "feedback"},
		"additionalProperties": false,
	},
}
