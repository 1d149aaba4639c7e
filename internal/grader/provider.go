package grader

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over the grading LLM. Grading is always
// single-turn: one prompt in, one structured JSON verdict out.
type Provider interface {
	// Generate sends the prompt and returns the model's output. When
	// the request carries a Schema, the provider uses its native
	// structured-output mechanism and the returned Content is JSON
	// validated against that schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured
	// to use.
	ModelID() string
}

// Request describes one grading call.
type Request struct {
	// System sets the grader's role and constraints.
	System string

	// Prompt is the user-turn content: question, model answer, and the
	// learner's answer.
	Prompt string

	// Schema is the JSON Schema the response must conform to. When
	// nil, Content is raw text.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Grading wants 0.
	Temperature float64
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI-compatible APIs).
	Name string

	// Description guides the model.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output, schema-validated JSON when a
	// Schema was requested.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
