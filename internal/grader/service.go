package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"
)

// GraderConfig holds configuration for the grading service.
type GraderConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultGraderConfig returns sensible defaults. Grading wants
// deterministic output, so temperature is zero.
func DefaultGraderConfig() GraderConfig {
	return GraderConfig{
		MaxTokens:   512,
		Temperature: 0,
	}
}

// Grader scores free-text answers against a model answer.
type Grader struct {
	provider Provider
	cfg      GraderConfig
}

// NewGrader creates a grading service on top of a Provider.
func NewGrader(provider Provider, cfg GraderConfig) *Grader {
	return &Grader{provider: provider, cfg: cfg}
}

// Result is a graded answer.
type Result struct {
	// Score is 0-100, clamped.
	Score int `json:"score"`

	// Feedback explains what was good and what was missing.
	Feedback string `json:"feedback"`
}

// gradeOutput is the raw model response.
type gradeOutput struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Grade scores a learner's answer to an interview question.
func (g *Grader) Grade(ctx context.Context, question, modelAnswer, userAnswer string) (*Result, error) {
	prompt, err := buildGradePrompt(question, modelAnswer, userAnswer)
	if err != nil {
		return nil, fmt.Errorf("build grading prompt: %w", err)
	}

	req := Request{
		System:      gradeSystemPrompt,
		Prompt:      prompt,
		Schema:      GradeSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("grading failed: %w", err)
	}

	var raw gradeOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse grading response: %w", err)
	}

	return &Result{
		Score:    clampScore(raw.Score),
		Feedback: raw.Feedback,
	}, nil
}

// clampScore keeps scores in the 0-100 range even when the model
// drifts outside the schema bounds.
func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

const gradeSystemPrompt = `You are an experienced technical interviewer grading a candidate's answer. Compare the candidate's answer to the model answer for the question.

Instructions:
- Score 0-100 based on how completely and correctly the answer covers the key points of the model answer.
- Wording does not need to match; judge substance, not phrasing.
- An empty or off-topic answer scores 0. A complete, correct answer scores 90-100.
- Feedback is two or three sentences: name what was covered well and what was missing or wrong.
- Do not reveal the model answer verbatim in the feedback.`

var gradeUserTemplate = template.Must(template.New("grade").Parse(`Question: {{.Question}}

Model answer:
{{.ModelAnswer}}

Candidate's answer:
{{.UserAnswer}}`))

func buildGradePrompt(question, modelAnswer, userAnswer string) (string, error) {
	var buf bytes.Buffer
	err := gradeUserTemplate.Execute(&buf, struct {
		Question    string
		ModelAnswer string
		UserAnswer  string
	}{question, modelAnswer, userAnswer})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
