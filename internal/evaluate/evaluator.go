package evaluate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/hiresight/hiresight/internal/llm"
)

// Evaluator scores a single question/answer pair. Implementations must
// treat each call as independent; the engine owns all session state.
type Evaluator interface {
	// Evaluate scores the answer. clarification carries the candidate's
	// accumulated clarification text and is empty on the first pass.
	Evaluate(ctx context.Context, question, answer, clarification string) (*Result, error)
}

// Config holds evaluator generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults. Temperature stays at zero so
// repeated scoring of the same answer is as stable as the backend allows.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0,
	}
}

// ModelEvaluator implements Evaluator on an llm.Provider.
type ModelEvaluator struct {
	provider llm.Provider
	cfg      Config
}

// New creates a model-backed evaluator.
func New(provider llm.Provider, cfg Config) *ModelEvaluator {
	return &ModelEvaluator{provider: provider, cfg: cfg}
}

const evaluatorSystemPrompt = "You are an HR interviewer conducting a technical " +
	"assessment interview. Evaluate the candidate's answer rigorously and " +
	"professionally. Request clarification only when the answer is genuinely " +
	"too ambiguous or incomplete to score fairly."

var answerPromptTmpl = template.Must(template.New("answer").Parse(
	`QUESTION: {{.Question}}

CANDIDATE'S ANSWER: {{.Answer}}
{{- if .Clarification}}

CANDIDATE'S CLARIFICATION (after a followup was asked): {{.Clarification}}
{{- end}}

Score the answer on each criterion from 1 to 10 and give brief feedback.
If the answer is too unclear or incomplete to score fairly, set
needs_clarification to true and provide one specific followup question.
{{- if .Clarification}}
A clarification has already been given; only request another if the answer is still impossible to score fairly.
{{- end}}`))

// rawEvaluation mirrors the answer schema.
type rawEvaluation struct {
	Relevance             int      `json:"relevance_score"`
	Completeness          int      `json:"completeness_score"`
	Clarity               int      `json:"clarity_score"`
	TechnicalAccuracy     int      `json:"technical_accuracy_score"`
	ProfessionalTone      int      `json:"professional_tone_score"`
	Feedback              string   `json:"feedback"`
	Strengths             []string `json:"strengths"`
	Weaknesses            []string `json:"weaknesses"`
	NeedsClarification    bool     `json:"needs_clarification"`
	ClarificationQuestion string   `json:"clarification_question"`
}

func (e *ModelEvaluator) Evaluate(ctx context.Context, question, answer, clarification string) (*Result, error) {
	ctx = llm.WithPurpose(ctx, "answer-evaluation")

	var buf bytes.Buffer
	err := answerPromptTmpl.Execute(&buf, struct {
		Question, Answer, Clarification string
	}{question, answer, clarification})
	if err != nil {
		return nil, fmt.Errorf("build evaluation prompt: %w", err)
	}

	resp, err := e.provider.Generate(ctx, llm.Request{
		System:      evaluatorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buf.String()}},
		Schema:      answerSchema,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	var raw rawEvaluation
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}

	dims := Dimensions{
		Relevance:         raw.Relevance,
		Completeness:      raw.Completeness,
		Clarity:           raw.Clarity,
		TechnicalAccuracy: raw.TechnicalAccuracy,
		ProfessionalTone:  raw.ProfessionalTone,
	}

	result := &Result{
		Dimensions:         dims,
		Score:              dims.Mean(),
		Feedback:           raw.Feedback,
		Strengths:          raw.Strengths,
		Weaknesses:         raw.Weaknesses,
		NeedsClarification: raw.NeedsClarification,
	}
	if raw.NeedsClarification {
		result.ClarificationPrompt = raw.ClarificationQuestion
		if result.ClarificationPrompt == "" {
			result.ClarificationPrompt = "Could you expand on your answer with a concrete example?"
		}
	}

	return result, nil
}
