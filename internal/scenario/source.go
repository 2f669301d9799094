package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hiresight/hiresight/internal/llm"
)

// ErrExhausted signals that a source has no questions left.
var ErrExhausted = errors.New("question source exhausted")

// Exchange is one completed question/answer pair, passed to adaptive
// sources so they can pick a followup that fits the conversation.
type Exchange struct {
	QuestionID string
	Question   string
	Answer     string
}

// Source supplies the next question for a session. A Source instance
// belongs to exactly one session; implementations keep per-session
// cursor state and are not shared.
type Source interface {
	// Next returns the next question given the exchanges so far, or
	// ErrExhausted when the scenario has no questions left.
	Next(ctx context.Context, history []Exchange) (*Question, error)

	// Remaining reports how many questions the source can still produce.
	Remaining() int
}

// OrderedSource serves a scenario's questions in authored order.
type OrderedSource struct {
	scenario *Scenario
	next     int
}

// NewOrderedSource creates a source that walks s.Questions front to back.
func NewOrderedSource(s *Scenario) *OrderedSource {
	return &OrderedSource{scenario: s}
}

func (o *OrderedSource) Next(_ context.Context, _ []Exchange) (*Question, error) {
	if o.next >= len(o.scenario.Questions) {
		return nil, ErrExhausted
	}
	q := &o.scenario.Questions[o.next]
	o.next++
	return q, nil
}

func (o *OrderedSource) Remaining() int {
	return len(o.scenario.Questions) - o.next
}

// AdaptiveSource asks the model to pick the next question from the
// remaining pool based on the conversation so far. Any model failure
// falls back to authored order, so the session never stalls on the
// selector.
type AdaptiveSource struct {
	scenario *Scenario
	provider llm.Provider
	asked    map[string]bool
}

// NewAdaptiveSource creates a model-driven source over s.
func NewAdaptiveSource(s *Scenario, provider llm.Provider) *AdaptiveSource {
	return &AdaptiveSource{
		scenario: s,
		provider: provider,
		asked:    make(map[string]bool),
	}
}

// selectionSchema constrains the selector to return a question id.
var selectionSchema = &llm.Schema{
	Name:        "question-selection",
	Description: "The id of the next interview question to ask",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_id": map[string]any{
				"type":        "string",
				"description": "The id of the selected question from the available list",
			},
		},
		"required":             []any{"question_id"},
		"additionalProperties": false,
	},
}

const selectionSystemPrompt = "You are conducting a technical interview. " +
	"Select the next question that follows most naturally from the conversation " +
	"and probes an aspect of the candidate's knowledge not yet covered."

func (a *AdaptiveSource) Next(ctx context.Context, history []Exchange) (*Question, error) {
	available := a.available()
	if len(available) == 0 {
		return nil, ErrExhausted
	}

	// First question and single-candidate cases need no model call.
	if len(history) == 0 || len(available) == 1 {
		return a.take(available[0].ID), nil
	}

	picked, err := a.selectWithModel(ctx, available, history)
	if err != nil {
		// Selector failure is non-fatal: fall back to authored order.
		return a.take(available[0].ID), nil
	}
	return a.take(picked), nil
}

func (a *AdaptiveSource) Remaining() int {
	return len(a.scenario.Questions) - len(a.asked)
}

func (a *AdaptiveSource) available() []*Question {
	var out []*Question
	for i := range a.scenario.Questions {
		q := &a.scenario.Questions[i]
		if !a.asked[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

func (a *AdaptiveSource) take(id string) *Question {
	a.asked[id] = true
	return a.scenario.Question(id)
}

func (a *AdaptiveSource) selectWithModel(ctx context.Context, available []*Question, history []Exchange) (string, error) {
	ctx = llm.WithPurpose(ctx, "question-selection")

	var b strings.Builder
	fmt.Fprintf(&b, "SCENARIO: %s\n%s\n\nAVAILABLE QUESTIONS:\n", a.scenario.Title, a.scenario.Description)
	for _, q := range available {
		fmt.Fprintf(&b, "- id: %s  question: %s\n", q.ID, q.Text)
	}
	b.WriteString("\nCONVERSATION SO FAR:\n")
	for _, ex := range history {
		fmt.Fprintf(&b, "Interviewer: %s\nCandidate: %s\n", ex.Question, ex.Answer)
	}

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:    selectionSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Schema:    selectionSchema,
		MaxTokens: 128,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		QuestionID string `json:"question_id"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse selection: %w", err)
	}

	for _, q := range available {
		if q.ID == out.QuestionID {
			return q.ID, nil
		}
	}
	return "", fmt.Errorf("selected question %q not in available pool", out.QuestionID)
}
