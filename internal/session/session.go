// Package session implements the interview session engine: the
// stateful controller that sequences questions, runs the clarification
// sub-dialog, times answers, and aggregates evaluations into the final
// risk assessment and recommendation.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/hiresight/hiresight/internal/evaluate"
	"github.com/hiresight/hiresight/internal/recommend"
	"github.com/hiresight/hiresight/internal/risk"
)

// State is the session phase tag. Clarification is an explicit nested
// state, not a flag callers re-derive.
type State string

const (
	StateNotStarted            State = "not-started"
	StateAwaitingAnswer        State = "awaiting-answer"
	StateAwaitingClarification State = "awaiting-clarification"
	StateSuspended             State = "suspended"
	StateComplete              State = "complete"
)

// Candidate identifies who is being interviewed.
type Candidate struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Position string `json:"position,omitempty"`
}

// QuestionRecord tracks one dispatched question. Created at dispatch,
// mutated only by the engine, immutable once the session is terminal.
type QuestionRecord struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text"`

	Answer string `json:"answer,omitempty"`

	// Clarification accumulates the candidate's clarification answers,
	// newline-joined across rounds.
	Clarification          string `json:"clarification,omitempty"`
	ClarificationPrompt    string `json:"clarification_prompt,omitempty"`
	ClarificationRequested bool   `json:"clarification_requested"`
	ClarificationRounds    int    `json:"clarification_rounds,omitempty"`

	HintShown bool `json:"hint_shown,omitempty"`

	AskedAt        time.Time     `json:"asked_at"`
	AnswerDuration time.Duration `json:"answer_duration"`

	// Evaluation holds the pending evaluation while a clarification is
	// outstanding and the final one once the record is resolved.
	Evaluation *evaluate.Result `json:"evaluation,omitempty"`
}

// Session is one end-to-end interview. Owned exclusively by its Engine
// until terminal, then handed to persistence.
type Session struct {
	ID         uuid.UUID `json:"id"`
	Candidate  Candidate `json:"candidate"`
	ScenarioID string    `json:"scenario_id"`
	State      State     `json:"state"`

	Records []QuestionRecord `json:"records"`

	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`

	Risk           *risk.Assessment          `json:"risk,omitempty"`
	Recommendation *recommend.Recommendation `json:"recommendation,omitempty"`
	Report         *evaluate.Report          `json:"report,omitempty"`
}

// Complete reports whether the session is terminal. Completion is
// derived from the state tag, which only the engine's finalize
// transition sets; there is no second count-based source of truth.
func (s *Session) Complete() bool {
	return s.State == StateComplete
}

// Scores returns the per-question overall scores in dispatch order,
// skipping unevaluated records.
func (s *Session) Scores() []float64 {
	var out []float64
	for i := range s.Records {
		if ev := s.Records[i].Evaluation; ev != nil {
			out = append(out, ev.Score)
		}
	}
	return out
}
