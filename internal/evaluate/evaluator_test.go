package evaluate

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hiresight/hiresight/internal/llm"
)

func TestEvaluateParsesScores(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"relevance_score": 8,
			"completeness_score": 7,
			"clarity_score": 9,
			"technical_accuracy_score": 8,
			"professional_tone_score": 8,
			"feedback": "Solid answer with a concrete example.",
			"strengths": ["clear structure"],
			"weaknesses": ["light on tradeoffs"],
			"needs_clarification": false,
			"clarification_question": ""
		}`),
	})

	ev := New(mock, DefaultConfig())
	res, err := ev.Evaluate(context.Background(), "How would you scale a cache?", "I would shard by key and add replicas.", "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if res.Dimensions.Relevance != 8 || res.Dimensions.Clarity != 9 {
		t.Errorf("dimensions = %+v", res.Dimensions)
	}
	if res.Score != 8.0 {
		t.Errorf("score = %v, want 8.0", res.Score)
	}
	if res.NeedsClarification {
		t.Error("unexpected clarification request")
	}
	if len(res.Strengths) != 1 || len(res.Weaknesses) != 1 {
		t.Errorf("strengths/weaknesses = %v / %v", res.Strengths, res.Weaknesses)
	}
}

func TestEvaluateNeedsClarification(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"relevance_score": 4,
			"completeness_score": 3,
			"clarity_score": 4,
			"technical_accuracy_score": 5,
			"professional_tone_score": 7,
			"feedback": "Too vague to assess.",
			"needs_clarification": true,
			"clarification_question": "Which consistency model do you mean?"
		}`),
	})

	ev := New(mock, DefaultConfig())
	res, err := ev.Evaluate(context.Background(), "Explain consistency.", "It depends.", "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !res.NeedsClarification {
		t.Fatal("expected clarification request")
	}
	if res.ClarificationPrompt != "Which consistency model do you mean?" {
		t.Errorf("prompt = %q", res.ClarificationPrompt)
	}
	// Scores must be populated even when clarification is requested so a
	// force-advance always has an evaluation to fall back on.
	if res.Score == 0 {
		t.Error("score not populated on clarification request")
	}
}

func TestEvaluateIncludesClarificationInPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"relevance_score": 7, "completeness_score": 7, "clarity_score": 7,
			"technical_accuracy_score": 7, "professional_tone_score": 7,
			"feedback": "ok", "needs_clarification": false
		}`),
	})

	ev := New(mock, DefaultConfig())
	_, err := ev.Evaluate(context.Background(), "Q", "A", "I meant eventual consistency.")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "I meant eventual consistency.") {
		t.Errorf("clarification missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "clarification has already been given") {
		t.Errorf("repeat-clarification guard missing from prompt:\n%s", prompt)
	}
}

func TestEvaluatePropagatesProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrProviderUnavailable{},
	})

	ev := New(mock, DefaultConfig())
	if _, err := ev.Evaluate(context.Background(), "Q", "A", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestReportBuildsTranscript(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"technical_skills_score": 8,
			"communication_score": 7,
			"problem_solving_score": 8,
			"domain_knowledge_score": 6,
			"overall_score": 7,
			"key_strengths": ["systems thinking"],
			"improvement_areas": ["depth on storage"],
			"reasoning": "Consistently strong answers."
		}`),
	})

	rep := NewReporter(mock, DefaultConfig())
	got, err := rep.Report(context.Background(), "Backend Engineer", []TranscriptEntry{
		{
			Question: "How would you design a rate limiter?",
			Answer:   "Token bucket per client.",
			Result:   &Result{Score: 8.2, Feedback: "good"},
		},
		{
			Question:      "Explain idempotency.",
			Answer:        "Same request, same effect.",
			Clarification: "Keyed by request ID.",
		},
	})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}

	if got.OverallScore != 7 {
		t.Errorf("overall = %d, want 7", got.OverallScore)
	}

	prompt := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"Backend Engineer", "rate limiter", "Keyed by request ID", "8.2/10"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestReportEmptyTranscript(t *testing.T) {
	rep := NewReporter(llm.NewMockProvider(), DefaultConfig())
	if _, err := rep.Report(context.Background(), "x", nil); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}
