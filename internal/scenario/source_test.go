package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hiresight/hiresight/internal/llm"
)

func threeQuestionScenario() *Scenario {
	return &Scenario{
		ID:          "sre-oncall",
		Title:       "SRE On-call",
		Description: "Incident response scenarios.",
		Questions: []Question{
			{ID: "q1", Text: "A service's p99 latency doubled. Where do you start?"},
			{ID: "q2", Text: "How would you design an alert for error budget burn?"},
			{ID: "q3", Text: "Walk through a blameless postmortem you would write."},
		},
	}
}

func TestOrderedSource_WalksInOrder(t *testing.T) {
	src := NewOrderedSource(threeQuestionScenario())

	ids := []string{}
	for {
		q, err := src.Next(context.Background(), nil)
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, q.ID)
	}

	if len(ids) != 3 || ids[0] != "q1" || ids[1] != "q2" || ids[2] != "q3" {
		t.Fatalf("unexpected order: %v", ids)
	}
	if src.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", src.Remaining())
	}
}

func TestAdaptiveSource_FirstQuestionSkipsModel(t *testing.T) {
	mock := llm.NewMockProvider()
	src := NewAdaptiveSource(threeQuestionScenario(), mock)

	q, err := src.Next(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.ID != "q1" {
		t.Fatalf("expected q1 first, got %s", q.ID)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected no model calls for first question, got %d", mock.CallCount())
	}
}

func TestAdaptiveSource_ModelPicksFromPool(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"question_id":"q3"}`),
	})
	src := NewAdaptiveSource(threeQuestionScenario(), mock)

	history := []Exchange{{QuestionID: "q1", Question: "...", Answer: "..."}}
	src.asked["q1"] = true

	q, err := src.Next(context.Background(), history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.ID != "q3" {
		t.Fatalf("expected model-picked q3, got %s", q.ID)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 model call, got %d", mock.CallCount())
	}
}

func TestAdaptiveSource_FallsBackOnModelFailure(t *testing.T) {
	mock := llm.NewMockProvider() // Empty queue: every call fails.
	src := NewAdaptiveSource(threeQuestionScenario(), mock)

	src.asked["q1"] = true
	history := []Exchange{{QuestionID: "q1", Question: "...", Answer: "..."}}

	q, err := src.Next(context.Background(), history)
	if err != nil {
		t.Fatalf("fallback should not surface the model error, got: %v", err)
	}
	if q.ID != "q2" {
		t.Fatalf("expected authored-order fallback q2, got %s", q.ID)
	}
}

func TestAdaptiveSource_RejectsOutOfPoolSelection(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"question_id":"q1"}`), // Already asked.
	})
	src := NewAdaptiveSource(threeQuestionScenario(), mock)

	src.asked["q1"] = true
	history := []Exchange{{QuestionID: "q1", Question: "...", Answer: "..."}}

	q, err := src.Next(context.Background(), history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Out-of-pool pick falls back to authored order.
	if q.ID != "q2" {
		t.Fatalf("expected fallback q2, got %s", q.ID)
	}
}

func TestAdaptiveSource_Exhausted(t *testing.T) {
	src := NewAdaptiveSource(threeQuestionScenario(), llm.NewMockProvider())
	src.asked["q1"], src.asked["q2"], src.asked["q3"] = true, true, true

	if _, err := src.Next(context.Background(), nil); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got: %v", err)
	}
}
