package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hiresight/hiresight/internal/evaluate"
	"github.com/hiresight/hiresight/internal/scenario"
	"github.com/hiresight/hiresight/internal/session"
)

type stubEvaluator struct {
	needsClarificationOn string
	mu                   sync.Mutex
	active               int32
	maxActive            int32
}

func (s *stubEvaluator) Evaluate(_ context.Context, q, answer, clarification string) (*evaluate.Result, error) {
	cur := atomic.AddInt32(&s.active, 1)
	defer atomic.AddInt32(&s.active, -1)
	s.mu.Lock()
	if cur > s.maxActive {
		s.maxActive = cur
	}
	s.mu.Unlock()

	res := &evaluate.Result{Score: 7, Feedback: "ok"}
	if s.needsClarificationOn != "" && answer == s.needsClarificationOn && clarification == "" {
		res.NeedsClarification = true
		res.ClarificationPrompt = "say more"
	}
	return res, nil
}

func testFactory(eval evaluate.Evaluator, questions int) EngineFactory {
	return func(c session.Candidate) (*session.Engine, error) {
		s := &scenario.Scenario{ID: "s", Title: "Scenario"}
		for i := 1; i <= questions; i++ {
			s.Questions = append(s.Questions, scenario.Question{
				ID:   fmt.Sprintf("q%d", i),
				Text: fmt.Sprintf("Question %d?", i),
			})
		}
		cfg := session.DefaultConfig()
		cfg.Candidate = c
		cfg.QuestionCount = questions
		return session.New(cfg, session.Deps{
			Source:    scenario.NewOrderedSource(s),
			Evaluator: eval,
		})
	}
}

func TestRunCompletesAll(t *testing.T) {
	eval := &stubEvaluator{}
	r := &Runner{NewEngine: testFactory(eval, 2), Concurrency: 2}

	interviews := []Interview{
		{Candidate: session.Candidate{Name: "A"}, Answers: []string{"a1", "a2"}},
		{Candidate: session.Candidate{Name: "B"}, Answers: []string{"b1", "b2"}},
		{Candidate: session.Candidate{Name: "C"}, Answers: []string{"c1", "c2"}},
	}

	results, err := r.Run(context.Background(), interviews)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("interview %d: %v", i, res.Err)
		}
		if res.Recommendation == nil {
			t.Errorf("interview %d missing recommendation", i)
		}
		if res.Candidate.Name != interviews[i].Candidate.Name {
			t.Errorf("result %d out of order: %s", i, res.Candidate.Name)
		}
	}
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	eval := &stubEvaluator{}
	r := &Runner{NewEngine: testFactory(eval, 1), Concurrency: 2}

	var interviews []Interview
	for i := 0; i < 8; i++ {
		interviews = append(interviews, Interview{
			Candidate: session.Candidate{Name: fmt.Sprintf("c%d", i)},
			Answers:   []string{"answer"},
		})
	}

	if _, err := r.Run(context.Background(), interviews); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if eval.maxActive > 2 {
		t.Errorf("max concurrent evaluations = %d, limit 2", eval.maxActive)
	}
}

func TestRunAbandonsClarificationWhenScriptEnds(t *testing.T) {
	eval := &stubEvaluator{needsClarificationOn: "vague"}
	r := &Runner{NewEngine: testFactory(eval, 1)}

	results, err := r.Run(context.Background(), []Interview{
		{Candidate: session.Candidate{Name: "A"}, Answers: []string{"vague"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("interview error: %v", results[0].Err)
	}
	if results[0].Recommendation == nil {
		t.Fatal("expected recommendation after abandoned clarification")
	}
}

func TestRunShortScriptFails(t *testing.T) {
	eval := &stubEvaluator{}
	r := &Runner{NewEngine: testFactory(eval, 3)}

	results, err := r.Run(context.Background(), []Interview{
		{Candidate: session.Candidate{Name: "A"}, Answers: []string{"only one"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Err == nil {
		t.Fatal("expected script-exhausted error")
	}
}
