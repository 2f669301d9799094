package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hiresight/hiresight/internal/evaluate"
	"github.com/hiresight/hiresight/internal/recommend"
	"github.com/hiresight/hiresight/internal/risk"
	"github.com/hiresight/hiresight/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func completedSession() *session.Session {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return &session.Session{
		ID:         uuid.New(),
		Candidate:  session.Candidate{Name: "Dana Reyes", Email: "dana@example.com", Position: "Backend Engineer"},
		ScenarioID: "backend-l2",
		State:      session.StateComplete,
		Records: []session.QuestionRecord{
			{
				QuestionID:     "q1",
				QuestionText:   "Describe a time you debugged a production outage.",
				Answer:         "We traced it to a connection pool leak.",
				AskedAt:        created,
				AnswerDuration: 95 * time.Second,
				Evaluation:     &evaluate.Result{Score: 8.2, Feedback: "strong"},
			},
			{
				QuestionID:             "q2",
				QuestionText:           "How do you size a cache?",
				Answer:                 "Working set plus headroom.",
				ClarificationRequested: true,
				Clarification:          "I meant the hot key set.",
				AskedAt:                created.Add(2 * time.Minute),
				AnswerDuration:         70 * time.Second,
				Evaluation:             &evaluate.Result{Score: 6.4, Feedback: "adequate"},
			},
		},
		CreatedAt:   created,
		CompletedAt: created.Add(5 * time.Minute),
		Risk:        &risk.Assessment{Score: 0.15},
		Recommendation: &recommend.Recommendation{
			Outcome:   recommend.OutcomeHire,
			Rationale: "strong average score",
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	want := completedSession()

	if err := s.SaveSession(context.Background(), want); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := s.LoadSession(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got.ID != want.ID || got.State != want.State || len(got.Records) != 2 {
		t.Errorf("loaded session = %+v", got)
	}
	if got.Records[1].Clarification != want.Records[1].Clarification {
		t.Errorf("clarification = %q", got.Records[1].Clarification)
	}
	if got.Records[0].AnswerDuration != 95*time.Second {
		t.Errorf("duration = %v", got.Records[0].AnswerDuration)
	}
	if got.Recommendation == nil || got.Recommendation.Outcome != recommend.OutcomeHire {
		t.Errorf("recommendation = %+v", got.Recommendation)
	}
}

func TestSaveIsUpsert(t *testing.T) {
	s := openTestStore(t)
	sess := completedSession()

	// First save as a suspension checkpoint, second at completion.
	sess.State = session.StateSuspended
	if err := s.SaveSession(context.Background(), sess); err != nil {
		t.Fatalf("checkpoint save: %v", err)
	}
	sess.State = session.StateComplete
	if err := s.SaveSession(context.Background(), sess); err != nil {
		t.Fatalf("terminal save: %v", err)
	}

	got, err := s.LoadSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got.State != session.StateComplete {
		t.Errorf("state = %s, want complete", got.State)
	}

	list, err := s.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list = %d rows, want 1", len(list))
	}
}

func TestLoadNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadSession(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	s := openTestStore(t)

	older := completedSession()
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := completedSession()
	newer.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, sess := range []*session.Session{older, newer} {
		if err := s.SaveSession(context.Background(), sess); err != nil {
			t.Fatalf("SaveSession: %v", err)
		}
	}

	list, err := s.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d rows", len(list))
	}
	if list[0].ID != newer.ID {
		t.Errorf("first row = %s, want newest", list[0].ID)
	}
	if list[0].Candidate != "Dana Reyes" || list[0].Outcome != string(recommend.OutcomeHire) {
		t.Errorf("summary = %+v", list[0])
	}
}

func TestExportJSON(t *testing.T) {
	s := openTestStore(t)
	sess := completedSession()
	if err := s.SaveSession(context.Background(), sess); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	data, err := s.ExportJSON(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	for _, want := range []string{sess.ID.String(), "Dana Reyes", "clarification_requested"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("export missing %q", want)
		}
	}
}
