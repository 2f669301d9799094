package scenario

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScenarioFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write scenario file: %v", err)
	}
}

const backendScenario = `
id: backend-basics
title: Backend Basics
description: Core backend engineering concepts.
difficulty: medium
topics: [databases, http]
questions:
  - id: q1
    question: Explain how an index speeds up a query.
  - id: q2
    question: What happens during a TLS handshake?
    hint: Think about key exchange.
`

func TestLoadDir_YAML(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "backend.yaml", backendScenario)

	lib, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := lib.ByID("backend-basics")
	if s == nil {
		t.Fatal("scenario not found by id")
	}
	if len(s.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(s.Questions))
	}
	if s.Questions[1].Hint == "" {
		t.Fatal("expected hint on q2")
	}
}

func TestLoadDir_JSONCatalog(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "catalog.json", `{
		"scenarios": [
			{"id": "s1", "title": "One", "description": "d", "questions": [{"id": "q1", "question": "Q?"}]},
			{"id": "s2", "title": "Two", "description": "d", "questions": [{"id": "q1", "question": "Q?"}]}
		]
	}`)

	lib, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lib.All()) != 2 {
		t.Fatalf("expected 2 scenarios, got %d", len(lib.All()))
	}
}

func TestLoadDir_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "a.yaml", backendScenario)
	writeScenarioFile(t, dir, "b.yaml", backendScenario)

	if _, err := LoadDir(dir); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestLoadDir_EmptyDir(t *testing.T) {
	if _, err := LoadDir(t.TempDir()); err == nil {
		t.Fatal("expected error for empty scenario dir")
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Scenario
		wantErr bool
	}{
		{
			name: "valid",
			s: Scenario{ID: "s", Questions: []Question{
				{ID: "q1", Text: "Q?"},
			}},
		},
		{
			name:    "no questions",
			s:       Scenario{ID: "s"},
			wantErr: true,
		},
		{
			name: "duplicate question ids",
			s: Scenario{ID: "s", Questions: []Question{
				{ID: "q1", Text: "Q?"},
				{ID: "q1", Text: "Again?"},
			}},
			wantErr: true,
		},
		{
			name: "question without text",
			s: Scenario{ID: "s", Questions: []Question{
				{ID: "q1"},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
