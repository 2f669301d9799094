package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hiresight/hiresight/internal/llm"
)

// TranscriptEntry is one question/answer pair fed into the overall
// report. The session layer builds these from its records.
type TranscriptEntry struct {
	Question      string
	Answer        string
	Clarification string
	Result        *Result
}

// Reporter produces the whole-interview assessment.
type Reporter interface {
	Report(ctx context.Context, scenario string, transcript []TranscriptEntry) (*Report, error)
}

// ModelReporter implements Reporter on an llm.Provider.
type ModelReporter struct {
	provider llm.Provider
	cfg      Config
}

// NewReporter creates a model-backed reporter.
func NewReporter(provider llm.Provider, cfg Config) *ModelReporter {
	return &ModelReporter{provider: provider, cfg: cfg}
}

const reporterSystemPrompt = "You are an HR interviewer writing the final " +
	"assessment of a completed technical interview. Base your scores only on " +
	"the transcript provided."

func (r *ModelReporter) Report(ctx context.Context, scenario string, transcript []TranscriptEntry) (*Report, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("report: empty transcript")
	}
	ctx = llm.WithPurpose(ctx, "interview-report")

	var b strings.Builder
	fmt.Fprintf(&b, "Interview scenario: %s\n\nTRANSCRIPT:\n", scenario)
	for i, e := range transcript {
		fmt.Fprintf(&b, "\nQ%d: %s\nANSWER: %s\n", i+1, e.Question, e.Answer)
		if e.Clarification != "" {
			fmt.Fprintf(&b, "CLARIFICATION: %s\n", e.Clarification)
		}
		if e.Result != nil {
			fmt.Fprintf(&b, "PER-ANSWER SCORE: %.1f/10 (%s)\n", e.Result.Score, e.Result.Feedback)
		}
	}
	b.WriteString("\nAssess the candidate's overall performance across the interview.")

	resp, err := r.provider.Generate(ctx, llm.Request{
		System:      reporterSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Schema:      reportSchema,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	var report Report
	if err := json.Unmarshal(resp.Content, &report); err != nil {
		return nil, fmt.Errorf("parse report response: %w", err)
	}
	return &report, nil
}
