package recommend

import (
	"strings"
	"testing"
)

func TestDecideHire(t *testing.T) {
	p, err := ProfileByName("balanced")
	if err != nil {
		t.Fatalf("ProfileByName: %v", err)
	}

	rec := Decide([]float64{8, 8.4, 9}, 0, p, DefaultThresholds())
	if rec.Outcome != OutcomeHire {
		t.Errorf("outcome = %s, want hire (composite %.3f)", rec.Outcome, rec.Breakdown.Composite)
	}
	if rec.Breakdown.WeakestScore != 8 {
		t.Errorf("weakest = %v, want 8", rec.Breakdown.WeakestScore)
	}
	if rec.Breakdown.Trend <= 0 {
		t.Errorf("trend = %v, want positive for improving scores", rec.Breakdown.Trend)
	}
	if !strings.Contains(rec.Rationale, "average answer score") {
		t.Errorf("rationale should cite the dominant positive factor: %q", rec.Rationale)
	}
}

func TestDecideNoHireUnderRisk(t *testing.T) {
	p, _ := ProfileByName("balanced")

	rec := Decide([]float64{3, 2.5, 3.5}, 0.6, p, DefaultThresholds())
	if rec.Outcome != OutcomeNoHire {
		t.Errorf("outcome = %s, want no-hire (composite %.3f)", rec.Outcome, rec.Breakdown.Composite)
	}
	if !strings.Contains(rec.Rationale, "cheating-risk") {
		t.Errorf("rationale should cite the risk signal: %q", rec.Rationale)
	}
}

func TestDecideFurtherReview(t *testing.T) {
	p, _ := ProfileByName("balanced")

	rec := Decide([]float64{6, 6, 6}, 0.1, p, DefaultThresholds())
	if rec.Outcome != OutcomeFurtherReview {
		t.Errorf("outcome = %s, want further-review (composite %.3f)", rec.Outcome, rec.Breakdown.Composite)
	}
}

func TestDecideStricterProfilePunishesRisk(t *testing.T) {
	scores := []float64{7, 7, 7}
	lenient, _ := ProfileByName("lenient")
	strict, _ := ProfileByName("strict")

	a := Decide(scores, 0.5, lenient, DefaultThresholds())
	b := Decide(scores, 0.5, strict, DefaultThresholds())
	if b.Breakdown.Composite >= a.Breakdown.Composite {
		t.Errorf("strict composite %.3f should be below lenient %.3f at equal risk",
			b.Breakdown.Composite, a.Breakdown.Composite)
	}
}

func TestDecideNoScores(t *testing.T) {
	p, _ := ProfileByName("balanced")

	rec := Decide(nil, 0, p, DefaultThresholds())
	if rec.Outcome != OutcomeFurtherReview {
		t.Errorf("outcome = %s, want further-review for empty session", rec.Outcome)
	}
}

func TestDecideDeterministic(t *testing.T) {
	p, _ := ProfileByName("strict")
	scores := []float64{5.2, 7.8, 6.4, 8}

	first := Decide(scores, 0.25, p, DefaultThresholds())
	for i := 0; i < 5; i++ {
		got := Decide(scores, 0.25, p, DefaultThresholds())
		if *got != *first {
			t.Fatalf("run %d differs:\n got %+v\nwant %+v", i, got, first)
		}
	}
}

func TestProfileByNameUnknown(t *testing.T) {
	if _, err := ProfileByName("reckless"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}
