// Package recommend turns per-answer scores and the risk assessment
// into the final categorical hiring recommendation. The policy is
// deterministic: weights come from a named profile, thresholds from
// configuration, and the rationale names the signals that drove the
// outcome.
package recommend

import (
	"fmt"
	"math"
)

// Outcome is the categorical recommendation.
type Outcome string

const (
	OutcomeHire          Outcome = "hire"
	OutcomeNoHire        Outcome = "no-hire"
	OutcomeFurtherReview Outcome = "further-review"
)

// Breakdown records every contributing signal so the outcome can be
// audited.
type Breakdown struct {
	AverageScore float64 `json:"average_score"`
	WeakestScore float64 `json:"weakest_score"`
	Trend        float64 `json:"trend"`
	RiskScore    float64 `json:"risk_score"`
	Composite    float64 `json:"composite"`
}

// Recommendation is the final verdict.
type Recommendation struct {
	Outcome   Outcome   `json:"outcome"`
	Rationale string    `json:"rationale"`
	Breakdown Breakdown `json:"breakdown"`
}

// Profile fixes the weighting of each signal in the composite.
type Profile struct {
	Name        string
	WeightScore float64
	WeightTrend float64
	WeightWeak  float64
	WeightRisk  float64
}

var profiles = map[string]Profile{
	"balanced": {Name: "balanced", WeightScore: 0.80, WeightTrend: 0.10, WeightWeak: 0.15, WeightRisk: 0.30},
	"strict":   {Name: "strict", WeightScore: 0.70, WeightTrend: 0.05, WeightWeak: 0.25, WeightRisk: 0.45},
	"lenient":  {Name: "lenient", WeightScore: 0.90, WeightTrend: 0.15, WeightWeak: 0.05, WeightRisk: 0.15},
}

// ProfileByName returns a named weighting profile.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown risk weighting profile %q", name)
	}
	return p, nil
}

// Thresholds map the composite to an outcome. Composite >= HireAt is a
// hire, >= ReviewAt is further-review, below is no-hire.
type Thresholds struct {
	HireAt   float64
	ReviewAt float64
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{HireAt: 0.62, ReviewAt: 0.42}
}

// Decide produces the recommendation from per-question scores (1-10)
// and the risk score (0-1).
func Decide(scores []float64, riskScore float64, profile Profile, t Thresholds) *Recommendation {
	if len(scores) == 0 {
		return &Recommendation{
			Outcome:   OutcomeFurtherReview,
			Rationale: "No evaluated answers were available; the session requires manual review.",
		}
	}

	b := Breakdown{
		AverageScore: mean(scores),
		WeakestScore: min(scores),
		Trend:        trend(scores),
		RiskScore:    riskScore,
	}

	// All terms are normalized to the 0-1 range before weighting.
	// weakPenalty measures inconsistency: how far the worst answer sits
	// below the candidate's own average.
	weakPenalty := math.Max(0, b.AverageScore-b.WeakestScore) / 10

	composite := profile.WeightScore*(b.AverageScore/10) +
		profile.WeightTrend*(b.Trend/10) -
		profile.WeightWeak*weakPenalty -
		profile.WeightRisk*b.RiskScore
	b.Composite = clamp01(composite)

	outcome := OutcomeNoHire
	switch {
	case b.Composite >= t.HireAt:
		outcome = OutcomeHire
	case b.Composite >= t.ReviewAt:
		outcome = OutcomeFurtherReview
	}

	return &Recommendation{
		Outcome:   outcome,
		Rationale: rationale(b, weakPenalty, profile),
		Breakdown: b,
	}
}

// rationale names the dominant positive and negative contributor so the
// verdict is explainable rather than an opaque number.
func rationale(b Breakdown, weakPenalty float64, p Profile) string {
	positive := fmt.Sprintf("average answer score of %.1f/10", b.AverageScore)
	if p.WeightTrend*(b.Trend/10) > p.WeightScore*(b.AverageScore/10) {
		positive = fmt.Sprintf("improving score trend of %+.1f", b.Trend)
	}

	negative := fmt.Sprintf("weakest answer scoring %.1f/10", b.WeakestScore)
	if p.WeightRisk*b.RiskScore > p.WeightWeak*weakPenalty {
		negative = fmt.Sprintf("cheating-risk score of %.2f", b.RiskScore)
	}

	return fmt.Sprintf("Composite %.2f under the %q profile. Main positive factor: %s. Main negative factor: %s.",
		b.Composite, p.Name, positive, negative)
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func min(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// trend is the second-half average minus the first-half average, so a
// candidate who warmed up scores positive and one who faded scores
// negative. Single-question sessions have no trend.
func trend(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	half := len(xs) / 2
	return mean(xs[len(xs)-half:]) - mean(xs[:half])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
