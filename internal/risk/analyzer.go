// Package risk derives a cheating-risk assessment from the timing and
// behavior trace of a completed interview. The analyzer is fully
// deterministic: the same trace always yields the same assessment.
package risk

import (
	"fmt"
	"math"
	"time"
)

// Anomaly tags. Human-readable details accompany each tag.
const (
	TagAnswerTooFast         = "answer-too-fast"
	TagDurationOutlierLow    = "duration-outlier-low"
	TagRepeatedClarification = "repeated-clarification"
	TagUniformTiming         = "uniform-timing"
)

// Sample is the per-question slice of the trace the analyzer consumes.
// The session layer builds one Sample per question record; the analyzer
// never sees or mutates the records themselves.
type Sample struct {
	QuestionID             string
	QuestionLength         int
	Duration               time.Duration
	ClarificationRequested bool
}

// Anomaly is one flagged behavior.
type Anomaly struct {
	Tag    string `json:"tag"`
	Detail string `json:"detail"`
}

// Assessment is the aggregate risk verdict, score clamped to [0,1].
type Assessment struct {
	Score     float64       `json:"score"`
	Anomalies []Anomaly     `json:"anomalies,omitempty"`
	Mean      time.Duration `json:"mean_duration"`
	StdDev    time.Duration `json:"stddev_duration"`
}

// Per-anomaly score contributions. Per-question tags stack; trace-wide
// tags count once.
const (
	weightTooFast       = 0.25
	weightOutlierLow    = 0.15
	weightRepeatedClar  = 0.20
	weightUniformTiming = 0.25
)

// minReadingTimeFloor is the least time any question plausibly takes to
// read and answer, regardless of length.
const minReadingTimeFloor = 2 * time.Second

// perWordReadingTime approximates reading speed at roughly 300 words
// per minute.
const perWordReadingTime = 200 * time.Millisecond

// minPlausibleDuration returns the shortest credible answer time for a
// question of the given character length.
func minPlausibleDuration(questionLength int) time.Duration {
	words := questionLength / 5
	d := time.Duration(words) * perWordReadingTime
	if d < minReadingTimeFloor {
		return minReadingTimeFloor
	}
	return d
}

// Analyze computes the assessment for a completed trace.
func Analyze(samples []Sample) *Assessment {
	a := &Assessment{}
	if len(samples) == 0 {
		return a
	}

	mean, stddev := durationStats(samples)
	a.Mean = mean
	a.StdDev = stddev

	score := 0.0

	for _, s := range samples {
		if min := minPlausibleDuration(s.QuestionLength); s.Duration < min {
			a.Anomalies = append(a.Anomalies, Anomaly{
				Tag: TagAnswerTooFast,
				Detail: fmt.Sprintf("question %s answered in %s, below the minimum plausible %s",
					s.QuestionID, s.Duration.Round(time.Millisecond), min.Round(time.Millisecond)),
			})
			score += weightTooFast
		}
	}

	if len(samples) >= 2 && stddev > 0 {
		floor := mean - 2*stddev
		for _, s := range samples {
			if s.Duration < floor {
				a.Anomalies = append(a.Anomalies, Anomaly{
					Tag: TagDurationOutlierLow,
					Detail: fmt.Sprintf("question %s answered in %s, more than two deviations below the mean %s",
						s.QuestionID, s.Duration.Round(time.Millisecond), mean.Round(time.Millisecond)),
				})
				score += weightOutlierLow
			}
		}
	}

	clarified := 0
	for _, s := range samples {
		if s.ClarificationRequested {
			clarified++
		}
	}
	if clarified >= 2 {
		a.Anomalies = append(a.Anomalies, Anomaly{
			Tag:    TagRepeatedClarification,
			Detail: fmt.Sprintf("%d of %d questions required clarification", clarified, len(samples)),
		})
		score += weightRepeatedClar
	}

	if len(samples) >= 3 && mean > 0 {
		cv := float64(stddev) / float64(mean)
		if cv < 0.1 {
			a.Anomalies = append(a.Anomalies, Anomaly{
				Tag:    TagUniformTiming,
				Detail: fmt.Sprintf("answer timings are unusually uniform (coefficient of variation %.3f)", cv),
			})
			score += weightUniformTiming
		}
	}

	a.Score = clamp01(score)
	return a
}

func durationStats(samples []Sample) (mean, stddev time.Duration) {
	n := float64(len(samples))
	var sum float64
	for _, s := range samples {
		sum += float64(s.Duration)
	}
	m := sum / n

	var variance float64
	for _, s := range samples {
		d := float64(s.Duration) - m
		variance += d * d
	}
	variance /= n

	return time.Duration(m), time.Duration(math.Sqrt(variance))
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
