// Package evaluate scores candidate answers with a model backend.
package evaluate

// Dimensions holds the per-criterion scores for one answer, each 1-10.
type Dimensions struct {
	Relevance         int `json:"relevance_score"`
	Completeness      int `json:"completeness_score"`
	Clarity           int `json:"clarity_score"`
	TechnicalAccuracy int `json:"technical_accuracy_score"`
	ProfessionalTone  int `json:"professional_tone_score"`
}

// Mean returns the average of the five dimension scores.
func (d Dimensions) Mean() float64 {
	sum := d.Relevance + d.Completeness + d.Clarity + d.TechnicalAccuracy + d.ProfessionalTone
	return float64(sum) / 5.0
}

// Result is the structured evaluation of a single answer. Produced by
// the Evaluator, read-only to the session engine.
type Result struct {
	Dimensions Dimensions `json:"dimensions"`

	// Score is the overall 1-10 score (mean of dimensions).
	Score float64 `json:"score"`

	// Feedback is the evaluator's reasoning behind the scores.
	Feedback string `json:"feedback"`

	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`

	// NeedsClarification reports that the answer was too ambiguous or
	// incomplete to stand on its own. Scores are still populated so the
	// session can force-advance on an abandoned clarification.
	NeedsClarification bool `json:"needs_clarification"`

	// ClarificationPrompt is the followup question to put to the
	// candidate. Empty when NeedsClarification is false.
	ClarificationPrompt string `json:"clarification_prompt,omitempty"`
}

// Report is the model-generated assessment of the whole interview,
// attached to the session record alongside the deterministic
// recommendation.
type Report struct {
	TechnicalSkillsScore int      `json:"technical_skills_score"`
	CommunicationScore   int      `json:"communication_score"`
	ProblemSolvingScore  int      `json:"problem_solving_score"`
	DomainKnowledgeScore int      `json:"domain_knowledge_score"`
	OverallScore         int      `json:"overall_score"`
	KeyStrengths         []string `json:"key_strengths"`
	ImprovementAreas     []string `json:"improvement_areas"`
	Reasoning            string   `json:"reasoning"`
}
