package evaluate

import "github.com/hiresight/hiresight/internal/llm"

func scoreProp(desc string) map[string]any {
	return map[string]any{
		"type":        "integer",
		"minimum":     1,
		"maximum":     10,
		"description": desc,
	}
}

// answerSchema defines the structured output for a single answer
// evaluation. Scores and the clarification decision come back in one
// response, so an evaluation always exists even when the answer needs
// a followup.
var answerSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Scored evaluation of a candidate's answer to an interview question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"relevance_score":          scoreProp("How directly the answer addresses the question"),
			"completeness_score":       scoreProp("How thoroughly the question was answered"),
			"clarity_score":            scoreProp("How well-organized and clear the answer is"),
			"technical_accuracy_score": scoreProp("How technically sound the concepts and solutions are"),
			"professional_tone_score":  scoreProp("How professional the language and tone are"),
			"feedback": map[string]any{
				"type":        "string",
				"description": "Brief reasoning behind the scores",
			},
			"strengths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Key strengths of the answer",
			},
			"weaknesses": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Areas where the answer falls short",
			},
			"needs_clarification": map[string]any{
				"type":        "boolean",
				"description": "True when the answer is too ambiguous or incomplete to evaluate fairly",
			},
			"clarification_question": map[string]any{
				"type":        "string",
				"description": "A specific followup question to resolve the ambiguity; empty when no clarification is needed",
			},
		},
		"required": []any{
			"relevance_score", "completeness_score", "clarity_score",
			"technical_accuracy_score", "professional_tone_score",
			"feedback", "needs_clarification",
		},
		"additionalProperties": false,
	},
}

// reportSchema defines the structured output for the whole-interview
// assessment.
var reportSchema = &llm.Schema{
	Name:        "interview-report",
	Description: "Overall assessment of a completed technical interview",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"technical_skills_score": scoreProp("Overall technical skill demonstrated"),
			"communication_score":    scoreProp("Overall communication quality"),
			"problem_solving_score":  scoreProp("Problem-solving ability"),
			"domain_knowledge_score": scoreProp("Domain-specific knowledge"),
			"overall_score":          scoreProp("Overall candidate score"),
			"key_strengths": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"improvement_areas": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Detailed reasoning behind the assessment",
			},
		},
		"required": []any{
			"technical_skills_score", "communication_score",
			"problem_solving_score", "domain_knowledge_score",
			"overall_score", "reasoning",
		},
		"additionalProperties": false,
	},
}
