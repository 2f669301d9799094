// Package scenario loads interview scenarios and supplies questions to
// the session engine.
package scenario

import "fmt"

// Question is a single scenario question.
type Question struct {
	ID     string   `yaml:"id" json:"id"`
	Text   string   `yaml:"question" json:"question"`
	Hint   string   `yaml:"hint,omitempty" json:"hint,omitempty"`
	Topics []string `yaml:"topics,omitempty" json:"topics,omitempty"`
}

// Scenario is a themed set of questions for one interview.
type Scenario struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Difficulty  string     `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	Topics      []string   `yaml:"topics,omitempty" json:"topics,omitempty"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

// Validate checks structural requirements on a loaded scenario.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scenario missing id")
	}
	if len(s.Questions) == 0 {
		return fmt.Errorf("scenario %q has no questions", s.ID)
	}
	seen := make(map[string]bool, len(s.Questions))
	for i, q := range s.Questions {
		if q.ID == "" {
			return fmt.Errorf("scenario %q: question %d missing id", s.ID, i)
		}
		if q.Text == "" {
			return fmt.Errorf("scenario %q: question %q missing text", s.ID, q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("scenario %q: duplicate question id %q", s.ID, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// Question returns the question with the given id, or nil.
func (s *Scenario) Question(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}
