package agent

import (
	"fmt"
	"strings"

	"github.com/kingrea/The-Briefing/internal/question"
)

// Agent describes a specialist available for the interview panel.
type Agent struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Questions   []question.Spec `json:"questions,omitempty" yaml:"questions,omitempty"`
}

// Validate ensures the agent definition is well-formed.
func (a Agent) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("agent: id is required")
	}
	if strings.ContainsAny(a.ID, " \t\n") {
		return fmt.Errorf("agent: id %q must not contain whitespace", a.ID)
	}
	if a.Name == "" {
		return fmt.Errorf("agent: name is required for %s", a.ID)
	}
	for i, spec := range a.Questions {
		if strings.TrimSpace(spec.Text) == "" {
			return fmt.Errorf("agent: %s question %d has no text", a.ID, i+1)
		}
	}
	return nil
}

// Bank attributes the agent's question specs to the agent itself, ready
// for flattening into the guided queue.
func (a Agent) Bank() []question.Question {
	return question.FromBank(a.ID, a.Questions)
}
