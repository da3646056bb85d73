package question

import (
	"fmt"
)

// Option is one selectable answer presented alongside a question.
type Option struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Spec is a bank entry before it has been attributed to an agent.
type Spec struct {
	Text          string   `json:"text" yaml:"text"`
	Options       []Option `json:"options,omitempty" yaml:"options,omitempty"`
	DefaultAnswer string   `json:"default_answer,omitempty" yaml:"default_answer,omitempty"`
}

// Clone returns a deep copy of the spec.
func (s Spec) Clone() Spec {
	s.Options = cloneOptions(s.Options)
	return s
}

// CloneSpecs deep-copies a spec slice.
func CloneSpecs(specs []Spec) []Spec {
	if len(specs) == 0 {
		return nil
	}
	out := make([]Spec, len(specs))
	for i, s := range specs {
		out[i] = s.Clone()
	}
	return out
}

// Question is a fully attributed interview question. Agents lists every
// specialist whose bank contributed it, so a single answer can be routed
// back to all of them.
type Question struct {
	ID            string   `json:"id,omitempty"`
	Text          string   `json:"text"`
	Options       []Option `json:"options,omitempty"`
	DefaultAnswer string   `json:"default_answer,omitempty"`
	Agents        []string `json:"agents,omitempty"`
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (q Question) Clone() Question {
	q.Options = cloneOptions(q.Options)
	q.Agents = cloneStrings(q.Agents)
	return q
}

// PrimaryAgent returns the first agent in the interest set, or "" when the
// question is unattributed.
func (q Question) PrimaryAgent() string {
	if len(q.Agents) == 0 {
		return ""
	}
	return q.Agents[0]
}

// Concerns reports whether the question's interest set names the agent.
func (q Question) Concerns(agentID string) bool {
	for _, id := range q.Agents {
		if id == agentID {
			return true
		}
	}
	return false
}

// CloneAll deep-copies a question slice.
func CloneAll(questions []Question) []Question {
	if len(questions) == 0 {
		return nil
	}
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out
}

// FromBank attributes every spec in an agent's bank to that agent.
func FromBank(agentID string, specs []Spec) []Question {
	out := make([]Question, 0, len(specs))
	for _, spec := range specs {
		out = append(out, Question{
			Text:          spec.Text,
			Options:       cloneOptions(spec.Options),
			DefaultAnswer: spec.DefaultAnswer,
			Agents:        []string{agentID},
		})
	}
	return out
}

// AssignIDs gives every question a stable ordinal identifier. Existing IDs
// are preserved so a resumed session never renumbers questions that were
// already answered under their old ID.
func AssignIDs(prefix string, questions []Question) {
	for i := range questions {
		if questions[i].ID == "" {
			questions[i].ID = fmt.Sprintf("%s-%02d", prefix, i+1)
		}
	}
}

func cloneOptions(options []Option) []Option {
	if len(options) == 0 {
		return nil
	}
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
