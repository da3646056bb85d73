package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/question"
)

// AgentDefinition describes a specialist agent loaded from a pack file.
//
// The struct mirrors the on-disk schema under .briefing/agents/*.yaml and
// is intentionally narrow so the loader can validate pack metadata before
// wiring it into the interview catalog.
type AgentDefinition struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Questions   []question.Spec `json:"questions,omitempty" yaml:"questions,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the definition.
func (def AgentDefinition) Normalized() AgentDefinition {
	clone := AgentDefinition{
		ID:          strings.TrimSpace(def.ID),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
	}
	if len(def.Questions) > 0 {
		clone.Questions = make([]question.Spec, 0, len(def.Questions))
		for _, spec := range def.Questions {
			clone.Questions = append(clone.Questions, normalizeSpec(spec))
		}
	}
	return clone
}

// Validate ensures the pack definition can join the interview roster.
// Agents without questions are allowed; they still review answers and
// give feedback during their round.
func (def AgentDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if err := normalized.Agent().Validate(); err != nil {
		return fmt.Errorf("plugin %s: %w", normalized.ID, err)
	}
	for qi, spec := range normalized.Questions {
		for oi, opt := range spec.Options {
			if opt.Label == "" {
				return fmt.Errorf("plugin %s: question %d option %d has no label", normalized.ID, qi+1, oi+1)
			}
		}
	}
	return nil
}

// Agent converts the definition into a catalog entry.
func (def AgentDefinition) Agent() agent.Agent {
	return agent.Agent{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Questions:   question.CloneSpecs(def.Questions),
	}
}

func normalizeSpec(spec question.Spec) question.Spec {
	clone := question.Spec{
		Text:          strings.TrimSpace(spec.Text),
		DefaultAnswer: strings.TrimSpace(spec.DefaultAnswer),
	}
	if len(spec.Options) > 0 {
		clone.Options = make([]question.Option, 0, len(spec.Options))
		for _, opt := range spec.Options {
			clone.Options = append(clone.Options, question.Option{
				Label:       strings.TrimSpace(opt.Label),
				Description: strings.TrimSpace(opt.Description),
			})
		}
	}
	return clone
}
