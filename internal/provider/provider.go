// Package provider supplies the model-driven pieces of the interview:
// which specialists fit a vision, vision-specific clarifying questions,
// and each specialist's read-back at the end of its question round.
package provider

import (
	"context"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/ledger"
	"github.com/kingrea/The-Briefing/internal/question"
)

// AgentPick pairs an agent with the recommender's rationale.
type AgentPick struct {
	AgentID string
	Reason  string
}

// TeamRecommendation is the provider's verdict on the available roster.
// Every roster agent lands in exactly one of the two lists. Questions
// optionally replaces an agent's static bank with vision-specific
// entries; agents absent from the map keep their catalog bank.
type TeamRecommendation struct {
	Recommended []AgentPick
	NotNeeded   []AgentPick
	Questions   map[string][]question.Spec
}

// FeedbackRequest carries everything a specialist needs to read back its
// round. Answers is the agent's resolved slice of the ledger, skips
// included.
type FeedbackRequest struct {
	Vision  string
	Agent   agent.Agent
	Answers []ledger.Entry
}

// Provider generates the interview content that cannot be precomputed.
// Implementations must be safe for concurrent use and must honor context
// cancellation so an abandoned call can be cut loose.
type Provider interface {
	RecommendTeam(ctx context.Context, vision string, roster []agent.Agent) (TeamRecommendation, error)
	DynamicQuestions(ctx context.Context, vision string, team []agent.Agent) ([]question.Question, error)
	AgentFeedback(ctx context.Context, req FeedbackRequest) (string, error)
}
