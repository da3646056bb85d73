package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/ledger"
	"github.com/kingrea/The-Briefing/internal/question"
)

// Static serves deterministic interview content with no network calls.
// It backs offline runs and the test suite: the same vision always yields
// the same team and the same questions.
type Static struct{}

// NewStatic returns the offline provider.
func NewStatic() Static { return Static{} }

// signalWords maps built-in agent IDs to the vision keywords that argue
// for putting them on the team. Agents outside this map (plugin packs)
// are recommended when their own ID or name appears in the vision.
var signalWords = map[string][]string{
	"product":  {},
	"design":   {"design", "ux", "interface", "workflow", "journey"},
	"backend":  {"api", "service", "server", "database", "storage", "sync", "integration"},
	"frontend": {"web", "ui", "app", "dashboard", "browser", "mobile", "terminal"},
	"security": {"auth", "login", "security", "private", "compliance", "payment", "secret"},
	"qa":       {"quality", "test", "reliable", "critical", "safety"},
	"devops":   {"deploy", "cloud", "scale", "infrastructure", "host", "kubernetes", "ops"},
	"data":     {"analytics", "metrics", "data", "report", "insight"},
}

// RecommendTeam scores each roster agent against the vision text. The
// product strategist is always recommended so every interview has at
// least one specialist.
func (Static) RecommendTeam(ctx context.Context, vision string, roster []agent.Agent) (TeamRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return TeamRecommendation{}, err
	}
	lowered := strings.ToLower(vision)
	var rec TeamRecommendation
	for _, a := range roster {
		if word, ok := matchSignal(lowered, a); ok {
			rec.Recommended = append(rec.Recommended, AgentPick{
				AgentID: a.ID,
				Reason:  fmt.Sprintf("the vision mentions %q", word),
			})
			continue
		}
		rec.NotNeeded = append(rec.NotNeeded, AgentPick{
			AgentID: a.ID,
			Reason:  fmt.Sprintf("no %s signals in the vision", a.Name),
		})
	}
	return rec, nil
}

func matchSignal(lowered string, a agent.Agent) (string, bool) {
	words, known := signalWords[a.ID]
	if !known {
		words = []string{strings.ToLower(a.ID), strings.ToLower(a.Name)}
	}
	if known && len(words) == 0 {
		// Always-on agents, currently just the product strategist.
		return "the project itself", true
	}
	for _, word := range words {
		if word != "" && strings.Contains(lowered, word) {
			return word, true
		}
	}
	return "", false
}

// DynamicQuestions returns a fixed set of clarifying probes. They are
// intentionally vision-agnostic: the offline provider cannot analyze the
// vision, so it asks the questions that are almost always missing.
func (Static) DynamicQuestions(ctx context.Context, vision string, team []agent.Agent) ([]question.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []question.Question{
		{Text: "What problem does this solve that existing tools do not?"},
		{Text: "Who are the first ten users going to be?"},
		{
			Text: "What is the smallest version you would still consider shipping?",
			Options: []question.Option{
				{Label: "Walking skeleton", Description: "End to end, one happy path"},
				{Label: "Single feature", Description: "One polished capability"},
				{Label: "Full scope", Description: "Nothing ships until it is all there"},
			},
		},
	}, nil
}

// AgentFeedback renders a templated read-back of the agent's answers.
func (Static) AgentFeedback(ctx context.Context, req FeedbackRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s notes:\n", req.Agent.Name)
	var open []ledger.Entry
	for _, e := range req.Answers {
		if e.Skipped {
			open = append(open, e)
			continue
		}
		answer := e.Answer
		if e.AutoFilled {
			answer += " (assumed)"
		}
		fmt.Fprintf(&b, "- %s %s\n", e.Question.Text, answer)
	}
	if len(open) > 0 {
		b.WriteString("Still open:\n")
		for _, e := range open {
			fmt.Fprintf(&b, "- %s\n", e.Question.Text)
		}
	}
	if len(req.Answers) == 0 {
		b.WriteString("- nothing recorded for this specialist yet\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
