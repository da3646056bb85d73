package session

// Phase identifies one stage of the guided interview. Phases serialize as
// strings so a persisted session stays readable and a hand-edited or
// corrupted value is detectable on load.
type Phase string

const (
	PhaseVision           Phase = "vision"
	PhaseTeamSetup        Phase = "team-setup"
	PhaseDynamicQuestions Phase = "dynamic-questions"
	PhaseGuidedQA         Phase = "guided-qa"
	PhaseAgentFeedback    Phase = "agent-feedback"
	PhaseSummary          Phase = "summary"
	PhaseBriefing         Phase = "briefing"
)

// AllPhases lists every phase in interview order.
func AllPhases() []Phase {
	return []Phase{
		PhaseVision,
		PhaseTeamSetup,
		PhaseDynamicQuestions,
		PhaseGuidedQA,
		PhaseAgentFeedback,
		PhaseSummary,
		PhaseBriefing,
	}
}

// Valid reports whether the phase is one of the known stages.
func (p Phase) Valid() bool {
	switch p {
	case PhaseVision, PhaseTeamSetup, PhaseDynamicQuestions, PhaseGuidedQA,
		PhaseAgentFeedback, PhaseSummary, PhaseBriefing:
		return true
	default:
		return false
	}
}

func (p Phase) String() string {
	return string(p)
}

// FriendlyName returns a short label suitable for menu display.
func (p Phase) FriendlyName() string {
	switch p {
	case PhaseVision:
		return "Project Vision"
	case PhaseTeamSetup:
		return "Team Setup"
	case PhaseDynamicQuestions:
		return "Clarifying Questions"
	case PhaseGuidedQA:
		return "Guided Q&A"
	case PhaseAgentFeedback:
		return "Specialist Feedback"
	case PhaseSummary:
		return "Summary"
	case PhaseBriefing:
		return "Briefing"
	default:
		return "Unknown"
	}
}

// Ordinal returns the 1-based position of the phase in the interview, or 0
// for an unknown phase. Used for progress display.
func (p Phase) Ordinal() int {
	for i, known := range AllPhases() {
		if p == known {
			return i + 1
		}
	}
	return 0
}

// IsResumable reports whether a persisted session in this phase is worth
// offering to resume. A finished briefing is terminal.
func (p Phase) IsResumable() bool {
	return p.Valid() && p != PhaseBriefing
}

// IsTerminal reports whether the interview is complete.
func (p Phase) IsTerminal() bool {
	return p == PhaseBriefing
}
