package session

import (
	"time"

	"github.com/kingrea/The-Briefing/internal/ledger"
	"github.com/kingrea/The-Briefing/internal/question"
)

// Session captures everything gathered during one guided interview. The
// vision and phase fields always serialize, even when empty, because their
// presence is what distinguishes a real session document from junk.
type Session struct {
	ID     string `json:"id"`
	Vision string `json:"vision"`
	Phase  Phase  `json:"phase"`

	// Team selection. AgentReasons and NotNeeded hold the recommender's
	// rationale keyed by agent ID.
	SelectedAgents []string          `json:"selected_agents,omitempty"`
	AgentReasons   map[string]string `json:"agent_reasons,omitempty"`
	NotNeeded      map[string]string `json:"not_needed,omitempty"`

	// AgentQuestions holds per-agent banks the recommender supplied for
	// this vision. Agents absent from the map fall back to their static
	// bank from the catalog.
	AgentQuestions map[string][]question.Spec `json:"agent_questions,omitempty"`

	// Vision-specific clarifying questions and the cursor into them.
	DynamicQuestions []question.Question `json:"dynamic_questions,omitempty"`
	DynamicIndex     int                 `json:"dynamic_index,omitempty"`

	// The flattened guided queue, grouped by each question's primary
	// agent in team selection order, and the cursor into it.
	GuidedQuestions []question.Question `json:"guided_questions,omitempty"`
	GuidedIndex     int                 `json:"guided_index,omitempty"`

	// CurrentAgent is the specialist being interviewed, or the one whose
	// feedback round is on screen. Empty before guided Q&A begins.
	CurrentAgent string `json:"current_agent,omitempty"`

	// FeedbackNotes caches each specialist's read-back so a resumed
	// session does not regenerate it.
	FeedbackNotes map[string]string `json:"feedback_notes,omitempty"`

	Answers ledger.Ledger `json:"answers,omitempty"`

	// Briefing holds the compiled document once generated, making
	// repeated generation requests idempotent.
	Briefing string `json:"briefing,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh session at the vision phase.
func New(id string, now time.Time) Session {
	return Session{
		ID:        id,
		Phase:     PhaseVision,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can hand the session out without
// exposing internal state to mutation.
func (s Session) Clone() Session {
	s.SelectedAgents = cloneStrings(s.SelectedAgents)
	s.AgentReasons = cloneStringMap(s.AgentReasons)
	s.NotNeeded = cloneStringMap(s.NotNeeded)
	s.AgentQuestions = cloneSpecMap(s.AgentQuestions)
	s.DynamicQuestions = question.CloneAll(s.DynamicQuestions)
	s.GuidedQuestions = question.CloneAll(s.GuidedQuestions)
	s.FeedbackNotes = cloneStringMap(s.FeedbackNotes)
	s.Answers = s.Answers.Clone()
	return s
}

// Selected reports whether the agent is currently on the team.
func (s Session) Selected(agentID string) bool {
	for _, id := range s.SelectedAgents {
		if id == agentID {
			return true
		}
	}
	return false
}

// CurrentDynamic returns the clarifying question under the cursor.
func (s Session) CurrentDynamic() (question.Question, bool) {
	if s.DynamicIndex < 0 || s.DynamicIndex >= len(s.DynamicQuestions) {
		return question.Question{}, false
	}
	return s.DynamicQuestions[s.DynamicIndex].Clone(), true
}

// CurrentGuided returns the guided question under the cursor.
func (s Session) CurrentGuided() (question.Question, bool) {
	if s.GuidedIndex < 0 || s.GuidedIndex >= len(s.GuidedQuestions) {
		return question.Question{}, false
	}
	return s.GuidedQuestions[s.GuidedIndex].Clone(), true
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func cloneSpecMap(values map[string][]question.Spec) map[string][]question.Spec {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string][]question.Spec, len(values))
	for k, v := range values {
		out[k] = question.CloneSpecs(v)
	}
	return out
}
