// Package brief compiles a finished interview into the final briefing
// document. Build is pure: the same input always produces the same
// document, and gaps in the interview render as open points instead of
// failing the compile.
package brief

import (
	"time"

	"github.com/kingrea/The-Briefing/internal/ledger"
	"github.com/kingrea/The-Briefing/internal/question"
)

// Member is one panel verdict, recommended or not.
type Member struct {
	ID     string
	Name   string
	Reason string
}

// Input carries everything the compiler needs. The caller supplies the
// timestamp so building stays repeatable.
type Input struct {
	SessionID   string
	Vision      string
	GeneratedAt time.Time
	Project     ProjectMeta
	Team        []Member
	NotNeeded   []Member
	Dynamic     []question.Question
	Guided      []question.Question
	Answers     ledger.Ledger
	Feedback    map[string]string
}

// Exchange is a rendered question and its outcome. Note carries the
// reason given when the question was skipped.
type Exchange struct {
	Question string
	Answer   string
	Note     string
	Skipped  bool
	Assumed  bool
	Missing  bool
}

// Round groups the guided exchanges led by one specialist.
type Round struct {
	AgentID   string
	AgentName string
	Exchanges []Exchange
}

// Note is one specialist's read-back.
type Note struct {
	AgentID   string
	AgentName string
	Text      string
}

// Document is the compiled briefing.
type Document struct {
	Title          string
	SessionID      string
	GeneratedAt    time.Time
	Project        ProjectMeta
	Vision         string
	Team           []Member
	NotNeeded      []Member
	Clarifications []Exchange
	Rounds         []Round
	Feedback       []Note
	OpenPoints     []string
}

// Build compiles the document. Questions without a ledger entry and
// questions whose latest entry is a skip both surface as open points.
func Build(in Input) Document {
	resolved := map[string]ledger.Entry{}
	for _, e := range in.Answers.Resolved() {
		resolved[entryKey(e.Question)] = e
	}

	doc := Document{
		Title:       "Project Briefing",
		SessionID:   in.SessionID,
		GeneratedAt: in.GeneratedAt,
		Project:     in.Project,
		Vision:      in.Vision,
		Team:        append([]Member(nil), in.Team...),
		NotNeeded:   append([]Member(nil), in.NotNeeded...),
	}
	if doc.Project.Name != "" {
		doc.Title = doc.Project.Name + " Briefing"
	}

	for _, q := range in.Dynamic {
		ex := renderExchange(q, resolved)
		doc.Clarifications = append(doc.Clarifications, ex)
		if ex.Skipped || ex.Missing {
			doc.OpenPoints = append(doc.OpenPoints, openPoint(ex))
		}
	}

	for _, m := range in.Team {
		round := Round{AgentID: m.ID, AgentName: m.Name}
		for _, q := range in.Guided {
			if q.PrimaryAgent() != m.ID {
				continue
			}
			ex := renderExchange(q, resolved)
			round.Exchanges = append(round.Exchanges, ex)
			if ex.Skipped || ex.Missing {
				doc.OpenPoints = append(doc.OpenPoints, openPoint(ex))
			}
		}
		if len(round.Exchanges) > 0 {
			doc.Rounds = append(doc.Rounds, round)
		}
		if text, ok := in.Feedback[m.ID]; ok && text != "" {
			doc.Feedback = append(doc.Feedback, Note{AgentID: m.ID, AgentName: m.Name, Text: text})
		}
	}

	return doc
}

func renderExchange(q question.Question, resolved map[string]ledger.Entry) Exchange {
	ex := Exchange{Question: q.Text}
	e, ok := resolved[entryKey(q)]
	if !ok {
		ex.Missing = true
		return ex
	}
	if e.Skipped {
		ex.Skipped = true
		ex.Note = e.Note
		return ex
	}
	ex.Answer = e.Answer
	ex.Assumed = e.AutoFilled
	return ex
}

func openPoint(ex Exchange) string {
	if ex.Note != "" {
		return ex.Question + " (" + ex.Note + ")"
	}
	return ex.Question
}

func entryKey(q question.Question) string {
	if q.ID != "" {
		return q.ID
	}
	return question.Normalize(q.Text)
}
