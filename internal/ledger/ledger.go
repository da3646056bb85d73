// Package ledger keeps the append-only record of interview exchanges.
//
// Nothing is ever rewritten in place: corrections and late answers are
// appended, and readers resolve each question to its most recent entry.
// Skipped questions stay in the ledger as open points instead of being
// dropped, so the final briefing can surface what was never decided.
package ledger

import (
	"strings"
	"time"

	"github.com/kingrea/The-Briefing/internal/question"
)

// Entry is one recorded exchange. Answers picked from a question's
// option list keep the chosen labels in Values; free-text answers live
// in Answer alone. Skips may carry a short Note explaining the gap.
type Entry struct {
	Question   question.Question `json:"question"`
	Answer     string            `json:"answer,omitempty"`
	Values     []string          `json:"values,omitempty"`
	Note       string            `json:"note,omitempty"`
	Skipped    bool              `json:"skipped,omitempty"`
	AutoFilled bool              `json:"auto_filled,omitempty"`
	AnsweredAt time.Time         `json:"answered_at"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	e.Question = e.Question.Clone()
	if len(e.Values) > 0 {
		e.Values = append([]string(nil), e.Values...)
	}
	return e
}

// key identifies the question an entry belongs to. Later entries with the
// same key supersede earlier ones when the ledger is resolved.
func (e Entry) key() string {
	if e.Question.ID != "" {
		return e.Question.ID
	}
	return question.Normalize(e.Question.Text)
}

// Ledger is the append-only list of entries, in the order they happened.
// It serializes as a plain JSON array inside the session document.
type Ledger []Entry

// Record appends a free-text answer for the question.
func (l *Ledger) Record(q question.Question, answer string, at time.Time) {
	*l = append(*l, Entry{Question: q.Clone(), Answer: answer, AnsweredAt: at})
}

// RecordChoice appends an answer picked from the question's options,
// optionally extended with custom text. The chosen labels are kept
// verbatim in Values; Answer carries the rendered form.
func (l *Ledger) RecordChoice(q question.Question, values []string, custom string, at time.Time) {
	e := Entry{Question: q.Clone(), AnsweredAt: at}
	if len(values) > 0 {
		e.Values = append([]string(nil), values...)
	}
	e.Answer = choiceText(values, custom)
	*l = append(*l, e)
}

// AutoFill appends the question's declared default answer, marked so
// downstream documents can flag it as assumed rather than given.
func (l *Ledger) AutoFill(q question.Question, at time.Time) {
	*l = append(*l, Entry{
		Question:   q.Clone(),
		Answer:     q.DefaultAnswer,
		AutoFilled: true,
		AnsweredAt: at,
	})
}

// Skip appends the question unanswered, with an optional note on why.
// It stays visible as an open point until a later entry answers the
// same question.
func (l *Ledger) Skip(q question.Question, reason string, at time.Time) {
	*l = append(*l, Entry{
		Question:   q.Clone(),
		Note:       strings.TrimSpace(reason),
		Skipped:    true,
		AnsweredAt: at,
	})
}

// Len reports how many entries have been appended.
func (l Ledger) Len() int { return len(l) }

// Entries returns the raw append-only history.
func (l Ledger) Entries() []Entry {
	out := make([]Entry, len(l))
	for i, e := range l {
		out[i] = e.Clone()
	}
	return out
}

// Clone deep-copies the ledger.
func (l Ledger) Clone() Ledger {
	if len(l) == 0 {
		return nil
	}
	return Ledger(l.Entries())
}

// Resolved collapses the history to one entry per question: the most
// recent one, in first-asked order.
func (l Ledger) Resolved() []Entry {
	last := make(map[string]int, len(l))
	order := make([]string, 0, len(l))
	for i, e := range l {
		key := e.key()
		if key == "" {
			continue
		}
		if _, seen := last[key]; !seen {
			order = append(order, key)
		}
		last[key] = i
	}
	out := make([]Entry, 0, len(order))
	for _, key := range order {
		out = append(out, l[last[key]].Clone())
	}
	return out
}

// ForAgent returns the resolved entries whose question names the agent in
// its interest set.
func (l Ledger) ForAgent(agentID string) []Entry {
	var out []Entry
	for _, e := range l.Resolved() {
		if e.Question.Concerns(agentID) {
			out = append(out, e)
		}
	}
	return out
}

// OpenPoints lists the questions whose latest entry is still a skip.
func (l Ledger) OpenPoints() []Entry {
	var out []Entry
	for _, e := range l.Resolved() {
		if e.Skipped {
			out = append(out, e)
		}
	}
	return out
}

func choiceText(values []string, custom string) string {
	custom = strings.TrimSpace(custom)
	switch {
	case len(values) == 0:
		return custom
	case custom == "":
		return strings.Join(values, ", ")
	default:
		return strings.Join(values, ", ") + " (" + custom + ")"
	}
}
