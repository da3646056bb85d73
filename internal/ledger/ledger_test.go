package ledger

import (
	"testing"
	"time"

	"github.com/kingrea/The-Briefing/internal/question"
)

var testTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func q(id, text string, agents ...string) question.Question {
	return question.Question{ID: id, Text: text, Agents: agents}
}

func TestLedgerIsAppendOnly(t *testing.T) {
	var l Ledger
	l.Record(q("gq-01", "How will users authenticate?", "backend"), "SSO", testTime)
	l.Record(q("gq-01", "How will users authenticate?", "backend"), "SSO via Okta", testTime.Add(time.Minute))
	if l.Len() != 2 {
		t.Fatalf("corrections must append, got %d entries", l.Len())
	}
	entries := l.Entries()
	if entries[0].Answer != "SSO" || entries[1].Answer != "SSO via Okta" {
		t.Fatalf("history order lost: %+v", entries)
	}
}

func TestResolvedKeepsLatestAnswerPerQuestion(t *testing.T) {
	var l Ledger
	l.Record(q("gq-01", "How will users authenticate?", "backend"), "SSO", testTime)
	l.Record(q("gq-02", "Which environments exist today?", "qa"), "Staging only", testTime)
	l.Record(q("gq-01", "How will users authenticate?", "backend"), "SSO via Okta", testTime.Add(time.Minute))
	resolved := l.Resolved()
	if len(resolved) != 2 {
		t.Fatalf("expected two resolved questions, got %d", len(resolved))
	}
	if resolved[0].Question.ID != "gq-01" || resolved[0].Answer != "SSO via Okta" {
		t.Fatalf("expected latest answer in first-asked position, got %+v", resolved[0])
	}
	if resolved[1].Question.ID != "gq-02" {
		t.Fatalf("expected gq-02 second, got %+v", resolved[1])
	}
}

func TestSkipBecomesOpenPointUntilAnswered(t *testing.T) {
	var l Ledger
	l.Skip(q("gq-03", "What is the expected load at launch, roughly?", "devops"), "client could not say", testTime)
	open := l.OpenPoints()
	if len(open) != 1 || open[0].Question.ID != "gq-03" {
		t.Fatalf("expected one open point, got %+v", open)
	}
	if open[0].Note != "client could not say" {
		t.Fatalf("skip note lost: %+v", open[0])
	}
	l.Record(q("gq-03", "What is the expected load at launch, roughly?", "devops"), "A few hundred users", testTime.Add(time.Minute))
	if open := l.OpenPoints(); len(open) != 0 {
		t.Fatalf("answered question should no longer be open, got %+v", open)
	}
}

func TestRecordChoiceKeepsLabelsAndRendersAnswer(t *testing.T) {
	var l Ledger
	platform := question.Question{
		ID:   "gq-05",
		Text: "What platforms must be supported at launch?",
		Options: []question.Option{
			{Label: "Web"},
			{Label: "iOS"},
			{Label: "Android"},
		},
		Agents: []string{"frontend"},
	}
	l.RecordChoice(platform, []string{"Web", "iOS"}, "", testTime)
	l.RecordChoice(platform, []string{"Web"}, "desktop later if budget allows", testTime.Add(time.Minute))

	entries := l.Entries()
	if entries[0].Answer != "Web, iOS" || len(entries[0].Values) != 2 {
		t.Fatalf("unexpected choice entry: %+v", entries[0])
	}
	if entries[1].Answer != "Web (desktop later if budget allows)" {
		t.Fatalf("custom text should extend the rendered answer, got %q", entries[1].Answer)
	}
	resolved := l.Resolved()
	if len(resolved) != 1 || resolved[0].Values[0] != "Web" {
		t.Fatalf("latest choice should win: %+v", resolved)
	}
}

func TestAutoFillRecordsDefaultAndFlag(t *testing.T) {
	var l Ledger
	auto := question.Question{
		ID:            "gq-04",
		Text:          "Who gets paged when it breaks at 3am?",
		DefaultAnswer: "No on-call rotation yet",
		Agents:        []string{"devops"},
	}
	l.AutoFill(auto, testTime)
	entries := l.Entries()
	if entries[0].Answer != "No on-call rotation yet" || !entries[0].AutoFilled {
		t.Fatalf("autofill should record the default answer with the flag, got %+v", entries[0])
	}
	if open := l.OpenPoints(); len(open) != 0 {
		t.Fatalf("autofilled questions are answered, not open: %+v", open)
	}
}

func TestForAgentFiltersByInterestSet(t *testing.T) {
	var l Ledger
	shared := q("gq-01", "How will users authenticate?", "backend", "security")
	l.Record(shared, "Magic links", testTime)
	l.Record(q("gq-02", "What platforms must be supported?", "frontend"), "Web only", testTime)
	l.Skip(q("gq-03", "Are there compliance or privacy constraints on the data?", "security", "data"), "", testTime)

	security := l.ForAgent("security")
	if len(security) != 2 {
		t.Fatalf("expected two entries for security, got %d", len(security))
	}
	if security[0].Question.ID != "gq-01" || security[1].Question.ID != "gq-03" {
		t.Fatalf("unexpected entries for security: %+v", security)
	}
	if frontend := l.ForAgent("frontend"); len(frontend) != 1 {
		t.Fatalf("expected one entry for frontend, got %+v", frontend)
	}
	if ghost := l.ForAgent("ghost"); len(ghost) != 0 {
		t.Fatalf("unknown agent should see nothing, got %+v", ghost)
	}
}

func TestEntriesWithoutIDsResolveByNormalizedText(t *testing.T) {
	var l Ledger
	l.Skip(question.Question{Text: "What is the release cadence?"}, "", testTime)
	l.Record(question.Question{Text: "what is the release cadence"}, "Weekly", testTime.Add(time.Minute))
	if open := l.OpenPoints(); len(open) != 0 {
		t.Fatalf("normalized text should tie the answer to the skip, got %+v", open)
	}
	resolved := l.Resolved()
	if len(resolved) != 1 || resolved[0].Answer != "Weekly" {
		t.Fatalf("expected a single resolved answer, got %+v", resolved)
	}
}
