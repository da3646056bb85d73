package brief

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kingrea/The-Briefing/internal/ledger"
	"github.com/kingrea/The-Briefing/internal/question"
)

var generatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleInput() Input {
	dynamic := []question.Question{
		{ID: "dq-01", Text: "Who are the first ten users going to be?"},
	}
	guided := []question.Question{
		{ID: "gq-01", Text: "How will users authenticate?", Agents: []string{"backend", "security"}},
		{ID: "gq-02", Text: "What data must never be lost, even in a crash?", Agents: []string{"backend"}},
		{ID: "gq-03", Text: "Are there compliance or privacy constraints on the data?", Agents: []string{"security"}},
	}
	var answers ledger.Ledger
	answers.Record(dynamic[0], "The platform team", generatedAt)
	answers.Record(guided[0], "SSO via Okta", generatedAt)
	answers.AutoFill(question.Question{ID: "gq-02", Text: guided[1].Text, DefaultAnswer: "Audit history", Agents: []string{"backend"}}, generatedAt)
	answers.Skip(guided[2], "", generatedAt)

	return Input{
		SessionID:   "sess-1",
		Vision:      "A sync service for design assets",
		GeneratedAt: generatedAt,
		Team: []Member{
			{ID: "backend", Name: "Backend Engineer", Reason: "owns the sync service"},
			{ID: "security", Name: "Security Reviewer", Reason: "SSO and asset privacy"},
		},
		NotNeeded: []Member{{ID: "data", Name: "Data Analyst", Reason: "no reporting needs"}},
		Dynamic:   dynamic,
		Guided:    guided,
		Answers:   answers,
		Feedback: map[string]string{
			"backend":  "Sync conflicts need a policy before build starts.",
			"security": "Asset ACLs are still undecided.",
		},
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	first := Build(sampleInput())
	second := Build(sampleInput())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("build should be deterministic")
	}
	if first.Markdown() != second.Markdown() {
		t.Fatalf("markdown should be deterministic")
	}
}

func TestBuildGroupsRoundsByPrimaryAgent(t *testing.T) {
	doc := Build(sampleInput())
	if len(doc.Rounds) != 2 {
		t.Fatalf("expected two rounds, got %d", len(doc.Rounds))
	}
	backend := doc.Rounds[0]
	if backend.AgentID != "backend" || len(backend.Exchanges) != 2 {
		t.Fatalf("unexpected backend round: %+v", backend)
	}
	security := doc.Rounds[1]
	if security.AgentID != "security" || len(security.Exchanges) != 1 {
		t.Fatalf("shared question must not repeat in the security round: %+v", security)
	}
}

func TestBuildCollectsOpenPoints(t *testing.T) {
	doc := Build(sampleInput())
	if len(doc.OpenPoints) != 1 || !strings.Contains(doc.OpenPoints[0], "compliance") {
		t.Fatalf("expected the skipped question as the open point, got %v", doc.OpenPoints)
	}
}

func TestSkipReasonsTravelIntoOpenPoints(t *testing.T) {
	in := sampleInput()
	in.Answers.Skip(question.Question{ID: "gq-03", Text: "Are there compliance or privacy constraints on the data?", Agents: []string{"security"}},
		"legal review pending", generatedAt.Add(time.Minute))
	doc := Build(in)
	if len(doc.OpenPoints) != 1 || !strings.Contains(doc.OpenPoints[0], "(legal review pending)") {
		t.Fatalf("skip reason should annotate the open point, got %v", doc.OpenPoints)
	}
	if !strings.Contains(doc.Markdown(), "_Skipped: legal review pending_") {
		t.Fatalf("skip reason should render in the exchange")
	}
}

func TestBuildRendersUnansweredQuestionsInsteadOfFailing(t *testing.T) {
	in := sampleInput()
	in.Answers = nil
	doc := Build(in)
	if len(doc.OpenPoints) != 4 {
		t.Fatalf("every question should be open when nothing was answered, got %v", doc.OpenPoints)
	}
	md := doc.Markdown()
	if !strings.Contains(md, "_No answer recorded._") {
		t.Fatalf("missing answers should render explicitly:\n%s", md)
	}
}

func TestBuildFeedbackFollowsTeamOrder(t *testing.T) {
	doc := Build(sampleInput())
	if len(doc.Feedback) != 2 || doc.Feedback[0].AgentID != "backend" || doc.Feedback[1].AgentID != "security" {
		t.Fatalf("feedback should follow team order, got %+v", doc.Feedback)
	}
}

func TestMarkdownRendersAllSections(t *testing.T) {
	md := Build(sampleInput()).Markdown()
	for _, want := range []string{
		"# Project Briefing",
		"## Vision",
		"A sync service for design assets",
		"## Panel",
		"**Backend Engineer**: owns the sync service",
		"Not needed this time:",
		"## Clarifications",
		"The platform team",
		"## Backend Engineer",
		"SSO via Okta",
		"Audit history _(assumed default)_",
		"_Skipped during the interview._",
		"## Specialist Notes",
		"Sync conflicts need a policy",
		"## Open Points",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownWithNoOpenPoints(t *testing.T) {
	in := sampleInput()
	in.Answers.Record(question.Question{ID: "gq-03", Text: "Are there compliance or privacy constraints on the data?", Agents: []string{"security"}}, "GDPR applies", generatedAt.Add(time.Minute))
	doc := Build(in)
	if len(doc.OpenPoints) != 0 {
		t.Fatalf("late answer should clear the open point, got %v", doc.OpenPoints)
	}
	if !strings.Contains(doc.Markdown(), "None. Every question was answered.") {
		t.Fatalf("expected the no-open-points line")
	}
}

func TestProjectMetaHeadsTheDocument(t *testing.T) {
	in := sampleInput()
	in.Project = ProjectMeta{Name: "Atlas", Client: "Nordwind GmbH", Tags: []string{"sync", "b2b"}}
	md := Build(in).Markdown()
	for _, want := range []string{
		"# Atlas Briefing",
		"Client: Nordwind GmbH",
		"Tags: sync, b2b",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestLoadProjectMeta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	if meta, err := LoadProjectMeta(path); err != nil || !meta.IsZero() {
		t.Fatalf("missing file should yield zero meta, got %+v %v", meta, err)
	}
	content := "name = \"Atlas\"\nclient = \"Nordwind GmbH\"\ntags = [\"sync\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}
	meta, err := LoadProjectMeta(path)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.Name != "Atlas" || meta.Client != "Nordwind GmbH" || len(meta.Tags) != 1 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if err := os.WriteFile(path, []byte("name = [broken"), 0o644); err != nil {
		t.Fatalf("write broken meta: %v", err)
	}
	if _, err := LoadProjectMeta(path); err == nil {
		t.Fatalf("broken toml should fail loudly")
	}
}

func TestExporterWritesDocumentAndSidecar(t *testing.T) {
	dir := t.TempDir()
	doc := Build(sampleInput())
	path, err := NewExporter(dir).Export(doc)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "briefing-sess-1.md" {
		t.Fatalf("unexpected export path %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported briefing: %v", err)
	}
	if !strings.Contains(string(data), "# Project Briefing") {
		t.Fatalf("exported document looks wrong:\n%s", data)
	}

	var meta Meta
	if _, err := toml.DecodeFile(filepath.Join(dir, "briefing-sess-1.toml"), &meta); err != nil {
		t.Fatalf("decode sidecar: %v", err)
	}
	if meta.SessionID != "sess-1" || meta.OpenPoints != 1 || meta.Document != "briefing-sess-1.md" {
		t.Fatalf("unexpected sidecar: %+v", meta)
	}
	if len(meta.Agents) != 2 || meta.Agents[0] != "backend" {
		t.Fatalf("sidecar agents wrong: %+v", meta.Agents)
	}
}
