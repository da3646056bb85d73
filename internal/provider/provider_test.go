package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/ledger"
	"github.com/kingrea/The-Briefing/internal/question"
)

func testRoster() []agent.Agent {
	cat := agent.NewCatalog()
	agent.RegisterBuiltins(cat)
	return cat.All()
}

func TestStaticRecommendTeamIsDeterministic(t *testing.T) {
	vision := "A web dashboard with SSO login backed by a sync service"
	first, err := Static{}.RecommendTeam(context.Background(), vision, testRoster())
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	second, err := Static{}.RecommendTeam(context.Background(), vision, testRoster())
	if err != nil {
		t.Fatalf("second recommend: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("static recommendation should be deterministic")
	}
	picked := map[string]bool{}
	for _, p := range first.Recommended {
		picked[p.AgentID] = true
	}
	for _, want := range []string{"product", "frontend", "backend", "security"} {
		if !picked[want] {
			t.Fatalf("expected %s on the team for %q, got %+v", want, vision, first.Recommended)
		}
	}
	if len(first.Recommended)+len(first.NotNeeded) != len(testRoster()) {
		t.Fatalf("every roster agent must land in one list: %+v", first)
	}
}

func TestStaticAlwaysRecommendsProduct(t *testing.T) {
	rec, err := Static{}.RecommendTeam(context.Background(), "something vague", testRoster())
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(rec.Recommended) == 0 || rec.Recommended[0].AgentID != "product" {
		t.Fatalf("product strategist should always make the team, got %+v", rec.Recommended)
	}
}

func TestStaticFeedbackSeparatesOpenPoints(t *testing.T) {
	req := FeedbackRequest{
		Vision: "v",
		Agent:  agent.Agent{ID: "qa", Name: "QA Lead"},
		Answers: []ledger.Entry{
			{Question: question.Question{Text: "Which environments exist today?"}, Answer: "Staging only"},
			{Question: question.Question{Text: "What is the release cadence?"}, Skipped: true},
		},
	}
	text, err := Static{}.AgentFeedback(context.Background(), req)
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if !strings.Contains(text, "Staging only") {
		t.Fatalf("feedback should include answers, got:\n%s", text)
	}
	if !strings.Contains(text, "Still open:") || !strings.Contains(text, "release cadence") {
		t.Fatalf("feedback should flag skipped questions, got:\n%s", text)
	}
}

func TestStaticHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Static{}.RecommendTeam(ctx, "v", testRoster()); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestParseTeamLinesDropsUnknownAndDuplicateIDs(t *testing.T) {
	text := strings.Join([]string{
		"TEAM: backend | owns the sync service",
		"TEAM: backend | repeated verdict",
		"TEAM: wizard | not a real specialist",
		"noise line",
		"SKIP: data | no reporting needs",
	}, "\n")
	rec := parseTeamLines(text, testRoster())
	if len(rec.Recommended) != 1 || rec.Recommended[0].AgentID != "backend" {
		t.Fatalf("unexpected recommended set: %+v", rec.Recommended)
	}
	if rec.Recommended[0].Reason != "owns the sync service" {
		t.Fatalf("reason lost: %q", rec.Recommended[0].Reason)
	}
	if len(rec.NotNeeded) != 1 || rec.NotNeeded[0].AgentID != "data" {
		t.Fatalf("unexpected not-needed set: %+v", rec.NotNeeded)
	}
}

func TestParseTeamLinesCollectsBankReplacements(t *testing.T) {
	text := strings.Join([]string{
		"TEAM: security | handles patient data",
		"ASK: security | Which regulations apply to patient records?",
		"ASK: security | Who signs off on the audit trail?",
		"ASK: wizard | dropped, not on the roster",
		"ASK: security |",
	}, "\n")
	rec := parseTeamLines(text, testRoster())
	bank := rec.Questions["security"]
	if len(bank) != 2 {
		t.Fatalf("expected two replacement questions, got %+v", rec.Questions)
	}
	if bank[0].Text != "Which regulations apply to patient records?" {
		t.Fatalf("unexpected first replacement: %+v", bank[0])
	}
	if _, ok := rec.Questions["wizard"]; ok {
		t.Fatalf("unknown agents must not collect questions: %+v", rec.Questions)
	}
}

func TestParseQuestionLinesBuildsBlocks(t *testing.T) {
	text := strings.Join([]string{
		"Q: How fresh must synced data be?",
		"OPT: Real time | Seconds matter",
		"OPT: Hourly | Batch is fine",
		"DEFAULT: Hourly",
		"OPT before any question is ignored",
		"Q: Which timezone rules apply?",
	}, "\n")
	questions := parseQuestionLines(text)
	if len(questions) != 2 {
		t.Fatalf("expected two questions, got %+v", questions)
	}
	first := questions[0]
	if len(first.Options) != 2 || first.Options[1].Label != "Hourly" {
		t.Fatalf("options lost: %+v", first.Options)
	}
	if first.Options[0].Description != "Seconds matter" {
		t.Fatalf("option description lost: %+v", first.Options[0])
	}
	if first.DefaultAnswer != "Hourly" {
		t.Fatalf("default lost: %q", first.DefaultAnswer)
	}
	if questions[1].Text != "Which timezone rules apply?" {
		t.Fatalf("second question lost: %+v", questions[1])
	}
}

func newModelStub(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == "" {
			t.Errorf("expected api key header")
		}
		resp := messagesResponse{Content: []contentBlock{{Type: "text", Text: reply}}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRecommendTeamParsesReply(t *testing.T) {
	reply := "TEAM: product | frames the scope\nTEAM: backend | sync engine\nSKIP: design | no UI yet"
	stub := newModelStub(t, reply)
	p, err := NewHTTP(HTTPConfig{Endpoint: stub.URL, APIKey: "test-key", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new http provider: %v", err)
	}
	rec, err := p.RecommendTeam(context.Background(), "vision", testRoster())
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(rec.Recommended) != 2 || rec.Recommended[1].AgentID != "backend" {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
}

func TestHTTPRecommendTeamRejectsUselessReply(t *testing.T) {
	stub := newModelStub(t, "I cannot help with that.")
	p, err := NewHTTP(HTTPConfig{Endpoint: stub.URL, APIKey: "test-key", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new http provider: %v", err)
	}
	if _, err := p.RecommendTeam(context.Background(), "vision", testRoster()); err == nil {
		t.Fatalf("expected error for reply without TEAM lines")
	}
}

func TestHTTPSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	p, err := NewHTTP(HTTPConfig{Endpoint: srv.URL, APIKey: "test-key", Timeout: time.Second})
	if err != nil {
		t.Fatalf("new http provider: %v", err)
	}
	_, err = p.DynamicQuestions(context.Background(), "vision", nil)
	if err == nil || !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewHTTPRequiresAPIKey(t *testing.T) {
	if _, err := NewHTTP(HTTPConfig{}); err == nil {
		t.Fatalf("expected missing api key to fail")
	}
}
