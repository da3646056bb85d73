package httpbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/config"
	"github.com/kingrea/The-Briefing/internal/interview"
	"github.com/kingrea/The-Briefing/internal/provider"
	"github.com/kingrea/The-Briefing/internal/question"
	"github.com/kingrea/The-Briefing/internal/session"
)

func TestSettingsFromConfigHonorsEnv(t *testing.T) {
	t.Setenv("BRIEFING_BRIDGE_PORT", "9001")
	t.Setenv("BRIEFING_BRIDGE_HOST", "0.0.0.0")
	t.Setenv("BRIEFING_BRIDGE_ENABLED", "false")
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	settings := SettingsFromConfig(cfg)
	if settings.Port != 9001 {
		t.Fatalf("expected port 9001, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if settings.Enabled {
		t.Fatalf("expected enabled=false from env override")
	}
}

func TestSettingsFromConfigParsesBridgeAddr(t *testing.T) {
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Project.Bridge.Addr = "192.168.1.20:9200"
	settings := SettingsFromConfig(cfg)
	if settings.Host != "192.168.1.20" || settings.Port != 9200 {
		t.Fatalf("expected addr parsed into host/port, got %s:%d", settings.Host, settings.Port)
	}
}

func TestBridgeDrivesAnInterview(t *testing.T) {
	t.Parallel()
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	_, base := startTestServer(t, testController(t, store))

	var health healthResponse
	getJSON(t, base+"/health", &health)
	if health.Status != string(StatusReady) || health.Phase != string(session.PhaseVision) {
		t.Fatalf("unexpected health: %+v", health)
	}

	var snap sessionResponse
	postJSON(t, base+"/vision", visionRequest{Vision: "A sync api for field crews"}, http.StatusOK, &snap)
	if snap.Session.Phase != session.PhaseTeamSetup {
		t.Fatalf("expected team setup after vision, got %s", snap.Session.Phase)
	}
	if !snap.Session.Selected("backend") {
		t.Fatalf("expected backend preselected, got %v", snap.Session.SelectedAgents)
	}

	var roster []rosterAgent
	getJSON(t, base+"/agents", &roster)
	if len(roster) != 2 {
		t.Fatalf("expected 2 roster agents, got %d", len(roster))
	}
	for _, a := range roster {
		if a.ID == "qa" && (a.Selected || a.NotNeeded == "") {
			t.Fatalf("expected qa unselected with a not-needed reason, got %+v", a)
		}
	}

	postJSON(t, base+"/team/qa/toggle", nil, http.StatusOK, &snap)
	if !snap.Session.Selected("qa") {
		t.Fatalf("toggle did not add qa: %v", snap.Session.SelectedAgents)
	}

	postJSON(t, base+"/team/confirm", nil, http.StatusOK, &snap)
	if snap.Session.Phase != session.PhaseDynamicQuestions {
		t.Fatalf("expected dynamic questions after confirm, got %s", snap.Session.Phase)
	}
	if snap.Question == nil {
		t.Fatalf("expected a current question after confirm")
	}

	// Three clarifying probes from the offline provider: two free-text,
	// one multiple choice.
	postJSON(t, base+"/answers", answerRequest{Text: "Nothing handles offline sync"}, http.StatusOK, &snap)
	postJSON(t, base+"/answers", answerRequest{Text: "Two pilot crews in Denver"}, http.StatusOK, &snap)
	postJSON(t, base+"/answers", answerRequest{Values: []string{"Walking skeleton"}}, http.StatusOK, &snap)
	if snap.Session.Phase != session.PhaseGuidedQA {
		t.Fatalf("expected guided qa after dynamic probes, got %s", snap.Session.Phase)
	}
	if snap.Session.CurrentAgent != "backend" {
		t.Fatalf("expected backend round first, got %q", snap.Session.CurrentAgent)
	}

	postJSON(t, base+"/answers", answerRequest{Auto: true}, http.StatusOK, &snap)
	if snap.Session.Phase != session.PhaseAgentFeedback {
		t.Fatalf("expected feedback after backend's only question, got %s", snap.Session.Phase)
	}

	var fb feedbackResponse
	getJSON(t, base+"/feedback", &fb)
	if fb.Agent != "backend" || !strings.Contains(fb.Digest, "Backend Engineer") {
		t.Fatalf("unexpected feedback payload: %+v", fb)
	}

	postJSON(t, base+"/feedback/continue", nil, http.StatusOK, &snap)
	if snap.Session.Phase != session.PhaseAgentFeedback || snap.Session.CurrentAgent != "qa" {
		t.Fatalf("expected qa feedback round, got %s/%s", snap.Session.Phase, snap.Session.CurrentAgent)
	}
	postJSON(t, base+"/feedback/continue", nil, http.StatusOK, &snap)
	if snap.Session.Phase != session.PhaseSummary {
		t.Fatalf("expected summary after the panel, got %s", snap.Session.Phase)
	}

	var briefing briefingResponse
	postJSON(t, base+"/briefing", nil, http.StatusOK, &briefing)
	if !strings.Contains(briefing.Briefing, "A sync api for field crews") {
		t.Fatalf("briefing missing the vision:\n%s", briefing.Briefing)
	}

	if _, err := store.Load(context.Background()); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected store cleared after briefing, got %v", err)
	}
}

func TestBridgeMapsErrorCategories(t *testing.T) {
	t.Parallel()
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	_, base := startTestServer(t, testController(t, store))

	var fail errorResponse
	postJSON(t, base+"/vision", visionRequest{Vision: "   "}, http.StatusUnprocessableEntity, &fail)
	if fail.Category != "validation" {
		t.Fatalf("expected validation category, got %+v", fail)
	}

	postJSON(t, base+"/briefing", nil, http.StatusConflict, &fail)
	if fail.Category != "invalid_phase_transition" {
		t.Fatalf("expected phase category, got %+v", fail)
	}
}

func TestBridgeReportsProviderFailures(t *testing.T) {
	t.Parallel()
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	cat := testCatalog(t)
	ctrl, err := interview.New(cat, failingProvider{}, store)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	_, base := startTestServer(t, ctrl)

	var fail errorResponse
	postJSON(t, base+"/vision", visionRequest{Vision: "A sync api"}, http.StatusBadGateway, &fail)
	if fail.Category != "provider" {
		t.Fatalf("expected provider category, got %+v", fail)
	}
}

func TestBridgeEnforcesPayloadLimit(t *testing.T) {
	t.Parallel()
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	ctrl := testController(t, store)
	settings := Settings{Enabled: true, Host: "127.0.0.1", Port: 0, MaxBodyBytes: 64,
		ReadTimeout: time.Second, WriteTimeout: 5 * time.Second, IdleTimeout: time.Second}
	srv := NewServer(settings, ctrl)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	huge := visionRequest{Vision: strings.Repeat("a", 512)}
	var fail errorResponse
	postJSON(t, srv.BaseURL()+"/vision", huge, http.StatusRequestEntityTooLarge, &fail)
	if fail.Category != "validation" {
		t.Fatalf("expected validation category for oversized body, got %+v", fail)
	}
}

func testCatalog(t *testing.T) *agent.Catalog {
	t.Helper()
	cat := agent.NewCatalog()
	cat.MustRegister(agent.Agent{
		ID:   "backend",
		Name: "Backend Engineer",
		Questions: []question.Spec{{
			Text: "Where should the data live?",
			Options: []question.Option{
				{Label: "SQLite"},
				{Label: "Postgres"},
			},
			DefaultAnswer: "SQLite",
		}},
	})
	cat.MustRegister(agent.Agent{ID: "qa", Name: "QA Engineer"})
	return cat
}

func testController(t *testing.T, store session.Store) *interview.Controller {
	t.Helper()
	ctrl, err := interview.New(testCatalog(t), provider.NewStatic(), store)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return ctrl
}

func startTestServer(t *testing.T, ctrl *interview.Controller) (*Server, string) {
	t.Helper()
	settings := Settings{Enabled: true, Host: "127.0.0.1", Port: 0, MaxBodyBytes: DefaultMaxBodyBytes,
		ReadTimeout: time.Second, WriteTimeout: 5 * time.Second, IdleTimeout: time.Second}
	srv := NewServer(settings, ctrl)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	return srv, srv.BaseURL()
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("GET %s: decode: %v", url, err)
	}
}

func postJSON(t *testing.T, url string, payload any, wantStatus int, dst any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &body)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			t.Fatalf("POST %s: decode: %v", url, err)
		}
	}
}

type failingProvider struct{}

func (failingProvider) RecommendTeam(context.Context, string, []agent.Agent) (provider.TeamRecommendation, error) {
	return provider.TeamRecommendation{}, fmt.Errorf("model offline")
}

func (failingProvider) DynamicQuestions(context.Context, string, []agent.Agent) ([]question.Question, error) {
	return nil, fmt.Errorf("model offline")
}

func (failingProvider) AgentFeedback(context.Context, provider.FeedbackRequest) (string, error) {
	return "", fmt.Errorf("model offline")
}
