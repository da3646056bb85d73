package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/config"
)

const sampleYAML = `id: security-consultant
name: Security Consultant
questions:
  - text: Which compliance regimes apply?
`

func TestRegisterAgentPacks(t *testing.T) {
	cfg := initTestConfig(t)
	packPath := filepath.Join(cfg.AgentsDir(), "security.yaml")
	if err := os.WriteFile(packPath, []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	cat := agent.NewCatalog()
	if err := RegisterAgentPacks(cat, cfg); err != nil {
		t.Fatalf("register packs: %v", err)
	}
	a, err := cat.Resolve("security-consultant")
	if err != nil {
		t.Fatalf("resolve pack agent: %v", err)
	}
	if len(a.Questions) != 1 {
		t.Fatalf("expected the pack question bank, got %+v", a.Questions)
	}
}

func TestRegisterAgentPacksRejectsRosterCollisions(t *testing.T) {
	cfg := initTestConfig(t)
	packPath := filepath.Join(cfg.AgentsDir(), "security.yaml")
	if err := os.WriteFile(packPath, []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	cat := agent.NewCatalog()
	cat.MustRegister(agent.Agent{ID: "security-consultant", Name: "Builtin Security"})
	if err := RegisterAgentPacks(cat, cfg); err == nil {
		t.Fatalf("expected collision with builtin agent to fail registration")
	}
}

func initTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	if err := config.InitBriefingDir(root); err != nil {
		t.Fatalf("init briefing dir: %v", err)
	}
	cfg, err := config.New(root)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}
