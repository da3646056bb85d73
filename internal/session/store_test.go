package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kingrea/The-Briefing/internal/question"
)

var testTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newFileStore(t)
	sess := New("sess-42", testTime)
	sess.Vision = "A CLI that interviews stakeholders"
	sess.Phase = PhaseTeamSetup
	sess.SelectedAgents = []string{"product", "backend"}
	sess.AgentReasons = map[string]string{"product": "scopes the work"}
	sess.GuidedQuestions = []question.Question{{ID: "gq-01", Text: "How will users authenticate?", Agents: []string{"backend"}}}
	sess.Answers.Record(sess.GuidedQuestions[0], "SSO", testTime)

	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != "sess-42" || loaded.Phase != PhaseTeamSetup {
		t.Fatalf("unexpected session after round trip: %+v", loaded)
	}
	if len(loaded.SelectedAgents) != 2 || loaded.SelectedAgents[1] != "backend" {
		t.Fatalf("selected agents lost: %v", loaded.SelectedAgents)
	}
	if loaded.Answers.Len() != 1 || loaded.Answers.Entries()[0].Answer != "SSO" {
		t.Fatalf("ledger lost: %+v", loaded.Answers)
	}
}

func TestFileStoreLoadMissingReturnsNotFound(t *testing.T) {
	store := newFileStore(t)
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	store := newFileStore(t)
	if err := store.Save(context.Background(), New("sess-1", testTime)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestLoadRejectsCorruptPayload(t *testing.T) {
	store := newFileStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt payload: %v", err)
	}
	if _, err := store.Load(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for corrupt payload, got %v", err)
	}
}

func TestDecodeRequiresVisionKey(t *testing.T) {
	_, err := Decode([]byte(`{"id":"x","phase":"vision"}`))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("missing vision key should be invalid, got %v", err)
	}
}

func TestDecodeAcceptsEmptyVision(t *testing.T) {
	sess, err := Decode([]byte(`{"id":"x","vision":"","phase":"vision"}`))
	if err != nil {
		t.Fatalf("empty vision is still a valid session: %v", err)
	}
	if sess.Phase != PhaseVision {
		t.Fatalf("unexpected phase: %s", sess.Phase)
	}
}

func TestDecodeRejectsUnknownPhase(t *testing.T) {
	_, err := Decode([]byte(`{"id":"x","vision":"v","phase":"BOGUS"}`))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("unknown phase should be invalid, got %v", err)
	}
}

func TestDecodeRejectsNonObjectPayload(t *testing.T) {
	for _, payload := range []string{`[]`, `"session"`, `42`} {
		if _, err := Decode([]byte(payload)); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("payload %s should be invalid, got %v", payload, err)
		}
	}
}

func TestCloneDoesNotShareState(t *testing.T) {
	sess := New("sess-1", testTime)
	sess.SelectedAgents = []string{"product"}
	sess.AgentReasons = map[string]string{"product": "scope"}
	sess.GuidedQuestions = []question.Question{{ID: "gq-01", Text: "q", Agents: []string{"product"}}}
	sess.Answers.Record(sess.GuidedQuestions[0], "a", testTime)

	clone := sess.Clone()
	clone.SelectedAgents[0] = "changed"
	clone.AgentReasons["product"] = "changed"
	clone.GuidedQuestions[0].Text = "changed"
	clone.Answers.Record(clone.GuidedQuestions[0], "b", testTime)

	if sess.SelectedAgents[0] != "product" || sess.AgentReasons["product"] != "scope" {
		t.Fatalf("clone aliased team state: %+v", sess)
	}
	if sess.GuidedQuestions[0].Text != "q" || sess.Answers.Len() != 1 {
		t.Fatalf("clone aliased questions or ledger: %+v", sess)
	}
}
