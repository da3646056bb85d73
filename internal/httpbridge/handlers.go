package httpbridge

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kingrea/The-Briefing/internal/interview"
	"github.com/kingrea/The-Briefing/internal/question"
	"github.com/kingrea/The-Briefing/internal/session"
)

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Phase         string `json:"phase"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type sessionResponse struct {
	Session  session.Session    `json:"session"`
	Question *question.Question `json:"current_question,omitempty"`
}

type rosterAgent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Selected    bool   `json:"selected"`
	Reason      string `json:"reason,omitempty"`
	NotNeeded   string `json:"not_needed,omitempty"`
}

type visionRequest struct {
	Vision string `json:"vision"`
}

type answerRequest struct {
	Text   string   `json:"text,omitempty"`
	Values []string `json:"values,omitempty"`
	Custom string   `json:"custom,omitempty"`
	Auto   bool     `json:"auto,omitempty"`
}

type skipRequest struct {
	Reason string `json:"reason,omitempty"`
}

type feedbackResponse struct {
	Agent  string `json:"agent"`
	Digest string `json:"digest"`
}

type briefingResponse struct {
	Briefing string `json:"briefing"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Category: "validation"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Version:       ProtocolVersion,
		Phase:         string(s.ctrl.Phase()),
		UptimeSeconds: s.uptimeSeconds(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	snap := s.ctrl.Snapshot()
	roster := s.ctrl.Roster()
	out := make([]rosterAgent, 0, len(roster))
	for _, a := range roster {
		out = append(out, rosterAgent{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Selected:    snap.Selected(a.ID),
			Reason:      snap.AgentReasons[a.ID],
			NotNeeded:   snap.NotNeeded[a.ID],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleVision(w http.ResponseWriter, r *http.Request) {
	var req visionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.ctrl.SubmitVision(r.Context(), req.Vision); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.ToggleAgent(chi.URLParam(r, "agentID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.ConfirmTeam(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var err error
	switch {
	case req.Auto:
		err = s.ctrl.AutoFillCurrent()
	case len(req.Values) > 0 || strings.TrimSpace(req.Custom) != "":
		err = s.ctrl.ChooseCurrent(req.Values, req.Custom)
	case s.ctrl.Phase() == session.PhaseDynamicQuestions:
		err = s.ctrl.AnswerDynamic(req.Text)
	default:
		err = s.ctrl.AnswerGuided(req.Text)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.ctrl.SkipCurrent(req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	digest, err := s.ctrl.FeedbackDigest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedbackResponse{
		Agent:  s.ctrl.Snapshot().CurrentAgent,
		Digest: digest,
	})
}

func (s *Server) handleContinueFeedback(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.ContinueFeedback(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	briefing, err := s.ctrl.GenerateBriefing()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, briefingResponse{Briefing: briefing})
}

func (s *Server) snapshotResponse() sessionResponse {
	resp := sessionResponse{Session: s.ctrl.Snapshot()}
	if q, ok := s.ctrl.CurrentQuestion(); ok {
		resp.Question = &q
	}
	return resp
}

// decodeBody reads and decodes a JSON request body, writing the error
// response itself when the payload is unusable. An empty body decodes
// to the zero request so optional-field endpoints stay curl-friendly.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "payload exceeds limit", Category: "validation"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unable to read body", Category: "validation"})
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON", Category: "validation"})
		return false
	}
	return true
}

// writeError maps controller sentinels onto HTTP statuses. The category
// field mirrors the interview's error taxonomy so clients can branch
// without parsing messages.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	category := "internal"
	switch {
	case errors.Is(err, interview.ErrValidation):
		status, category = http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, interview.ErrInvalidTransition):
		status, category = http.StatusConflict, "invalid_phase_transition"
	case errors.Is(err, interview.ErrProvider):
		status, category = http.StatusBadGateway, "provider"
	case errors.Is(err, session.ErrInvalidState):
		status, category = http.StatusConflict, "invalid_session_state"
	case errors.Is(err, session.ErrNotFound):
		status, category = http.StatusNotFound, "not_found"
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Category: category})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
