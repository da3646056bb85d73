package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/question"
)

const (
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 1024
	defaultTimeout   = 60 * time.Second
)

// HTTPConfig configures the remote provider.
type HTTPConfig struct {
	Endpoint  string
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
}

// HTTP talks to an Anthropic-style messages endpoint and parses the
// line-oriented replies into typed results. Responses are requested in a
// strict line format rather than JSON because models follow it more
// reliably and a bad line degrades to a skipped item instead of a failed
// interview.
type HTTP struct {
	endpoint  string
	model     string
	apiKey    string
	maxTokens int
	client    *http.Client
}

// NewHTTP builds the remote provider. The API key is required; all other
// fields fall back to defaults.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider: api key is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &HTTP{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// complete sends a single-turn prompt and returns the text reply.
func (p *HTTP) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
	}
	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("model error: %s: %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Type != "text" {
		return "", fmt.Errorf("unexpected response format")
	}
	return parsed.Content[0].Text, nil
}

// RecommendTeam asks the model to sort the roster into needed and not
// needed, one line per agent.
func (p *HTTP) RecommendTeam(ctx context.Context, vision string, roster []agent.Agent) (TeamRecommendation, error) {
	var sb strings.Builder
	sb.WriteString("You staff a project interview panel. Given the project vision and the available specialists, decide who belongs on the panel.\n\nVision:\n")
	sb.WriteString(vision)
	sb.WriteString("\n\nSpecialists:\n")
	for _, a := range roster {
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", a.ID, a.Name, a.Description)
	}
	sb.WriteString("\nRespond with exactly one line per specialist, using their id:\n")
	sb.WriteString("TEAM: <id> | <one-sentence reason>\n")
	sb.WriteString("SKIP: <id> | <one-sentence reason>\n")
	sb.WriteString("Optionally, when a specialist's stock questions fit this vision poorly, replace their bank:\n")
	sb.WriteString("ASK: <id> | <question text>   (repeatable; replaces that specialist's whole bank)\n")

	text, err := p.complete(ctx, sb.String())
	if err != nil {
		return TeamRecommendation{}, err
	}
	rec := parseTeamLines(text, roster)
	if len(rec.Recommended) == 0 {
		return TeamRecommendation{}, fmt.Errorf("no usable TEAM lines in response")
	}
	return rec, nil
}

// DynamicQuestions asks the model for clarifying questions the banks do
// not already cover.
func (p *HTTP) DynamicQuestions(ctx context.Context, vision string, team []agent.Agent) ([]question.Question, error) {
	var sb strings.Builder
	sb.WriteString("You are preparing a guided project interview. Write three to five clarifying questions that the vision leaves open. Do not repeat specialist bank questions.\n\nVision:\n")
	sb.WriteString(vision)
	sb.WriteString("\n\nPanel:\n")
	for _, a := range team {
		fmt.Fprintf(&sb, "- %s: %s\n", a.Name, a.Description)
	}
	sb.WriteString("\nRespond using only these line forms, in order per question:\n")
	sb.WriteString("Q: <question text>\n")
	sb.WriteString("OPT: <label> | <short description>   (zero or more per question)\n")
	sb.WriteString("DEFAULT: <answer>                    (at most one per question)\n")

	text, err := p.complete(ctx, sb.String())
	if err != nil {
		return nil, err
	}
	questions := parseQuestionLines(text)
	if len(questions) == 0 {
		return nil, fmt.Errorf("no usable Q lines in response")
	}
	return questions, nil
}

// AgentFeedback asks the model for the specialist's read-back of its
// round.
func (p *HTTP) AgentFeedback(ctx context.Context, req FeedbackRequest) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s (%s) on a project interview panel. Summarize what you learned, call out risks, and list anything still undecided. Keep it under 150 words, plain text.\n\nVision:\n%s\n\nExchanges:\n", req.Agent.Name, req.Agent.Description, req.Vision)
	for _, e := range req.Answers {
		switch {
		case e.Skipped:
			fmt.Fprintf(&sb, "- %s -> (skipped)\n", e.Question.Text)
		case e.AutoFilled:
			fmt.Fprintf(&sb, "- %s -> %s (assumed default)\n", e.Question.Text, e.Answer)
		default:
			fmt.Fprintf(&sb, "- %s -> %s\n", e.Question.Text, e.Answer)
		}
	}
	text, err := p.complete(ctx, sb.String())
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty feedback response")
	}
	return text, nil
}

// parseTeamLines extracts TEAM/SKIP verdicts and optional ASK bank
// replacements, dropping lines that do not name a roster agent.
func parseTeamLines(text string, roster []agent.Agent) TeamRecommendation {
	known := make(map[string]struct{}, len(roster))
	for _, a := range roster {
		known[a.ID] = struct{}{}
	}
	var rec TeamRecommendation
	seen := map[string]struct{}{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "ASK:"); ok {
			id, text, _ := strings.Cut(v, "|")
			id = strings.TrimSpace(id)
			text = strings.TrimSpace(text)
			if _, ok := known[id]; !ok || text == "" {
				continue
			}
			if rec.Questions == nil {
				rec.Questions = map[string][]question.Spec{}
			}
			rec.Questions[id] = append(rec.Questions[id], question.Spec{Text: text})
			continue
		}
		var pick *[]AgentPick
		var rest string
		if v, ok := strings.CutPrefix(line, "TEAM:"); ok {
			pick, rest = &rec.Recommended, v
		} else if v, ok := strings.CutPrefix(line, "SKIP:"); ok {
			pick, rest = &rec.NotNeeded, v
		} else {
			continue
		}
		id, reason, _ := strings.Cut(rest, "|")
		id = strings.TrimSpace(id)
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		*pick = append(*pick, AgentPick{AgentID: id, Reason: strings.TrimSpace(reason)})
	}
	return rec
}

// parseQuestionLines extracts Q/OPT/DEFAULT blocks in order.
func parseQuestionLines(text string) []question.Question {
	var out []question.Question
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Q:"); ok {
			if text := strings.TrimSpace(v); text != "" {
				out = append(out, question.Question{Text: text})
			}
			continue
		}
		if len(out) == 0 {
			continue
		}
		current := &out[len(out)-1]
		if v, ok := strings.CutPrefix(line, "OPT:"); ok {
			label, desc, _ := strings.Cut(v, "|")
			if label = strings.TrimSpace(label); label != "" {
				current.Options = append(current.Options, question.Option{
					Label:       label,
					Description: strings.TrimSpace(desc),
				})
			}
			continue
		}
		if v, ok := strings.CutPrefix(line, "DEFAULT:"); ok {
			if current.DefaultAnswer == "" {
				current.DefaultAnswer = strings.TrimSpace(v)
			}
		}
	}
	return out
}
