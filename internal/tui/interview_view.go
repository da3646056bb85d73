package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/brief"
	"github.com/kingrea/The-Briefing/internal/config"
	"github.com/kingrea/The-Briefing/internal/interview"
	"github.com/kingrea/The-Briefing/internal/ledger"
	"github.com/kingrea/The-Briefing/internal/logbook"
	"github.com/kingrea/The-Briefing/internal/notify"
	"github.com/kingrea/The-Briefing/internal/provider"
	"github.com/kingrea/The-Briefing/internal/question"
	"github.com/kingrea/The-Briefing/internal/session"
	"github.com/kingrea/The-Briefing/plugins"
)

var (
	headingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	pickedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	feedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
)

// inputMode tells the shared text input what it is collecting.
type inputMode int

const (
	modeAnswer   inputMode = iota // free text, custom answers, the vision
	modeSkipNote                  // optional reason while skipping a question
)

// interviewView walks one session through the interview phases. All
// interview state lives in the controller; the view only tracks cursor
// position, the shared input, and which provider calls are in flight.
type interviewView struct {
	app  *App
	ctrl *interview.Controller

	ready bool
	busy  bool
	note  string
	err   error

	selection int
	picked    map[int]struct{}
	input     textinput.Model
	mode      inputMode

	requested map[string]bool
	briefing  string
	pager     viewport.Model
}

type interviewReadyMsg struct {
	phase session.Phase
	err   error
}

type teamRecommendedMsg struct {
	err error
}

type questionsPreparedMsg struct {
	err error
}

type feedbackFetchedMsg struct {
	agentID string
	digest  string
	err     error
}

type briefingBuiltMsg struct {
	markdown string
	err      error
}

type interviewFinishedMsg struct {
	SessionID string
}

func newInterviewView(app *App) *interviewView {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 500
	input.Width = 64
	return &interviewView{
		app:       app,
		ctrl:      app.controller,
		picked:    map[int]struct{}{},
		requested: map[string]bool{},
		input:     input,
		pager:     viewport.New(80, 20),
	}
}

// Init adopts the saved session or discards it for a fresh one.
func (v *interviewView) Init(resume bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if resume {
			if err := v.ctrl.Resume(ctx); err != nil {
				return interviewReadyMsg{err: err}
			}
		} else {
			v.ctrl.Discard(ctx)
		}
		return interviewReadyMsg{phase: v.ctrl.Phase()}
	}
}

func (v *interviewView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case interviewReadyMsg:
		if m.err != nil {
			v.err = m.err
			v.setStatus(fmt.Sprintf("Interview error: %v", m.err))
			return nil
		}
		v.err = nil
		v.ready = true
		v.syncInput()
		v.setStatus(fmt.Sprintf("Interview ready · %s", m.phase.FriendlyName()))
		return v.afterTransition()
	case teamRecommendedMsg:
		v.busy = false
		if m.err != nil {
			v.setStatus(fmt.Sprintf("Panel recommendation failed: %v", m.err))
			return nil
		}
		v.selection = 0
		v.syncInput()
		v.setStatus("Panel recommended · adjust the team and confirm")
		return nil
	case questionsPreparedMsg:
		v.busy = false
		if m.err != nil {
			v.setStatus(fmt.Sprintf("Question preparation failed: %v", m.err))
			return nil
		}
		v.resetAnswerState()
		v.setStatus("Questions ready")
		return v.afterTransition()
	case feedbackFetchedMsg:
		v.busy = false
		if m.err != nil {
			v.requested[m.agentID] = false
			v.setStatus(fmt.Sprintf("Feedback unavailable: %v · press r to retry", m.err))
			return nil
		}
		v.setStatus(fmt.Sprintf("%s has read the answers back", v.app.agentName(m.agentID)))
		return nil
	case briefingBuiltMsg:
		v.busy = false
		if m.err != nil {
			v.setStatus(fmt.Sprintf("Briefing failed: %v", m.err))
			return nil
		}
		v.briefing = m.markdown
		v.pager.SetContent(m.markdown)
		v.pager.GotoTop()
		v.setStatus("Briefing compiled")
		sessionID := v.ctrl.Snapshot().ID
		return func() tea.Msg { return interviewFinishedMsg{SessionID: sessionID} }
	case tea.WindowSizeMsg:
		v.pager.Width = max(40, m.Width-8)
		v.pager.Height = max(8, m.Height-12)
		return nil
	case tea.KeyMsg:
		return v.handleKeyMsg(m)
	default:
		if v.input.Focused() {
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return cmd
		}
		return nil
	}
}

func (v *interviewView) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if v.err != nil || v.busy {
		return nil
	}
	switch v.ctrl.Phase() {
	case session.PhaseVision:
		return v.handleVisionKeys(msg)
	case session.PhaseTeamSetup:
		return v.handleTeamKeys(msg)
	case session.PhaseDynamicQuestions, session.PhaseGuidedQA:
		return v.handleQuestionKeys(msg)
	case session.PhaseAgentFeedback:
		return v.handleFeedbackKeys(msg)
	case session.PhaseSummary:
		return v.handleSummaryKeys(msg)
	case session.PhaseBriefing:
		var cmd tea.Cmd
		v.pager, cmd = v.pager.Update(msg)
		return cmd
	default:
		return nil
	}
}

func (v *interviewView) handleVisionKeys(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		vision := strings.TrimSpace(v.input.Value())
		if vision == "" {
			v.setStatus("Describe the project before submitting")
			return nil
		}
		v.busy = true
		v.note = "Choosing the right specialists…"
		return func() tea.Msg {
			return teamRecommendedMsg{err: v.ctrl.SubmitVision(context.Background(), vision)}
		}
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *interviewView) handleTeamKeys(msg tea.KeyMsg) tea.Cmd {
	roster := v.ctrl.Roster()
	switch msg.String() {
	case "up", "k":
		if v.selection > 0 {
			v.selection--
		}
	case "down", "j":
		if v.selection < len(roster)-1 {
			v.selection++
		}
	case " ":
		if v.selection < len(roster) {
			if err := v.ctrl.ToggleAgent(roster[v.selection].ID); err != nil {
				v.setStatus(fmt.Sprintf("Toggle failed: %v", err))
			}
		}
	case "enter":
		v.busy = true
		v.note = "Preparing the question banks…"
		return func() tea.Msg {
			return questionsPreparedMsg{err: v.ctrl.ConfirmTeam(context.Background())}
		}
	}
	return nil
}

func (v *interviewView) handleQuestionKeys(msg tea.KeyMsg) tea.Cmd {
	q, ok := v.ctrl.CurrentQuestion()
	if !ok {
		return nil
	}
	key := msg.String()

	if v.mode == modeSkipNote {
		if key == "enter" {
			reason := strings.TrimSpace(v.input.Value())
			if err := v.ctrl.SkipCurrent(reason); err != nil {
				v.setStatus(fmt.Sprintf("Skip failed: %v", err))
				return nil
			}
			v.setStatus(skipStatus(q, reason))
			v.resetAnswerState()
			return v.afterTransition()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}

	if key == "ctrl+s" {
		v.mode = modeSkipNote
		v.input.SetValue("")
		v.syncInput()
		v.setStatus("Skipping · add an optional reason and press enter")
		return nil
	}
	if key == "tab" && q.DefaultAnswer != "" {
		if err := v.ctrl.AutoFillCurrent(); err != nil {
			v.setStatus(fmt.Sprintf("Autofill failed: %v", err))
			return nil
		}
		v.setStatus(fmt.Sprintf("Accepted the default: %s", truncate(q.DefaultAnswer, 40)))
		v.resetAnswerState()
		return v.afterTransition()
	}

	if len(q.Options) == 0 {
		return v.handleFreeTextKeys(msg)
	}
	return v.handleOptionKeys(msg, q)
}

func (v *interviewView) handleFreeTextKeys(msg tea.KeyMsg) tea.Cmd {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	answer := strings.TrimSpace(v.input.Value())
	if answer == "" {
		v.setStatus("Type an answer, skip with ctrl+s, or accept a default with tab")
		return nil
	}
	var err error
	if v.ctrl.Phase() == session.PhaseDynamicQuestions {
		err = v.ctrl.AnswerDynamic(answer)
	} else {
		err = v.ctrl.AnswerGuided(answer)
	}
	if err != nil {
		v.setStatus(fmt.Sprintf("Answer failed: %v", err))
		return nil
	}
	v.resetAnswerState()
	return v.afterTransition()
}

func (v *interviewView) handleOptionKeys(msg tea.KeyMsg, q question.Question) tea.Cmd {
	otherIdx := len(q.Options)
	typing := v.selection == otherIdx
	switch msg.String() {
	case "up":
		if v.selection > 0 {
			v.selection--
		}
		v.syncInput()
		return nil
	case "down":
		if v.selection < otherIdx {
			v.selection++
		}
		v.syncInput()
		return nil
	case " ":
		if !typing {
			if _, ok := v.picked[v.selection]; ok {
				delete(v.picked, v.selection)
			} else {
				v.picked[v.selection] = struct{}{}
			}
			return nil
		}
	case "enter":
		return v.submitChoice(q)
	}
	if typing {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}
	switch msg.String() {
	case "k":
		if v.selection > 0 {
			v.selection--
			v.syncInput()
		}
	case "j":
		if v.selection < otherIdx {
			v.selection++
			v.syncInput()
		}
	}
	return nil
}

// submitChoice answers with every picked option plus any custom text. With
// nothing picked and nothing typed, the highlighted option is the answer.
func (v *interviewView) submitChoice(q question.Question) tea.Cmd {
	values := v.pickedLabels(q)
	custom := strings.TrimSpace(v.input.Value())
	if len(values) == 0 && custom == "" {
		if v.selection < len(q.Options) {
			values = []string{q.Options[v.selection].Label}
		} else {
			v.setStatus("Pick an option or type a custom answer")
			return nil
		}
	}
	if err := v.ctrl.ChooseCurrent(values, custom); err != nil {
		v.setStatus(fmt.Sprintf("Answer failed: %v", err))
		return nil
	}
	v.resetAnswerState()
	return v.afterTransition()
}

func (v *interviewView) pickedLabels(q question.Question) []string {
	var labels []string
	for i, opt := range q.Options {
		if _, ok := v.picked[i]; ok {
			labels = append(labels, opt.Label)
		}
	}
	return labels
}

func (v *interviewView) handleFeedbackKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if err := v.ctrl.ContinueFeedback(); err != nil {
			v.setStatus(fmt.Sprintf("Continue failed: %v", err))
			return nil
		}
		return v.afterTransition()
	case "r":
		return v.fetchFeedback()
	}
	return nil
}

func (v *interviewView) handleSummaryKeys(msg tea.KeyMsg) tea.Cmd {
	if msg.String() != "enter" {
		return nil
	}
	v.busy = true
	v.note = "Compiling the briefing…"
	return func() tea.Msg {
		markdown, err := v.ctrl.GenerateBriefing()
		return briefingBuiltMsg{markdown: markdown, err: err}
	}
}

// afterTransition reacts to wherever the controller landed: entering a
// feedback round kicks off the digest fetch, reaching the summary tells
// the user the interview is over.
func (v *interviewView) afterTransition() tea.Cmd {
	v.syncInput()
	switch v.ctrl.Phase() {
	case session.PhaseAgentFeedback:
		return v.fetchFeedback()
	case session.PhaseSummary:
		v.setStatus("Interview complete · review the summary")
	}
	return nil
}

// fetchFeedback asks for the current specialist's read-back unless it is
// already cached or in flight.
func (v *interviewView) fetchFeedback() tea.Cmd {
	snap := v.ctrl.Snapshot()
	agentID := snap.CurrentAgent
	if agentID == "" || snap.FeedbackNotes[agentID] != "" || v.requested[agentID] {
		return nil
	}
	v.requested[agentID] = true
	v.busy = true
	v.note = fmt.Sprintf("%s is reviewing the answers…", v.app.agentName(agentID))
	return func() tea.Msg {
		digest, err := v.ctrl.FeedbackDigest(context.Background())
		return feedbackFetchedMsg{agentID: agentID, digest: digest, err: err}
	}
}

func (v *interviewView) resetAnswerState() {
	v.selection = 0
	v.picked = map[int]struct{}{}
	v.mode = modeAnswer
	v.input.SetValue("")
	v.syncInput()
}

// syncInput focuses the shared input only where typing makes sense.
func (v *interviewView) syncInput() {
	if v.mode == modeSkipNote {
		v.input.Placeholder = "Why skip this? (optional)"
		v.input.Focus()
		return
	}
	switch v.ctrl.Phase() {
	case session.PhaseVision:
		v.input.Placeholder = "What are we building, for whom, and why now?"
		v.input.Focus()
	case session.PhaseDynamicQuestions, session.PhaseGuidedQA:
		q, ok := v.ctrl.CurrentQuestion()
		switch {
		case !ok:
			v.input.Blur()
		case len(q.Options) == 0:
			v.input.Placeholder = "Your answer"
			v.input.Focus()
		case v.selection == len(q.Options):
			v.input.Placeholder = "Custom answer"
			v.input.Focus()
		default:
			v.input.Blur()
		}
	default:
		v.input.Blur()
	}
}

// consumeEsc lets the view soak up an escape before the app treats it as
// "back to menu". Cancelling a skip or clearing a half-typed answer is
// less surprising than losing the screen.
func (v *interviewView) consumeEsc() bool {
	if v.mode == modeSkipNote {
		v.mode = modeAnswer
		v.input.SetValue("")
		v.syncInput()
		v.setStatus("Skip cancelled")
		return true
	}
	if v.input.Focused() && strings.TrimSpace(v.input.Value()) != "" {
		v.input.SetValue("")
		return true
	}
	return false
}

func (v *interviewView) View() string {
	if v.err != nil {
		return fmt.Sprintf("Interview error: %v\n\n%s", v.err, mutedStyle.Render("esc=back to menu"))
	}
	if !v.ready {
		return "Preparing the interview…"
	}
	if v.busy {
		return v.renderBusy()
	}
	switch v.ctrl.Phase() {
	case session.PhaseVision:
		return v.renderVision()
	case session.PhaseTeamSetup:
		return v.renderTeamSetup()
	case session.PhaseDynamicQuestions, session.PhaseGuidedQA:
		return v.renderQuestion()
	case session.PhaseAgentFeedback:
		return v.renderFeedback()
	case session.PhaseSummary:
		return v.renderSummary()
	case session.PhaseBriefing:
		return v.renderBriefing()
	default:
		return ""
	}
}

func (v *interviewView) renderBusy() string {
	note := v.note
	if note == "" {
		note = "Working…"
	}
	return strings.Join([]string{
		headingStyle.Render(note),
		"",
		mutedStyle.Render("esc=back to menu"),
	}, "\n")
}

func (v *interviewView) renderVision() string {
	lines := []string{
		headingStyle.Render("Project Vision"),
		"",
		"Describe the project in a sentence or two. The panel is picked from this.",
		"",
		v.input.View(),
		"",
		mutedStyle.Render("enter=submit  esc=menu"),
	}
	return strings.Join(lines, "\n")
}

func (v *interviewView) renderTeamSetup() string {
	snap := v.ctrl.Snapshot()
	roster := v.ctrl.Roster()
	lines := []string{headingStyle.Render("Team Setup"), ""}
	for i, member := range roster {
		cursor := "  "
		if i == v.selection {
			cursor = cursorStyle.Render("▸ ")
		}
		mark := "[ ]"
		if snap.Selected(member.ID) {
			mark = pickedStyle.Render("[x]")
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", cursor, mark, member.Name))
		if i != v.selection {
			continue
		}
		detail := ""
		switch {
		case snap.Selected(member.ID) && snap.AgentReasons[member.ID] != "":
			detail = snap.AgentReasons[member.ID]
		case !snap.Selected(member.ID) && snap.NotNeeded[member.ID] != "":
			detail = fmt.Sprintf("not needed: %s", snap.NotNeeded[member.ID])
		default:
			detail = member.Description
		}
		if detail != "" {
			lines = append(lines, mutedStyle.Render("      "+truncate(detail, 72)))
		}
	}
	lines = append(lines, "", mutedStyle.Render("space=toggle  enter=confirm panel  esc=menu"))
	return strings.Join(lines, "\n")
}

func (v *interviewView) renderQuestion() string {
	q, ok := v.ctrl.CurrentQuestion()
	if !ok {
		return "Advancing…"
	}
	snap := v.ctrl.Snapshot()
	lines := []string{headingStyle.Render(v.questionHeader(snap)), "", q.Text, ""}

	if v.mode == modeSkipNote {
		lines = append(lines,
			alertStyle.Render("Skipping · reason (optional):"),
			v.input.View(),
			"",
			mutedStyle.Render("enter=skip  esc=cancel"),
		)
		return strings.Join(lines, "\n")
	}

	if len(q.Options) > 0 {
		otherIdx := len(q.Options)
		for i, opt := range q.Options {
			cursor := "  "
			if i == v.selection {
				cursor = cursorStyle.Render("▸ ")
			}
			mark := "[ ]"
			if _, picked := v.picked[i]; picked {
				mark = pickedStyle.Render("[x]")
			}
			line := fmt.Sprintf("%s%s %s", cursor, mark, opt.Label)
			if opt.Description != "" {
				line += mutedStyle.Render(" · " + opt.Description)
			}
			lines = append(lines, line)
		}
		cursor := "  "
		if v.selection == otherIdx {
			cursor = cursorStyle.Render("▸ ")
		}
		lines = append(lines, fmt.Sprintf("%sOther %s", cursor, mutedStyle.Render("· type a custom answer")))
		if v.selection == otherIdx || strings.TrimSpace(v.input.Value()) != "" {
			lines = append(lines, "   "+v.input.View())
		}
	} else {
		lines = append(lines, v.input.View())
	}

	lines = append(lines, "", mutedStyle.Render(questionHints(q)))
	return strings.Join(lines, "\n")
}

func (v *interviewView) questionHeader(snap session.Session) string {
	if snap.Phase == session.PhaseDynamicQuestions {
		return fmt.Sprintf("Clarifying Question %d of %d", snap.DynamicIndex+1, len(snap.DynamicQuestions))
	}
	pos, total := agentQuestionPosition(snap)
	return fmt.Sprintf("%s · Question %d of %d", v.app.agentName(snap.CurrentAgent), pos, total)
}

func (v *interviewView) renderFeedback() string {
	snap := v.ctrl.Snapshot()
	name := v.app.agentName(snap.CurrentAgent)
	lines := []string{headingStyle.Render(fmt.Sprintf("%s · Feedback", name)), ""}
	if digest := snap.FeedbackNotes[snap.CurrentAgent]; digest != "" {
		lines = append(lines, feedbackStyle.Render(digest))
	} else {
		lines = append(lines, mutedStyle.Render("Waiting for the read-back… press r to retry"))
	}
	if entries := snap.Answers.ForAgent(snap.CurrentAgent); len(entries) > 0 {
		lines = append(lines, "", headingStyle.Render("On the record"))
		for _, entry := range entries {
			lines = append(lines, renderEntryLine(entry))
		}
	}
	lines = append(lines, "", mutedStyle.Render("enter=continue  esc=menu"))
	return strings.Join(lines, "\n")
}

func (v *interviewView) renderSummary() string {
	snap := v.ctrl.Snapshot()
	lines := []string{headingStyle.Render("Interview Summary"), ""}
	if vision := strings.TrimSpace(snap.Vision); vision != "" {
		lines = append(lines, fmt.Sprintf("Vision: %s", vision), "")
	}
	if len(snap.SelectedAgents) > 0 {
		names := make([]string, 0, len(snap.SelectedAgents))
		for _, id := range snap.SelectedAgents {
			names = append(names, v.app.agentName(id))
		}
		lines = append(lines, fmt.Sprintf("Panel: %s", strings.Join(names, ", ")), "")
	}
	resolved := snap.Answers.Resolved()
	answered := 0
	for _, entry := range resolved {
		if !entry.Skipped {
			answered++
		}
	}
	lines = append(lines, headingStyle.Render(fmt.Sprintf("Decisions (%d)", answered)))
	for _, entry := range resolved {
		if entry.Skipped {
			continue
		}
		lines = append(lines, renderEntryLine(entry))
	}
	if open := snap.Answers.OpenPoints(); len(open) > 0 {
		lines = append(lines, "", alertStyle.Render(fmt.Sprintf("Open points (%d)", len(open))))
		for _, entry := range open {
			lines = append(lines, renderEntryLine(entry))
		}
	}
	lines = append(lines, "", mutedStyle.Render("enter=generate briefing  esc=menu"))
	return strings.Join(lines, "\n")
}

// renderBriefing pages the compiled document. Briefings routinely run
// past one screen, so the body scrolls while the hint line stays put.
func (v *interviewView) renderBriefing() string {
	if v.briefing == "" {
		v.briefing = v.ctrl.Snapshot().Briefing
		v.pager.SetContent(v.briefing)
	}
	return strings.Join([]string{
		v.pager.View(),
		"",
		mutedStyle.Render("↑/↓=scroll  esc=back to menu"),
	}, "\n")
}

func (v *interviewView) setStatus(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	v.app.statusMsg = message
	v.app.logProgress(message)
}

// agentQuestionPosition locates the guided cursor inside the current
// specialist's share of the queue.
func agentQuestionPosition(snap session.Session) (int, int) {
	pos, total := 0, 0
	for i, q := range snap.GuidedQuestions {
		if q.PrimaryAgent() != snap.CurrentAgent {
			continue
		}
		total++
		if i <= snap.GuidedIndex {
			pos++
		}
	}
	if pos == 0 {
		pos = 1
	}
	return pos, total
}

func questionHints(q question.Question) string {
	hints := []string{}
	if len(q.Options) > 0 {
		hints = append(hints, "space=pick", "enter=answer")
	} else {
		hints = append(hints, "enter=answer")
	}
	if q.DefaultAnswer != "" {
		hints = append(hints, fmt.Sprintf("tab=default (%s)", truncate(q.DefaultAnswer, 24)))
	}
	hints = append(hints, "ctrl+s=skip", "esc=menu")
	return strings.Join(hints, "  ")
}

func renderEntryLine(entry ledger.Entry) string {
	text := truncate(entry.Question.Text, 56)
	switch {
	case entry.Skipped:
		line := fmt.Sprintf("  ∅ %s", text)
		if entry.Note != "" {
			line += mutedStyle.Render(fmt.Sprintf(" (skipped: %s)", truncate(entry.Note, 32)))
		} else {
			line += mutedStyle.Render(" (skipped)")
		}
		return line
	case entry.AutoFilled:
		return fmt.Sprintf("  • %s → %s %s", text, truncate(entry.Answer, 40), mutedStyle.Render("(default)"))
	default:
		return fmt.Sprintf("  • %s → %s", text, truncate(entry.Answer, 40))
	}
}

func skipStatus(q question.Question, reason string) string {
	if reason == "" {
		return fmt.Sprintf("Skipped: %s", truncate(q.Text, 48))
	}
	return fmt.Sprintf("Skipped (%s): %s", truncate(reason, 24), truncate(q.Text, 40))
}

// defaultControllerFactory wires the interview with the provider, store,
// and notifiers named in the project config.
func defaultControllerFactory(cfg *config.Config, book *logbook.Logbook) (*interview.Controller, error) {
	catalog := agent.NewCatalog()
	agent.RegisterBuiltins(catalog)
	if err := plugins.RegisterAgentPacks(catalog, cfg); err != nil {
		return nil, err
	}

	prov, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	opts := []interview.Option{
		interview.WithLogbook(book),
		interview.WithExporter(brief.NewExporter(cfg.ExportDir())),
	}
	if meta, err := brief.LoadProjectMeta(cfg.ProjectMetaPath()); err == nil && !meta.IsZero() {
		opts = append(opts, interview.WithProjectMeta(meta))
	}
	notifiers := notify.List{}
	if book != nil {
		notifiers = append(notifiers, notify.NewLogbookNotifier(book))
	}
	if channel := cfg.SlackChannel(); channel != "" && cfg.SlackToken() != "" {
		slack, err := notify.NewSlackNotifier(cfg.SlackToken(), channel)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, slack)
	}
	if len(notifiers) > 0 {
		opts = append(opts, interview.WithNotifier(notifiers))
	}

	return interview.New(catalog, prov, store, opts...)
}

func buildProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.ProviderMode() {
	case config.ProviderHTTP:
		return provider.NewHTTP(provider.HTTPConfig{
			Endpoint: cfg.Project.Provider.Endpoint,
			Model:    cfg.Project.Provider.Model,
			APIKey:   cfg.APIKey(),
		})
	default:
		return provider.NewStatic(), nil
	}
}

func buildStore(cfg *config.Config) (session.Store, error) {
	switch cfg.StoreBackend() {
	case config.StoreSQLite:
		return session.OpenSQLiteStore(cfg.SQLitePath())
	case config.StorePostgres:
		return session.OpenPostgresStore(context.Background(), cfg.PostgresDSN(), cfg.ProjectDir)
	default:
		return session.NewFileStore(cfg.SessionFilePath()), nil
	}
}
