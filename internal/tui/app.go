// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for The Briefing.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kingrea/The-Briefing/internal/config"
	"github.com/kingrea/The-Briefing/internal/interview"
	"github.com/kingrea/The-Briefing/internal/logbook"
	"github.com/kingrea/The-Briefing/internal/session"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu  appState = iota // Main menu with "Start Interview", etc.
	stateInterview                 // Running the guided interview
	stateRoster                    // Browsing the specialist roster
)

// ControllerFactory builds the interview controller behind the TUI.
type ControllerFactory func(cfg *config.Config, book *logbook.Logbook) (*interview.Controller, error)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithControllerFactory overrides the default provider and store wiring.
func WithControllerFactory(factory ControllerFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.controllerFactory = factory
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state      appState
	config     *config.Config
	controller *interview.Controller
	logbook    *logbook.Logbook

	controllerFactory ControllerFactory
	interviewView     *interviewView

	// UI components
	mainMenu      list.Model // The main menu list
	rosterMenu    list.Model // The specialist browser
	statusMsg     string     // Status message to display
	lastLogStatus string

	// Saved session detected on startup or when returning to the menu
	resumable    session.Session
	hasResumable bool

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type rosterItem struct {
	id    string
	title string
	desc  string
}

func (i rosterItem) Title() string       { return i.title }
func (i rosterItem) Description() string { return i.desc }
func (i rosterItem) FilterValue() string { return i.id }

// NewApp creates a new App instance
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.New(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.JourneyLogPath())
	if err == nil {
		lb.Info("Session opened · provider %s · store %s", cfg.ProviderMode(), cfg.StoreBackend())
	}

	app := &App{
		state:             stateMainMenu,
		config:            cfg,
		logbook:           lb,
		controllerFactory: defaultControllerFactory,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	ctrl, err := app.controllerFactory(cfg, lb)
	if err != nil {
		return nil, err
	}
	app.controller = ctrl
	app.refreshResumeCandidate()

	// Create the list components
	mainMenu := list.New(app.buildMainMenu(), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ THE BRIEFING"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)
	rosterMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	rosterMenu.Title = "Specialists"
	rosterMenu.SetShowStatusBar(false)
	rosterMenu.SetFilteringEnabled(false)

	app.mainMenu = mainMenu
	app.rosterMenu = rosterMenu
	app.refreshRosterMenu()
	return app, nil
}

// buildMainMenu creates the main menu items based on the saved session
func (a *App) buildMainMenu() []list.Item {
	items := []list.Item{}

	if a.hasResumable {
		items = append(items, menuItem{
			title: fmt.Sprintf("Resume Interview (%s)", a.resumable.Phase.FriendlyName()),
			desc:  "Continue from where you left off",
		})
		items = append(items, menuItem{
			title: "Start Interview",
			desc:  "Discard the saved session and begin fresh",
		})
	} else {
		items = append(items, menuItem{
			title: "Start Interview",
			desc:  "Begin a new briefing interview",
		})
	}

	items = append(items,
		menuItem{title: "View Specialists", desc: "Browse the available panel"},
		menuItem{title: "Exit", desc: "Quit The Briefing"},
	)

	return items
}

func (a *App) refreshRosterMenu() {
	roster := a.controller.Roster()
	snap := a.controller.Snapshot()
	items := make([]list.Item, 0, len(roster))
	for _, member := range roster {
		desc := strings.TrimSpace(member.Description)
		if len(member.Questions) > 0 {
			if desc != "" {
				desc += " · "
			}
			desc += fmt.Sprintf("%d question(s)", len(member.Questions))
		}
		title := member.Name
		if snap.Selected(member.ID) {
			title += " ✓"
		}
		items = append(items, rosterItem{id: member.ID, title: title, desc: desc})
	}
	a.rosterMenu.SetItems(items)
}

// refreshResumeCandidate probes the store for a saved interview worth
// offering on the menu. A corrupt payload is discarded with a warning.
func (a *App) refreshResumeCandidate() {
	stored, ok, err := a.controller.ResumeCandidate(context.Background())
	if err != nil {
		a.statusMsg = "A previous session could not be recovered and was discarded"
		a.logWarn("Saved session unreadable: %v", err)
	}
	a.resumable = stored
	a.hasResumable = ok
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func (a *App) logProgress(status string) {
	status = strings.TrimSpace(status)
	if status == "" || status == a.lastLogStatus {
		return
	}
	a.lastLogStatus = status
	a.logInfo(status)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		a.rosterMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		if a.state == stateInterview && a.interviewView != nil {
			return a, a.interviewView.Update(msg)
		}
		return a, nil

	case interviewFinishedMsg:
		a.logInfo("Briefing compiled for session %s", msg.SessionID)
		a.refreshResumeCandidate()
		a.mainMenu.SetItems(a.buildMainMenu())
		a.statusMsg = "Briefing ready · press esc for the menu"
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
		case "esc":
			if a.state == stateInterview && a.interviewView != nil && a.interviewView.consumeEsc() {
				return a, nil
			}
			if a.state != stateMainMenu {
				return a.returnToMainMenu()
			}
		case "enter":
			if a.state == stateMainMenu {
				return a.handleMainMenuSelection()
			}
		}
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateMainMenu:
		var menuCmd tea.Cmd
		a.mainMenu, menuCmd = a.mainMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	case stateRoster:
		var menuCmd tea.Cmd
		a.rosterMenu, menuCmd = a.rosterMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	case stateInterview:
		if a.interviewView != nil {
			if cmd := a.interviewView.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	return a, tea.Batch(cmds...)
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch {
	case strings.HasPrefix(item.title, "Resume Interview"):
		a.logInfo("Menu · Resume Interview selected (%s)", a.resumable.Phase.FriendlyName())
		return a.startInterview(true)

	case item.title == "Start Interview":
		a.logInfo("Menu · Start Interview selected")
		return a.startInterview(false)

	case item.title == "View Specialists":
		a.logInfo("Menu · View Specialists selected")
		a.refreshRosterMenu()
		a.state = stateRoster
		a.statusMsg = "Browsing the specialist roster"
		return a, nil

	case item.title == "Exit":
		a.logInfo("Menu · Exit selected")
		return a, tea.Quit
	}

	return a, nil
}

// startInterview attaches the interview view in either fresh or resume mode.
func (a *App) startInterview(resume bool) (tea.Model, tea.Cmd) {
	a.state = stateInterview
	a.interviewView = newInterviewView(a)
	cmd := a.interviewView.Init(resume)
	return a, cmd
}

// returnToMainMenu transitions back to the main menu
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.interviewView = nil
	a.logInfo("Returned to main menu (phase: %s)", a.controller.Phase().FriendlyName())

	// Refresh menu items (a saved session may have appeared or finished)
	a.refreshResumeCandidate()
	a.mainMenu.SetItems(a.buildMainMenu())
	a.refreshRosterMenu()

	return a, nil
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
	}
	if leftWidth < 20 {
		leftWidth = width
		rightWidth = 0
	}
	if a.state == stateMainMenu {
		a.mainMenu.SetSize(max(20, leftWidth-4), max(10, a.height-10))
	}
	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateRoster:
		content = a.renderRoster()
	case stateInterview:
		if a.interviewView != nil {
			content = a.interviewView.View()
		} else {
			content = "Preparing the interview..."
		}
	}
	return a.renderBoard(content, leftWidth, rightWidth)
}

func (a *App) renderRoster() string {
	view := a.rosterMenu.View()
	if strings.TrimSpace(view) == "" {
		view = "No specialists registered"
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		MarginTop(1).
		Render("Esc → back to menu")
	return lipgloss.JoinVertical(lipgloss.Left, view, hint)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(8)
	if len(lines) == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("LOG · journey")
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
	return box
}

func (a *App) renderBoard(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ THE BRIEFING")
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.renderPhasePanel(leftWidth-4),
		"",
		a.renderMainArea(mainContent, leftWidth-4),
	)
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(left)
	var body string
	if rightWidth > 0 {
		right := a.renderSessionPanel(rightWidth - 4)
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(right)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}
	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderPhasePanel(width int) string {
	phase := a.controller.Phase()
	total := len(session.AllPhases())
	phaseLine := fmt.Sprintf("%s (%d/%d)", phase.FriendlyName(), phase.Ordinal(), total)
	lines := []string{
		fmt.Sprintf("Phase: %s", phaseLine),
	}
	if next := upcomingPhaseLine(phase); next != "" {
		lines = append(lines, next)
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderMainArea(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		content = "Ready to start the interview."
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(content)
}

func (a *App) renderSessionPanel(width int) string {
	snap := a.controller.Snapshot()
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Session")

	var lines []string
	if vision := strings.TrimSpace(snap.Vision); vision != "" {
		lines = append(lines, fmt.Sprintf("Vision: %s", truncate(vision, 48)))
	} else {
		lines = append(lines, "Vision: not captured yet")
	}
	if len(snap.SelectedAgents) > 0 {
		names := make([]string, 0, len(snap.SelectedAgents))
		for _, id := range snap.SelectedAgents {
			names = append(names, a.agentName(id))
		}
		lines = append(lines, fmt.Sprintf("Panel: %s", truncate(strings.Join(names, ", "), 48)))
	} else {
		lines = append(lines, "Panel: not confirmed")
	}
	resolved := len(snap.Answers.Resolved())
	open := len(snap.Answers.OpenPoints())
	if resolved > 0 || open > 0 {
		lines = append(lines, fmt.Sprintf("Answers: %d recorded · %d open", resolved, open))
	}
	if snap.CurrentAgent != "" {
		lines = append(lines, fmt.Sprintf("With: %s", a.agentName(snap.CurrentAgent)))
	}
	if !snap.UpdatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Updated %s ago", humanizeDuration(time.Since(snap.UpdatedAt))))
	}
	if a.state == stateMainMenu && a.hasResumable {
		lines = append(lines, "", fmt.Sprintf("Saved: %s · updated %s ago",
			a.resumable.Phase.FriendlyName(),
			humanizeDuration(time.Since(a.resumable.UpdatedAt))))
	}

	body := strings.Join(lines, "\n")
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

func (a *App) agentName(id string) string {
	for _, member := range a.controller.Roster() {
		if member.ID == id {
			return member.Name
		}
	}
	return id
}

// upcomingPhaseLine shows the next stop or two so the user knows how much
// interview is left.
func upcomingPhaseLine(p session.Phase) string {
	phases := session.AllPhases()
	idx := p.Ordinal()
	if idx <= 0 || idx >= len(phases) {
		return ""
	}
	rest := phases[idx:]
	var names []string
	for _, next := range rest {
		names = append(names, next.FriendlyName())
		if len(names) == 2 {
			break
		}
	}
	line := fmt.Sprintf("Next: %s", strings.Join(names, " → "))
	if len(rest) > len(names) {
		line += " → …"
	}
	return line
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if limit <= 0 || len(runes) <= limit {
		return string(runes)
	}
	if limit <= 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
