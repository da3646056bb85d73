// Package interview drives the guided interview: a phase machine over
// the session, gated by user input and provider calls. All state changes
// go through the Controller, which persists after every accepted
// mutation and never lets a failed provider call corrupt the session.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/brief"
	"github.com/kingrea/The-Briefing/internal/logbook"
	"github.com/kingrea/The-Briefing/internal/notify"
	"github.com/kingrea/The-Briefing/internal/provider"
	"github.com/kingrea/The-Briefing/internal/question"
	"github.com/kingrea/The-Briefing/internal/session"
)

// ErrValidation rejects user input before it touches the session.
var ErrValidation = errors.New("interview: invalid input")

// ErrInvalidTransition rejects an operation that does not belong to the
// current phase.
var ErrInvalidTransition = errors.New("interview: wrong phase")

// ErrProvider wraps provider failures, including abandoned calls. The
// session is unchanged whenever it is returned.
var ErrProvider = errors.New("interview: provider")

// Controller owns one interview session. Methods are safe for
// concurrent use; provider calls run outside the lock so the interview
// stays responsive and a newer vision submission can abandon an older
// one mid-flight.
type Controller struct {
	mu       sync.Mutex
	sess     session.Session
	catalog  *agent.Catalog
	provider provider.Provider
	store    session.Store
	exporter *brief.Exporter
	notifier notify.Notifier
	meta     brief.ProjectMeta
	log      *logbook.Logbook
	clock    func() time.Time
	newID    func() string

	inflight   context.CancelFunc
	generation uint64
}

// Option customizes the controller.
type Option func(*Controller)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDGenerator overrides session ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithLogbook attaches the journey log.
func WithLogbook(book *logbook.Logbook) Option {
	return func(c *Controller) { c.log = book }
}

// WithExporter attaches the briefing exporter.
func WithExporter(exp *brief.Exporter) Option {
	return func(c *Controller) { c.exporter = exp }
}

// WithNotifier attaches a milestone observer. Delivery is fire and
// forget.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithProjectMeta attaches the project identity rendered at the head of
// the briefing.
func WithProjectMeta(meta brief.ProjectMeta) Option {
	return func(c *Controller) { c.meta = meta }
}

// New wires a controller to the agent catalog, content provider, and
// session store, starting with a fresh session at the vision phase.
func New(catalog *agent.Catalog, prov provider.Provider, store session.Store, opts ...Option) (*Controller, error) {
	if catalog == nil {
		return nil, fmt.Errorf("interview: agent catalog is required")
	}
	if prov == nil {
		return nil, fmt.Errorf("interview: provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("interview: session store is required")
	}
	c := &Controller{
		catalog:  catalog,
		provider: prov,
		store:    store,
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sess = session.New(c.newID(), c.clock())
	return c, nil
}

// Phase returns the current interview phase.
func (c *Controller) Phase() session.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Phase
}

// Snapshot returns a deep copy of the session for rendering.
func (c *Controller) Snapshot() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Clone()
}

// Roster returns every agent available for the panel, builtins first.
func (c *Controller) Roster() []agent.Agent {
	return c.catalog.All()
}

// CurrentQuestion returns the question awaiting an answer in the
// dynamic or guided phases.
func (c *Controller) CurrentQuestion() (question.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.sess.Phase {
	case session.PhaseDynamicQuestions:
		return c.sess.CurrentDynamic()
	case session.PhaseGuidedQA:
		return c.currentForAgentLocked()
	default:
		return question.Question{}, false
	}
}

// ResumeCandidate loads the stored session if one is worth resuming.
// Invalid payloads are discarded on the spot; the returned error tells
// the caller to warn that a previous session could not be recovered.
func (c *Controller) ResumeCandidate(ctx context.Context) (session.Session, bool, error) {
	stored, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return session.Session{}, false, nil
	case errors.Is(err, session.ErrInvalidState):
		c.log.Warn("discarding stored session: %v", err)
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.log.Warn("clear stored session: %v", clearErr)
		}
		return session.Session{}, false, err
	case err != nil:
		return session.Session{}, false, err
	}
	if !stored.Phase.IsResumable() {
		return session.Session{}, false, nil
	}
	return stored, true, nil
}

// Resume adopts the stored session, replacing the fresh one.
func (c *Controller) Resume(ctx context.Context) error {
	stored, ok, err := c.ResumeCandidate(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: nothing to resume", ErrValidation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
	c.sess = stored
	c.log.Info("resumed session %s at phase %s", stored.ID, stored.Phase)
	return nil
}

// Discard clears the stored session and starts a fresh one. Store
// failures are logged, not surfaced: the in-memory session is already
// fresh either way.
func (c *Controller) Discard(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn("discard stored session: %v", err)
	}
	c.sess = session.New(c.newID(), c.clock())
	c.log.Info("started fresh session %s", c.sess.ID)
}

// SubmitVision records the project vision and asks the provider to
// recommend a panel. Submitting again while an earlier submission is
// waiting on the provider abandons the earlier call; the newest vision
// wins.
func (c *Controller) SubmitVision(ctx context.Context, vision string) error {
	vision = strings.TrimSpace(vision)
	if vision == "" {
		return fmt.Errorf("%w: vision must not be empty", ErrValidation)
	}

	c.mu.Lock()
	if c.sess.Phase != session.PhaseVision {
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot submit a vision during %s", ErrInvalidTransition, c.sess.Phase)
	}
	callCtx, gen := c.stageCallLocked(ctx)
	roster := c.catalog.All()
	c.mu.Unlock()

	rec, err := c.provider.RecommendTeam(callCtx, vision, roster)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return fmt.Errorf("%w: superseded by a newer vision", ErrProvider)
	}
	c.clearCallLocked()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}

	selected, reasons, notNeeded := c.vetRecommendation(rec)
	if len(selected) == 0 {
		return fmt.Errorf("%w: no usable team recommendation", ErrProvider)
	}

	c.sess.Vision = vision
	c.sess.SelectedAgents = selected
	c.sess.AgentReasons = reasons
	c.sess.NotNeeded = notNeeded
	c.sess.AgentQuestions = c.vetBankOverrides(rec.Questions)
	c.transitionLocked(session.PhaseTeamSetup)
	c.persistLocked()
	c.emitLocked(notify.KindSessionStarted, summarize(vision))
	return nil
}

// ToggleAgent adds or removes a specialist from the proposed team.
func (c *Controller) ToggleAgent(agentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Phase != session.PhaseTeamSetup {
		return fmt.Errorf("%w: team changes only during %s", ErrInvalidTransition, session.PhaseTeamSetup)
	}
	if !c.catalog.Has(agentID) {
		return fmt.Errorf("%w: unknown agent %s", ErrValidation, agentID)
	}
	if c.sess.Selected(agentID) {
		kept := c.sess.SelectedAgents[:0]
		for _, id := range c.sess.SelectedAgents {
			if id != agentID {
				kept = append(kept, id)
			}
		}
		c.sess.SelectedAgents = kept
	} else {
		c.sess.SelectedAgents = append(c.sess.SelectedAgents, agentID)
	}
	c.touchLocked()
	c.persistLocked()
	return nil
}

// ConfirmTeam freezes the panel, fetches the vision-specific clarifying
// questions, and builds the guided queue from the panel's banks.
func (c *Controller) ConfirmTeam(ctx context.Context) error {
	c.mu.Lock()
	if c.sess.Phase != session.PhaseTeamSetup {
		c.mu.Unlock()
		return fmt.Errorf("%w: confirm the team during %s", ErrInvalidTransition, session.PhaseTeamSetup)
	}
	team, err := c.teamLocked()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if len(team) == 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: select at least one specialist", ErrValidation)
	}
	callCtx, gen := c.stageCallLocked(ctx)
	vision := c.sess.Vision
	c.mu.Unlock()

	dynamic, err := c.provider.DynamicQuestions(callCtx, vision, team)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return fmt.Errorf("%w: superseded by a newer vision", ErrProvider)
	}
	c.clearCallLocked()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}

	teamIDs := make([]string, len(team))
	for i, a := range team {
		teamIDs[i] = a.ID
	}
	for i := range dynamic {
		if len(dynamic[i].Agents) == 0 {
			dynamic[i].Agents = append([]string(nil), teamIDs...)
		}
	}
	dynamic = question.Flatten(dynamic)
	question.AssignIDs("dq", dynamic)

	var pool []question.Question
	for _, a := range team {
		if override, ok := c.sess.AgentQuestions[a.ID]; ok {
			pool = append(pool, question.FromBank(a.ID, override)...)
			continue
		}
		pool = append(pool, a.Bank()...)
	}
	guided := question.Flatten(pool)
	guided = absorbCovered(dynamic, guided)
	question.AssignIDs("gq", guided)

	c.sess.DynamicQuestions = dynamic
	c.sess.DynamicIndex = 0
	c.sess.GuidedQuestions = guided
	c.sess.GuidedIndex = 0

	if len(dynamic) > 0 {
		c.transitionLocked(session.PhaseDynamicQuestions)
	} else {
		c.enterGuidedLocked()
	}
	c.persistLocked()
	c.emitLocked(notify.KindTeamConfirmed, fmt.Sprintf("%d specialists, %d questions queued", len(team), len(dynamic)+len(guided)))
	return nil
}

// AnswerDynamic records the answer to the current clarifying question
// and advances. Use SkipCurrent to leave it open instead.
func (c *Controller) AnswerDynamic(answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%w: answer must not be empty, skip instead", ErrValidation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Phase != session.PhaseDynamicQuestions {
		return fmt.Errorf("%w: no clarifying question is pending", ErrInvalidTransition)
	}
	q, ok := c.sess.CurrentDynamic()
	if !ok {
		return fmt.Errorf("%w: no clarifying question is pending", ErrInvalidTransition)
	}
	c.sess.Answers.Record(q, answer, c.clock())
	c.advanceDynamicLocked()
	c.persistLocked()
	return nil
}

// AnswerGuided records the answer to the current specialist question and
// advances, moving into the feedback phase when the specialist's round
// is complete.
func (c *Controller) AnswerGuided(answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%w: answer must not be empty, skip instead", ErrValidation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Phase != session.PhaseGuidedQA {
		return fmt.Errorf("%w: no specialist question is pending", ErrInvalidTransition)
	}
	q, ok := c.currentForAgentLocked()
	if !ok {
		return fmt.Errorf("%w: no specialist question is pending", ErrInvalidTransition)
	}
	c.sess.Answers.Record(q, answer, c.clock())
	c.advanceGuidedLocked()
	c.persistLocked()
	return nil
}

// SkipCurrent records the pending question as an open point and
// advances. The reason is optional and travels into the briefing's open
// points.
func (c *Controller) SkipCurrent(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.sess.Phase {
	case session.PhaseDynamicQuestions:
		q, ok := c.sess.CurrentDynamic()
		if !ok {
			return fmt.Errorf("%w: no question is pending", ErrInvalidTransition)
		}
		c.sess.Answers.Skip(q, reason, c.clock())
		c.advanceDynamicLocked()
	case session.PhaseGuidedQA:
		q, ok := c.currentForAgentLocked()
		if !ok {
			return fmt.Errorf("%w: no question is pending", ErrInvalidTransition)
		}
		c.sess.Answers.Skip(q, reason, c.clock())
		c.advanceGuidedLocked()
	default:
		return fmt.Errorf("%w: nothing to skip during %s", ErrInvalidTransition, c.sess.Phase)
	}
	c.persistLocked()
	return nil
}

// ChooseCurrent answers the pending question with labels picked from its
// option list, optionally extended with custom text.
func (c *Controller) ChooseCurrent(values []string, custom string) error {
	custom = strings.TrimSpace(custom)
	if len(values) == 0 && custom == "" {
		return fmt.Errorf("%w: choose an option or provide text", ErrValidation)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.sess.Phase {
	case session.PhaseDynamicQuestions:
		q, ok := c.sess.CurrentDynamic()
		if !ok {
			return fmt.Errorf("%w: no question is pending", ErrInvalidTransition)
		}
		if err := checkValues(q, values); err != nil {
			return err
		}
		c.sess.Answers.RecordChoice(q, values, custom, c.clock())
		c.advanceDynamicLocked()
	case session.PhaseGuidedQA:
		q, ok := c.currentForAgentLocked()
		if !ok {
			return fmt.Errorf("%w: no question is pending", ErrInvalidTransition)
		}
		if err := checkValues(q, values); err != nil {
			return err
		}
		c.sess.Answers.RecordChoice(q, values, custom, c.clock())
		c.advanceGuidedLocked()
	default:
		return fmt.Errorf("%w: nothing to answer during %s", ErrInvalidTransition, c.sess.Phase)
	}
	c.persistLocked()
	return nil
}

// AutoFillCurrent accepts the pending question's declared default. It is
// always an explicit user action and fails when the question has no
// default.
func (c *Controller) AutoFillCurrent() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.sess.Phase {
	case session.PhaseDynamicQuestions:
		q, ok := c.sess.CurrentDynamic()
		if !ok {
			return fmt.Errorf("%w: no question is pending", ErrInvalidTransition)
		}
		if q.DefaultAnswer == "" {
			return fmt.Errorf("%w: question has no default answer", ErrValidation)
		}
		c.sess.Answers.AutoFill(q, c.clock())
		c.advanceDynamicLocked()
	case session.PhaseGuidedQA:
		q, ok := c.currentForAgentLocked()
		if !ok {
			return fmt.Errorf("%w: no question is pending", ErrInvalidTransition)
		}
		if q.DefaultAnswer == "" {
			return fmt.Errorf("%w: question has no default answer", ErrValidation)
		}
		c.sess.Answers.AutoFill(q, c.clock())
		c.advanceGuidedLocked()
	default:
		return fmt.Errorf("%w: nothing to fill during %s", ErrInvalidTransition, c.sess.Phase)
	}
	c.persistLocked()
	return nil
}

// FeedbackDigest returns the current specialist's read-back, generating
// and caching it on first request. A provider failure leaves the phase
// untouched so the digest can simply be requested again.
func (c *Controller) FeedbackDigest(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.sess.Phase != session.PhaseAgentFeedback {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: no feedback round is active", ErrInvalidTransition)
	}
	agentID := c.sess.CurrentAgent
	if cached, ok := c.sess.FeedbackNotes[agentID]; ok && cached != "" {
		c.mu.Unlock()
		return cached, nil
	}
	a, err := c.catalog.Resolve(agentID)
	if err != nil {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	req := provider.FeedbackRequest{
		Vision:  c.sess.Vision,
		Agent:   a,
		Answers: c.sess.Answers.ForAgent(agentID),
	}
	callCtx, gen := c.stageCallLocked(ctx)
	c.mu.Unlock()

	text, err := c.provider.AgentFeedback(callCtx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return "", fmt.Errorf("%w: superseded by a newer vision", ErrProvider)
	}
	c.clearCallLocked()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if c.sess.FeedbackNotes == nil {
		c.sess.FeedbackNotes = map[string]string{}
	}
	c.sess.FeedbackNotes[agentID] = text
	c.touchLocked()
	c.persistLocked()
	return text, nil
}

// ContinueFeedback leaves the feedback round, either into the next
// specialist's questions or into the summary when the panel is done.
func (c *Controller) ContinueFeedback() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Phase != session.PhaseAgentFeedback {
		return fmt.Errorf("%w: no feedback round is active", ErrInvalidTransition)
	}
	next := c.nextAgentLocked(c.sess.CurrentAgent)
	if next == "" {
		c.sess.CurrentAgent = ""
		c.transitionLocked(session.PhaseSummary)
	} else {
		c.sess.CurrentAgent = next
		c.beginAgentRoundLocked()
	}
	c.persistLocked()
	return nil
}

// GenerateBriefing compiles and exports the final document, moving the
// session to its terminal phase. The stored session is cleared on
// success so a finished interview never resurfaces as a resume
// candidate. Calling it again returns the same markdown without
// recompiling.
func (c *Controller) GenerateBriefing() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.sess.Phase {
	case session.PhaseBriefing:
		return c.sess.Briefing, nil
	case session.PhaseSummary:
	default:
		return "", fmt.Errorf("%w: finish the interview before generating the briefing", ErrInvalidTransition)
	}

	doc := brief.Build(c.briefInputLocked())
	c.sess.Briefing = doc.Markdown()
	c.transitionLocked(session.PhaseBriefing)
	if err := c.store.Clear(context.Background()); err != nil {
		c.log.Warn("clear finished session: %v", err)
	}

	if c.exporter != nil {
		if path, err := c.exporter.Export(doc); err != nil {
			c.log.Warn("briefing export failed: %v", err)
		} else {
			c.log.Info("briefing exported to %s", path)
		}
	}
	c.emitLocked(notify.KindBriefingReady, fmt.Sprintf("%d open points", len(doc.OpenPoints)))
	return c.sess.Briefing, nil
}

// --- internals, all called with c.mu held ---

// stageCallLocked registers a cancelable provider call, abandoning any
// call already in flight.
func (c *Controller) stageCallLocked(ctx context.Context) (context.Context, uint64) {
	c.abandonLocked()
	callCtx, cancel := context.WithCancel(ctx)
	c.inflight = cancel
	c.generation++
	return callCtx, c.generation
}

func (c *Controller) abandonLocked() {
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
		c.generation++
	}
}

func (c *Controller) clearCallLocked() {
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
}

func (c *Controller) transitionLocked(to session.Phase) {
	from := c.sess.Phase
	c.sess.Phase = to
	c.touchLocked()
	c.log.Info("phase %s -> %s", from, to)
}

func (c *Controller) touchLocked() {
	c.sess.UpdatedAt = c.clock()
}

// persistLocked saves the session. Write failures are logged and
// swallowed: losing a checkpoint must not break the interview.
func (c *Controller) persistLocked() {
	if err := c.store.Save(context.Background(), c.sess); err != nil {
		c.log.Warn("session save failed: %v", err)
	}
}

func (c *Controller) emitLocked(kind, summary string) {
	if c.notifier == nil {
		return
	}
	evt := notify.Event{
		Kind:      kind,
		SessionID: c.sess.ID,
		Summary:   summary,
		At:        c.clock(),
	}
	notifier := c.notifier
	book := c.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := notifier.Notify(ctx, evt); err != nil {
			book.Warn("notify %s: %v", evt.Kind, err)
		}
	}()
}

func (c *Controller) vetRecommendation(rec provider.TeamRecommendation) ([]string, map[string]string, map[string]string) {
	var selected []string
	reasons := map[string]string{}
	notNeeded := map[string]string{}
	for _, pick := range rec.Recommended {
		if !c.catalog.Has(pick.AgentID) {
			c.log.Warn("provider recommended unknown agent %s", pick.AgentID)
			continue
		}
		if _, dup := reasons[pick.AgentID]; dup {
			continue
		}
		selected = append(selected, pick.AgentID)
		reasons[pick.AgentID] = pick.Reason
	}
	for _, pick := range rec.NotNeeded {
		if c.catalog.Has(pick.AgentID) {
			notNeeded[pick.AgentID] = pick.Reason
		}
	}
	return selected, reasons, notNeeded
}

// vetBankOverrides keeps only replacement banks for known agents with at
// least one non-blank question.
func (c *Controller) vetBankOverrides(banks map[string][]question.Spec) map[string][]question.Spec {
	var out map[string][]question.Spec
	for id, specs := range banks {
		if !c.catalog.Has(id) {
			c.log.Warn("provider sent questions for unknown agent %s", id)
			continue
		}
		kept := make([]question.Spec, 0, len(specs))
		for _, spec := range specs {
			if strings.TrimSpace(spec.Text) != "" {
				kept = append(kept, spec.Clone())
			}
		}
		if len(kept) == 0 {
			continue
		}
		if out == nil {
			out = map[string][]question.Spec{}
		}
		out[id] = kept
	}
	return out
}

// checkValues rejects picks that are not on the question's option list.
func checkValues(q question.Question, values []string) error {
	if len(values) == 0 {
		return nil
	}
	labels := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		labels[opt.Label] = struct{}{}
	}
	for _, v := range values {
		if _, ok := labels[v]; !ok {
			return fmt.Errorf("%w: %q is not an option for this question", ErrValidation, v)
		}
	}
	return nil
}

func (c *Controller) teamLocked() ([]agent.Agent, error) {
	team := make([]agent.Agent, 0, len(c.sess.SelectedAgents))
	for _, id := range c.sess.SelectedAgents {
		a, err := c.catalog.Resolve(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		team = append(team, a)
	}
	return team, nil
}

// currentForAgentLocked returns the guided question under the cursor
// when it belongs to the current specialist's round.
func (c *Controller) currentForAgentLocked() (question.Question, bool) {
	q, ok := c.sess.CurrentGuided()
	if !ok || q.PrimaryAgent() != c.sess.CurrentAgent {
		return question.Question{}, false
	}
	return q, true
}

func (c *Controller) advanceDynamicLocked() {
	c.sess.DynamicIndex++
	c.touchLocked()
	if c.sess.DynamicIndex >= len(c.sess.DynamicQuestions) {
		c.enterGuidedLocked()
	}
}

// enterGuidedLocked starts the first specialist's round, or jumps
// straight to the summary when there is no panel to interview.
func (c *Controller) enterGuidedLocked() {
	if len(c.sess.SelectedAgents) == 0 {
		c.transitionLocked(session.PhaseSummary)
		return
	}
	c.sess.CurrentAgent = c.sess.SelectedAgents[0]
	c.beginAgentRoundLocked()
}

// beginAgentRoundLocked enters guided Q&A when the current specialist
// still has queued questions, otherwise goes straight to its feedback
// round. A specialist whose whole bank was answered through shared
// questions still gets a feedback round over those shared answers.
func (c *Controller) beginAgentRoundLocked() {
	if _, ok := c.currentForAgentLocked(); ok {
		c.transitionLocked(session.PhaseGuidedQA)
		return
	}
	c.transitionLocked(session.PhaseAgentFeedback)
}

func (c *Controller) advanceGuidedLocked() {
	c.sess.GuidedIndex++
	c.touchLocked()
	if _, ok := c.currentForAgentLocked(); !ok {
		c.transitionLocked(session.PhaseAgentFeedback)
	}
}

func (c *Controller) nextAgentLocked(current string) string {
	for i, id := range c.sess.SelectedAgents {
		if id == current && i+1 < len(c.sess.SelectedAgents) {
			return c.sess.SelectedAgents[i+1]
		}
	}
	return ""
}

func (c *Controller) briefInputLocked() brief.Input {
	in := brief.Input{
		SessionID:   c.sess.ID,
		Vision:      c.sess.Vision,
		GeneratedAt: c.clock(),
		Project:     c.meta,
		Dynamic:     c.sess.DynamicQuestions,
		Guided:      c.sess.GuidedQuestions,
		Answers:     c.sess.Answers,
		Feedback:    c.sess.FeedbackNotes,
	}
	for _, id := range c.sess.SelectedAgents {
		in.Team = append(in.Team, brief.Member{ID: id, Name: c.agentName(id), Reason: c.sess.AgentReasons[id]})
	}
	for _, a := range c.catalog.All() {
		if reason, ok := c.sess.NotNeeded[a.ID]; ok && !c.sess.Selected(a.ID) {
			in.NotNeeded = append(in.NotNeeded, brief.Member{ID: a.ID, Name: a.Name, Reason: reason})
		}
	}
	return in
}

func (c *Controller) agentName(id string) string {
	if a, err := c.catalog.Resolve(id); err == nil {
		return a.Name
	}
	return id
}

// absorbCovered removes guided questions that a clarifying question
// already covers, keyed by normalized text. The covering question
// inherits the dropped question's interest set so its answer still
// reaches those specialists.
func absorbCovered(dynamic, guided []question.Question) []question.Question {
	if len(dynamic) == 0 {
		return guided
	}
	covered := make(map[string]int, len(dynamic))
	for i, q := range dynamic {
		covered[question.Normalize(q.Text)] = i
	}
	kept := guided[:0]
	for _, q := range guided {
		if at, dup := covered[question.Normalize(q.Text)]; dup {
			merged := question.Flatten([]question.Question{dynamic[at], q})
			dynamic[at].Agents = merged[0].Agents
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

func summarize(vision string) string {
	const max = 80
	vision = strings.Join(strings.Fields(vision), " ")
	if len(vision) <= max {
		return vision
	}
	return vision[:max-3] + "..."
}
