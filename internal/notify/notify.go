// Package notify fans interview milestones out to interested observers.
// Delivery is best effort: the interview never blocks on a notifier and
// never fails because one is down.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Event is one interview milestone.
type Event struct {
	Kind      string
	SessionID string
	Summary   string
	At        time.Time
}

// Milestone kinds emitted by the interview controller.
const (
	KindSessionStarted = "session-started"
	KindTeamConfirmed  = "team-confirmed"
	KindBriefingReady  = "briefing-ready"
)

// Notifier receives interview milestones.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// List fans an event out to every notifier and joins the failures.
type List []Notifier

// Notify delivers the event to each notifier in order. A failing
// notifier does not stop delivery to the rest.
func (l List) Notify(ctx context.Context, evt Event) error {
	var errs []error
	for _, n := range l {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Format renders the one-line human message for an event.
func Format(evt Event) string {
	switch evt.Kind {
	case KindSessionStarted:
		return fmt.Sprintf("Interview %s started: %s", evt.SessionID, evt.Summary)
	case KindTeamConfirmed:
		return fmt.Sprintf("Interview %s panel confirmed: %s", evt.SessionID, evt.Summary)
	case KindBriefingReady:
		return fmt.Sprintf("Briefing ready for %s: %s", evt.SessionID, evt.Summary)
	default:
		return fmt.Sprintf("Interview %s: %s", evt.SessionID, evt.Summary)
	}
}
