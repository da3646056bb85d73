package notify

import (
	"context"

	"github.com/kingrea/The-Briefing/internal/logbook"
)

// LogbookNotifier appends milestones to the journey log.
type LogbookNotifier struct {
	book *logbook.Logbook
}

// NewLogbookNotifier wraps the journey log as a notifier.
func NewLogbookNotifier(book *logbook.Logbook) *LogbookNotifier {
	return &LogbookNotifier{book: book}
}

// Notify appends the formatted event. The logbook swallows write
// failures itself, so this never errors.
func (n *LogbookNotifier) Notify(ctx context.Context, evt Event) error {
	n.book.Info("%s", Format(evt))
	return nil
}
