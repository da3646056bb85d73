package brief

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders the document with a fixed section order. Lists keep
// their input order so the output never depends on map iteration.
func (d Document) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	fmt.Fprintf(&b, "Generated %s from interview session `%s`.\n\n",
		d.GeneratedAt.UTC().Format(time.RFC3339), d.SessionID)

	if !d.Project.IsZero() {
		if d.Project.Client != "" {
			fmt.Fprintf(&b, "Client: %s\n\n", d.Project.Client)
		}
		if len(d.Project.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(d.Project.Tags, ", "))
		}
	}

	b.WriteString("## Vision\n\n")
	if d.Vision == "" {
		b.WriteString("_No vision recorded._\n\n")
	} else {
		b.WriteString(d.Vision)
		b.WriteString("\n\n")
	}

	b.WriteString("## Panel\n\n")
	for _, m := range d.Team {
		writeMember(&b, m)
	}
	if len(d.NotNeeded) > 0 {
		b.WriteString("\nNot needed this time:\n\n")
		for _, m := range d.NotNeeded {
			writeMember(&b, m)
		}
	}
	b.WriteString("\n")

	if len(d.Clarifications) > 0 {
		b.WriteString("## Clarifications\n\n")
		for _, ex := range d.Clarifications {
			writeExchange(&b, ex)
		}
		b.WriteString("\n")
	}

	for _, round := range d.Rounds {
		fmt.Fprintf(&b, "## %s\n\n", round.AgentName)
		for _, ex := range round.Exchanges {
			writeExchange(&b, ex)
		}
		b.WriteString("\n")
	}

	if len(d.Feedback) > 0 {
		b.WriteString("## Specialist Notes\n\n")
		for _, note := range d.Feedback {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", note.AgentName, note.Text)
		}
	}

	b.WriteString("## Open Points\n\n")
	if len(d.OpenPoints) == 0 {
		b.WriteString("None. Every question was answered.\n")
	} else {
		for _, point := range d.OpenPoints {
			fmt.Fprintf(&b, "- %s\n", point)
		}
	}

	return b.String()
}

func writeMember(b *strings.Builder, m Member) {
	if m.Reason != "" {
		fmt.Fprintf(b, "- **%s**: %s\n", m.Name, m.Reason)
		return
	}
	fmt.Fprintf(b, "- **%s**\n", m.Name)
}

func writeExchange(b *strings.Builder, ex Exchange) {
	fmt.Fprintf(b, "**Q: %s**\n\n", ex.Question)
	switch {
	case ex.Missing:
		b.WriteString("_No answer recorded._\n\n")
	case ex.Skipped && ex.Note != "":
		fmt.Fprintf(b, "_Skipped: %s_\n\n", ex.Note)
	case ex.Skipped:
		b.WriteString("_Skipped during the interview._\n\n")
	case ex.Assumed:
		fmt.Fprintf(b, "%s _(assumed default)_\n\n", ex.Answer)
	default:
		fmt.Fprintf(b, "%s\n\n", ex.Answer)
	}
}
