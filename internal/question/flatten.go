package question

import "strings"

// Normalize produces the comparison key used to detect duplicate questions.
// Two questions collide when their normalized text matches: casing,
// surrounding whitespace, interior whitespace runs, and trailing
// punctuation are all ignored.
func Normalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	collapsed = strings.ToLower(collapsed)
	return strings.TrimRight(collapsed, " ?!.")
}

// Flatten removes duplicate questions while preserving first-seen order.
// When two questions normalize to the same text the earlier one keeps its
// wording; interest sets are merged so a single answer reaches every agent
// that asked. Options and default answers stick with the first question
// that declared them. Flattening an already flattened list is a no-op.
func Flatten(questions []Question) []Question {
	out := make([]Question, 0, len(questions))
	index := make(map[string]int, len(questions))
	for _, q := range questions {
		key := Normalize(q.Text)
		if key == "" {
			continue
		}
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, q.Clone())
			continue
		}
		out[at].Agents = mergeAgents(out[at].Agents, q.Agents)
		if len(out[at].Options) == 0 {
			out[at].Options = cloneOptions(q.Options)
		}
		if out[at].DefaultAnswer == "" {
			out[at].DefaultAnswer = q.DefaultAnswer
		}
	}
	return out
}

func mergeAgents(into, extra []string) []string {
	seen := make(map[string]struct{}, len(into)+len(extra))
	out := make([]string, 0, len(into)+len(extra))
	for _, id := range into {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range extra {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
