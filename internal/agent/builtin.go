package agent

import "github.com/kingrea/The-Briefing/internal/question"

// RegisterBuiltins installs the built-in specialist roster into the
// provided catalog.
func RegisterBuiltins(cat *Catalog) {
	if cat == nil {
		return
	}
	for _, a := range builtins() {
		cat.MustRegister(a)
	}
}

// builtins returns the default panel. Several banks deliberately share
// questions (authentication, environments, primary user) so that one
// answer serves every specialist who would have asked.
func builtins() []Agent {
	return []Agent{
		{
			ID:          "product",
			Name:        "Product Strategist",
			Description: "Scope, audience, and what success looks like.",
			Questions: []question.Spec{
				{Text: "Who is the primary user of this product?"},
				{
					Text: "What does success look like six months after launch?",
					Options: []question.Option{
						{Label: "Adoption", Description: "A target number of active users or teams"},
						{Label: "Revenue", Description: "Paying customers or contract value"},
						{Label: "Replacement", Description: "An existing tool or process fully retired"},
					},
				},
				{Text: "What is explicitly out of scope for the first version?"},
				{
					Text:          "Is there a hard deadline or external date driving this work?",
					DefaultAnswer: "No hard deadline",
				},
			},
		},
		{
			ID:          "design",
			Name:        "UX Designer",
			Description: "Journeys, surfaces, and interaction style.",
			Questions: []question.Spec{
				{Text: "Who is the primary user of this product?"},
				{
					Text: "What kind of surface fits the workflow best?",
					Options: []question.Option{
						{Label: "Terminal", Description: "A keyboard-driven TUI for developers"},
						{Label: "Web", Description: "A browser app with shareable URLs"},
						{Label: "Both", Description: "Terminal first, web view later"},
					},
				},
				{Text: "Walk me through the single most important user journey."},
				{
					Text:          "Does the product need to be accessible to screen readers from day one?",
					DefaultAnswer: "Yes, baseline accessibility from day one",
				},
			},
		},
		{
			ID:          "backend",
			Name:        "Backend Engineer",
			Description: "Services, storage, and integration boundaries.",
			Questions: []question.Spec{
				{Text: "How will users authenticate?"},
				{
					Text: "Which database engine do you prefer?",
					Options: []question.Option{
						{Label: "PostgreSQL", Description: "Managed relational store, good default"},
						{Label: "SQLite", Description: "Embedded, zero-ops, single writer"},
						{Label: "Undecided", Description: "Let the team pick during design"},
					},
					DefaultAnswer: "Undecided",
				},
				{Text: "What external systems must this integrate with?"},
				{Text: "What data must never be lost, even in a crash?"},
			},
		},
		{
			ID:          "frontend",
			Name:        "Frontend Engineer",
			Description: "Client platforms and rendering constraints.",
			Questions: []question.Spec{
				{Text: "What platforms must be supported?"},
				{
					Text:          "Is offline use a requirement?",
					DefaultAnswer: "No offline requirement",
				},
				{Text: "Are there existing design systems or component libraries to reuse?"},
			},
		},
		{
			ID:          "security",
			Name:        "Security Reviewer",
			Description: "Authentication, secrets, and data exposure.",
			Questions: []question.Spec{
				{Text: "How will users authenticate?"},
				{Text: "Are there compliance or privacy constraints on the data?"},
				{
					Text: "Who is allowed to see whose data?",
					Options: []question.Option{
						{Label: "Single tenant", Description: "Every user sees everything"},
						{Label: "Per user", Description: "Strict isolation between accounts"},
						{Label: "Team scoped", Description: "Shared within a team, isolated between teams"},
					},
				},
				{
					Text:          "Will the service hold secrets or credentials for third parties?",
					DefaultAnswer: "No third-party credentials stored",
				},
			},
		},
		{
			ID:          "qa",
			Name:        "QA Lead",
			Description: "Test strategy, environments, release confidence.",
			Questions: []question.Spec{
				{Text: "Which environments exist today?"},
				{Text: "What is the most expensive failure this product could cause?"},
				{
					Text:          "Is there an existing test suite or CI pipeline to build on?",
					DefaultAnswer: "Starting from scratch",
				},
			},
		},
		{
			ID:          "devops",
			Name:        "DevOps Engineer",
			Description: "Deployment targets, operations, and scaling.",
			Questions: []question.Spec{
				{Text: "Which environments exist today?"},
				{
					Text: "Where should the service be deployed?",
					Options: []question.Option{
						{Label: "Cloud", Description: "A managed cloud provider"},
						{Label: "On-prem", Description: "Customer-controlled hardware"},
						{Label: "Local", Description: "Runs entirely on the user's machine"},
					},
				},
				{Text: "What is the expected load at launch, roughly?"},
				{
					Text:          "Who gets paged when it breaks at 3am?",
					DefaultAnswer: "No on-call rotation yet",
				},
			},
		},
		{
			ID:          "data",
			Name:        "Data Analyst",
			Description: "Metrics, retention, and reporting needs.",
			Questions: []question.Spec{
				{Text: "Are there compliance or privacy constraints on the data?"},
				{Text: "Which product decisions should the collected data be able to answer?"},
				{
					Text:          "How long must raw records be retained?",
					DefaultAnswer: "Ninety days unless compliance says otherwise",
				},
			},
		},
	}
}
