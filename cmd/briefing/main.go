// cmd/briefing/main.go
//
// This is the entry point for the briefing CLI.
// When you run `briefing` from a project directory, this is what executes.
//
// Flow:
// 1. Load .env so provider keys and store DSNs are available
// 2. Handle one-shot subcommands (validate-pack)
// 3. Initialize the .briefing folder and start the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/kingrea/The-Briefing/internal/config"
	"github.com/kingrea/The-Briefing/internal/tui"
)

func main() {
	// A .env in the project root is the easiest place for
	// ANTHROPIC_API_KEY, SLACK_BOT_TOKEN, and BRIEFING_POSTGRES_DSN.
	// Missing files are fine; the static provider needs none of them.
	_ = godotenv.Load()

	if handleValidatePackCommand() {
		return
	}

	// The current working directory is the project being interviewed.
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitBriefingDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .briefing directory: %v\n", err)
		os.Exit(1)
	}

	app, err := tui.NewApp(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting briefing: %v\n", err)
		os.Exit(1)
	}

	// tea.NewProgram creates a new bubbletea application.
	// Run blocks until the user quits.
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
