package main

import (
	"fmt"
	"os"

	"github.com/kingrea/The-Briefing/plugins"
)

// handleValidatePackCommand checks an agent pack file without starting the
// TUI, so pack authors can lint their YAML before dropping it into
// .briefing/agents/.
func handleValidatePackCommand() bool {
	if len(os.Args) < 2 || os.Args[1] != "validate-pack" {
		return false
	}
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: briefing validate-pack /path/to/agent.yaml")
		os.Exit(2)
	}
	file, err := plugins.LoadDefinitionFile(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
		os.Exit(1)
	}
	def := file.Definition
	fmt.Printf("OK: %s (%s, %d question(s))\n", file.Path, def.ID, len(def.Questions))
	return true
}
