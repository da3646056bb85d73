package plugins

import (
	"fmt"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/config"
)

// RegisterAgentPacks discovers YAML and Go agent definitions under
// .briefing/agents and registers them into the catalog alongside the
// builtin roster.
func RegisterAgentPacks(cat *agent.Catalog, cfg *config.Config) error {
	if cat == nil || cfg == nil {
		return nil
	}
	defs, err := loadAllDefinitionFiles(cfg.AgentsDir())
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return nil
	}
	seen := make(map[string]string)
	for _, file := range defs {
		def := file.Definition
		if existing, ok := seen[def.ID]; ok {
			return fmt.Errorf("plugin: duplicate agent id %s (%s and %s)", def.ID, existing, file.Path)
		}
		seen[def.ID] = file.Path
		if err := cat.Register(def.Agent()); err != nil {
			return fmt.Errorf("plugin: register %s from %s: %w", def.ID, file.Path, err)
		}
	}
	return nil
}

func loadAllDefinitionFiles(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlDefs, goDefs...), nil
}
