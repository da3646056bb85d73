package brief

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Exporter writes compiled briefings into the export directory, one
// markdown document plus a toml sidecar describing its provenance so
// other tooling can find and trust the file.
type Exporter struct {
	dir string
}

// NewExporter creates an exporter rooted at the given directory.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Meta is the provenance sidecar written next to each briefing.
type Meta struct {
	SessionID   string    `toml:"session_id"`
	GeneratedAt time.Time `toml:"generated_at"`
	Agents      []string  `toml:"agents"`
	OpenPoints  int       `toml:"open_points"`
	Document    string    `toml:"document"`
}

// Export writes the document and its sidecar, returning the markdown
// path.
func (e *Exporter) Export(doc Document) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("briefing-%s.md", doc.SessionID)
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(doc.Markdown()), 0o644); err != nil {
		return "", fmt.Errorf("write briefing: %w", err)
	}

	meta := Meta{
		SessionID:   doc.SessionID,
		GeneratedAt: doc.GeneratedAt.UTC(),
		OpenPoints:  len(doc.OpenPoints),
		Document:    name,
	}
	for _, m := range doc.Team {
		meta.Agents = append(meta.Agents, m.ID)
	}

	metaPath := filepath.Join(e.dir, fmt.Sprintf("briefing-%s.toml", doc.SessionID))
	file, err := os.Create(metaPath)
	if err != nil {
		return "", fmt.Errorf("create sidecar: %w", err)
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(meta); err != nil {
		return "", fmt.Errorf("encode sidecar: %w", err)
	}
	return path, nil
}
