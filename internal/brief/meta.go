package brief

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// ProjectMeta is the optional project identity kept in
// .briefing/project.toml. When present it heads the briefing so the
// document is attributable without opening the session.
type ProjectMeta struct {
	Name   string   `toml:"name"`
	Client string   `toml:"client"`
	Tags   []string `toml:"tags"`
}

// IsZero reports whether no project identity was configured.
func (m ProjectMeta) IsZero() bool {
	return m.Name == "" && m.Client == "" && len(m.Tags) == 0
}

// LoadProjectMeta reads the project identity file. A missing file is
// not an error; the briefing simply renders without the header block.
func LoadProjectMeta(path string) (ProjectMeta, error) {
	var meta ProjectMeta
	if _, err := toml.DecodeFile(path, &meta); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ProjectMeta{}, nil
		}
		return ProjectMeta{}, fmt.Errorf("parse project meta %s: %w", path, err)
	}
	return meta, nil
}
