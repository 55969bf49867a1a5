package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is looked up next to the compiled source file.
const ProjectFileName = "weave.yaml"

// Project represents the top-level weave.yaml configuration.
type Project struct {
	// Entrypoint names the program root definition. Defaults to "main"/"Main".
	Entrypoint string `yaml:"entrypoint,omitempty"`

	// Warnings toggles individual warning kinds. Keys are the warning kind
	// names (e.g. "irrefutable-match", "unused-definition"); a false value
	// silences that kind. Missing keys default to enabled.
	Warnings map[string]bool `yaml:"warnings,omitempty"`

	// DenyWarnings promotes every enabled warning to an error.
	DenyWarnings bool `yaml:"deny-warnings,omitempty"`
}

// LoadProject reads the project file from the directory of the given source
// path. A missing file is not an error: the zero Project is returned.
func LoadProject(sourcePath string) (*Project, error) {
	path := filepath.Join(filepath.Dir(sourcePath), ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var proj Project
	if err := yaml.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &proj, nil
}

// WarningEnabled reports whether the given warning kind should be emitted.
func (p *Project) WarningEnabled(kind string) bool {
	if p == nil || p.Warnings == nil {
		return true
	}
	enabled, ok := p.Warnings[kind]
	if !ok {
		return true
	}
	return enabled
}
