package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the optional per-project configuration file looked up
// next to the sources being compiled.
const ProjectFileName = "smlc.yaml"

// Project is the decoded shape of an smlc.yaml file.
type Project struct {
	// SourceRoots lists directories searched for source files, relative to
	// the project file.
	SourceRoots []string `yaml:"source_roots"`
	// Entry names the file elaborated first, when several are given.
	Entry string `yaml:"entry"`
}

// LoadProject reads the project file in dir, if present. A missing file is
// not an error; an unreadable or malformed one is.
func LoadProject(dir string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{}, nil
		}
		return nil, err
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
