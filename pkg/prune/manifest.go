package prune

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/gsc-inspect/models"
)

// Manifest lists routes to prune. A relative Root is taken relative to the
// manifest file.
type Manifest struct {
	Root   string             `yaml:"root"`
	Routes []models.RouteSpec `yaml:"routes"`
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("error parsing manifest %s: %w", path, err)
	}
	if m.Root != "" && !filepath.IsAbs(m.Root) {
		m.Root = filepath.Join(filepath.Dir(path), m.Root)
	}
	for i, r := range m.Routes {
		if r.Path == "" {
			return nil, fmt.Errorf("manifest %s: route %d has no path", path, i+1)
		}
	}
	return &m, nil
}
