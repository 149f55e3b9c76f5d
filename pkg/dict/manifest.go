// CLAUDE:SUMMARY Manifest schema (YAML or TOML) describing a spelling dictionary, its source and CSV layout.
package dict

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Manifest describes a dictionary: its source, format, and which spelling
// system it converts to.
type Manifest struct {
	ID        string     `yaml:"id" toml:"id" json:"id"`
	Version   string     `yaml:"version" toml:"version" json:"version"`
	Language  string     `yaml:"language" toml:"language" json:"language"`
	Spelling  string     `yaml:"spelling" toml:"spelling" json:"spelling"`
	Source    string     `yaml:"source" toml:"source" json:"source"`
	SourceURL string     `yaml:"source_url" toml:"source_url" json:"source_url,omitempty"`
	License   string     `yaml:"license" toml:"license" json:"license"`
	DataFile  string     `yaml:"data_file" toml:"data_file" json:"data_file"`
	Format    FormatSpec `yaml:"format" toml:"format" json:"-"`
}

// FormatSpec describes the CSV layout. Column order is fixed:
// traditional, alternate, reserved, part of speech.
type FormatSpec struct {
	Delimiter string `yaml:"delimiter,omitempty" toml:"delimiter"`
	Encoding  string `yaml:"encoding,omitempty" toml:"encoding"`
	HasHeader bool   `yaml:"has_header,omitempty" toml:"has_header"`
	Comment   string `yaml:"comment,omitempty" toml:"comment"`
}

// manifestNames are probed in order by FindManifest.
var manifestNames = []string{"manifest.yaml", "manifest.yml", "manifest.toml"}

// FindManifest returns the manifest path inside dir, or an error if none exists.
func FindManifest(dir string) (string, error) {
	for _, name := range manifestNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no manifest in %s", dir)
}

// LoadManifest reads and parses a manifest file. The format follows the
// file extension: .toml is TOML, anything else YAML.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("parse manifest %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", path)
	}
	if m.DataFile == "" {
		m.DataFile = "data.csv"
	}
	return &m, nil
}
