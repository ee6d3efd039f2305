// Package plugins reads, validates and versions the manifests of built
// plugins and discovers plugins in an output directory.
package plugins

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentsinc/cli/pkg/skills"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

const (
	// ManifestDir is the plugin subdirectory holding the manifest.
	ManifestDir = ".claude-plugin"
	// ManifestFileName is the plugin manifest file name.
	ManifestFileName = "plugin.json"
	// SkillsSubdir is the plugin subdirectory skills are copied into.
	SkillsSubdir = "skills"
)

// ErrMalformedManifest is returned when a manifest is not valid JSON or
// fails validation. It matches skills.ErrMalformedMetadata.
var ErrMalformedManifest = errors.Wrap(skills.ErrMalformedMetadata, "malformed plugin manifest")

// Author identifies the plugin author.
type Author struct {
	Name  string `json:"name" jsonschema:"description=Author name"`
	Email string `json:"email,omitempty" jsonschema:"description=Author email"`
	URL   string `json:"url,omitempty" jsonschema:"description=Author homepage"`
}

// PluginManifest is the content of .claude-plugin/plugin.json. Skills, agents
// and hooks may be a path or a list of paths and are kept raw.
type PluginManifest struct {
	Name        string          `json:"name" jsonschema:"description=Plugin name,minLength=1"`
	Version     string          `json:"version,omitempty" jsonschema:"description=Semantic version of the plugin"`
	Description string          `json:"description,omitempty" jsonschema:"description=Short description of the plugin"`
	Author      *Author         `json:"author,omitempty" jsonschema:"description=Plugin author"`
	Keywords    []string        `json:"keywords,omitempty" jsonschema:"description=Search keywords"`
	Skills      json.RawMessage `json:"skills,omitempty" jsonschema:"description=Skill directory or list of skill directories"`
	Agents      json.RawMessage `json:"agents,omitempty" jsonschema:"description=Agent file or list of agent files"`
	Hooks       json.RawMessage `json:"hooks,omitempty" jsonschema:"description=Hooks configuration or path to it"`
}

// ManifestPath returns <pluginDir>/.claude-plugin/plugin.json.
func ManifestPath(pluginDir string) string {
	return filepath.Join(pluginDir, ManifestDir, ManifestFileName)
}

// SkillsDir returns the directory skills are copied into for a plugin.
func SkillsDir(pluginDir string) string {
	return filepath.Join(pluginDir, SkillsSubdir)
}

// ParseManifest decodes and validates manifest JSON.
func ParseManifest(data []byte) (*PluginManifest, error) {
	var manifest PluginManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(ErrMalformedManifest, "%v", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Validate checks the fields the manifest schema requires.
func (m *PluginManifest) Validate() error {
	if m.Name == "" {
		return errors.Wrap(ErrMalformedManifest, "name is required")
	}
	return nil
}

// ReadManifest reads the manifest of the plugin at pluginDir.
func ReadManifest(pluginDir string) (*PluginManifest, error) {
	path := ManifestPath(pluginDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(skills.ErrNotFound, "plugin manifest %s", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid manifest %s", path)
	}
	return manifest, nil
}

// WriteManifest validates and writes a manifest for the plugin at pluginDir.
func WriteManifest(pluginDir string, manifest *PluginManifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal plugin manifest")
	}
	data = append(data, '\n')

	path := ManifestPath(pluginDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	if err := lockedfile.Write(path, bytes.NewReader(data), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
