// Package skills implements skill resolution and synchronization: matching
// skill identifiers against a skills matrix, fingerprinting skill content,
// tracking which upstream skill a local copy was forked from, classifying
// drift, and copying skill directories between the registry, a plugin output
// tree and a project's flattened .claude/skills directory.
package skills

import (
	"path"
	"sort"
	"strings"
	"time"
)

const (
	// PrimaryDocument is the main markdown document of every skill.
	PrimaryDocument = "SKILL.md"
	// ReferenceDocument is an optional secondary document included in the fingerprint.
	ReferenceDocument = "reference.md"
	// MetadataFileName is the sidecar metadata file stored next to SKILL.md.
	MetadataFileName = "metadata.yaml"

	// SourceLocal is the source selection that forces local treatment of a skill.
	SourceLocal = "local"

	// pluginSkillsPrefix is stripped from a catalog path when mirroring it into a plugin.
	pluginSkillsPrefix = "skills/"
)

// fingerprintDirs are the sub-directories whose content is part of a skill fingerprint.
var fingerprintDirs = []string{"examples", "scripts"}

// Skill represents a skill directory discovered on disk
type Skill struct {
	Name        string // Unique name from frontmatter
	Description string // Brief description from frontmatter
	Directory   string // Full path to the skill directory
	Content     string // Body of SKILL.md without frontmatter
}

// ResolvedSkill is one entry of a skills matrix.
//
// Path is relative to the registry's src/ directory (e.g.
// "skills/web/framework/web-framework-react/"). LocalPath is relative to the
// project directory and is only meaningful when Local is true.
type ResolvedSkill struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string `json:"category" yaml:"category"`
	Path        string `json:"path" yaml:"path"`
	Local       bool   `json:"local,omitempty" yaml:"local,omitempty"`
	LocalPath   string `json:"localPath,omitempty" yaml:"local_path,omitempty"`
	DisplayName string `json:"displayName,omitempty" yaml:"display_name,omitempty"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
}

// NormalizedID is the name used for the skill's flattened local directory.
func (s *ResolvedSkill) NormalizedID() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.ID
}

// Subcategory returns the last segment of the skill's category.
func (s *ResolvedSkill) Subcategory() string {
	category := strings.Trim(s.Category, "/")
	if category == "" {
		return ""
	}
	return path.Base(category)
}

// Category groups skills in the matrix
type Category struct {
	ID     string   `json:"id" yaml:"id"`
	Skills []string `json:"skills" yaml:"skills"`
}

// MergedSkillsMatrix is a read-only snapshot of every known skill, remote and local.
type MergedSkillsMatrix struct {
	Skills      map[string]*ResolvedSkill `json:"skills" yaml:"skills"`
	Categories  map[string]*Category      `json:"categories" yaml:"categories"`
	Aliases     map[string]string         `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	GeneratedAt time.Time                 `json:"generatedAt" yaml:"generated_at"`
}

// Lookup returns the matrix entry for a skill ID or one of its aliases.
func (m *MergedSkillsMatrix) Lookup(id string) (*ResolvedSkill, bool) {
	if m == nil {
		return nil, false
	}
	if skill, ok := m.Skills[id]; ok {
		return skill, true
	}
	if target, ok := m.Aliases[id]; ok {
		skill, ok := m.Skills[target]
		return skill, ok
	}
	return nil, false
}

// IDs returns every skill ID in the matrix, sorted.
func (m *MergedSkillsMatrix) IDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, 0, len(m.Skills))
	for id := range m.Skills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
