// Package projectconfig loads, normalizes, generates and merges the project
// configuration stored in .claude-src/config.yaml.
package projectconfig

import (
	"github.com/pkg/errors"
)

const (
	// ConfigDir is the project directory holding the generated configuration.
	ConfigDir = ".claude-src"
	// ConfigFileName is the project configuration file name.
	ConfigFileName = "config.yaml"
	// legacyConfigDir is where older versions wrote the configuration.
	legacyConfigDir = ".claude"
)

// ErrMalformedConfig is returned when the project configuration cannot be parsed.
var ErrMalformedConfig = errors.New("malformed project config")

// SkillEntry is a skill reference in the project configuration. It is written
// as a bare ID unless it carries extra attributes.
type SkillEntry struct {
	ID        string `yaml:"id" mapstructure:"id"`
	Preloaded bool   `yaml:"preloaded,omitempty" mapstructure:"preloaded"`
	Local     bool   `yaml:"local,omitempty" mapstructure:"local"`
	Path      string `yaml:"path,omitempty" mapstructure:"path"`
}

// MarshalYAML writes entries without attributes as plain strings.
func (e SkillEntry) MarshalYAML() (any, error) {
	if !e.Preloaded && !e.Local && e.Path == "" {
		return e.ID, nil
	}
	type plain SkillEntry
	return plain(e), nil
}

// ProjectConfig is the persisted project configuration.
type ProjectConfig struct {
	Name         string                             `yaml:"name" mapstructure:"name"`
	Description  string                             `yaml:"description,omitempty" mapstructure:"description"`
	Agents       []string                           `yaml:"agents" mapstructure:"agents"`
	Skills       []SkillEntry                       `yaml:"skills,omitempty" mapstructure:"skills"`
	AgentSkills  map[string]map[string][]SkillEntry `yaml:"agent_skills,omitempty" mapstructure:"agent_skills"`
	Stack        map[string]map[string]string       `yaml:"stack,omitempty" mapstructure:"stack"`
	Author       string                             `yaml:"author,omitempty" mapstructure:"author"`
	Source       string                             `yaml:"source,omitempty" mapstructure:"source"`
	Marketplace  string                             `yaml:"marketplace,omitempty" mapstructure:"marketplace"`
	Framework    string                             `yaml:"framework,omitempty" mapstructure:"framework"`
	Philosophy   string                             `yaml:"philosophy,omitempty" mapstructure:"philosophy"`
	Principles   []string                           `yaml:"principles,omitempty" mapstructure:"principles"`
	Tags         []string                           `yaml:"tags,omitempty" mapstructure:"tags"`
	CustomAgents map[string]any                     `yaml:"custom_agents,omitempty" mapstructure:"custom_agents"`
}

// SkillIDs returns the IDs of the configured skills in order.
func (c *ProjectConfig) SkillIDs() []string {
	ids := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		ids = append(ids, s.ID)
	}
	return ids
}

// Clone returns a deep copy of the configuration.
func (c *ProjectConfig) Clone() *ProjectConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Agents = cloneSlice(c.Agents)
	out.Skills = cloneSlice(c.Skills)
	out.Principles = cloneSlice(c.Principles)
	out.Tags = cloneSlice(c.Tags)
	out.Stack = cloneNested(c.Stack, func(v string) string { return v })
	out.AgentSkills = cloneNested(c.AgentSkills, cloneSlice[SkillEntry])
	if c.CustomAgents != nil {
		out.CustomAgents = make(map[string]any, len(c.CustomAgents))
		for k, v := range c.CustomAgents {
			out.CustomAgents[k] = v
		}
	}
	return &out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

func cloneNested[V any](in map[string]map[string]V, cloneValue func(V) V) map[string]map[string]V {
	if in == nil {
		return nil
	}
	out := make(map[string]map[string]V, len(in))
	for outer, inner := range in {
		copied := make(map[string]V, len(inner))
		for k, v := range inner {
			copied[k] = cloneValue(v)
		}
		out[outer] = copied
	}
	return out
}
