package projectconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseCurrentShape(t *testing.T) {
	config, legacy, err := Parse([]byte(`name: my-app
description: An app
agents:
  - web-developer
skills:
  - web-framework-react
  - id: api-hono
    preloaded: true
stack:
  web-developer:
    framework: web-framework-react
source: github:agents-inc/skills
`))
	require.NoError(t, err)
	assert.False(t, legacy)

	assert.Equal(t, "my-app", config.Name)
	assert.Equal(t, []string{"web-developer"}, config.Agents)
	assert.Equal(t, []SkillEntry{{ID: "web-framework-react"}, {ID: "api-hono", Preloaded: true}}, config.Skills)
	assert.Equal(t, "web-framework-react", config.Stack["web-developer"]["framework"])
	assert.Equal(t, "github:agents-inc/skills", config.Source)
}

func TestParseLegacyShape(t *testing.T) {
	config, legacy, err := Parse([]byte(`id: fullstack-stack
version: "1.0.0"
created: 2024-05-01
author: "@vince"
skills:
  - id: web-framework-react
agents:
  - web-developer
agent_skills:
  web-developer:
    framework:
      - web-framework-react
philosophy: ship it
`))
	require.NoError(t, err)
	assert.True(t, legacy)

	assert.Equal(t, "fullstack-stack", config.Name)
	assert.Equal(t, "@vince", config.Author)
	assert.Equal(t, "ship it", config.Philosophy)
	assert.Equal(t, []SkillEntry{{ID: "web-framework-react"}}, config.Skills)
	assert.Equal(t, []SkillEntry{{ID: "web-framework-react"}}, config.AgentSkills["web-developer"]["framework"])

	out, err := yaml.Marshal(config)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(out, &raw))
	for _, field := range legacyOnlyFields {
		assert.NotContains(t, raw, field)
	}
}

func TestParseLegacyKeepsExplicitName(t *testing.T) {
	config, legacy, err := Parse([]byte("id: some-id\nname: Pretty Name\nversion: 2.0.0\n"))
	require.NoError(t, err)
	assert.True(t, legacy)
	assert.Equal(t, "Pretty Name", config.Name)
}

func TestParseMalformed(t *testing.T) {
	for name, doc := range map[string]string{
		"bad yaml":  "name: [oops\n",
		"bad types": "agents:\n  nested: map\n",
		"bad stack": "stack: [a, b]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedConfig))
		})
	}
}

func TestLoadAndSave(t *testing.T) {
	t.Run("missing config", func(t *testing.T) {
		loaded, err := Load(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("round trip", func(t *testing.T) {
		projectDir := t.TempDir()
		config := &ProjectConfig{
			Name:   "my-app",
			Agents: []string{"web-developer"},
			Skills: []SkillEntry{{ID: "web-framework-react"}, {ID: "api-hono", Preloaded: true}},
			Stack:  map[string]map[string]string{"web-developer": {"framework": "web-framework-react"}},
		}

		path, err := Save(projectDir, config)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(projectDir, ".claude-src", "config.yaml"), path)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "  - web-framework-react\n")

		loaded, err := Load(projectDir)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, path, loaded.Path)
		assert.False(t, loaded.Legacy)
		assert.Equal(t, config, loaded.Config)
	})

	t.Run("legacy location", func(t *testing.T) {
		projectDir := t.TempDir()
		legacyPath := filepath.Join(projectDir, ".claude", "config.yaml")
		require.NoError(t, os.MkdirAll(filepath.Dir(legacyPath), 0o755))
		require.NoError(t, os.WriteFile(legacyPath, []byte("id: old\nversion: 1.0.0\nagents: [a]\n"), 0o644))

		loaded, err := Load(projectDir)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, legacyPath, loaded.Path)
		assert.True(t, loaded.Legacy)
		assert.Equal(t, "old", loaded.Config.Name)
	})
}
