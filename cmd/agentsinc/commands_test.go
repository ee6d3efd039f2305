package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentsinc/cli/pkg/plugins"
	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/agentsinc/cli/pkg/projectconfig"
	"github.com/agentsinc/cli/pkg/settings"
	"github.com/agentsinc/cli/pkg/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefaults = `skill_to_agents:
  "web/*":
    - web-developer
  "api/*":
    - api-developer
`

type testEnv struct {
	root       string
	registry   string
	projectDir string
	ws         *workspace
	output     *bytes.Buffer
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (e *testEnv) writeRegistrySkill(t *testing.T, catalogPath, id, body string) {
	t.Helper()
	content := fmt.Sprintf("---\nname: %s\ndescription: %s skill\n---\n\n%s\n", id, id, body)
	writeTestFile(t, filepath.Join(e.registry, "src", filepath.FromSlash(catalogPath), "SKILL.md"), content)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	e := &testEnv{
		root:       root,
		registry:   filepath.Join(root, "registry"),
		projectDir: filepath.Join(root, "my-app"),
		output:     &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(e.projectDir, 0o755))

	e.writeRegistrySkill(t, "skills/web/framework/web-framework-react", "web-framework-react", "# React")
	e.writeRegistrySkill(t, "skills/api/framework/api-hono", "api-hono", "# Hono")
	writeTestFile(t, filepath.Join(e.registry, "src", "config", "defaults.yaml"), testDefaults)

	ws, err := newWorkspace(&settings.Settings{
		Source:        e.registry,
		ProjectDir:    e.projectDir,
		SkillsDirName: settings.DefaultSkillsDirName,
		PluginsDir:    filepath.Join(root, "plugins"),
	})
	require.NoError(t, err)
	e.ws = ws

	original := presenter.Presenter(presenter.New())
	presenter.SetDefault(presenter.NewWithOptions(e.output, e.output, presenter.ColorNever))
	t.Cleanup(func() { presenter.SetDefault(original) })
	return e
}

func TestNewWorkspaceRequiresSource(t *testing.T) {
	_, err := newWorkspace(&settings.Settings{ProjectDir: "."})
	assert.Error(t, err)
}

func TestEjectOutdatedUpdate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	config := NewEjectConfig()
	require.NoError(t, ejectSkills(ctx, e.ws, []string{"web-framework-react", "api-hono"}, config))

	localReact := filepath.Join(e.projectDir, ".claude", "skills", "web-framework-react")
	record, err := skills.ReadForkedFromMetadata(localReact)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "web-framework-react", record.SkillID)

	loaded, err := projectconfig.Load(e.projectDir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "my-app", loaded.Config.Name)
	assert.Equal(t, []string{"web-developer", "api-developer"}, loaded.Config.Agents)
	assert.Equal(t, "web-framework-react", loaded.Config.Stack["web-developer"]["framework"])
	assert.Equal(t, "api-hono", loaded.Config.Stack["api-developer"]["framework"])

	outdated, err := reportOutdated(ctx, e.ws, false)
	require.NoError(t, err)
	assert.Equal(t, 0, outdated)

	e.writeRegistrySkill(t, "skills/web/framework/web-framework-react", "web-framework-react", "# React 19")

	outdated, err = reportOutdated(ctx, e.ws, false)
	require.NoError(t, err)
	assert.Equal(t, 1, outdated)

	declined := func(string) bool { return false }
	require.NoError(t, updateSkills(ctx, e.ws, nil, false, declined))
	content, err := os.ReadFile(filepath.Join(localReact, "SKILL.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "React 19")

	require.NoError(t, updateSkills(ctx, e.ws, nil, true, nil))
	content, err = os.ReadFile(filepath.Join(localReact, "SKILL.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "React 19")

	outdated, err = reportOutdated(ctx, e.ws, false)
	require.NoError(t, err)
	assert.Equal(t, 0, outdated)
	assert.Contains(t, e.output.String(), "Update: 1 succeeded")
}

func TestEjectKeepsExistingConfigValues(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := projectconfig.Save(e.projectDir, &projectconfig.ProjectConfig{
		Name:   "existing",
		Agents: []string{"pm"},
	})
	require.NoError(t, err)

	config := NewEjectConfig()
	config.Filter = "web-*"
	require.NoError(t, ejectSkills(ctx, e.ws, nil, config))

	loaded, err := projectconfig.Load(e.projectDir)
	require.NoError(t, err)
	assert.Equal(t, "existing", loaded.Config.Name)
	assert.Equal(t, []string{"pm", "web-developer"}, loaded.Config.Agents)
	assert.Equal(t, []string{"web-framework-react"}, loaded.Config.SkillIDs())

	_, err = os.Stat(filepath.Join(e.projectDir, ".claude", "skills", "api-hono"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildPlugin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	pluginDir := filepath.Join(e.root, "plugins", "fullstack")

	config := NewBuildPluginConfig()
	config.All = true
	require.NoError(t, buildPlugin(ctx, e.ws, pluginDir, nil, config))

	manifest, err := plugins.ReadManifest(pluginDir)
	require.NoError(t, err)
	assert.Equal(t, "fullstack", manifest.Name)
	assert.Equal(t, "1.0.0", manifest.Version)

	for _, rel := range []string{"web/framework/web-framework-react", "api/framework/api-hono"} {
		record, err := skills.ReadForkedFromMetadata(filepath.Join(plugins.SkillsDir(pluginDir), filepath.FromSlash(rel)))
		require.NoError(t, err)
		require.NotNil(t, record, rel)
	}

	require.NoError(t, buildPlugin(ctx, e.ws, pluginDir, []string{"api-hono"}, config))
	manifest, err = plugins.ReadManifest(pluginDir)
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", manifest.Version)

	config.Bump = plugins.BumpMinor
	require.NoError(t, buildPlugin(ctx, e.ws, pluginDir, []string{"api-hono"}, config))
	manifest, err = plugins.ReadManifest(pluginDir)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", manifest.Version)
}

func TestMergeConfig(t *testing.T) {
	projectDir := t.TempDir()
	generatedPath := filepath.Join(t.TempDir(), "generated.yaml")
	writeTestFile(t, generatedPath, `name: generated
agents: [web-developer, api-developer]
skills: [web-framework-react]
stack:
  web-developer:
    framework: web-framework-react
`)
	writeTestFile(t, filepath.Join(projectDir, ".claude", "config.yaml"), `id: legacy-stack
version: "1.0.0"
agents: [api-developer, pm]
stack:
  web-developer:
    framework: web-framework-vue
`)

	require.NoError(t, mergeConfig(projectDir, generatedPath, false))

	loaded, err := projectconfig.Load(projectDir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, projectconfig.Path(projectDir), loaded.Path)
	assert.False(t, loaded.Legacy)
	assert.Equal(t, "legacy-stack", loaded.Config.Name)
	assert.Equal(t, []string{"api-developer", "pm", "web-developer"}, loaded.Config.Agents)
	assert.Equal(t, "web-framework-vue", loaded.Config.Stack["web-developer"]["framework"])
	assert.Equal(t, []string{"web-framework-react"}, loaded.Config.SkillIDs())
}

func TestSelectSkills(t *testing.T) {
	m := &skills.MergedSkillsMatrix{Skills: map[string]*skills.ResolvedSkill{
		"web-framework-react":  {ID: "web-framework-react"},
		"web-styling-tailwind": {ID: "web-styling-tailwind"},
		"api-hono":             {ID: "api-hono"},
	}}

	ids, err := selectSkills(m, []string{"api-hono", "unknown"}, false, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"api-hono", "unknown"}, ids)

	ids, err = selectSkills(m, nil, true, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"api-hono", "web-framework-react", "web-styling-tailwind"}, ids)

	ids, err = selectSkills(m, nil, false, "web-*")
	require.NoError(t, err)
	assert.Equal(t, []string{"web-framework-react", "web-styling-tailwind"}, ids)

	_, err = selectSkills(m, nil, false, "")
	assert.Error(t, err)
}

func TestParseSelections(t *testing.T) {
	selections, err := parseSelections(map[string]string{"api-hono": " local "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"api-hono": "local"}, selections)

	_, err = parseSelections(map[string]string{"api-hono": ""})
	assert.Error(t, err)
}

func TestProjectName(t *testing.T) {
	assert.Equal(t, "my-app", projectName(filepath.Join(t.TempDir(), "my-app")))
}
