package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeSkill(t *testing.T, dir, name, body string) {
	t.Helper()
	content := fmt.Sprintf("---\nname: %s\ndescription: %s skill\n---\n\n%s\n", name, name, body)
	writeFile(t, filepath.Join(dir, PrimaryDocument), content)
}

// fixture is a registry plus a project directory with a matrix describing them.
type fixture struct {
	registryDir string
	projectDir  string
	manager     *Manager
	matrix      *MergedSkillsMatrix
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		registryDir: filepath.Join(root, "registry"),
		projectDir:  filepath.Join(root, "project"),
		matrix: &MergedSkillsMatrix{
			Skills:      map[string]*ResolvedSkill{},
			Categories:  map[string]*Category{},
			Aliases:     map[string]string{},
			GeneratedAt: time.Now(),
		},
	}
	require.NoError(t, os.MkdirAll(f.projectDir, 0o755))

	m, err := NewManager(WithRegistryDir(f.registryDir), WithProjectDir(f.projectDir))
	require.NoError(t, err)
	f.manager = m
	return f
}

// addRemote creates a registry skill at src/<catalogPath> and registers it.
func (f *fixture) addRemote(t *testing.T, id, catalogPath, body string) *ResolvedSkill {
	t.Helper()
	writeSkill(t, filepath.Join(f.registryDir, "src", filepath.FromSlash(catalogPath)), id, body)
	skill := &ResolvedSkill{ID: id, Category: "test", Path: catalogPath}
	f.matrix.Skills[id] = skill
	return skill
}

// addLocal creates a project skill at .claude/skills/<dirName> and registers it as local.
func (f *fixture) addLocal(t *testing.T, id, dirName, body string) *ResolvedSkill {
	t.Helper()
	writeSkill(t, filepath.Join(f.projectDir, ".claude", "skills", dirName), id, body)
	skill := &ResolvedSkill{ID: id, Category: "local", Local: true, LocalPath: ".claude/skills/" + dirName + "/"}
	f.matrix.Skills[id] = skill
	return skill
}

func (f *fixture) localDir(dirName string) string {
	return filepath.Join(f.projectDir, ".claude", "skills", dirName)
}
