package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/agentsinc/cli/pkg/matrix"
	"github.com/agentsinc/cli/pkg/settings"
	"github.com/agentsinc/cli/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// workspace bundles the settings and skill manager a command operates on.
type workspace struct {
	settings *settings.Settings
	manager  *skills.Manager
}

func loadWorkspace() (*workspace, error) {
	s, err := settings.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return newWorkspace(s)
}

func newWorkspace(s *settings.Settings) (*workspace, error) {
	if err := s.RequireSource(); err != nil {
		return nil, err
	}

	manager, err := skills.NewManager(
		skills.WithRegistryDir(s.Source),
		skills.WithProjectDir(s.ProjectDir),
		skills.WithLocalSkillsDir(s.LocalSkillsDir()),
	)
	if err != nil {
		return nil, err
	}
	return &workspace{settings: s, manager: manager}, nil
}

func (w *workspace) matrix(ctx context.Context) (*skills.MergedSkillsMatrix, error) {
	m, err := matrix.Load(ctx, matrix.Options{
		RegistryDir:    w.manager.RegistryDir(),
		ProjectDir:     w.manager.ProjectDir(),
		LocalSkillsDir: w.manager.LocalSkillsDir(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load skills matrix")
	}
	return m, nil
}

// selectSkills resolves the skill IDs a command acts on: explicit arguments,
// or every matrix skill when all is set, narrowed by an optional glob filter.
func selectSkills(m *skills.MergedSkillsMatrix, args []string, all bool, filter string) ([]string, error) {
	ids := args
	if all || (len(args) == 0 && filter != "") {
		ids = m.IDs()
	}
	if len(ids) == 0 {
		return nil, errors.New("no skills selected: pass skill IDs, --all or --filter")
	}
	return skills.FilterIDs(ids, filter)
}

// parseSelections turns id=local|remote flag values into source selections.
func parseSelections(values map[string]string) (map[string]string, error) {
	selections := make(map[string]string, len(values))
	for id, source := range values {
		source = strings.TrimSpace(source)
		if source == "" {
			return nil, errors.Errorf("empty source for skill %q", id)
		}
		selections[id] = source
	}
	return selections, nil
}

// projectName is the default config name for a project directory.
func projectName(projectDir string) string {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return filepath.Base(projectDir)
	}
	return filepath.Base(abs)
}
