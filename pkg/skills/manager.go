package skills

import (
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	registrySourceDir = "src"
	claudeDir         = ".claude"
	skillsSubdir      = "skills"
)

// Manager resolves, compares and copies skills between a registry tree and a project.
type Manager struct {
	registryDir    string
	projectDir     string
	localSkillsDir string
}

// Option configures a Manager
type Option func(*Manager) error

// WithRegistryDir sets the registry root; skill sources live under its src/ directory
func WithRegistryDir(dir string) Option {
	return func(m *Manager) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return errors.Wrap(err, "failed to resolve registry directory")
		}
		m.registryDir = abs
		return nil
	}
}

// WithProjectDir sets the project directory that holds .claude/skills
func WithProjectDir(dir string) Option {
	return func(m *Manager) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return errors.Wrap(err, "failed to resolve project directory")
		}
		m.projectDir = abs
		return nil
	}
}

// WithLocalSkillsDir overrides the flattened local skills directory
func WithLocalSkillsDir(dir string) Option {
	return func(m *Manager) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return errors.Wrap(err, "failed to resolve local skills directory")
		}
		m.localSkillsDir = abs
		return nil
	}
}

// NewManager creates a skill manager. The project directory defaults to the
// working directory and the local skills directory to <project>/.claude/skills.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if m.projectDir == "" {
		if err := WithProjectDir(".")(m); err != nil {
			return nil, err
		}
	}
	if m.localSkillsDir == "" {
		m.localSkillsDir = LocalSkillsDir(m.projectDir)
	}

	return m, nil
}

// LocalSkillsDir returns <projectDir>/.claude/skills.
func LocalSkillsDir(projectDir string) string {
	return filepath.Join(projectDir, claudeDir, skillsSubdir)
}

// SourceRoot is the registry directory that catalog paths are relative to.
func (m *Manager) SourceRoot() string {
	return filepath.Join(m.registryDir, registrySourceDir)
}

// ProjectDir returns the absolute project directory
func (m *Manager) ProjectDir() string { return m.projectDir }

// RegistryDir returns the absolute registry directory
func (m *Manager) RegistryDir() string { return m.registryDir }

// LocalSkillsDir returns the flattened local skills directory
func (m *Manager) LocalSkillsDir() string { return m.localSkillsDir }
