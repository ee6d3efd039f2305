package skills

import (
	"context"
	"path/filepath"

	"github.com/agentsinc/cli/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// SourceMode is the outcome of deciding where a skill's content comes from.
type SourceMode int

const (
	// SourceRemote uses the registry copy because the matrix marks the skill remote.
	SourceRemote SourceMode = iota
	// SourceLocalDefault uses the project copy because the matrix marks the skill local.
	SourceLocalDefault
	// SourceForcedRemote uses the registry copy because a non-local source was selected.
	SourceForcedRemote
	// SourceForcedLocal uses the project copy because the local source was selected.
	SourceForcedLocal
)

// IsLocal reports whether the skill is served from the project's local copy.
func (m SourceMode) IsLocal() bool {
	return m == SourceLocalDefault || m == SourceForcedLocal
}

func (m SourceMode) String() string {
	switch m {
	case SourceRemote:
		return "remote"
	case SourceLocalDefault:
		return "local"
	case SourceForcedRemote:
		return "forced-remote"
	case SourceForcedLocal:
		return "forced-local"
	default:
		return "unknown"
	}
}

// ResolveSourceMode decides between local and remote treatment of a skill. An
// explicit source selection always wins over the matrix's local flag.
func ResolveSourceMode(skill *ResolvedSkill, sourceSelections map[string]string) SourceMode {
	if source, ok := sourceSelections[skill.ID]; ok && source != "" {
		if source == SourceLocal {
			return SourceForcedLocal
		}
		return SourceForcedRemote
	}
	if skill.Local {
		return SourceLocalDefault
	}
	return SourceRemote
}

// Resolution is a skill bound to a concrete source location.
type Resolution struct {
	Skill      *ResolvedSkill
	Mode       SourceMode
	SourcePath string
}

// Local reports whether the resolution points at the project's own copy.
func (r Resolution) Local() bool {
	return r.Mode.IsLocal()
}

// Resolve binds each selected skill ID to a source location. Unknown IDs and
// skills that have no content for the chosen mode are logged and left out.
// IDs naming a skill already selected, directly or through an alias, are
// dropped so every resolution targets a distinct skill. A path escaping its
// root aborts the whole call.
func (m *Manager) Resolve(ctx context.Context, skillIDs []string, matrix *MergedSkillsMatrix, sourceSelections map[string]string) ([]Resolution, error) {
	selected := make([]*ResolvedSkill, 0, len(skillIDs))
	seen := make(map[string]bool, len(skillIDs))

	for _, id := range skillIDs {
		skill, ok := matrix.Lookup(id)
		if !ok {
			logger.WithSkill(ctx, id).Warn("skill not found in matrix, skipping")
			continue
		}
		if seen[skill.ID] {
			logger.WithSkill(ctx, skill.ID).WithField("requested", id).Debug("skill already selected, skipping duplicate")
			continue
		}
		seen[skill.ID] = true
		selected = append(selected, skill)
	}

	found := make([]*Resolution, len(selected))
	var g errgroup.Group
	for i, skill := range selected {
		g.Go(func() error {
			resolution, err := m.resolveOne(skill, sourceSelections)
			if err != nil {
				return err
			}
			found[i] = resolution
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolutions := make([]Resolution, 0, len(found))
	for i, resolution := range found {
		if resolution == nil {
			logger.WithSkill(ctx, selected[i].ID).Warn("skill has no registry source, skipping")
			continue
		}
		resolutions = append(resolutions, *resolution)
	}

	return resolutions, nil
}

func (m *Manager) resolveOne(skill *ResolvedSkill, sourceSelections map[string]string) (*Resolution, error) {
	mode := ResolveSourceMode(skill, sourceSelections)

	if mode.IsLocal() {
		sourcePath, err := m.localSourcePath(skill)
		if err != nil {
			return nil, err
		}
		return &Resolution{Skill: skill, Mode: mode, SourcePath: sourcePath}, nil
	}

	if skill.Path == "" {
		return nil, nil
	}
	sourcePath, err := SafeJoin(m.SourceRoot(), skill.Path)
	if err != nil {
		return nil, err
	}
	return &Resolution{Skill: skill, Mode: mode, SourcePath: sourcePath}, nil
}

// localSourcePath is the project copy of a skill. Skills forced local without a
// recorded local path are looked up by their flattened directory name.
func (m *Manager) localSourcePath(skill *ResolvedSkill) (string, error) {
	if skill.LocalPath != "" {
		return SafeJoin(m.projectDir, skill.LocalPath)
	}
	return flattenedPath(m.localSkillsDir, skill)
}

func flattenedPath(localSkillsDir string, skill *ResolvedSkill) (string, error) {
	name := skill.NormalizedID()
	if name == "" || name == "." || filepath.Base(name) != name {
		return "", wrapSentinel(ErrPathTraversal, "skill directory name %q is not a single path segment", name)
	}
	return SafeJoin(localSkillsDir, name)
}
