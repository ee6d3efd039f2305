package skills

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentsinc/cli/pkg/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// CopiedSkill describes the outcome of copying (or keeping) one skill.
type CopiedSkill struct {
	SkillID     string `json:"skillId"`
	ContentHash string `json:"contentHash"`
	SourcePath  string `json:"sourcePath"`
	DestPath    string `json:"destPath"`
	Local       bool   `json:"local,omitempty"`
}

// destinationFunc maps a resolved skill to the directory it is copied into.
type destinationFunc func(Resolution) (string, error)

// CopyToPlugin copies skills into <pluginSkillsDir>, mirroring their catalog
// path below the leading "skills/" segment.
func (m *Manager) CopyToPlugin(ctx context.Context, skillIDs []string, matrix *MergedSkillsMatrix, sourceSelections map[string]string, pluginSkillsDir string) ([]CopiedSkill, error) {
	return m.copySkills(ctx, skillIDs, matrix, sourceSelections, func(r Resolution) (string, error) {
		rel := strings.TrimPrefix(filepath.ToSlash(r.Skill.Path), pluginSkillsPrefix)
		if rel == "" {
			rel = r.Skill.NormalizedID()
		}
		return SafeJoin(pluginSkillsDir, rel)
	})
}

// CopyToLocal copies skills into the flattened local skills directory, one
// directory per skill named after its normalized ID.
func (m *Manager) CopyToLocal(ctx context.Context, skillIDs []string, matrix *MergedSkillsMatrix, sourceSelections map[string]string) ([]CopiedSkill, error) {
	return m.copySkills(ctx, skillIDs, matrix, sourceSelections, func(r Resolution) (string, error) {
		return flattenedPath(m.localSkillsDir, r.Skill)
	})
}

func (m *Manager) copySkills(ctx context.Context, skillIDs []string, matrix *MergedSkillsMatrix, sourceSelections map[string]string, destination destinationFunc) ([]CopiedSkill, error) {
	if len(skillIDs) == 0 {
		return []CopiedSkill{}, nil
	}

	resolutions, err := m.Resolve(ctx, skillIDs, matrix, sourceSelections)
	if err != nil {
		return nil, err
	}

	results := make([]CopiedSkill, len(resolutions))
	g, gctx := errgroup.WithContext(ctx)

	for i, resolution := range resolutions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			copied, err := m.copyResolved(gctx, resolution, destination)
			if err != nil {
				return errors.Wrapf(err, "failed to copy skill %s", resolution.Skill.ID)
			}
			results[i] = *copied
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *Manager) copyResolved(ctx context.Context, r Resolution, destination destinationFunc) (*CopiedSkill, error) {
	log := logger.WithSkill(ctx, r.Skill.ID)

	if r.Local() {
		hash, err := ComputeContentHash(r.SourcePath)
		if err != nil {
			return nil, err
		}
		log.WithField("mode", r.Mode).Debug("keeping local skill")
		return &CopiedSkill{
			SkillID:     r.Skill.ID,
			ContentHash: hash,
			SourcePath:  r.SourcePath,
			DestPath:    r.SourcePath,
			Local:       true,
		}, nil
	}

	destPath, err := destination(r)
	if err != nil {
		return nil, err
	}

	if err := copyDir(r.SourcePath, destPath); err != nil {
		return nil, err
	}

	hash, err := ComputeContentHash(destPath)
	if err != nil {
		return nil, err
	}
	if err := InjectForkedFromMetadata(destPath, r.Skill.ID, hash); err != nil {
		return nil, err
	}

	log.WithField("dest", destPath).Debug("copied skill")
	return &CopiedSkill{
		SkillID:     r.Skill.ID,
		ContentHash: hash,
		SourcePath:  r.SourcePath,
		DestPath:    destPath,
	}, nil
}

// copyDir replaces the fingerprinted content of dst with the content of src.
// Other files in dst, such as the metadata sidecar, are left in place so the
// fingerprint of dst matches src after the copy.
func copyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return wrapSentinel(ErrNotFound, "skill source %s does not exist", src)
		}
		return errors.Wrapf(err, "failed to stat %s", src)
	}
	if !info.IsDir() {
		return errors.Errorf("skill source %s is not a directory", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(dst))
	}
	if err := removeFingerprinted(dst); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode().Perm()|0o700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		return copyFile(path, destPath, info.Mode().Perm())
	})
}

// removeFingerprinted deletes the documents and directories that make up a
// skill fingerprint from dir.
func removeFingerprinted(dir string) error {
	targets := append([]string{PrimaryDocument, ReferenceDocument}, fingerprintDirs...)
	for _, name := range targets {
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return errors.Wrapf(err, "failed to remove %s from %s", name, dir)
		}
	}
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return errors.Wrapf(err, "failed to copy %s", src)
	}
	return dstFile.Close()
}
