package skills

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentsinc/cli/pkg/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Status classifies a local skill against its upstream source.
type Status string

const (
	// StatusCurrent means the local fork matches upstream.
	StatusCurrent Status = "current"
	// StatusOutdated means upstream changed since the fork.
	StatusOutdated Status = "outdated"
	// StatusLocalOnly means there is no upstream to compare with.
	StatusLocalOnly Status = "local-only"
)

// ComparisonResult is the drift classification of one local skill directory.
// Empty hashes mean the value is unknown.
type ComparisonResult struct {
	ID         string `json:"id"`
	LocalHash  string `json:"localHash,omitempty"`
	SourceHash string `json:"sourceHash,omitempty"`
	Status     Status `json:"status"`
	DirName    string `json:"dirName"`
	SourcePath string `json:"sourcePath,omitempty"`
}

// Compare classifies every directory in the local skills directory as
// current, outdated or local-only. Results are sorted by skill ID. Compare
// performs no writes.
func (m *Manager) Compare(ctx context.Context, matrix *MergedSkillsMatrix) ([]ComparisonResult, error) {
	dirNames, err := listSkillDirs(m.localSkillsDir)
	if err != nil {
		return nil, err
	}

	results := make([]ComparisonResult, len(dirNames))
	g, gctx := errgroup.WithContext(ctx)

	for i, dirName := range dirNames {
		g.Go(func() error {
			result, err := m.compareOne(gctx, matrix, dirName)
			if err != nil {
				return err
			}
			results[i] = *result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ID != results[j].ID {
			return results[i].ID < results[j].ID
		}
		return results[i].DirName < results[j].DirName
	})
	return results, nil
}

func (m *Manager) compareOne(ctx context.Context, matrix *MergedSkillsMatrix, dirName string) (*ComparisonResult, error) {
	skillDir := filepath.Join(m.localSkillsDir, dirName)

	record, err := ReadForkedFromMetadata(skillDir)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &ComparisonResult{ID: dirName, Status: StatusLocalOnly, DirName: dirName}, nil
	}

	result := &ComparisonResult{
		ID:        record.SkillID,
		LocalHash: record.ContentHash,
		Status:    StatusLocalOnly,
		DirName:   dirName,
	}

	skill, ok := matrix.Lookup(record.SkillID)
	if !ok || skill.Path == "" {
		logger.WithSkill(ctx, record.SkillID).Debug("forked skill no longer in matrix")
		return result, nil
	}

	sourcePath, err := SafeJoin(m.SourceRoot(), skill.Path)
	if err != nil {
		return nil, err
	}

	sourceHash, err := ComputeContentHash(sourcePath)
	if err != nil {
		logger.WithSkill(ctx, record.SkillID).WithError(err).Debug("upstream skill unreadable")
		return result, nil
	}

	result.SourceHash = sourceHash
	result.SourcePath = sourcePath
	if sourceHash == record.ContentHash {
		result.Status = StatusCurrent
	} else {
		result.Status = StatusOutdated
	}
	return result, nil
}

// listSkillDirs returns the names of the non-hidden directories below dir.
// A missing directory has no skills.
func listSkillDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
