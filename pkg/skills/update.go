package skills

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/agentsinc/cli/pkg/logger"
	"github.com/hashicorp/go-multierror"
)

// UpdateFailure records why one skill could not be refreshed.
type UpdateFailure struct {
	ID  string
	Err error
}

// UpdateResult reports the per-skill outcome of an update run.
type UpdateResult struct {
	Updated []CopiedSkill
	Skipped []ComparisonResult
	Failed  []UpdateFailure
}

// Err aggregates every per-skill failure, or returns nil when all succeeded.
func (r *UpdateResult) Err() error {
	var result *multierror.Error
	for _, f := range r.Failed {
		result = multierror.Append(result, fmt.Errorf("%s: %w", f.ID, f.Err))
	}
	return result.ErrorOrNil()
}

// Update refreshes outdated local forks from the registry. When skillIDs is
// non-empty only skills whose ID or directory name is listed are considered.
// A failing skill is reported in Failed and does not stop its siblings.
func (m *Manager) Update(ctx context.Context, matrix *MergedSkillsMatrix, skillIDs []string) (*UpdateResult, error) {
	comparisons, err := m.Compare(ctx, matrix)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(skillIDs))
	for _, id := range skillIDs {
		wanted[id] = true
	}

	result := &UpdateResult{}
	var outdated []ComparisonResult
	for _, c := range comparisons {
		if len(wanted) > 0 && !wanted[c.ID] && !wanted[c.DirName] {
			continue
		}
		if c.Status != StatusOutdated {
			result.Skipped = append(result.Skipped, c)
			continue
		}
		outdated = append(outdated, c)
	}

	updated := make([]*CopiedSkill, len(outdated))
	failures := make([]error, len(outdated))

	wg := sync.WaitGroup{}
	for i, c := range outdated {
		wg.Add(1)
		go func() {
			defer wg.Done()
			copied, err := m.refresh(ctx, c)
			if err != nil {
				logger.WithSkill(ctx, c.ID).WithError(err).Warn("failed to update skill")
				failures[i] = err
				return
			}
			updated[i] = copied
		}()
	}
	wg.Wait()

	for i, c := range outdated {
		if failures[i] != nil {
			result.Failed = append(result.Failed, UpdateFailure{ID: c.ID, Err: failures[i]})
			continue
		}
		result.Updated = append(result.Updated, *updated[i])
	}

	return result, nil
}

// refresh copies the upstream content of an outdated skill over its existing
// local directory and records the new fingerprint.
func (m *Manager) refresh(ctx context.Context, c ComparisonResult) (*CopiedSkill, error) {
	destPath, err := SafeJoin(m.localSkillsDir, c.DirName)
	if err != nil {
		return nil, err
	}

	if err := copyDir(c.SourcePath, destPath); err != nil {
		return nil, err
	}

	hash, err := ComputeContentHash(destPath)
	if err != nil {
		return nil, err
	}
	if err := InjectForkedFromMetadata(destPath, c.ID, hash); err != nil {
		return nil, err
	}

	logger.WithSkill(ctx, c.ID).WithField("content_hash", hash).Debug("refreshed skill")
	return &CopiedSkill{
		SkillID:     c.ID,
		ContentHash: hash,
		SourcePath:  c.SourcePath,
		DestPath:    filepath.Clean(destPath),
	}, nil
}
