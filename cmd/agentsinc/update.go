package main

import (
	"context"
	"fmt"

	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/agentsinc/cli/pkg/skills"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update [skill-id|dir-name]...",
	Short: "Refresh outdated local skills from the registry",
	Long: `Re-copy every outdated local skill from the registry, or only the named ones,
and record the new fingerprint in its metadata.yaml. Skills that are current or
local-only are skipped.

Examples:
  agentsinc update
  agentsinc update web-framework-react api-hono`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		return updateSkills(cmd.Context(), ws, args, yes, presenter.Confirm)
	},
}

func init() {
	updateCmd.Flags().BoolP("yes", "y", false, "Do not ask before overwriting local skills")
}

func updateSkills(ctx context.Context, ws *workspace, ids []string, yes bool, confirm func(string) bool) error {
	m, err := ws.matrix(ctx)
	if err != nil {
		return err
	}

	if !yes {
		pending, err := countOutdated(ctx, ws, m, ids)
		if err != nil {
			return err
		}
		if pending == 0 {
			presenter.Info("All local skills are up to date.")
			return nil
		}
		if !confirm(fmt.Sprintf("Local changes to %d outdated skill(s) will be overwritten. Continue?", pending)) {
			presenter.Info("Update cancelled.")
			return nil
		}
	}

	result, err := ws.manager.Update(ctx, m, ids)
	if err != nil {
		return err
	}

	for _, updated := range result.Updated {
		presenter.Success(fmt.Sprintf("Updated %s (%s)", updated.SkillID, updated.ContentHash))
	}
	for _, skipped := range result.Skipped {
		if skipped.Status == skills.StatusCurrent {
			continue
		}
		presenter.Info(fmt.Sprintf("Skipped %s: %s", skipped.ID, skipped.Status))
	}
	for _, failed := range result.Failed {
		presenter.Error(failed.Err, fmt.Sprintf("Failed to update %s", failed.ID))
	}

	presenter.Summary(presenter.BatchSummary{
		Action:    "Update",
		Succeeded: len(result.Updated),
		Skipped:   len(result.Skipped),
		Failed:    len(result.Failed),
	})
	return result.Err()
}

func countOutdated(ctx context.Context, ws *workspace, m *skills.MergedSkillsMatrix, ids []string) (int, error) {
	results, err := ws.manager.Compare(ctx, m)
	if err != nil {
		return 0, err
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	count := 0
	for _, r := range results {
		if len(wanted) > 0 && !wanted[r.ID] && !wanted[r.DirName] {
			continue
		}
		if r.Status == skills.StatusOutdated {
			count++
		}
	}
	return count, nil
}
