package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/agentsinc/cli/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "Compare local skills with the registry",
	Long: `Compare every skill in the project's local skills directory with the registry
version it was forked from. Exits with status 1 when any skill is outdated.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		outdated, err := reportOutdated(cmd.Context(), ws, asJSON)
		if err != nil {
			return err
		}
		if outdated > 0 {
			return errOutdated
		}
		return nil
	},
}

func init() {
	outdatedCmd.Flags().Bool("json", false, "Print the comparison as JSON")
}

// reportOutdated prints the comparison and returns the number of outdated skills.
func reportOutdated(ctx context.Context, ws *workspace, asJSON bool) (int, error) {
	m, err := ws.matrix(ctx)
	if err != nil {
		return 0, err
	}

	results, err := ws.manager.Compare(ctx, m)
	if err != nil {
		return 0, err
	}

	outdated := 0
	for _, r := range results {
		if r.Status == skills.StatusOutdated {
			outdated++
		}
	}

	if asJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return 0, errors.Wrap(err, "failed to marshal comparison")
		}
		fmt.Println(string(data))
		return outdated, nil
	}

	if len(results) == 0 {
		presenter.Info("No local skills found.")
		return 0, nil
	}

	// status is last so its color codes do not skew column widths
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.ID, r.DirName, orDash(r.LocalHash), orDash(r.SourceHash), presenter.StatusColor(string(r.Status))})
	}
	presenter.Table([]string{"ID", "DIR", "LOCAL", "SOURCE", "STATUS"}, rows)

	if outdated > 0 {
		presenter.Warning(fmt.Sprintf("%d skill(s) outdated, run 'agentsinc update' to refresh them", outdated))
	}
	return outdated, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
