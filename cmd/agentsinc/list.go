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

type ListConfig struct {
	Filter    string
	LocalOnly bool
	JSON      bool
}

func NewListConfig() *ListConfig {
	return &ListConfig{}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the skills in the registry and the project",
	Long: `List every skill in the merged skills matrix with its category and whether
it is served from the registry or from the project's local skills directory.

Examples:
  agentsinc list
  agentsinc list --filter 'web-*'
  agentsinc list --local --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		return listSkills(cmd.Context(), ws, getListConfigFromFlags(cmd))
	},
}

func init() {
	defaults := NewListConfig()
	listCmd.Flags().StringP("filter", "f", defaults.Filter, "Glob pattern on skill IDs")
	listCmd.Flags().Bool("local", defaults.LocalOnly, "Only list local skills")
	listCmd.Flags().Bool("json", defaults.JSON, "Print the skills as JSON")
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if filter, err := cmd.Flags().GetString("filter"); err == nil {
		config.Filter = filter
	}
	if local, err := cmd.Flags().GetBool("local"); err == nil {
		config.LocalOnly = local
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}

func listSkills(ctx context.Context, ws *workspace, config *ListConfig) error {
	m, err := ws.matrix(ctx)
	if err != nil {
		return err
	}

	ids, err := skills.FilterIDs(m.IDs(), config.Filter)
	if err != nil {
		return err
	}

	var listed []*skills.ResolvedSkill
	for _, id := range ids {
		skill := m.Skills[id]
		if config.LocalOnly && !skill.Local {
			continue
		}
		listed = append(listed, skill)
	}

	if config.JSON {
		data, err := json.MarshalIndent(listed, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal skills")
		}
		fmt.Println(string(data))
		return nil
	}

	if len(listed) == 0 {
		presenter.Info("No skills found.")
		return nil
	}

	rows := make([][]string, 0, len(listed))
	for _, skill := range listed {
		source := "registry"
		location := skill.Path
		if skill.Local {
			source = "local"
			location = skill.LocalPath
		}
		rows = append(rows, []string{skill.ID, skill.Category, source, location})
	}
	presenter.Table([]string{"ID", "CATEGORY", "SOURCE", "PATH"}, rows)
	return nil
}
