package main

import (
	"context"
	"fmt"

	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/agentsinc/cli/pkg/projectconfig"
	"github.com/spf13/cobra"
)

type EjectConfig struct {
	All        bool
	Filter     string
	Name       string
	Selections map[string]string
}

func NewEjectConfig() *EjectConfig {
	return &EjectConfig{Selections: map[string]string{}}
}

var ejectCmd = &cobra.Command{
	Use:   "eject [skill-id]...",
	Short: "Copy skills into the project's local skills directory",
	Long: `Copy skills from the registry into .claude/skills/<skill-id>, record where
each copy was forked from, then generate the project configuration and merge it
into .claude-src/config.yaml. Values already in the project configuration win.

Skills that are already local are left untouched. Use --from to force a skill
to be taken from the registry or kept local.

Examples:
  agentsinc eject web-framework-react api-hono
  agentsinc eject --filter 'web-*'
  agentsinc eject --all --from web-framework-react=remote`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		config, err := getEjectConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		return ejectSkills(cmd.Context(), ws, args, config)
	},
}

func init() {
	defaults := NewEjectConfig()
	ejectCmd.Flags().Bool("all", defaults.All, "Eject every skill in the matrix")
	ejectCmd.Flags().StringP("filter", "f", defaults.Filter, "Glob pattern on skill IDs")
	ejectCmd.Flags().String("name", defaults.Name, "Project name for a new configuration (default: project directory name)")
	ejectCmd.Flags().StringToString("from", defaults.Selections, "Per-skill source override, id=local or id=remote")
}

func getEjectConfigFromFlags(cmd *cobra.Command) (*EjectConfig, error) {
	config := NewEjectConfig()
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		config.All = all
	}
	if filter, err := cmd.Flags().GetString("filter"); err == nil {
		config.Filter = filter
	}
	if name, err := cmd.Flags().GetString("name"); err == nil {
		config.Name = name
	}
	if values, err := cmd.Flags().GetStringToString("from"); err == nil {
		selections, err := parseSelections(values)
		if err != nil {
			return nil, err
		}
		config.Selections = selections
	}
	return config, nil
}

func ejectSkills(ctx context.Context, ws *workspace, args []string, config *EjectConfig) error {
	m, err := ws.matrix(ctx)
	if err != nil {
		return err
	}

	ids, err := selectSkills(m, args, config.All, config.Filter)
	if err != nil {
		return err
	}

	copied, err := ws.manager.CopyToLocal(ctx, ids, m, config.Selections)
	if err != nil {
		return err
	}

	ejected := make([]string, 0, len(copied))
	kept := 0
	for _, c := range copied {
		ejected = append(ejected, c.SkillID)
		if c.Local {
			kept++
			presenter.Info(fmt.Sprintf("Kept local %s (%s)", c.SkillID, c.ContentHash))
			continue
		}
		presenter.Success(fmt.Sprintf("Ejected %s to %s (%s)", c.SkillID, c.DestPath, c.ContentHash))
	}

	defaults, err := projectconfig.NewDefaultsCache(ws.settings.DefaultsPath()).Get()
	if err != nil {
		return err
	}

	name := config.Name
	if name == "" {
		name = projectName(ws.manager.ProjectDir())
	}
	generated := projectconfig.Generate(name, ejected, m, defaults)

	merged, err := projectconfig.MergeWithExisting(generated, ws.manager.ProjectDir())
	if err != nil {
		return err
	}
	path, err := projectconfig.Save(ws.manager.ProjectDir(), merged.Config)
	if err != nil {
		return err
	}

	if merged.Merged {
		presenter.Info(fmt.Sprintf("Merged configuration into %s", path))
	} else {
		presenter.Info(fmt.Sprintf("Wrote configuration to %s", path))
	}
	presenter.Summary(presenter.BatchSummary{
		Action:    "Eject",
		Succeeded: len(copied) - kept,
		Skipped:   len(ids) - len(copied) + kept,
	})
	return nil
}
