package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentsinc/cli/pkg/plugins"
	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/agentsinc/cli/pkg/settings"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// initialPluginVersion is written to the manifest of a newly created plugin.
const initialPluginVersion = "1.0.0"

type BuildPluginConfig struct {
	All         bool
	Filter      string
	Bump        plugins.BumpType
	Description string
	Selections  map[string]string
}

func NewBuildPluginConfig() *BuildPluginConfig {
	return &BuildPluginConfig{
		Bump:       plugins.BumpPatch,
		Selections: map[string]string{},
	}
}

var buildPluginCmd = &cobra.Command{
	Use:   "build-plugin <name> [skill-id]...",
	Short: "Copy skills into a plugin and bump its version",
	Long: `Copy skills into <plugins-dir>/<name>/skills, keeping each skill's registry
category layout, then bump the version in .claude-plugin/plugin.json. A new
plugin gets a manifest at version 1.0.0.

Examples:
  agentsinc build-plugin fullstack web-framework-react api-hono
  agentsinc build-plugin web --filter 'web-*' --bump minor`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		config, err := getBuildPluginConfigFromFlags(cmd)
		if err != nil {
			return err
		}
		pluginDir := filepath.Join(ws.settings.PluginsDir, args[0])
		return buildPlugin(cmd.Context(), ws, pluginDir, args[1:], config)
	},
}

func init() {
	defaults := NewBuildPluginConfig()
	buildPluginCmd.Flags().Bool("all", defaults.All, "Include every skill in the matrix")
	buildPluginCmd.Flags().StringP("filter", "f", defaults.Filter, "Glob pattern on skill IDs")
	buildPluginCmd.Flags().String("bump", string(defaults.Bump), "Version component to bump: patch, minor or major")
	buildPluginCmd.Flags().String("description", defaults.Description, "Description for a newly created plugin")
	buildPluginCmd.Flags().StringToString("from", defaults.Selections, "Per-skill source override, id=local or id=remote")
	buildPluginCmd.Flags().String("plugins-dir", settings.DefaultPluginsDir, "Directory holding built plugins")
	bindFlag(buildPluginCmd.Flags(), "plugins_dir", "plugins-dir")
}

func getBuildPluginConfigFromFlags(cmd *cobra.Command) (*BuildPluginConfig, error) {
	config := NewBuildPluginConfig()
	if all, err := cmd.Flags().GetBool("all"); err == nil {
		config.All = all
	}
	if filter, err := cmd.Flags().GetString("filter"); err == nil {
		config.Filter = filter
	}
	if bump, err := cmd.Flags().GetString("bump"); err == nil {
		parsed, err := plugins.ParseBumpType(bump)
		if err != nil {
			return nil, err
		}
		config.Bump = parsed
	}
	if description, err := cmd.Flags().GetString("description"); err == nil {
		config.Description = description
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

func buildPlugin(ctx context.Context, ws *workspace, pluginDir string, args []string, config *BuildPluginConfig) error {
	m, err := ws.matrix(ctx)
	if err != nil {
		return err
	}

	ids, err := selectSkills(m, args, config.All, config.Filter)
	if err != nil {
		return err
	}

	created, err := ensureManifest(pluginDir, config.Description)
	if err != nil {
		return err
	}

	copied, err := ws.manager.CopyToPlugin(ctx, ids, m, config.Selections, plugins.SkillsDir(pluginDir))
	if err != nil {
		return err
	}
	for _, c := range copied {
		if c.Local {
			presenter.Info(fmt.Sprintf("Kept local %s (%s)", c.SkillID, c.ContentHash))
			continue
		}
		presenter.Success(fmt.Sprintf("Copied %s (%s)", c.SkillID, c.ContentHash))
	}

	version := initialPluginVersion
	if !created {
		if version, err = plugins.BumpVersion(pluginDir, config.Bump); err != nil {
			return err
		}
	}

	presenter.Summary(presenter.BatchSummary{
		Action:    "Build plugin",
		Succeeded: len(copied),
		Skipped:   len(ids) - len(copied),
	})
	presenter.Info(fmt.Sprintf("Plugin %s is at version %s", pluginDir, version))
	return nil
}

// ensureManifest writes an initial manifest when the plugin has none and
// reports whether it did.
func ensureManifest(pluginDir, description string) (bool, error) {
	if _, err := os.Stat(plugins.ManifestPath(pluginDir)); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Wrapf(err, "failed to stat %s", plugins.ManifestPath(pluginDir))
	}

	manifest := &plugins.PluginManifest{
		Name:        filepath.Base(pluginDir),
		Version:     initialPluginVersion,
		Description: description,
	}
	if err := plugins.WriteManifest(pluginDir, manifest); err != nil {
		return false, err
	}
	return true, nil
}
