package main

import (
	"fmt"
	"strings"

	"github.com/agentsinc/cli/pkg/plugins"
	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Inspect built plugins",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var pluginSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of plugin.json",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		data, err := plugins.ManifestSchemaJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built plugins and their skills",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		discovery, err := plugins.NewDiscovery(plugins.WithBaseDir(viper.GetString("plugins_dir")))
		if err != nil {
			return err
		}

		found, err := discovery.DiscoverAll(cmd.Context())
		if err != nil {
			return err
		}
		if len(found) == 0 {
			presenter.Info(fmt.Sprintf("No plugins found in %s", discovery.BaseDir()))
			return nil
		}

		rows := make([][]string, 0, len(found))
		for _, p := range found {
			version := p.Manifest.Version
			if version == "" {
				version = "-"
			}
			rows = append(rows, []string{p.Manifest.Name, version, fmt.Sprintf("%d", len(p.Skills)), strings.Join(p.Skills, ", ")})
		}
		presenter.Table([]string{"NAME", "VERSION", "SKILLS", "PATHS"}, rows)
		return nil
	},
}

func init() {
	pluginCmd.AddCommand(pluginSchemaCmd)
	pluginCmd.AddCommand(pluginListCmd)
}
