package main

import (
	"fmt"
	"os"

	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/agentsinc/cli/pkg/projectconfig"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and merge the project configuration",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the normalized project configuration",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		projectDir := viper.GetString("project_dir")
		loaded, err := projectconfig.Load(projectDir)
		if err != nil {
			return err
		}
		if loaded == nil {
			return errors.Errorf("no project configuration found in %s", projectDir)
		}
		if loaded.Legacy {
			presenter.Warning(fmt.Sprintf("%s uses the legacy stack format, run 'agentsinc config merge' to migrate it", loaded.Path))
		}
		return printYAML(loaded.Config)
	},
}

var configMergeCmd = &cobra.Command{
	Use:   "merge <generated.yaml>",
	Short: "Merge a generated configuration into the project configuration",
	Long: `Merge a generated configuration into .claude-src/config.yaml. Values set in
the existing configuration win; agents are unioned; the stack is merged per
agent and subcategory. A legacy configuration is normalized and migrated.

Examples:
  agentsinc config merge generated.yaml
  agentsinc config merge generated.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return mergeConfig(viper.GetString("project_dir"), args[0], dryRun)
	},
}

func init() {
	configMergeCmd.Flags().Bool("dry-run", false, "Print the merged configuration instead of writing it")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configMergeCmd)
}

func mergeConfig(projectDir, generatedPath string, dryRun bool) error {
	data, err := os.ReadFile(generatedPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", generatedPath)
	}
	generated, _, err := projectconfig.Parse(data)
	if err != nil {
		return errors.Wrapf(err, "failed to parse %s", generatedPath)
	}

	result, err := projectconfig.MergeWithExisting(generated, projectDir)
	if err != nil {
		return err
	}

	if dryRun {
		return printYAML(result.Config)
	}

	path, err := projectconfig.Save(projectDir, result.Config)
	if err != nil {
		return err
	}
	if result.Merged {
		presenter.Success(fmt.Sprintf("Merged %s into %s", generatedPath, path))
	} else {
		presenter.Success(fmt.Sprintf("Wrote %s", path))
	}
	return nil
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode configuration")
	}
	return enc.Close()
}
