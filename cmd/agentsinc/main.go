package main

import (
	"context"
	"os"

	"github.com/agentsinc/cli/pkg/logger"
	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/agentsinc/cli/pkg/settings"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// errOutdated signals a non-zero exit without printing an error.
var errOutdated = errors.New("skills are outdated")

var rootCmd = &cobra.Command{
	Use:   "agentsinc",
	Short: "Assemble curated Claude skills into projects and plugins",
	Long: `agentsinc copies skills from a skills registry into a project's .claude/skills
directory or into a plugin, tracks where each local copy was forked from, and
reports when local copies drift from the registry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		s, err := settings.Load(viper.GetViper())
		if err != nil {
			return err
		}
		if err := logger.Configure(s.LogLevel, s.LogFormat); err != nil {
			return err
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			presenter.SetQuiet(true)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	if err := settings.Init(viper.GetViper()); err != nil {
		logger.L.WithError(err).Warn("ignoring unreadable config file")
	}

	flags := rootCmd.PersistentFlags()
	flags.String("source", "", "Path to the skills registry checkout")
	flags.String("project", ".", "Project directory")
	flags.String("profile", "", "Named settings profile to apply")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text or json)")
	flags.BoolP("quiet", "q", false, "Only print results and errors")

	bindFlag(flags, "source", "source")
	bindFlag(flags, "project_dir", "project")
	bindFlag(flags, "profile", "profile")
	bindFlag(flags, "log_level", "log-level")
	bindFlag(flags, "log_format", "log-format")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(outdatedCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(ejectCmd)
	rootCmd.AddCommand(buildPluginCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pluginCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindFlag binds a flag to a settings key.
func bindFlag(flags *pflag.FlagSet, key, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		logger.L.WithError(err).WithField("flag", name).Fatal("failed to bind flag")
	}
}

func main() {
	// run_id correlates the log lines of one invocation
	ctx := logger.WithLogger(context.Background(), logger.L.WithField("run_id", uuid.NewString()))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errOutdated) {
			presenter.Error(err, "")
		}
		os.Exit(1)
	}
}
