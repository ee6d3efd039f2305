package main

import (
	"fmt"

	"github.com/agentsinc/cli/pkg/presenter"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <dir-name>",
	Short: "Show how a local skill differs from the registry",
	Long: `Print a unified diff between the registry SKILL.md a local skill was forked
from and the local copy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := loadWorkspace()
		if err != nil {
			return err
		}
		m, err := ws.matrix(cmd.Context())
		if err != nil {
			return err
		}

		diff, err := ws.manager.Diff(m, args[0])
		if err != nil {
			return err
		}
		if diff == "" {
			presenter.Info(fmt.Sprintf("%s matches the registry.", args[0]))
			return nil
		}
		fmt.Print(diff)
		return nil
	},
}
