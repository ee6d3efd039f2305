package main

import (
	"fmt"

	"github.com/agentsinc/cli/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information of agentsinc, as JSON with --json.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if asJSON, _ := cmd.Flags().GetBool("json"); !asJSON {
			fmt.Println(info.String())
			return nil
		}

		out, err := info.JSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Print version information as JSON")
}
