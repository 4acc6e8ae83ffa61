package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-engine/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "prints the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.FullVersion)
		},
	}
}
