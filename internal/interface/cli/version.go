package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"testweave/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "testweave %s\n", buildinfo.Version)
		},
	}
}
