// Package cli wires the command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"testweave/internal/app"
	appconfig "testweave/internal/app/config"
	infraconfig "testweave/internal/infra/config"
)

var (
	globalConfig appconfig.Config
	homeFlag     string
)

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "testweave",
		Short:         "Generate and repair pytest suites iteratively",
		Long:          "testweave generates a pytest suite from requirements or existing code,\nexecutes it in a sandbox, and repairs test bugs iteratively until the suite\npasses or a terminal condition is reached.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infraconfig.LoadSettings(homeFlag)
			if err != nil {
				return err
			}
			globalConfig = cfg
			app.SetLogger(app.NewLogger(os.Stderr, cfg.StderrLevel()))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&homeFlag, "home", ".testweave", "base directory for settings, state and artifacts")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newTestCmd())
	cmd.AddCommand(newResumeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
