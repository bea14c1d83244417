package cli

import (
	"github.com/spf13/cobra"

	"testweave/internal/application/dto"
	"testweave/internal/domain/workflow"
)

func newTestCmd() *cobra.Command {
	var maxIterations int
	var function string

	cmd := &cobra.Command{
		Use:   "test [source-file]",
		Short: "Generate a passing test suite for existing Python code",
		Long:  "Reads Python source from a file (or stdin with \"-\") and generates a\npytest suite for it, repairing test bugs iteratively. The code under test\nis never modified.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if function != "" {
				input, err = extractFunction(input, function)
				if err != nil {
					return err
				}
			}

			p, err := newPipeline(cmd.Context(), globalConfig, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer p.close()

			return p.run(cmd.Context(), dto.RunInput{
				Mode:          workflow.ModeTest,
				Input:         input,
				MaxIterations: maxIterations,
			})
		},
	}

	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "iteration ceiling (default from configuration)")
	cmd.Flags().StringVar(&function, "function", "", "test only the named top-level function")
	return cmd
}
