package cli

import (
	"github.com/spf13/cobra"

	"testweave/internal/application/dto"
	"testweave/internal/domain/workflow"
)

func newGenerateCmd() *cobra.Command {
	var maxIterations int

	cmd := &cobra.Command{
		Use:   "generate [requirements-file]",
		Short: "Generate an implementation and a passing test suite from requirements",
		Long:  "Reads requirements from a file (or stdin with \"-\"), generates an\nimplementation with a pytest suite, and iterates until the suite passes.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			p, err := newPipeline(cmd.Context(), globalConfig, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer p.close()

			return p.run(cmd.Context(), dto.RunInput{
				Mode:          workflow.ModeGenerate,
				Input:         input,
				MaxIterations: maxIterations,
			})
		},
	}

	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "iteration ceiling (default from configuration)")
	return cmd
}
