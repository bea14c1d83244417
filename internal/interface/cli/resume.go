package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"testweave/internal/app"
	"testweave/internal/application/dto"
	"testweave/internal/domain/workflow"
)

func newResumeCmd() *cobra.Command {
	var maxIterations int
	var inputFile string
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "resume [checkpoint-file]",
		Short: "Continue a halted run from its checkpoint",
		Long:  "Loads the checkpoint saved by a halted run and continues iterating from\nwhere it stopped, skipping requirements analysis and initial generation.\nThe default checkpoint is state.json under the home directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.StatePath(globalConfig.Home())
			if len(args) == 1 {
				path = args[0]
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("no checkpoint at %s: %w", path, err)
			}
			checkpoint, err := workflow.DecodeCheckpoint(data)
			if err != nil {
				return err
			}

			var requested workflow.Mode
			if modeFlag != "" {
				if requested, err = workflow.ParseMode(modeFlag); err != nil {
					return err
				}
			}

			input := ""
			if inputFile != "" {
				raw, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
				input = norm.NFC.String(string(raw))
			}

			state, err := workflow.Resume(checkpoint, input, requested, app.GetLogger().Warn)
			if err != nil {
				return err
			}

			p, err := newPipeline(cmd.Context(), globalConfig, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer p.close()

			return p.run(cmd.Context(), dto.RunInput{
				Mode:          state.Mode,
				MaxIterations: maxIterations,
				Resume:        state,
			})
		},
	}

	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "iteration ceiling (default from configuration)")
	cmd.Flags().StringVar(&inputFile, "input", "", "updated requirements or source file, replacing the saved input")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "requested mode; the checkpoint's mode wins on mismatch")
	return cmd
}
