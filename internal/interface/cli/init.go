package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"testweave/internal/app"
	"testweave/internal/util"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the home directory with a starter setting.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home := globalConfig.Home()
			path := app.SettingPath(home)
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
				return nil
			}

			starter := map[string]interface{}{
				"model":          globalConfig.Model(),
				"timeout_sec":    globalConfig.TimeoutSec(),
				"max_iterations": globalConfig.MaxIterations(),
				"sandbox_image":  globalConfig.SandboxImage(),
			}
			data, err := json.MarshalIndent(starter, "", "  ")
			if err != nil {
				return err
			}
			if err := util.WriteFileAtomic(path, data, 0o644); err != nil {
				return err
			}
			if err := os.MkdirAll(app.ArtifactsDir(home), 0o755); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", home)
			return nil
		},
	}
}
