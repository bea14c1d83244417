package cli

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"testweave/internal/adapter/gateway/llm"
	"testweave/internal/adapter/gateway/sandbox"
	"testweave/internal/adapter/gateway/storage"
	"testweave/internal/app"
	"testweave/internal/application/port/output"
	"testweave/internal/application/usecase/run"
	"testweave/internal/interface/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow over HTTP with WebSocket progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := globalConfig
			if addr == "" {
				addr = cfg.ListenAddr()
			}

			client, err := llm.NewOpenAIClient(cfg.APIKey(), cfg.Model())
			if err != nil {
				return err
			}
			gateway := llm.NewGateway(client)

			policy, err := sandbox.LoadPolicy(app.SandboxPolicyPath(cfg.Home()), cfg.SandboxImage(), cfg.TimeoutSec())
			if err != nil {
				app.GetLogger().Warn("%v, using default policy", err)
			}
			factory := sandbox.NewFactory(policy, cfg.ForceLocal())
			checkpoints := storage.NewLocalCheckpointStore(afero.NewOsFs(), app.StatePath(cfg.Home()))

			srv := server.New(addr, func(notifier output.ProgressNotifier) server.Workflow {
				return run.NewUseCase(gateway, factory, notifier, cfg.MaxIterations())
			}, checkpoints)

			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "bind address (default from configuration)")
	return cmd
}
