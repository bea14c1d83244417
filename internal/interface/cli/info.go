package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"testweave/internal/adapter/gateway/sandbox"
	"testweave/internal/app"
	"testweave/internal/infrastructure/persistence/sqlite"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [run-id]",
		Short: "Show effective configuration, sandbox availability and recent runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := globalConfig
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				return showRun(cmd, args[0])
			}

			fmt.Fprintf(w, "home:           %s\n", cfg.Home())
			fmt.Fprintf(w, "config source:  %s\n", cfg.ConfigSource())
			if cfg.SettingPath() != "" {
				fmt.Fprintf(w, "setting file:   %s\n", cfg.SettingPath())
			}
			fmt.Fprintf(w, "model:          %s\n", cfg.Model())
			fmt.Fprintf(w, "api key:        %s\n", maskKey(cfg.APIKey()))
			fmt.Fprintf(w, "max iterations: %d\n", cfg.MaxIterations())
			fmt.Fprintf(w, "timeout:        %s\n", cfg.Timeout())
			fmt.Fprintf(w, "sandbox image:  %s\n", cfg.SandboxImage())

			policy, err := sandbox.LoadPolicy(app.SandboxPolicyPath(cfg.Home()), cfg.SandboxImage(), cfg.TimeoutSec())
			if err != nil {
				app.GetLogger().Warn("%v", err)
			}
			factory := sandbox.NewFactory(policy, cfg.ForceLocal())
			fmt.Fprintf(w, "backend:        %s\n", factory.Runner(cmd.Context()).Name())

			if cfg.ArchiveBucket() != "" {
				fmt.Fprintf(w, "archive:        s3://%s/%s\n", cfg.ArchiveBucket(), cfg.ArchivePrefix())
			}

			if _, err := os.Stat(app.StatePath(cfg.Home())); err == nil {
				fmt.Fprintf(w, "checkpoint:     %s (resumable)\n", app.StatePath(cfg.Home()))
			}

			history, err := sqlite.NewRunHistoryRepository(app.DBPath(cfg.Home()))
			if err != nil {
				return nil
			}
			defer history.Close()

			records, err := history.Recent(cmd.Context(), 5)
			if err != nil || len(records) == 0 {
				return nil
			}
			fmt.Fprintln(w, "\nrecent runs:")
			for _, r := range records {
				fmt.Fprintf(w, "  %s  %-8s  %-22s  iter=%d  %d passed / %d failed  (%s)\n",
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.Mode, r.Status, r.Iterations, r.Passed, r.Failed, r.Backend)
			}
			return nil
		},
	}
}

func showRun(cmd *cobra.Command, runID string) error {
	history, err := sqlite.NewRunHistoryRepository(app.DBPath(globalConfig.Home()))
	if err != nil {
		return fmt.Errorf("run history unavailable: %w", err)
	}
	defer history.Close()

	record, err := history.Find(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("no run with id %s", runID)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run:        %s\n", record.ID)
	fmt.Fprintf(w, "mode:       %s\n", record.Mode)
	fmt.Fprintf(w, "status:     %s\n", record.Status)
	fmt.Fprintf(w, "iterations: %d\n", record.Iterations)
	fmt.Fprintf(w, "tests:      %d passed / %d failed\n", record.Passed, record.Failed)
	fmt.Fprintf(w, "backend:    %s\n", record.Backend)
	fmt.Fprintf(w, "started:    %s\n", record.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "finished:   %s\n", record.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
