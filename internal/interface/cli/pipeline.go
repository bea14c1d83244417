package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"

	"testweave/internal/adapter/gateway/llm"
	"testweave/internal/adapter/gateway/sandbox"
	"testweave/internal/adapter/gateway/storage"
	"testweave/internal/adapter/presenter"
	"testweave/internal/app"
	appconfig "testweave/internal/app/config"
	"testweave/internal/application/dto"
	"testweave/internal/application/port/output"
	"testweave/internal/application/usecase/run"
	"testweave/internal/domain/repository"
	"testweave/internal/domain/workflow"
	"testweave/internal/infrastructure/persistence/sqlite"
)

// pipeline assembles the workflow with its stores for one CLI invocation.
type pipeline struct {
	cfg         appconfig.Config
	useCase     *run.UseCase
	factory     *sandbox.Factory
	checkpoints *storage.LocalCheckpointStore
	artifacts   *storage.LocalArtifactStore
	history     *sqlite.RunHistoryRepository
	archiver    output.CheckpointArchiver
	out         *presenter.RunPresenter
}

func newPipeline(ctx context.Context, cfg appconfig.Config, w io.Writer) (*pipeline, error) {
	client, err := llm.NewOpenAIClient(cfg.APIKey(), cfg.Model())
	if err != nil {
		return nil, fmt.Errorf("set TW_API_KEY or OPENAI_API_KEY, or api_key in %s: %w", app.SettingPath(cfg.Home()), err)
	}

	policy, err := sandbox.LoadPolicy(app.SandboxPolicyPath(cfg.Home()), cfg.SandboxImage(), cfg.TimeoutSec())
	if err != nil {
		app.GetLogger().Warn("%v, using default policy", err)
	}
	factory := sandbox.NewFactory(policy, cfg.ForceLocal())

	p := &pipeline{
		cfg:         cfg,
		factory:     factory,
		checkpoints: storage.NewLocalCheckpointStore(afero.NewOsFs(), app.StatePath(cfg.Home())),
		artifacts:   storage.NewLocalArtifactStore(afero.NewOsFs(), app.ArtifactsDir(cfg.Home())),
		out:         presenter.NewRunPresenter(w),
	}

	history, err := sqlite.NewRunHistoryRepository(app.DBPath(cfg.Home()))
	if err != nil {
		app.GetLogger().Warn("run history unavailable: %v", err)
	} else {
		p.history = history
	}

	if cfg.ArchiveBucket() != "" {
		archiver, err := storage.NewS3Archiver(ctx, cfg.ArchiveBucket(), cfg.ArchivePrefix(), cfg.ArchiveRegion())
		if err != nil {
			app.GetLogger().Warn("checkpoint archive unavailable: %v", err)
		} else {
			p.archiver = archiver
		}
	}

	p.useCase = run.NewUseCase(
		llm.NewGateway(client),
		factory,
		output.FuncNotifier(p.out.Progress),
		cfg.MaxIterations(),
	)
	return p, nil
}

func (p *pipeline) close() {
	if p.history != nil {
		p.history.Close()
	}
}

// run executes one workflow and persists its results: the test artifact,
// the checkpoint (cleared on success), the run history row, and the
// optional remote archive copy.
func (p *pipeline) run(ctx context.Context, in dto.RunInput) error {
	runID := ulid.Make().String()
	startedAt := time.Now()

	maxIterations := in.MaxIterations
	if maxIterations <= 0 {
		maxIterations = p.cfg.MaxIterations()
	}
	mode := in.Mode
	if in.Resume != nil {
		mode = in.Resume.Mode
	}
	p.out.Banner(mode, maxIterations)

	out := p.useCase.Execute(ctx, in)
	finishedAt := time.Now()

	var artifactPath string
	if out.Tests != "" {
		mode := out.Mode
		if !mode.IsValid() {
			mode = in.Mode
		}
		path, err := p.artifacts.SaveArtifact(runID, mode.ArtifactFilename(), []byte(out.Tests))
		if err != nil {
			app.GetLogger().Warn("failed to save artifact: %v", err)
		} else {
			artifactPath = path
		}
	}

	checkpointPath := ""
	if out.Checkpoint != nil {
		if err := p.checkpoints.Save(out.Checkpoint); err != nil {
			app.GetLogger().Warn("failed to save checkpoint: %v", err)
		} else {
			checkpointPath = p.checkpoints.Path()
		}
		p.archive(ctx, runID, out.Checkpoint)
	} else if out.Status.IsSuccess() {
		if err := p.checkpoints.Clear(); err != nil {
			app.GetLogger().Warn("failed to clear checkpoint: %v", err)
		}
	}

	p.record(ctx, runID, out, startedAt, finishedAt)
	p.out.Present(out, artifactPath, checkpointPath)
	return nil
}

func (p *pipeline) archive(ctx context.Context, runID string, checkpoint *workflow.State) {
	if p.archiver == nil {
		return
	}
	data, err := checkpoint.Encode()
	if err != nil {
		app.GetLogger().Warn("failed to encode checkpoint for archive: %v", err)
		return
	}
	if err := p.archiver.Archive(ctx, runID, data); err != nil {
		app.GetLogger().Warn("%v", err)
	}
}

func (p *pipeline) record(ctx context.Context, runID string, out *dto.RunOutput, startedAt, finishedAt time.Time) {
	if p.history == nil {
		return
	}
	record := &repository.RunRecord{
		ID:         runID,
		Mode:       out.Mode,
		Status:     out.Status,
		Iterations: out.Iterations,
		Backend:    p.factory.Runner(ctx).Name(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	if out.Verdict != nil {
		record.Passed = out.Verdict.Passed
		record.Failed = out.Verdict.Failed
	}
	if err := p.history.Save(ctx, record); err != nil {
		app.GetLogger().Warn("failed to record run: %v", err)
	}
}
