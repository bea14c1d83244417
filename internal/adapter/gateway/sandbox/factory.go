package sandbox

import (
	"context"
	"sync"
	"time"

	"testweave/internal/app"
	"testweave/internal/application/port/output"
)

// Factory selects the sandbox backend. Docker is preferred; when the
// daemon does not answer the factory falls back to the local subprocess
// backend without failing the run. The probe result is cached for the
// process lifetime.
type Factory struct {
	policy     Policy
	forceLocal bool
	python     string

	probe func(ctx context.Context) bool

	once   sync.Once
	cached output.SandboxRunner
}

// NewFactory builds a factory for the given policy. forceLocal skips the
// docker probe entirely.
func NewFactory(policy Policy, forceLocal bool) *Factory {
	docker := NewDockerRunner(policy)
	return &Factory{
		policy:     policy,
		forceLocal: forceLocal,
		probe:      docker.Available,
	}
}

// Runner returns the selected backend, probing on first call.
func (f *Factory) Runner(ctx context.Context) output.SandboxRunner {
	f.once.Do(func() {
		if f.forceLocal {
			app.GetLogger().Info("sandbox backend: local (forced)")
			f.cached = f.localRunner()
			return
		}
		if f.probe(ctx) {
			app.GetLogger().Info("sandbox backend: docker (image=%s)", f.policy.Image)
			f.cached = NewDockerRunner(f.policy)
			return
		}
		app.GetLogger().Warn("docker unavailable, falling back to local subprocess backend")
		f.cached = f.localRunner()
	})
	return f.cached
}

func (f *Factory) localRunner() *LocalRunner {
	return NewLocalRunner(f.python, time.Duration(f.policy.TimeoutSec)*time.Second)
}
