// Package server exposes the workflow over HTTP with WebSocket progress.
package server

import (
	"context"
	"sync"
	"time"
)

// activeRun is one in-flight workflow owned by the server.
type activeRun struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	ClientID  string    `json:"client_id,omitempty"`
	StartedAt time.Time `json:"started_at"`

	cancel context.CancelFunc
}

// Registry tracks in-flight runs so they can be listed and canceled.
// The transport owns the registry; the workflow itself knows nothing
// about concurrent runs.
type Registry struct {
	mu   sync.Mutex
	runs map[string]*activeRun
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*activeRun)}
}

// Add registers a run and returns a context canceled when the run is
// removed or canceled.
func (r *Registry) Add(ctx context.Context, id, mode, clientID string) context.Context {
	runCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[id] = &activeRun{
		ID:        id,
		Mode:      mode,
		ClientID:  clientID,
		StartedAt: time.Now(),
		cancel:    cancel,
	}
	return runCtx
}

// Remove drops a finished run and releases its context.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok {
		run.cancel()
		delete(r.runs, id)
	}
}

// Cancel stops an in-flight run. Returns false if the run is unknown.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return false
	}
	run.cancel()
	return true
}

// List returns a snapshot of in-flight runs.
func (r *Registry) List() []*activeRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	runs := make([]*activeRun, 0, len(r.runs))
	for _, run := range r.runs {
		snapshot := *run
		snapshot.cancel = nil
		runs = append(runs, &snapshot)
	}
	return runs
}
