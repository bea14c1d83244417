// Package storage persists checkpoints and generated artifacts.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"testweave/internal/domain/workflow"
	"testweave/internal/util"
)

// LocalCheckpointStore keeps the checkpoint as a single JSON document on
// the local filesystem. Writes are atomic so an interrupted save never
// leaves a truncated checkpoint behind.
type LocalCheckpointStore struct {
	fs   afero.Fs
	path string
}

// NewLocalCheckpointStore builds a store writing to the given path.
func NewLocalCheckpointStore(fs afero.Fs, path string) *LocalCheckpointStore {
	return &LocalCheckpointStore{fs: fs, path: path}
}

func (s *LocalCheckpointStore) Save(state *workflow.State) error {
	data, err := state.Encode()
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := util.WriteFsFileAtomic(s.fs, s.path, data); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

func (s *LocalCheckpointStore) Load() (*workflow.State, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return workflow.DecodeCheckpoint(data)
}

func (s *LocalCheckpointStore) Clear() error {
	err := s.fs.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// Path returns the checkpoint location for display.
func (s *LocalCheckpointStore) Path() string {
	return s.path
}

// LocalArtifactStore writes generated test artifacts under one directory
// per run.
type LocalArtifactStore struct {
	fs   afero.Fs
	root string
}

// NewLocalArtifactStore builds a store rooted at the given directory.
func NewLocalArtifactStore(fs afero.Fs, root string) *LocalArtifactStore {
	return &LocalArtifactStore{fs: fs, root: root}
}

func (s *LocalArtifactStore) SaveArtifact(runID, filename string, content []byte) (string, error) {
	dir := filepath.Join(s.root, runID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := util.WriteFsFileAtomic(s.fs, path, content); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}
