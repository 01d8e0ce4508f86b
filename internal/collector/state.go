package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dexsnap/internal/storage/postgres"
)

// RunState records the outcome of the most recent snapshot.
type RunState struct {
	LastSnapshotTS string `json:"last_snapshot_ts"`
	RowsWritten    int64  `json:"rows_written"`
	UpdatedAt      string `json:"updated_at"`
}

// StateStore persists run state between invocations.
type StateStore interface {
	Load(ctx context.Context) (RunState, bool, error)
	Save(ctx context.Context, state RunState) error
}

// FileStateStore keeps run state in a local JSON file.
type FileStateStore struct {
	Path string
}

func (f *FileStateStore) Load(_ context.Context) (RunState, bool, error) {
	stat, err := os.Stat(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunState{}, false, nil
		}
		return RunState{}, false, fmt.Errorf("stat state file: %w", err)
	}
	if stat.IsDir() {
		return RunState{}, false, fmt.Errorf("state path is a directory")
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return RunState{}, false, fmt.Errorf("read state file: %w", err)
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return RunState{}, false, fmt.Errorf("parse state file: %w", err)
	}

	return state, true, nil
}

func (f *FileStateStore) Save(_ context.Context, state RunState) error {
	dir := filepath.Dir(f.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	state.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}

	return nil
}

// DBStateStore keeps run state in the collector_state table.
type DBStateStore struct {
	Store *postgres.Store
	Name  string
}

func (d *DBStateStore) Load(ctx context.Context) (RunState, bool, error) {
	ts, rows, ok, err := d.Store.LoadState(ctx, d.Name)
	if err != nil || !ok {
		return RunState{}, false, err
	}
	return RunState{LastSnapshotTS: ts, RowsWritten: rows}, true, nil
}

func (d *DBStateStore) Save(ctx context.Context, state RunState) error {
	return d.Store.SaveState(ctx, d.Name, state.LastSnapshotTS, state.RowsWritten)
}
