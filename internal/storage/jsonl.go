package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"dexsnap/internal/model"
)

// RawPairStorage appends unflattened pair objects to a JSONL file, for later
// reprocessing with fields the CSV projection drops.
type RawPairStorage struct {
	path string
	mu   sync.Mutex
}

func NewRawPairStorage(path string) *RawPairStorage {
	return &RawPairStorage{path: path}
}

type rawPairRecord struct {
	SnapshotTS string     `json:"snapshot_ts"`
	Pair       model.Pair `json:"pair"`
}

// PutPairBatch appends a batch of pairs as JSON lines stamped with snapshotTS.
func (s *RawPairStorage) PutPairBatch(snapshotTS string, pairs []model.Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, pair := range pairs {
		line, err := json.Marshal(rawPairRecord{SnapshotTS: snapshotTS, Pair: pair})
		if err != nil {
			return fmt.Errorf("marshal pair: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write pair: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
