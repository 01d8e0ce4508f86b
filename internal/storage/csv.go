package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dexsnap/internal/model"
)

// CSVStorage appends snapshot rows to one CSV file per UTC day.
type CSVStorage struct {
	dir string
	mu  sync.Mutex
}

func NewCSVStorage(dir string) *CSVStorage {
	return &CSVStorage{dir: dir}
}

// FilePath returns the daily file path for a snapshot timestamp.
func (s *CSVStorage) FilePath(snapshotTS string) (string, error) {
	ts, err := time.Parse(time.RFC3339, snapshotTS)
	if err != nil {
		return "", fmt.Errorf("parse snapshot timestamp: %w", err)
	}
	name := fmt.Sprintf("dexscreener_solana_%s.csv", ts.UTC().Format("2006-01-02"))
	return filepath.Join(s.dir, name), nil
}

// PutSnapshotBatch appends rows to the daily file, writing the header only when
// the file is new. Rows whose (pair_address, snapshot_ts) key already exists in
// the file are skipped.
func (s *CSVStorage) PutSnapshotBatch(_ context.Context, rows []model.SnapshotRow) error {
	if len(rows) == 0 {
		return nil
	}

	path, err := s.FilePath(rows[0].SnapshotTS)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := ExistingKeys(path)
	if err != nil {
		return err
	}

	fresh := make([]model.SnapshotRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := existing[row.Key()]; ok {
			continue
		}
		existing[row.Key()] = struct{}{}
		fresh = append(fresh, row)
	}
	if len(fresh) == 0 {
		return nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat output file: %w", err)
	}

	writer := csv.NewWriter(file)
	if stat.Size() == 0 {
		if err := writer.Write(model.CSVHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, row := range fresh {
		if err := writer.Write(row.CSVRecord()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// ExistingKeys scans a snapshot CSV and returns the (pair_address, snapshot_ts)
// keys it already holds. A missing file yields an empty set.
func ExistingKeys(path string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return keys, nil
		}
		return nil, fmt.Errorf("open existing file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return keys, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	tsCol, addrCol := -1, -1
	for i, name := range header {
		switch name {
		case "snapshot_ts":
			tsCol = i
		case "pair_address":
			addrCol = i
		}
	}
	if tsCol < 0 || addrCol < 0 {
		return nil, fmt.Errorf("existing file %s has unexpected header", path)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read existing rows: %w", err)
		}
		if addrCol >= len(record) || tsCol >= len(record) {
			continue
		}
		keys[record[addrCol]+"|"+record[tsCol]] = struct{}{}
	}

	return keys, nil
}
