package storage

import (
	"context"

	"dexsnap/internal/model"
)

// Sink is a destination for snapshot rows.
type Sink interface {
	PutSnapshotBatch(ctx context.Context, rows []model.SnapshotRow) error
}
