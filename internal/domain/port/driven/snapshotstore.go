package driven

import (
	"context"
	"errors"

	"github.com/StarkFurry64/polaris/internal/domain/model"
)

// ErrSnapshotNotFound is returned when a snapshot lookup matches nothing.
var ErrSnapshotNotFound = errors.New("report snapshot not found")

// SnapshotStore persists generated report snapshots.
type SnapshotStore interface {
	// Save inserts a snapshot and returns its assigned ID.
	Save(ctx context.Context, snapshot model.ReportSnapshot) (int64, error)

	// Get returns a snapshot by ID. Returns ErrSnapshotNotFound when absent.
	Get(ctx context.Context, id int64) (*model.ReportSnapshot, error)

	// List returns the most recent snapshots, newest first, up to limit.
	List(ctx context.Context, limit int) ([]model.ReportSnapshot, error)
}
