package interfaces

import (
	"context"

	"github.com/secmon-lab/riskreg/pkg/domain/model"
)

// StagingRepository holds uploaded rows until they are approved or cleared
type StagingRepository interface {
	// Put stores rows, replacing rows with the same ID
	Put(ctx context.Context, rows []*model.StagingRow) error

	// List returns all staged rows ordered by upload time and row number
	List(ctx context.Context) ([]*model.StagingRow, error)

	// Delete removes the rows with the given IDs. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Clear removes every staged row and returns how many were removed
	Clear(ctx context.Context) (int, error)
}
