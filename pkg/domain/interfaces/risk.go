package interfaces

import (
	"context"

	"github.com/secmon-lab/riskreg/pkg/domain/model"
)

type RiskRepository interface {
	// Create stores a new risk with an auto-generated numeric ID
	Create(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Get retrieves a risk by ID. Soft deleted risks are not found.
	Get(ctx context.Context, id int64) (*model.Risk, error)

	// List retrieves risks that are not soft deleted, newest first
	List(ctx context.Context, opts ...ListRiskOption) ([]*model.Risk, error)

	// Update replaces an existing risk
	Update(ctx context.Context, risk *model.Risk) (*model.Risk, error)

	// Delete soft deletes a risk by ID
	Delete(ctx context.Context, id int64) error

	// NextSequence reserves the next risk ID sequence number of a
	// department code. Numbers of soft deleted risks are never reused.
	NextSequence(ctx context.Context, code string) (int, error)
}
