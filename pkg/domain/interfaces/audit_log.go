package interfaces

import (
	"context"

	"github.com/secmon-lab/riskreg/pkg/domain/model"
)

// AuditLogRepository stores the append-only audit trail
type AuditLogRepository interface {
	// Put appends an entry
	Put(ctx context.Context, entry *model.AuditLog) error

	// List returns up to limit entries, newest first
	List(ctx context.Context, limit int) ([]*model.AuditLog, error)
}
