package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/riskreg/pkg/domain/model"
)

type auditLogRepository struct {
	mu      sync.RWMutex
	entries []*model.AuditLog
}

func newAuditLogRepository() *auditLogRepository {
	return &auditLogRepository{}
}

func copyAuditLog(entry *model.AuditLog) *model.AuditLog {
	copied := *entry
	if entry.Details != nil {
		copied.Details = make(map[string]any, len(entry.Details))
		for k, v := range entry.Details {
			copied.Details[k] = v
		}
	}
	return &copied
}

func (r *auditLogRepository) Put(ctx context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, copyAuditLog(entry))
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}

	// entries are append-only, so walking backwards yields newest first
	out := make([]*model.AuditLog, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyAuditLog(r.entries[i]))
	}
	return out, nil
}
