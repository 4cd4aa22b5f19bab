package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/interfaces"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/utils/errutil"
	"github.com/secmon-lab/riskreg/pkg/utils/logging"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type AuditUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func NewAuditUseCase(repo interfaces.Repository, now func() time.Time) *AuditUseCase {
	return &AuditUseCase{repo: repo, now: now}
}

// Record appends an entry to the audit trail. A failure is logged and
// never returned, so the audited operation stands either way.
func (uc *AuditUseCase) Record(ctx context.Context, user model.UserContext, action model.AuditAction, resource, resourceID string, details map[string]any) {
	entry := &model.AuditLog{
		ID:         uuid.NewString(),
		UserID:     user.UserID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		CreatedAt:  uc.now().UTC(),
	}

	if err := uc.repo.AuditLog().Put(ctx, entry); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to write audit log",
			goerr.V("action", action),
			goerr.V("resource_id", resourceID)), "audit log lost")
		return
	}

	logging.From(ctx).Debug("audit",
		slog.String("user", user.UserID),
		slog.String("action", string(action)),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
	)
}

// List returns the newest audit entries. limit <= 0 selects the default.
func (uc *AuditUseCase) List(ctx context.Context, user model.UserContext, limit int) ([]*model.AuditLog, error) {
	if !model.CanReadAuditLogs(user) {
		return nil, goerr.Wrap(ErrAccessDenied, "cannot read audit logs",
			goerr.V(UserIDKey, user.UserID), goerr.V(RoleKey, user.Role))
	}

	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := uc.repo.AuditLog().List(ctx, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit logs")
	}
	return entries, nil
}
