package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/interfaces"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/service/spreadsheet"
)

type ImportUseCase struct {
	repo  interfaces.Repository
	risk  *RiskUseCase
	audit *AuditUseCase
	now   func() time.Time
}

func NewImportUseCase(repo interfaces.Repository, risk *RiskUseCase, audit *AuditUseCase, now func() time.Time) *ImportUseCase {
	return &ImportUseCase{
		repo:  repo,
		risk:  risk,
		audit: audit,
		now:   now,
	}
}

// UploadResult summarizes an upload
type UploadResult struct {
	Rows    []*model.StagingRow `json:"rows"`
	Valid   int                 `json:"valid"`
	Invalid int                 `json:"invalid"`
}

// ApproveResult summarizes an approval
type ApproveResult struct {
	Created  []*model.Risk        `json:"created"`
	Skipped  []model.StagingError `json:"skipped"`
	Rejected []model.StagingError `json:"rejected"`
}

// Upload validates rows and stages them for approval. Rows failing
// validation are staged too, with their errors, so they can be reviewed.
func (uc *ImportUseCase) Upload(ctx context.Context, user model.UserContext, source string, rows []spreadsheet.Row) (*UploadResult, error) {
	if !model.CanUploadStaging(user) {
		return nil, goerr.Wrap(ErrAccessDenied, "cannot upload staging rows",
			goerr.V(UserIDKey, user.UserID), goerr.V(RoleKey, user.Role))
	}
	if len(rows) == 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "no rows to upload", goerr.V("source", source))
	}

	now := uc.now().UTC()
	result := &UploadResult{Rows: make([]*model.StagingRow, 0, len(rows))}
	for _, row := range rows {
		staged := &model.StagingRow{
			ID:         uuid.NewString(),
			SourceFile: source,
			RowNumber:  row.Number,
			Raw:        row.Values,
			UploadedBy: user.UserID,
			CreatedAt:  now,
		}

		draft, errs := model.DraftFromRow(row.Number, row.Values, now)
		if len(errs) == 0 && !model.CanSeeRisk(user, draft.Department) {
			errs = append(errs, model.StagingError{
				Row:     row.Number,
				Field:   "department",
				Message: "department is outside your scope",
				Value:   draft.Department,
			})
		}
		staged.Errors = errs

		if staged.Valid() {
			result.Valid++
		} else {
			result.Invalid++
		}
		result.Rows = append(result.Rows, staged)
	}

	if err := uc.repo.Staging().Put(ctx, result.Rows); err != nil {
		return nil, goerr.Wrap(err, "failed to stage rows", goerr.V("source", source))
	}

	uc.audit.Record(ctx, user, model.AuditActionUpload, model.AuditResourceStaging, source, map[string]any{
		"rows":    len(result.Rows),
		"invalid": result.Invalid,
	})
	return result, nil
}

// List returns staged rows. Users who cannot approve see only their own.
func (uc *ImportUseCase) List(ctx context.Context, user model.UserContext) ([]*model.StagingRow, error) {
	if !model.CanUploadStaging(user) {
		return nil, goerr.Wrap(ErrAccessDenied, "cannot list staging rows",
			goerr.V(UserIDKey, user.UserID), goerr.V(RoleKey, user.Role))
	}

	rows, err := uc.repo.Staging().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list staging rows")
	}
	if model.CanManageStaging(user) {
		return rows, nil
	}

	own := make([]*model.StagingRow, 0, len(rows))
	for _, row := range rows {
		if row.UploadedBy == user.UserID {
			own = append(own, row)
		}
	}
	return own, nil
}

// Approve turns every valid staged row into a risk and clears the staging
// area. Rows outside the approver's departments are rejected.
func (uc *ImportUseCase) Approve(ctx context.Context, user model.UserContext) (*ApproveResult, error) {
	if !model.CanManageStaging(user) {
		return nil, goerr.Wrap(ErrAccessDenied, "cannot approve staging rows",
			goerr.V(UserIDKey, user.UserID), goerr.V(RoleKey, user.Role))
	}

	rows, err := uc.repo.Staging().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list staging rows")
	}
	if len(rows) == 0 {
		return nil, goerr.Wrap(ErrStagingEmpty, "nothing to approve")
	}

	result := &ApproveResult{
		Created:  []*model.Risk{},
		Skipped:  []model.StagingError{},
		Rejected: []model.StagingError{},
	}
	done := make([]string, 0, len(rows))

	for _, row := range rows {
		if !row.Valid() {
			result.Skipped = append(result.Skipped, row.Errors...)
			done = append(done, row.ID)
			continue
		}

		// rows are validated again since the staging area is shared storage
		draft, errs := model.DraftFromRow(row.RowNumber, row.Raw, row.CreatedAt)
		if len(errs) > 0 {
			result.Skipped = append(result.Skipped, errs...)
			done = append(done, row.ID)
			continue
		}

		if !model.CanEditRisk(user, draft.Department) {
			result.Rejected = append(result.Rejected, model.StagingError{
				Row:     row.RowNumber,
				Field:   "department",
				Message: "department is outside your scope",
				Value:   draft.Department,
			})
			done = append(done, row.ID)
			continue
		}

		created, err := uc.risk.create(ctx, user, draft)
		if err != nil {
			// rows already imported are removed so a retry does not duplicate them
			if delErr := uc.repo.Staging().Delete(ctx, done); delErr != nil {
				return nil, goerr.Wrap(delErr, "failed to remove imported rows", goerr.V("cause", err.Error()))
			}
			uc.recordApprove(ctx, user, result, err)
			return nil, goerr.Wrap(err, "failed to import row", goerr.V("row_number", row.RowNumber))
		}
		result.Created = append(result.Created, created)
		done = append(done, row.ID)
	}

	// only the rows handled here are removed; rows uploaded meanwhile stay staged
	if err := uc.repo.Staging().Delete(ctx, done); err != nil {
		return nil, goerr.Wrap(err, "failed to remove approved rows")
	}

	uc.recordApprove(ctx, user, result, nil)
	return result, nil
}

// Clear discards every staged row
func (uc *ImportUseCase) Clear(ctx context.Context, user model.UserContext) (int, error) {
	if !model.CanManageStaging(user) {
		return 0, goerr.Wrap(ErrAccessDenied, "cannot clear staging rows",
			goerr.V(UserIDKey, user.UserID), goerr.V(RoleKey, user.Role))
	}

	n, err := uc.repo.Staging().Clear(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to clear staging rows")
	}

	uc.audit.Record(ctx, user, model.AuditActionClear, model.AuditResourceStaging, "", map[string]any{
		"rows": n,
	})
	return n, nil
}

func (uc *ImportUseCase) recordApprove(ctx context.Context, user model.UserContext, result *ApproveResult, cause error) {
	riskIDs := make([]string, 0, len(result.Created))
	for _, r := range result.Created {
		riskIDs = append(riskIDs, r.RiskID)
	}
	details := map[string]any{
		"created":  len(result.Created),
		"skipped":  len(result.Skipped),
		"rejected": len(result.Rejected),
		"riskIds":  riskIDs,
	}
	if cause != nil {
		details["error"] = cause.Error()
	}
	uc.audit.Record(ctx, user, model.AuditActionApprove, model.AuditResourceStaging, "", details)
}
