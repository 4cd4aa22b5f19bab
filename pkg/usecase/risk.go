package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/interfaces"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

type RiskUseCase struct {
	repo  interfaces.Repository
	audit *AuditUseCase
	now   func() time.Time
}

func NewRiskUseCase(repo interfaces.Repository, audit *AuditUseCase, now func() time.Time) *RiskUseCase {
	return &RiskUseCase{
		repo:  repo,
		audit: audit,
		now:   now,
	}
}

// Score computes scores without touching the register
func (uc *RiskUseCase) Score(assessment model.RiskAssessment) (*model.RiskScoreResult, error) {
	result, err := model.ComputeRiskScores(assessment)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to score risk")
	}
	return result, nil
}

// CreateRisk stores a new risk in the creator's own department
func (uc *RiskUseCase) CreateRisk(ctx context.Context, user model.UserContext, draft *model.RiskDraft) (*model.Risk, error) {
	if !model.CanCreateRisk(user) {
		return nil, goerr.Wrap(ErrAccessDenied, "cannot create risk",
			goerr.V(UserIDKey, user.UserID), goerr.V(RoleKey, user.Role))
	}

	dept, ok := types.LookupDepartment(user.Department)
	if !ok {
		return nil, goerr.Wrap(ErrInvalidInput, "creator has no known department",
			goerr.V(UserIDKey, user.UserID), goerr.V(DepartmentKey, user.Department))
	}

	input := *draft
	input.Department = dept.Name
	created, err := uc.create(ctx, user, &input)
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, user, model.AuditActionCreate, model.AuditResourceRisk, strconv.FormatInt(created.ID, 10), map[string]any{
		"riskId":     created.RiskID,
		"department": created.Department,
		"riskScore":  created.RiskScore,
	})
	return created, nil
}

// create validates, scores and stores draft in draft.Department. Callers
// check the access policy.
func (uc *RiskUseCase) create(ctx context.Context, user model.UserContext, draft *model.RiskDraft) (*model.Risk, error) {
	if err := draft.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk")
	}

	result, err := model.ComputeRiskScores(draft.Assessment())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to score risk")
	}

	risk := draft.NewRisk(result)
	if risk.DateReported.IsZero() {
		risk.DateReported = uc.now().UTC()
	}
	risk.CreatedBy = user.UserID

	riskID, err := uc.nextRiskID(ctx, risk.Department)
	if err != nil {
		return nil, err
	}
	risk.RiskID = riskID

	created, err := uc.repo.Risk().Create(ctx, risk)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V(DepartmentKey, risk.Department))
	}
	return created, nil
}

func (uc *RiskUseCase) nextRiskID(ctx context.Context, department string) (string, error) {
	code := types.DepartmentCodeFor(department)
	seq, err := uc.repo.Risk().NextSequence(ctx, code)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate risk ID", goerr.V(DepartmentKey, department))
	}
	return model.FormatRiskID(code, seq), nil
}

func (uc *RiskUseCase) get(ctx context.Context, id int64) (*model.Risk, error) {
	risk, err := uc.repo.Risk().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V(RiskIDKey, id))
	}
	return risk, nil
}

// GetRisk returns a risk the user may see
func (uc *RiskUseCase) GetRisk(ctx context.Context, user model.UserContext, id int64) (*model.Risk, error) {
	risk, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !model.CanSeeRisk(user, risk.Department) {
		return nil, goerr.Wrap(ErrAccessDenied, "cannot see risk",
			goerr.V(RiskIDKey, id), goerr.V(UserIDKey, user.UserID))
	}
	return risk, nil
}

// ListRisks returns the risks visible to the user, newest first
func (uc *RiskUseCase) ListRisks(ctx context.Context, user model.UserContext) ([]*model.Risk, error) {
	var opts []interfaces.ListRiskOption
	if dept, ok := model.DepartmentFilter(user); ok {
		opts = append(opts, interfaces.WithDepartment(dept))
	}

	risks, err := uc.repo.Risk().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}

	return model.FilterRisks(user, risks), nil
}

// UpdateRisk applies patch to a risk the user may edit. Scores are
// recomputed when an input changes and the risk ID is regenerated when the
// department changes.
func (uc *RiskUseCase) UpdateRisk(ctx context.Context, user model.UserContext, id int64, patch *model.RiskPatch) (*model.Risk, error) {
	existing, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !model.CanEditRisk(user, existing.Department) {
		return nil, goerr.Wrap(ErrAccessDenied, "cannot edit risk",
			goerr.V(RiskIDKey, id), goerr.V(UserIDKey, user.UserID))
	}

	if patch.Department != nil {
		dept, ok := types.LookupDepartment(*patch.Department)
		if !ok {
			return nil, goerr.Wrap(ErrInvalidInput, "unknown department",
				goerr.V(RiskIDKey, id), goerr.V(DepartmentKey, *patch.Department))
		}
		// normalize on a copy; the caller's patch is left as given
		normalized := *patch
		normalized.Department = &dept.Name
		patch = &normalized
	}

	updated := patch.Apply(existing)
	if err := draftOf(updated).Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk", goerr.V(RiskIDKey, id))
	}

	details := map[string]any{}
	if updated.Department != existing.Department {
		if !model.CanEditRisk(user, updated.Department) {
			return nil, goerr.Wrap(ErrAccessDenied, "cannot move risk to department",
				goerr.V(RiskIDKey, id), goerr.V(DepartmentKey, updated.Department))
		}

		riskID, err := uc.nextRiskID(ctx, updated.Department)
		if err != nil {
			return nil, err
		}
		updated.RiskID = riskID
		details["previousRiskId"] = existing.RiskID
		details["previousDepartment"] = existing.Department
	}

	if patch.ChangesScore() {
		result, err := model.ComputeRiskScores(updated.Assessment())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to score risk", goerr.V(RiskIDKey, id))
		}
		updated.ApplyScore(result)
		details["riskScore"] = updated.RiskScore
	}

	saved, err := uc.repo.Risk().Update(ctx, updated)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V(RiskIDKey, id))
	}

	details["riskId"] = saved.RiskID
	uc.audit.Record(ctx, user, model.AuditActionUpdate, model.AuditResourceRisk, strconv.FormatInt(id, 10), details)
	return saved, nil
}

// DeleteRisk soft deletes a risk the user may delete
func (uc *RiskUseCase) DeleteRisk(ctx context.Context, user model.UserContext, id int64) error {
	existing, err := uc.get(ctx, id)
	if err != nil {
		return err
	}

	if !model.CanDeleteRisk(user, existing.Department) {
		return goerr.Wrap(ErrAccessDenied, "cannot delete risk",
			goerr.V(RiskIDKey, id), goerr.V(UserIDKey, user.UserID))
	}

	if err := uc.repo.Risk().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return goerr.Wrap(ErrRiskNotFound, "risk not found", goerr.V(RiskIDKey, id))
		}
		return goerr.Wrap(err, "failed to delete risk", goerr.V(RiskIDKey, id))
	}

	uc.audit.Record(ctx, user, model.AuditActionDelete, model.AuditResourceRisk, strconv.FormatInt(id, 10), map[string]any{
		"riskId": existing.RiskID,
	})
	return nil
}

// Statistics aggregates the risks visible to the user
func (uc *RiskUseCase) Statistics(ctx context.Context, user model.UserContext) (*model.RiskStatistics, error) {
	risks, err := uc.ListRisks(ctx, user)
	if err != nil {
		return nil, err
	}
	return model.BuildStatistics(risks, uc.now(), model.CanSeeAllStatistics(user)), nil
}

// Dashboard returns the heat map of the risks visible to the user
func (uc *RiskUseCase) Dashboard(ctx context.Context, user model.UserContext) (*model.Dashboard, error) {
	risks, err := uc.ListRisks(ctx, user)
	if err != nil {
		return nil, err
	}
	return model.BuildDashboard(risks), nil
}

func draftOf(r *model.Risk) *model.RiskDraft {
	return &model.RiskDraft{
		Title:                r.Title,
		RiskType:             r.RiskType,
		Category:             r.Category,
		BusinessUnit:         r.BusinessUnit,
		Department:           r.Department,
		Status:               r.Status,
		OwnerID:              r.OwnerID,
		DateReported:         r.DateReported,
		Description:          r.Description,
		MitigationPlan:       r.MitigationPlan,
		Likelihood:           r.Likelihood,
		Impact:               r.Impact,
		ControlEffectiveness: r.ControlEffectiveness,
	}
}
