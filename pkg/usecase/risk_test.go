package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
	"github.com/secmon-lab/riskreg/pkg/usecase"
)

func TestRiskUseCase_CreateRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("scores and numbers per department", func(t *testing.T) {
		uc, _ := newUseCases(t)

		d := draft(90, 90, ptr(60.0))
		d.Department = "Legal Service"
		r1 := mustCreate(t, uc, financeUser, d)
		gt.V(t, r1.Department).Equal("Finance Office")
		gt.V(t, r1.RiskID).Equal("FO-01")
		gt.V(t, r1.InherentRating).Equal(types.RatingVeryHigh)
		gt.V(t, r1.CreatedBy).Equal("fin-user")
		gt.V(t, r1.DateReported).Equal(fixedNow)
		gt.V(t, r1.Status).Equal(types.RiskStatusOpen)

		r2 := mustCreate(t, uc, financeAdmin, draft(10, 10, nil))
		gt.V(t, r2.RiskID).Equal("FO-02")

		r3 := mustCreate(t, uc, legalAdmin, draft(10, 10, nil))
		gt.V(t, r3.RiskID).Equal("LS-01")
	})

	t.Run("requires a role that can create", func(t *testing.T) {
		uc, _ := newUseCases(t)
		for _, u := range []model.UserContext{reviewer, auditor, userOf("x", types.RoleUnknown, "Finance Office")} {
			_, err := uc.Risk.CreateRisk(ctx, u, draft(50, 50, nil))
			gt.Error(t, err).Is(usecase.ErrAccessDenied)
		}
	})

	t.Run("creator needs a known department", func(t *testing.T) {
		uc, _ := newUseCases(t)
		_, err := uc.Risk.CreateRisk(ctx, userOf("x", types.RoleBusinessUser, ""), draft(50, 50, nil))
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		uc, repo := newUseCases(t)
		_, err := uc.Risk.CreateRisk(ctx, financeUser, draft(150, 50, nil))
		gt.Error(t, err).Is(model.ErrInvalidAssessment)

		d := draft(50, 50, nil)
		d.RiskType = ""
		_, err = uc.Risk.CreateRisk(ctx, financeUser, d)
		gt.Error(t, err).Is(model.ErrInvalidRisk)

		risks, err := repo.Risk().List(ctx)
		gt.NoError(t, err).Required()
		gt.A(t, risks).Length(0)
	})

	t.Run("records audit entry", func(t *testing.T) {
		uc, _ := newUseCases(t)
		r := mustCreate(t, uc, financeUser, draft(50, 50, nil))

		logs, err := uc.Audit.List(ctx, superAdmin, 0)
		gt.NoError(t, err).Required()
		gt.A(t, logs).Length(1)
		gt.V(t, logs[0].Action).Equal(model.AuditActionCreate)
		gt.V(t, logs[0].UserID).Equal("fin-user")
		gt.V(t, logs[0].Details["riskId"]).Equal(any(r.RiskID))
	})
}

func TestRiskUseCase_GetAndList(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCases(t)

	fin1 := mustCreate(t, uc, financeUser, draft(20, 20, nil))
	legal := mustCreate(t, uc, legalAdmin, draft(30, 30, nil))
	fin2 := mustCreate(t, uc, financeAdmin, draft(40, 40, nil))

	t.Run("own department", func(t *testing.T) {
		got, err := uc.Risk.GetRisk(ctx, reviewer, fin1.ID)
		gt.NoError(t, err).Required()
		gt.V(t, got.RiskID).Equal(fin1.RiskID)
	})

	t.Run("other department is denied", func(t *testing.T) {
		_, err := uc.Risk.GetRisk(ctx, financeAdmin, legal.ID)
		gt.Error(t, err).Is(usecase.ErrAccessDenied)
	})

	t.Run("full access sees everything", func(t *testing.T) {
		_, err := uc.Risk.GetRisk(ctx, auditor, legal.ID)
		gt.NoError(t, err)

		all, err := uc.Risk.ListRisks(ctx, auditor)
		gt.NoError(t, err).Required()
		gt.A(t, all).Length(3)
		gt.V(t, all[0].ID).Equal(fin2.ID)
	})

	t.Run("list is department filtered", func(t *testing.T) {
		risks, err := uc.Risk.ListRisks(ctx, financeUser)
		gt.NoError(t, err).Required()
		gt.A(t, risks).Length(2)
		for _, r := range risks {
			gt.V(t, r.Department).Equal("Finance Office")
		}
	})

	t.Run("unknown role sees only own department", func(t *testing.T) {
		risks, err := uc.Risk.ListRisks(ctx, userOf("x", types.Role("boss"), "Legal Service"))
		gt.NoError(t, err).Required()
		gt.A(t, risks).Length(1)
		gt.V(t, risks[0].ID).Equal(legal.ID)
	})

	t.Run("missing risk", func(t *testing.T) {
		_, err := uc.Risk.GetRisk(ctx, superAdmin, 424242)
		gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	})
}

func TestRiskUseCase_UpdateRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("rescores when inputs change", func(t *testing.T) {
		uc, _ := newUseCases(t)
		r := mustCreate(t, uc, financeUser, draft(50, 50, nil))
		gt.V(t, r.ResidualRisk).Nil()

		updated, err := uc.Risk.UpdateRisk(ctx, financeUser, r.ID, &model.RiskPatch{
			ControlEffectiveness: ptr(50.0),
		})
		gt.NoError(t, err).Required()
		gt.V(t, updated.ResidualRisk).NotNil()
		gt.V(t, *updated.ResidualRisk).Equal(25.0)
		gt.V(t, updated.RiskScore).Equal(25.0)
		gt.V(t, updated.ResidualRating).Equal(types.RatingLow)
		gt.V(t, updated.RiskID).Equal(r.RiskID)
	})

	t.Run("keeps snapshot when inputs are untouched", func(t *testing.T) {
		uc, _ := newUseCases(t)
		r := mustCreate(t, uc, financeUser, draft(50, 50, nil))

		updated, err := uc.Risk.UpdateRisk(ctx, financeUser, r.ID, &model.RiskPatch{Title: ptr("Renamed")})
		gt.NoError(t, err).Required()
		gt.V(t, updated.Title).Equal("Renamed")
		gt.V(t, updated.RiskScore).Equal(r.RiskScore)
		gt.V(t, updated.InherentMatrixValue).Equal(r.InherentMatrixValue)
	})

	t.Run("department change regenerates risk ID", func(t *testing.T) {
		uc, _ := newUseCases(t)
		mustCreate(t, uc, legalAdmin, draft(10, 10, nil))
		r := mustCreate(t, uc, superAdmin, draft(50, 50, nil))
		gt.V(t, r.RiskID).Equal("RC-01")

		patch := &model.RiskPatch{Department: ptr("ls")}
		updated, err := uc.Risk.UpdateRisk(ctx, superAdmin, r.ID, patch)
		gt.NoError(t, err).Required()
		gt.V(t, updated.Department).Equal("Legal Service")
		gt.V(t, updated.RiskID).Equal("LS-02")
		// the patch is not rewritten with the normalized name
		gt.V(t, *patch.Department).Equal("ls")

		logs, err := uc.Audit.List(ctx, superAdmin, 1)
		gt.NoError(t, err).Required()
		gt.V(t, logs[0].Action).Equal(model.AuditActionUpdate)
		gt.V(t, logs[0].Details["previousRiskId"]).Equal(any("RC-01"))
	})

	t.Run("cannot move a risk out of own department", func(t *testing.T) {
		uc, _ := newUseCases(t)
		r := mustCreate(t, uc, financeAdmin, draft(50, 50, nil))

		_, err := uc.Risk.UpdateRisk(ctx, financeAdmin, r.ID, &model.RiskPatch{Department: ptr("Legal Service")})
		gt.Error(t, err).Is(usecase.ErrAccessDenied)

		got, err := uc.Risk.GetRisk(ctx, financeAdmin, r.ID)
		gt.NoError(t, err).Required()
		gt.V(t, got.Department).Equal("Finance Office")
	})

	t.Run("unknown department", func(t *testing.T) {
		uc, _ := newUseCases(t)
		r := mustCreate(t, uc, superAdmin, draft(50, 50, nil))
		_, err := uc.Risk.UpdateRisk(ctx, superAdmin, r.ID, &model.RiskPatch{Department: ptr("Moon Base")})
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
	})

	t.Run("edit permission follows the policy", func(t *testing.T) {
		uc, _ := newUseCases(t)
		r := mustCreate(t, uc, financeUser, draft(50, 50, nil))

		for _, u := range []model.UserContext{reviewer, auditor, legalAdmin} {
			_, err := uc.Risk.UpdateRisk(ctx, u, r.ID, &model.RiskPatch{Title: ptr("x")})
			gt.Error(t, err).Is(usecase.ErrAccessDenied)
		}
	})

	t.Run("rejects invalid patch", func(t *testing.T) {
		uc, _ := newUseCases(t)
		r := mustCreate(t, uc, financeUser, draft(50, 50, nil))

		_, err := uc.Risk.UpdateRisk(ctx, financeUser, r.ID, &model.RiskPatch{Impact: ptr(-1.0)})
		gt.Error(t, err).Is(model.ErrInvalidAssessment)

		_, err = uc.Risk.UpdateRisk(ctx, financeUser, r.ID, &model.RiskPatch{Status: ptr(types.RiskStatus("Done"))})
		gt.Error(t, err).Is(model.ErrInvalidRisk)
	})
}

func TestRiskUseCase_DeleteRisk(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCases(t)

	r := mustCreate(t, uc, financeUser, draft(50, 50, nil))

	gt.Error(t, uc.Risk.DeleteRisk(ctx, financeUser, r.ID)).Is(usecase.ErrAccessDenied)
	gt.Error(t, uc.Risk.DeleteRisk(ctx, legalAdmin, r.ID)).Is(usecase.ErrAccessDenied)
	gt.NoError(t, uc.Risk.DeleteRisk(ctx, financeAdmin, r.ID)).Required()

	_, err := uc.Risk.GetRisk(ctx, financeAdmin, r.ID)
	gt.Error(t, err).Is(usecase.ErrRiskNotFound)
	gt.Error(t, uc.Risk.DeleteRisk(ctx, financeAdmin, r.ID)).Is(usecase.ErrRiskNotFound)

	// sequence numbers survive soft delete
	next := mustCreate(t, uc, financeUser, draft(50, 50, nil))
	gt.V(t, next.RiskID).Equal("FO-02")
}

func TestRiskUseCase_StatisticsAndDashboard(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCases(t)

	mustCreate(t, uc, financeUser, draft(90, 90, nil))
	mustCreate(t, uc, financeUser, draft(50, 50, ptr(40.0)))
	mustCreate(t, uc, legalAdmin, draft(10, 10, ptr(80.0)))

	t.Run("department user", func(t *testing.T) {
		s, err := uc.Risk.Statistics(ctx, financeUser)
		gt.NoError(t, err).Required()
		gt.V(t, s.Total).Equal(2)
		gt.V(t, s.ByDepartment).Nil()
		gt.V(t, s.ControlEffectiveness.Average).Equal(40.0)
		gt.V(t, s.Trend[11].Count).Equal(2)
	})

	t.Run("full access user", func(t *testing.T) {
		s, err := uc.Risk.Statistics(ctx, auditor)
		gt.NoError(t, err).Required()
		gt.V(t, s.Total).Equal(3)
		gt.V(t, s.ByDepartment["Legal Service"]).Equal(1)
		gt.V(t, s.ControlEffectiveness.Average).Equal(60.0)
		gt.V(t, s.TopRisks[0].InherentRisk).Equal(100.0)
	})

	t.Run("dashboard", func(t *testing.T) {
		d, err := uc.Risk.Dashboard(ctx, legalAdmin)
		gt.NoError(t, err).Required()
		gt.A(t, d.Risks).Length(1)
		gt.A(t, d.DepartmentControls).Length(1)
		gt.V(t, d.DepartmentControls[0].AvgControlEffectiveness).Equal(80.0)
	})
}

func TestRiskUseCase_Score(t *testing.T) {
	uc, _ := newUseCases(t)

	res, err := uc.Risk.Score(model.RiskAssessment{Likelihood: 90, Impact: 90, ControlEffectiveness: ptr(60.0)})
	gt.NoError(t, err).Required()
	gt.V(t, res.InherentRisk.Rating).Equal(types.RatingVeryHigh)

	_, err = uc.Risk.Score(model.RiskAssessment{Likelihood: 101, Impact: 0})
	gt.Error(t, err).Is(model.ErrInvalidAssessment)
}
