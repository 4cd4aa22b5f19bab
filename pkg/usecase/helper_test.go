package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
	"github.com/secmon-lab/riskreg/pkg/repository/memory"
	"github.com/secmon-lab/riskreg/pkg/usecase"
)

var fixedNow = time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

func newUseCases(t *testing.T) (*usecase.UseCases, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	return usecase.New(repo, usecase.WithClock(func() time.Time { return fixedNow })), repo
}

func userOf(id string, role types.Role, dept string) model.UserContext {
	return model.UserContext{UserID: id, Role: role, Department: dept}
}

var (
	superAdmin   = userOf("root", types.RoleSuperAdmin, "Risk & Compliance")
	auditor      = userOf("audit", types.RoleAuditor, "Internal Audit")
	financeAdmin = userOf("fin-admin", types.RoleRiskAdmin, "Finance Office")
	financeUser  = userOf("fin-user", types.RoleBusinessUser, "Finance Office")
	legalAdmin   = userOf("legal-admin", types.RoleRiskAdmin, "Legal Service")
	reviewer     = userOf("rev", types.RoleReviewer, "Finance Office")
)

func ptr[T any](v T) *T { return &v }

func draft(l, i float64, ce *float64) *model.RiskDraft {
	return &model.RiskDraft{
		Title:                "Payment fraud",
		RiskType:             "Fraud",
		Category:             "Operational",
		BusinessUnit:         "Retail",
		Likelihood:           l,
		Impact:               i,
		ControlEffectiveness: ce,
	}
}

func mustCreate(t *testing.T, uc *usecase.UseCases, user model.UserContext, d *model.RiskDraft) *model.Risk {
	t.Helper()
	r, err := uc.Risk.CreateRisk(context.Background(), user, d)
	gt.NoError(t, err).Required()
	return r
}
