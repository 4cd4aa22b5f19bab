package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

// NoAuthnUseCase authenticates every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	user model.UserContext
}

var _ AuthUseCaseInterface = &NoAuthnUseCase{}

// NewNoAuthnUseCase creates a NoAuthnUseCase for user
func NewNoAuthnUseCase(user model.UserContext) *NoAuthnUseCase {
	user.Department = canonicalDepartment(user.Department)
	return &NoAuthnUseCase{user: user}
}

// ParseNoAuthnUser parses "<role>:<department>" as given to --no-auth.
// The user ID defaults to "dev".
func ParseNoAuthnUser(value string) (model.UserContext, error) {
	roleText, dept, found := strings.Cut(value, ":")
	dept = strings.TrimSpace(dept)
	if !found || dept == "" {
		return model.UserContext{}, goerr.Wrap(ErrInvalidInput, "no-auth user must be <role>:<department>", goerr.V("value", value))
	}

	role, err := types.ParseRole(roleText)
	if err != nil {
		return model.UserContext{}, goerr.Wrap(ErrInvalidInput, "invalid no-auth role", goerr.V(RoleKey, roleText))
	}
	if _, ok := types.LookupDepartment(dept); !ok {
		return model.UserContext{}, goerr.Wrap(ErrInvalidInput, "unknown no-auth department", goerr.V(DepartmentKey, dept))
	}

	return model.UserContext{UserID: "dev", Role: role, Department: canonicalDepartment(dept)}, nil
}

// Issue returns a placeholder; tokens are not checked in no-auth mode
func (uc *NoAuthnUseCase) Issue(user model.UserContext) (string, error) {
	return "no-auth", nil
}

// Verify always returns the fixed user
func (uc *NoAuthnUseCase) Verify(ctx context.Context, token string) (*model.UserContext, error) {
	u := uc.user
	return &u, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
