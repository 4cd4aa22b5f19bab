package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
	"github.com/secmon-lab/riskreg/pkg/usecase"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestAuthUseCase_IssueVerify(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := now

	auth, err := usecase.NewAuthUseCase(testSecret, usecase.WithAuthClock(func() time.Time { return clock }))
	gt.NoError(t, err).Required()
	gt.B(t, auth.IsNoAuthn()).False()

	token, err := auth.Issue(financeAdmin)
	gt.NoError(t, err).Required()

	t.Run("round trip", func(t *testing.T) {
		got, err := auth.Verify(ctx, token)
		gt.NoError(t, err).Required()
		gt.V(t, *got).Equal(financeAdmin)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := usecase.NewAuthUseCase([]byte("another-secret-another-secret!!"), usecase.WithAuthClock(func() time.Time { return clock }))
		gt.NoError(t, err).Required()
		_, err = other.Verify(ctx, token)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.Verify(ctx, "not-a-jwt")
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("expired after 24h", func(t *testing.T) {
		clock = now.Add(25 * time.Hour)
		defer func() { clock = now }()
		_, err := auth.Verify(ctx, token)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})
}

func TestAuthUseCase_UnknownRoleFailsClosed(t *testing.T) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Issuer("riskreg").
		Subject("mallory").
		IssuedAt(now).
		Expiration(now.Add(time.Hour)).
		Claim("role", "god").
		Claim("department", "fo").
		Build()
	gt.NoError(t, err).Required()
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, testSecret))
	gt.NoError(t, err).Required()

	auth, err := usecase.NewAuthUseCase(testSecret)
	gt.NoError(t, err).Required()

	user, err := auth.Verify(context.Background(), string(signed))
	gt.NoError(t, err).Required()
	gt.V(t, user.Role).Equal(types.RoleUnknown)
	gt.V(t, user.Department).Equal("Finance Office")
	gt.B(t, model.CanEditRisk(*user, "Finance Office")).False()
	gt.B(t, model.CanSeeAllRisks(*user)).False()
}

func TestAuthUseCase_Issue(t *testing.T) {
	_, err := usecase.NewAuthUseCase(nil)
	gt.Error(t, err)

	auth, err := usecase.NewAuthUseCase(testSecret)
	gt.NoError(t, err).Required()

	_, err = auth.Issue(model.UserContext{Role: types.RoleAuditor})
	gt.Error(t, err).Is(usecase.ErrInvalidInput)
	_, err = auth.Issue(model.UserContext{UserID: "x", Role: types.Role("boss")})
	gt.Error(t, err).Is(usecase.ErrInvalidInput)
}
