package usecase

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
)

const (
	defaultTokenTTL = 24 * time.Hour
	tokenIssuer     = "riskreg"

	claimRole       = "role"
	claimDepartment = "department"
)

// AuthUseCaseInterface resolves request credentials to a user
type AuthUseCaseInterface interface {
	Issue(user model.UserContext) (string, error)
	Verify(ctx context.Context, token string) (*model.UserContext, error)
	IsNoAuthn() bool
}

// AuthUseCase issues and verifies HS256 signed JWTs
type AuthUseCase struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ AuthUseCaseInterface = &AuthUseCase{}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithTokenTTL sets the lifetime of issued tokens
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.ttl = ttl
	}
}

// WithAuthClock replaces time.Now, for tests
func WithAuthClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

func NewAuthUseCase(secret []byte, options ...AuthOption) (*AuthUseCase, error) {
	if len(secret) == 0 {
		return nil, goerr.New("JWT secret is required")
	}

	uc := &AuthUseCase{
		secret: secret,
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(uc)
	}
	return uc, nil
}

// Issue signs a token for user
func (uc *AuthUseCase) Issue(user model.UserContext) (string, error) {
	if user.UserID == "" {
		return "", goerr.Wrap(ErrInvalidInput, "user ID is required")
	}
	if !user.Role.IsValid() {
		return "", goerr.Wrap(ErrInvalidInput, "invalid role", goerr.V(RoleKey, user.Role))
	}

	now := uc.now()
	tok, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(user.UserID).
		IssuedAt(now).
		Expiration(now.Add(uc.ttl)).
		Claim(claimRole, string(user.Role)).
		Claim(claimDepartment, user.Department).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token", goerr.V(UserIDKey, user.UserID))
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token", goerr.V(UserIDKey, user.UserID))
	}
	return string(signed), nil
}

// Verify checks signature and expiry and returns the user of the token.
// Unknown roles resolve to a user without permissions.
func (uc *AuthUseCase) Verify(ctx context.Context, token string) (*model.UserContext, error) {
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthenticated, "invalid token", goerr.V("cause", err.Error()))
	}
	if tok.Subject() == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "token has no subject")
	}

	user := &model.UserContext{
		UserID: tok.Subject(),
		Role:   types.NormalizeRole(stringClaim(tok, claimRole)),
	}
	user.Department = canonicalDepartment(stringClaim(tok, claimDepartment))
	return user, nil
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

func stringClaim(tok jwt.Token, name string) string {
	v, ok := tok.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func canonicalDepartment(department string) string {
	if dept, ok := types.LookupDepartment(department); ok {
		return dept.Name
	}
	return department
}
