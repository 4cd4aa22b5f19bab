package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const defaultTokenTTL = 24 * time.Hour

// Auth holds CLI flags for API authentication
type Auth struct {
	jwtSecret string
	tokenTTL  time.Duration
	noAuth    string
}

// Flags returns CLI flags for authentication configuration
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HMAC secret used to sign and verify API tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISKREG_JWT_SECRET"),
			Destination: &a.jwtSecret,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Lifetime of issued API tokens",
			Value:       defaultTokenTTL,
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISKREG_TOKEN_TTL"),
			Destination: &a.tokenTTL,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the given user (development only). Example: --no-auth=risk_admin:Finance Office",
			Category:    "Authentication",
			Sources:     cli.EnvVars("RISKREG_NO_AUTH"),
			Destination: &a.noAuth,
		},
	}
}

// IsNoAuthMode reports whether authentication is skipped
func (a *Auth) IsNoAuthMode() bool {
	return a.noAuth != ""
}

// LogValue implements slog.LogValuer. The secret is never logged.
func (a *Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("jwt_secret_set", a.jwtSecret != ""),
		slog.Duration("token_ttl", a.tokenTTL),
		slog.String("no_auth", a.noAuth),
	)
}

// Issuer returns the JWT use case used to sign tokens
func (a *Auth) Issuer() (*usecase.AuthUseCase, error) {
	if a.jwtSecret == "" {
		return nil, goerr.Wrap(ErrMissingSecret, "set --jwt-secret or RISKREG_JWT_SECRET")
	}
	ttl := a.tokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return usecase.NewAuthUseCase([]byte(a.jwtSecret), usecase.WithTokenTTL(ttl))
}

// Configure returns the authentication use case for the server
func (a *Auth) Configure() (usecase.AuthUseCaseInterface, error) {
	if a.IsNoAuthMode() {
		user, err := usecase.ParseNoAuthnUser(a.noAuth)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid --no-auth value")
		}
		return usecase.NewNoAuthnUseCase(user), nil
	}
	return a.Issuer()
}
