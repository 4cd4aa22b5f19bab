package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/riskreg/pkg/domain/model/auth"
	"github.com/secmon-lab/riskreg/pkg/utils/errutil"
	"github.com/secmon-lab/riskreg/pkg/utils/logging"
)

// authMiddleware resolves the bearer token to a user and stores it in the
// request context. No-auth mode skips the header check.
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if !authUC.IsNoAuthn() {
				header := r.Header.Get("Authorization")
				scheme, value, found := strings.Cut(header, " ")
				if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
					errutil.WriteJSONError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				token = strings.TrimSpace(value)
			}

			user, err := authUC.Verify(r.Context(), token)
			if err != nil {
				logging.From(r.Context()).Info("rejected token", "error", err.Error())
				errutil.WriteJSONError(w, http.StatusUnauthorized, "invalid authentication token")
				return
			}

			ctx := auth.ContextWithUser(r.Context(), user)
			ctx = logging.With(ctx, logging.From(ctx).With("user_id", user.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
