package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/model/auth"
	"github.com/secmon-lab/riskreg/pkg/service/spreadsheet"
	"github.com/secmon-lab/riskreg/pkg/usecase"
	"github.com/secmon-lab/riskreg/pkg/utils/errutil"
)

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrRiskNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrStagingEmpty),
		errors.Is(err, model.ErrInvalidRisk),
		errors.Is(err, model.ErrInvalidAssessment),
		errors.Is(err, spreadsheet.ErrNoSheet),
		errors.Is(err, spreadsheet.ErrNoHeader):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func newStrictDecoder(body io.Reader) *json.Decoder {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := newStrictDecoder(r.Body).Decode(v); err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "malformed JSON body", goerr.V("cause", err.Error())))
		return false
	}
	return true
}

// requestUser returns the authenticated user. authMiddleware guarantees
// one, so a miss is a server error.
func requestUser(w http.ResponseWriter, r *http.Request) (model.UserContext, bool) {
	user, err := auth.UserFromContext(r.Context())
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "no user in request context"))
		return model.UserContext{}, false
	}
	return *user, true
}
