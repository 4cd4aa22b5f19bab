package http

import (
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/usecase"
)

type auditLogsResponse struct {
	Logs []*model.AuditLog `json:"logs"`
}

func (s *Server) auditLogsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid limit", goerr.V("limit", raw)))
			return
		}
		limit = n
	}

	logs, err := s.uc.Audit.List(r.Context(), user, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, auditLogsResponse{Logs: logs})
}
