package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/domain/types"
	"github.com/secmon-lab/riskreg/pkg/usecase"
)

// assessmentRequest keeps scoring inputs as pointers so a missing
// likelihood or impact is told apart from 0
type assessmentRequest struct {
	Likelihood           *float64 `json:"likelihood"`
	Impact               *float64 `json:"impact"`
	ControlEffectiveness *float64 `json:"controlEffectiveness,omitempty"`
}

func (a assessmentRequest) assessment() (model.RiskAssessment, error) {
	return model.NewRiskAssessment(a.Likelihood, a.Impact, a.ControlEffectiveness)
}

// createRiskRequest shadows the scoring inputs of the embedded draft
type createRiskRequest struct {
	model.RiskDraft
	Likelihood           *float64 `json:"likelihood"`
	Impact               *float64 `json:"impact"`
	ControlEffectiveness *float64 `json:"controlEffectiveness,omitempty"`
}

func (c *createRiskRequest) draft() (*model.RiskDraft, error) {
	a, err := model.NewRiskAssessment(c.Likelihood, c.Impact, c.ControlEffectiveness)
	if err != nil {
		return nil, err
	}
	d := c.RiskDraft
	d.Likelihood = a.Likelihood
	d.Impact = a.Impact
	d.ControlEffectiveness = a.ControlEffectiveness
	return &d, nil
}

type risksResponse struct {
	Risks []*model.Risk `json:"risks"`
	Total int           `json:"total"`
}

func riskIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "invalid risk id", goerr.V("id", raw)))
		return 0, false
	}
	return id, true
}

func (s *Server) listRisksHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	risks, err := s.uc.Risk.ListRisks(r.Context(), user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, risksResponse{Risks: risks, Total: len(risks)})
}

func (s *Server) createRiskHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	var req createRiskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	draft, err := req.draft()
	if err != nil {
		handleError(w, r, err)
		return
	}

	created, err := s.uc.Risk.CreateRisk(r.Context(), user, draft)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, created)
}

func (s *Server) getRiskHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := riskIDParam(w, r)
	if !ok {
		return
	}

	risk, err := s.uc.Risk.GetRisk(r.Context(), user, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, risk)
}

func (s *Server) updateRiskHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := riskIDParam(w, r)
	if !ok {
		return
	}

	var patch model.RiskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := s.uc.Risk.UpdateRisk(r.Context(), user, id, &patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, updated)
}

func (s *Server) deleteRiskHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}
	id, ok := riskIDParam(w, r)
	if !ok {
		return
	}

	if err := s.uc.Risk.DeleteRisk(r.Context(), user, id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	assessment, err := req.assessment()
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.uc.Risk.Score(assessment)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result)
}

func (s *Server) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	stats, err := s.uc.Risk.Statistics(r.Context(), user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, stats)
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	dashboard, err := s.uc.Risk.Dashboard(r.Context(), user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, dashboard)
}

func departmentsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string][]types.Department{
		"departments": types.Departments(),
	})
}
