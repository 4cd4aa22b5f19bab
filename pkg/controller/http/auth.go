package http

import (
	"net/http"

	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/usecase"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type userMeResponse struct {
	model.UserContext
	AccessLevel string      `json:"accessLevel"`
	Permissions permissions `json:"permissions"`
}

type permissions struct {
	SeeAllRisks   bool `json:"seeAllRisks"`
	CreateRisk    bool `json:"createRisk"`
	UploadStaging bool `json:"uploadStaging"`
	ManageStaging bool `json:"manageStaging"`
	ReadAuditLogs bool `json:"readAuditLogs"`
	ManageUsers   bool `json:"manageUsers"`
}

// authMeHandler returns the current user and what it may do
func authMeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
		UserContext: user,
		AccessLevel: string(user.Role.AccessLevel()),
		Permissions: permissions{
			SeeAllRisks:   model.CanSeeAllRisks(user),
			CreateRisk:    model.CanCreateRisk(user),
			UploadStaging: model.CanUploadStaging(user),
			ManageStaging: model.CanManageStaging(user),
			ReadAuditLogs: model.CanReadAuditLogs(user),
			ManageUsers:   model.CanManageUsers(user),
		},
	})
}
