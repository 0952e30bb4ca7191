package handlers

import (
	"net/http"

	"github.com/ray-remotestate/cafeteria/database/dbhelper"
	"github.com/ray-remotestate/cafeteria/middlewares"
	"github.com/ray-remotestate/cafeteria/utils"
)

func (h *Handler) CreateAdminRequest(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := decodeBody(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if _, err := h.AdminRequests.Create(r.Context(), claims.UserID, req.Note); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Admin request submitted")
}

func (h *Handler) ListAdminRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := dbhelper.ListAdminRequests(r.Context(), h.DB)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, requests)
}

type resolveRequest struct {
	RequestID int64 `json:"request_id"`
}

func (h *Handler) ApproveAdminRequest(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if _, err := h.AdminRequests.Approve(r.Context(), req.RequestID); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Request approved, user is now admin")
}

func (h *Handler) RejectAdminRequest(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	if _, err := h.AdminRequests.Reject(r.Context(), req.RequestID); err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondMessage(w, http.StatusOK, "Request rejected")
}
