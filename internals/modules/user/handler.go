package user

import (
	"encoding/json"
	"net/http"
	"time"

	"endpoint-status/pkg/apperror"
	"endpoint-status/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service, validator *validator.Validate) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
	}
}

func toResponse(u User) ProfileResponse {
	return ProfileResponse{
		ID:              u.ID.String(),
		Email:           u.Email,
		PreferredLocale: u.PreferredLocale,
		UpdatedAt:       u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid request body")
		return
	}
	// valideate request body
	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid email or locale")
		return
	}

	u, err := h.service.Upsert(ctx, UpsertProfileCmd{
		Email:           req.Email,
		PreferredLocale: req.PreferredLocale,
	})
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "profile saved", toResponse(u))
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	u, err := h.service.GetProfile(ctx, chi.URLParam(r, "email"))
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, "profile retrived", toResponse(u))
}
