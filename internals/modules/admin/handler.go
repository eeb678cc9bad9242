package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

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

// RunCron triggers a manual run. The body is optional.
func (h *Handler) RunCron(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	var req RunCronRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid request body")
		return
	}

	report, err := h.service.RunCron(ctx, req.Force)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.CronExecuted, report)
}

func (h *Handler) CronStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	status, err := h.service.CronStatus(ctx)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.CronStatus, status)
}

func (h *Handler) QueueSizes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	sizes, err := h.service.QueueSizes(ctx)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.QueueSizes, sizes)
}

// Post : /queues/{queue}/items
//
//	{ "endpoint_ids": ["a", "b"] }
func (h *Handler) EnqueueItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)
	queueName := chi.URLParam(r, "queue")

	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "endpoint_ids must be a non-empty list")
		return
	}

	n, err := h.service.Enqueue(ctx, queueName, req.EndpointIDs)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusAccepted, reqID, utils.ItemsEnqueued, EnqueueResponse{
		Queue:    queueName,
		Enqueued: n,
	})
}

func (h *Handler) ListProcessors(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	utils.WriteJSON(w, http.StatusOK, reqID, utils.ProcessorsListed, h.service.Processors())
}

func (h *Handler) EndpointStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	resp, err := h.service.EndpointStatus(ctx, chi.URLParam(r, "id"))
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.EndpointStatus, resp)
}

// Put : /endpoints/{id}
//
//	{ "label": "Feed", "uri": "https://example.com/feed.json", "email_subscribers": ["ops@example.com"] }
func (h *Handler) UpsertEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	var req UpsertEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, reqID, apperror.InvalidInput, "label and uri are required, subscribers must be email addresses")
		return
	}

	ep, err := h.service.UpsertEndpoint(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		utils.FromAppError(w, reqID, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, reqID, utils.EndpointSaved, ep)
}
