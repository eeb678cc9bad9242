package admin

import (
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/cron/run", h.RunCron)
	r.Get("/cron", h.CronStatus)
	r.Get("/queues", h.QueueSizes)
	r.Post("/queues/{queue}/items", h.EnqueueItems)
	r.Get("/processors", h.ListProcessors)
	r.Put("/endpoints/{id}", h.UpsertEndpoint)
	r.Get("/endpoints/{id}/status", h.EndpointStatus)

	return r
}

/*
- POST: /cron/run -> manual run, drains every queue
	body : RunCronRequest (optional)
	resp : scheduler.Report

- GET: /cron -> next execution
	resp : scheduler.Status

- GET: /queues -> item count per configured queue
	resp : []QueueSize

- POST: /queues/{queue}/items -> enqueue endpoints by id
	body : EnqueueRequest
	resp : EnqueueResponse

- GET: /processors -> registered processor definitions
	resp : []processor.Definition

- PUT: /endpoints/{id} -> seed or edit an endpoint, keeps its outcome
	body : UpsertEndpointRequest
	resp : endpoint.Endpoint

- GET: /endpoints/{id}/status -> persisted status and last probe
	resp : EndpointStatusResponse
*/
