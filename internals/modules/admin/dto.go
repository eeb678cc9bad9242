package admin

import "time"

type RunCronRequest struct {
	Force bool `json:"force"`
}

type EnqueueRequest struct {
	EndpointIDs []string `json:"endpoint_ids" validate:"required,min=1,dive,required"`
}

type EnqueueResponse struct {
	Queue    string `json:"queue"`
	Enqueued int    `json:"enqueued"`
}

type QueueSize struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type ProbeSnapshot struct {
	StatusCode int       `json:"status_code"`
	LatencyMs  int64     `json:"latency_ms"`
	CheckedAt  time.Time `json:"checked_at"`
}

type EndpointStatusResponse struct {
	ID        string         `json:"id"`
	Label     string         `json:"label"`
	Status    string         `json:"status"`
	Message   *string        `json:"message"`
	LastProbe *ProbeSnapshot `json:"last_probe,omitempty"`
}

// UpsertEndpointRequest seeds or edits an endpoint. Status and message are
// never taken from the request.
type UpsertEndpointRequest struct {
	Label       string   `json:"label" validate:"required"`
	URI         string   `json:"uri" validate:"required,url"`
	Enabled     *bool    `json:"enabled"`
	Processor   *string  `json:"processor" validate:"omitempty,min=1"`
	Subscribers []string `json:"email_subscribers" validate:"omitempty,dive,email"`
}
