package checker

import (
	"encoding/json"
	"errors"

	"endpoint-status/internals/modules/endpoint"
)

// Response is what came back from a completed HTTP exchange.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
	// Truncated is set when the body exceeded the read cap. Body then holds
	// only the prefix.
	Truncated bool
}

var ErrBodyTooLarge = errors.New("response body exceeds the size limit")

// Outcome is exactly one of: a transport failure, a processing fault, or a
// response. Fault wins over Transport, Transport over Response.
type Outcome struct {
	Transport error
	Fault     error
	Response  *Response
}

// Classify maps an outcome onto the status taxonomy, including payload
// validation of 2xx bodies.
func Classify(o Outcome) endpoint.Status {
	status := classifyExchange(o)
	if status != endpoint.StatusUp {
		return status
	}
	if err := payloadError(o.Response); err != nil {
		return endpoint.StatusMalformed
	}
	return endpoint.StatusUp
}

// ClassifyCode maps only the status code: 2xx is up, anything else down.
func ClassifyCode(code int) endpoint.Status {
	if code >= 200 && code <= 299 {
		return endpoint.StatusUp
	}
	return endpoint.StatusDown
}

func classifyExchange(o Outcome) endpoint.Status {
	switch {
	case o.Fault != nil:
		return endpoint.StatusUnprocessable
	case o.Transport != nil:
		return endpoint.StatusDown
	case o.Response == nil:
		return endpoint.StatusUnprocessable
	default:
		return ClassifyCode(o.Response.StatusCode)
	}
}

func payloadError(r *Response) error {
	if r.Truncated {
		return ErrBodyTooLarge
	}
	return ValidatePayload(r.Body)
}

// ValidatePayload reports why body is not a well-formed JSON document.
func ValidatePayload(body []byte) error {
	var v any
	return json.Unmarshal(body, &v)
}
