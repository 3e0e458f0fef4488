// Package envelope holds the uniform result wrapper returned by every OCPI call
// and the decoding of the OCPI response body shape into it.
package envelope

import (
	"fmt"
	"net/http"
	"time"
)

// StatusLocalFailure marks a call that never produced a usable HTTP response.
const StatusLocalFailure = -1

// OCPI status codes carried in the response body.
const (
	StatusSuccess              = 1000
	StatusClientError          = 2000
	StatusInvalidParameters    = 2001
	StatusNotEnoughInformation = 2002
	StatusUnknownLocation      = 2003
	StatusUnknownToken         = 2004
	StatusServerError          = 3000
	StatusUnableToUseClientApi = 3001
	StatusUnsupportedVersion   = 3002
	StatusNoMatchingEndpoints  = 3003
)

const MessageNoRemoteUrl = "No remote URL available!"

type Response[T any] struct {
	Data           T             `json:"data"`
	StatusCode     int           `json:"status_code"`
	OcpiStatusCode int           `json:"ocpi_status_code,omitempty"`
	Message        string        `json:"message,omitempty"`
	Detail         string        `json:"detail,omitempty"`
	RequestId      string        `json:"request_id"`
	CorrelationId  string        `json:"correlation_id"`
	Timestamp      time.Time     `json:"timestamp"`
	Runtime        time.Duration `json:"runtime"`
}

func (r *Response[T]) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices &&
		r.OcpiStatusCode >= StatusSuccess && r.OcpiStatusCode < StatusClientError
}

func (r *Response[T]) String() string {
	if r.IsSuccess() {
		return fmt.Sprintf("%d/%d [%s]", r.StatusCode, r.OcpiStatusCode, r.RequestId)
	}
	return fmt.Sprintf("%d/%d [%s] %s", r.StatusCode, r.OcpiStatusCode, r.RequestId, r.Message)
}

// Failure builds a local failure envelope with status -1.
func Failure[T any](requestId, correlationId, message, detail string) *Response[T] {
	return &Response[T]{
		StatusCode:    StatusLocalFailure,
		Message:       message,
		Detail:        detail,
		RequestId:     requestId,
		CorrelationId: correlationId,
		Timestamp:     time.Now().UTC(),
	}
}

// FromError converts any call error into a local failure envelope.
func FromError[T any](requestId, correlationId string, err error) *Response[T] {
	return Failure[T](requestId, correlationId, err.Error(), fmt.Sprintf("%T", err))
}

func NoRemoteUrl[T any](requestId, correlationId string) *Response[T] {
	return Failure[T](requestId, correlationId, MessageNoRemoteUrl, "")
}
