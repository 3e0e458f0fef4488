package envelope

import (
	"bytes"
	"emsp/ocpi/client"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Wire is the body every OCPI party answers with.
type Wire[T any] struct {
	Data          T      `json:"data,omitempty"`
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message,omitempty"`
	Timestamp     string `json:"timestamp"`
}

func NewWire[T any](data T, statusCode int, message string) *Wire[T] {
	return &Wire[T]{
		Data:          data,
		StatusCode:    statusCode,
		StatusMessage: message,
		Timestamp:     time.Now().UTC().Format(timeLayout),
	}
}

// ProtocolError reports a body that does not follow the OCPI response format.
type ProtocolError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed ocpi response (http %d): %v", e.StatusCode, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Decode reads an OCPI body into the wire shape. Missing status_code is a protocol error.
func Decode[T any](statusCode int, body []byte) (*Wire[T], error) {
	var wire struct {
		Data          json.RawMessage `json:"data"`
		StatusCode    *int            `json:"status_code"`
		StatusMessage string          `json:"status_message"`
		Timestamp     string          `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ProtocolError{StatusCode: statusCode, Body: body, Err: err}
	}
	if wire.StatusCode == nil {
		return nil, &ProtocolError{StatusCode: statusCode, Body: body, Err: fmt.Errorf("missing status_code")}
	}
	out := &Wire[T]{
		StatusCode:    *wire.StatusCode,
		StatusMessage: wire.StatusMessage,
		Timestamp:     wire.Timestamp,
	}
	data := bytes.TrimSpace(wire.Data)
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if err := json.Unmarshal(data, &out.Data); err != nil {
			return nil, &ProtocolError{StatusCode: statusCode, Body: body, Err: fmt.Errorf("data: %w", err)}
		}
	}
	return out, nil
}

// Parse turns a raw HTTP response into an envelope. A non-2xx response without an
// OCPI body is still an envelope; a 2xx response with a broken body is a ProtocolError.
func Parse[T any](resp *client.Response, requestId, correlationId string) (*Response[T], error) {
	result := &Response[T]{
		StatusCode:    resp.StatusCode,
		RequestId:     requestId,
		CorrelationId: correlationId,
		Timestamp:     time.Now().UTC(),
		Runtime:       resp.Runtime,
	}
	if id := resp.Header.Get("X-Correlation-ID"); id != "" && correlationId == "" {
		result.CorrelationId = id
	}
	success := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices

	wire, err := Decode[T](resp.StatusCode, resp.Body)
	if err != nil {
		if success {
			return nil, err
		}
		result.Message = http.StatusText(resp.StatusCode)
		result.Detail = string(resp.Body)
		return result, nil
	}

	result.Data = wire.Data
	result.OcpiStatusCode = wire.StatusCode
	result.Message = wire.StatusMessage
	if ts, err := time.Parse(time.RFC3339, wire.Timestamp); err == nil {
		result.Timestamp = ts
	}
	if !success && result.Message == "" {
		result.Message = http.StatusText(resp.StatusCode)
	}
	return result, nil
}

func Write[T any](w http.ResponseWriter, httpStatus int, wire *Wire[T]) error {
	data, err := json.Marshal(wire)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, err = w.Write(data)
	return err
}
