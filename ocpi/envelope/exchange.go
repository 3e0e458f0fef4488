package envelope

import (
	"context"
	"emsp/ocpi/client"
	"emsp/ocpi/observer"
	"net/http"
	"time"
)

// Exchange sends one request with the request and correlation id headers set,
// reports it to the observers and parses the answer. The error is a transport
// error from the executor or a ProtocolError from parsing.
func Exchange[T any](ctx context.Context, executor client.Executor, observers *observer.List, req *client.Request, requestId, correlationId string) (*Response[T], error) {
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("X-Request-ID", requestId)
	req.Header.Set("X-Correlation-ID", correlationId)

	observers.Request(&observer.RequestEvent{
		Method:        req.Method,
		Url:           req.Url,
		RequestId:     requestId,
		CorrelationId: correlationId,
		Body:          req.Body,
		Time:          time.Now().UTC(),
	})
	resp, err := executor.Do(ctx, req)
	event := &observer.ResponseEvent{
		Method:        req.Method,
		Url:           req.Url,
		RequestId:     requestId,
		CorrelationId: correlationId,
		Err:           err,
	}
	if resp != nil {
		event.StatusCode = resp.StatusCode
		event.Body = resp.Body
		event.Runtime = resp.Runtime
	}
	observers.Response(event)
	if err != nil {
		return nil, err
	}
	return Parse[T](resp, requestId, correlationId)
}
