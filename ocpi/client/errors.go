package client

import (
	"context"
	"errors"
	"fmt"
)

// Error is a transport failure: the request never produced an HTTP response.
type Error struct {
	Method string
	Url    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ocpi client: %s %s: %v", e.Method, e.Url, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func (e *Error) Canceled() bool {
	return errors.Is(e.Err, context.Canceled)
}
