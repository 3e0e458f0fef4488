// Package options normalises the optional per-call settings once at call entry.
package options

import (
	"time"

	"github.com/google/uuid"
)

type Call struct {
	Version       string
	CommandId     string
	RequestId     string
	CorrelationId string
	Timeout       time.Duration
}

type Option func(*Call)

// WithVersion pins the OCPI version instead of the negotiated one.
func WithVersion(version string) Option {
	return func(c *Call) {
		c.Version = version
	}
}

func WithCommandId(id string) Option {
	return func(c *Call) {
		c.CommandId = id
	}
}

func WithRequestId(id string) Option {
	return func(c *Call) {
		c.RequestId = id
	}
}

func WithCorrelationId(id string) Option {
	return func(c *Call) {
		c.CorrelationId = id
	}
}

// WithTimeout overrides the client-wide request timeout for one call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Call) {
		c.Timeout = timeout
	}
}

// Normalize applies the options over the defaults and fills every missing id with a fresh uuid.
func Normalize(defaults Call, opts ...Option) Call {
	call := defaults
	for _, opt := range opts {
		if opt != nil {
			opt(&call)
		}
	}
	if call.CommandId == "" {
		call.CommandId = uuid.NewString()
	}
	if call.RequestId == "" {
		call.RequestId = uuid.NewString()
	}
	if call.CorrelationId == "" {
		call.CorrelationId = uuid.NewString()
	}
	return call
}
