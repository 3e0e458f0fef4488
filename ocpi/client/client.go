package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

type Request struct {
	Method  string
	Url     string
	Header  http.Header
	Body    []byte
	Timeout time.Duration
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Runtime    time.Duration
}

// Executor performs one HTTP round trip. Non-2xx statuses are returned as responses, not errors.
type Executor interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

type ExecutorFunc func(ctx context.Context, req *Request) (*Response, error)

func (f ExecutorFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

type Client struct {
	client  *http.Client
	token   string
	timeout time.Duration
}

type Option func(*Client)

// WithTimeout sets the request timeout used when a request carries none.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.client.Transport = rt
		}
	}
}

func New(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		timeout: defaultTimeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader = http.NoBody
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.Url, body)
	if err != nil {
		return nil, &Error{Method: r.Method, Url: r.Url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Token "+c.token)
	for key, values := range r.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Method: r.Method, Url: r.Url, Err: fmt.Errorf("sending request: %w", err)}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: r.Method, Url: r.Url, Err: fmt.Errorf("reading response body: %w", err)}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Runtime:    time.Since(start),
	}, nil
}
