package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsHeadersAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"a":1}`, string(body))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status_code":1000}`))
	}))
	defer server.Close()

	c := New("secret")
	resp, err := c.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Url:    server.URL + "/commands/STOP_SESSION",
		Header: http.Header{"X-Request-ID": []string{"req-1"}},
		Body:   []byte(`{"a":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.JSONEq(t, `{"status_code":1000}`, string(resp.Body))
}

func TestClient_NonSuccessStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resp, err := New("secret").Do(context.Background(), &Request{Method: http.MethodGet, Url: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := New("secret", WithTimeout(time.Hour))
	_, err := c.Do(context.Background(), &Request{Method: http.MethodGet, Url: server.URL, Timeout: 50 * time.Millisecond})
	require.Error(t, err)

	var transportErr *Error
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, transportErr.Timeout())
}

func TestClient_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("secret").Do(ctx, &Request{Method: http.MethodGet, Url: "http://127.0.0.1:1"})
	require.Error(t, err)

	var transportErr *Error
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, transportErr.Canceled())
}
