package versions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"emsp/ocpi/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCpo struct {
	server         *httptest.Server
	versionsCalls  atomic.Int32
	detailCalls    sync.Map
	versionsBody   func(base string) string
	detailsBody    map[string]string
	versionsStatus int
}

func newFakeCpo(t *testing.T) *fakeCpo {
	f := &fakeCpo{
		versionsStatus: http.StatusOK,
		versionsBody: func(base string) string {
			return fmt.Sprintf(`{"data":[{"version":"2.1.1","url":"%[1]s/2.1.1"},{"version":"2.2","url":"%[1]s/2.2"}],"status_code":1000,"timestamp":"2024-05-01T10:00:00Z"}`, base)
		},
		detailsBody: map[string]string{
			"2.1.1": `{"data":{"version":"2.1.1","endpoints":[{"identifier":"commands","url":"https://cpo.test/211/commands"}]},"status_code":1000}`,
			"2.2": `{"data":{"version":"2.2","endpoints":[
				{"identifier":"commands","role":"RECEIVER","url":"https://cpo.test/22/commands"},
				{"identifier":"locations","role":"SENDER","url":"https://cpo.test/22/locations"},
				{"identifier":"locations","role":"SENDER","url":"https://cpo.test/22/duplicate"}
			]},"status_code":1000}`,
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/versions", func(w http.ResponseWriter, r *http.Request) {
		f.versionsCalls.Add(1)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.WriteHeader(f.versionsStatus)
		_, _ = w.Write([]byte(f.versionsBody(f.server.URL)))
	})
	for version := range f.detailsBody {
		version := version
		mux.HandleFunc("/"+version, func(w http.ResponseWriter, _ *http.Request) {
			counter, _ := f.detailCalls.LoadOrStore(version, new(atomic.Int32))
			counter.(*atomic.Int32).Add(1)
			_, _ = w.Write([]byte(f.detailsBody[version]))
		})
	}
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCpo) detailCount(version string) int32 {
	counter, ok := f.detailCalls.Load(version)
	if !ok {
		return 0
	}
	return counter.(*atomic.Int32).Load()
}

func (f *fakeCpo) registry() *Registry {
	return NewRegistry(client.New("token"), f.server.URL+"/versions", nil, nil)
}

func TestSelectVersion_PicksHighestAndCaches(t *testing.T) {
	cpo := newFakeCpo(t)
	registry := cpo.registry()
	ctx := context.Background()

	selected, err := registry.SelectVersion(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2.2", selected)
	assert.Equal(t, "2.2", registry.Selected())
	assert.EqualValues(t, 1, cpo.versionsCalls.Load())
	assert.EqualValues(t, 1, cpo.detailCount("2.2"))

	selected, err = registry.SelectVersion(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2.2", selected)
	assert.EqualValues(t, 1, cpo.versionsCalls.Load())
	assert.EqualValues(t, 1, cpo.detailCount("2.2"))
	assert.EqualValues(t, 0, cpo.detailCount("2.1.1"))
}

func TestSelectVersion_ExplicitWins(t *testing.T) {
	cpo := newFakeCpo(t)
	registry := cpo.registry()

	selected, err := registry.SelectVersion(context.Background(), "2.1.1")
	require.NoError(t, err)
	assert.Equal(t, "2.1.1", selected)
	assert.EqualValues(t, 0, cpo.versionsCalls.Load())
	assert.Equal(t, "", registry.Selected())
}

func TestSelectVersion_NoVersions(t *testing.T) {
	cpo := newFakeCpo(t)
	cpo.versionsBody = func(string) string { return `{"data":[],"status_code":1000}` }
	registry := cpo.registry()

	selected, err := registry.SelectVersion(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", selected)
}

func TestEnsureVersions_DiscoveryErrors(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
	}{
		"malformed json":    {http.StatusOK, `{"data":[`},
		"incomplete entry":  {http.StatusOK, `{"data":[{"version":"2.2"}],"status_code":1000}`},
		"ocpi error status": {http.StatusOK, `{"status_code":3000,"status_message":"down"}`},
		"http error":        {http.StatusInternalServerError, `oops`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cpo := newFakeCpo(t)
			cpo.versionsStatus = tc.status
			cpo.versionsBody = func(string) string { return tc.body }

			err := cpo.registry().EnsureVersions(context.Background())

			var discoveryErr *DiscoveryError
			require.True(t, errors.As(err, &discoveryErr), "got %v", err)
		})
	}
}

func TestEnsureVersions_Unreachable(t *testing.T) {
	registry := NewRegistry(client.New("token"), "http://127.0.0.1:1/versions", nil, nil)

	err := registry.EnsureVersions(context.Background())

	var discoveryErr *DiscoveryError
	require.True(t, errors.As(err, &discoveryErr))
	var transportErr *client.Error
	assert.True(t, errors.As(err, &transportErr))
}

func TestEnsureVersions_FailureIsNotCached(t *testing.T) {
	cpo := newFakeCpo(t)
	good := cpo.versionsBody
	cpo.versionsBody = func(string) string { return `broken` }
	registry := cpo.registry()

	require.Error(t, registry.EnsureVersions(context.Background()))

	cpo.versionsBody = good
	require.NoError(t, registry.EnsureVersions(context.Background()))
	assert.Len(t, registry.Versions(), 2)
	assert.EqualValues(t, 2, cpo.versionsCalls.Load())
}

func TestEnsureVersionDetail_UnknownVersion(t *testing.T) {
	cpo := newFakeCpo(t)

	err := cpo.registry().EnsureVersionDetail(context.Background(), "3.0")

	var discoveryErr *DiscoveryError
	require.True(t, errors.As(err, &discoveryErr))
}

func TestEnsureVersionDetail_DropsDuplicatePairs(t *testing.T) {
	cpo := newFakeCpo(t)
	registry := cpo.registry()

	require.NoError(t, registry.EnsureVersionDetail(context.Background(), "2.2"))

	detail, ok := registry.Detail("2.2")
	require.True(t, ok)
	assert.Len(t, detail.Endpoints, 2)
	url, ok := detail.Endpoint(Locations, Sender)
	require.True(t, ok)
	assert.Equal(t, "https://cpo.test/22/locations", url)
}

func TestRegistry_ConcurrentSelection(t *testing.T) {
	cpo := newFakeCpo(t)
	registry := cpo.registry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			selected, err := registry.SelectVersion(context.Background(), "")
			assert.NoError(t, err)
			assert.Equal(t, "2.2", selected)
		}()
	}
	wg.Wait()

	before := cpo.versionsCalls.Load()
	_, err := registry.SelectVersion(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, before, cpo.versionsCalls.Load())
}

func TestRegistry_Reset(t *testing.T) {
	cpo := newFakeCpo(t)
	registry := cpo.registry()
	_, err := registry.SelectVersion(context.Background(), "")
	require.NoError(t, err)

	registry.Reset()
	assert.Equal(t, "", registry.Selected())
	assert.Empty(t, registry.Versions())

	_, err = registry.SelectVersion(context.Background(), "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, cpo.versionsCalls.Load())
}

func TestRegistry_UsesExecutor(t *testing.T) {
	var urls []string
	executor := client.ExecutorFunc(func(_ context.Context, req *client.Request) (*client.Response, error) {
		urls = append(urls, req.Url)
		if req.Url == "https://cpo.test/versions" {
			return &client.Response{StatusCode: 200, Body: []byte(`{"data":[{"version":"2.2","url":"https://cpo.test/2.2"}],"status_code":1000}`)}, nil
		}
		return &client.Response{StatusCode: 200, Body: []byte(`{"data":{"version":"2.2","endpoints":[]},"status_code":1000}`)}, nil
	})
	registry := NewRegistry(executor, "https://cpo.test/versions", nil, nil)

	selected, err := registry.SelectVersion(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2.2", selected)
	assert.Equal(t, []string{"https://cpo.test/versions", "https://cpo.test/2.2"}, urls)
}
