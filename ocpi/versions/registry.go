// Package versions discovers which OCPI versions and module endpoints a remote
// party exposes, caches the result and resolves module urls from it.
package versions

import (
	"context"
	"emsp/internal"
	"emsp/ocpi/client"
	"emsp/ocpi/envelope"
	"emsp/ocpi/observer"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

const featureName = "Versions"

type Registry struct {
	executor    client.Executor
	versionsUrl string
	logger      internal.LogHandler
	observers   *observer.List

	mu       sync.RWMutex
	versions map[string]Version
	details  map[string]*VersionDetail
	selected string
}

func NewRegistry(executor client.Executor, versionsUrl string, logger internal.LogHandler, observers *observer.List) *Registry {
	return &Registry{
		executor:    executor,
		versionsUrl: versionsUrl,
		logger:      internal.OrDiscard(logger),
		observers:   observers,
		versions:    make(map[string]Version),
		details:     make(map[string]*VersionDetail),
	}
}

// EnsureVersions fetches the versions list once; later calls are no-ops while it is cached.
func (r *Registry) EnsureVersions(ctx context.Context) error {
	r.mu.RLock()
	populated := len(r.versions) > 0
	r.mu.RUnlock()
	if populated {
		return nil
	}

	list, err := fetch[[]Version](ctx, r, r.versionsUrl)
	if err != nil {
		return err
	}
	for _, v := range list {
		if v.Version == "" || v.Url == "" {
			return &DiscoveryError{Url: r.versionsUrl, Err: fmt.Errorf("incomplete version entry %+v", v)}
		}
	}

	r.mu.Lock()
	for _, v := range list {
		r.versions[v.Version] = v
	}
	r.mu.Unlock()
	r.logger.FeatureEvent(featureName, "", fmt.Sprintf("remote party advertises %d version(s)", len(list)))
	return nil
}

// EnsureVersionDetail fetches and caches the endpoint list of one version.
func (r *Registry) EnsureVersionDetail(ctx context.Context, version string) error {
	r.mu.RLock()
	_, cached := r.details[version]
	r.mu.RUnlock()
	if cached {
		return nil
	}

	if err := r.EnsureVersions(ctx); err != nil {
		return err
	}
	r.mu.RLock()
	v, known := r.versions[version]
	r.mu.RUnlock()
	if !known {
		return &DiscoveryError{Url: r.versionsUrl, Err: fmt.Errorf("version %s is not advertised", version)}
	}

	detail, err := fetch[VersionDetail](ctx, r, v.Url)
	if err != nil {
		return err
	}
	for _, e := range detail.Endpoints {
		if e.Identifier == "" || e.Url == "" {
			return &DiscoveryError{Url: v.Url, Err: fmt.Errorf("incomplete endpoint %+v", e)}
		}
	}
	if detail.Version == "" {
		detail.Version = version
	}
	detail.normalize()

	r.mu.Lock()
	r.details[version] = &detail
	r.mu.Unlock()
	r.logger.FeatureEvent(featureName, version, fmt.Sprintf("%d endpoint(s) cached", len(detail.Endpoints)))
	return nil
}

// SelectVersion returns explicit when given, else the cached selection, else negotiates
// the highest advertised version and caches it. An empty result with a nil error means
// the remote party advertises no versions.
func (r *Registry) SelectVersion(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	r.mu.RLock()
	selected := r.selected
	r.mu.RUnlock()
	if selected != "" {
		return selected, nil
	}

	if err := r.EnsureVersions(ctx); err != nil {
		return "", err
	}
	highest := Highest(r.Versions())
	if highest == "" {
		r.logger.Warn("version negotiation: remote party advertises no versions")
		return "", nil
	}
	if err := r.EnsureVersionDetail(ctx, highest); err != nil {
		return "", err
	}

	r.mu.Lock()
	if r.selected == "" {
		r.selected = highest
	}
	selected = r.selected
	r.mu.Unlock()
	r.logger.FeatureEvent(featureName, selected, "version selected")
	return selected, nil
}

func (r *Registry) Selected() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selected
}

// Versions returns the cached versions in ascending order.
func (r *Registry) Versions() []Version {
	r.mu.RLock()
	list := make([]Version, 0, len(r.versions))
	for _, v := range r.versions {
		list = append(list, v)
	}
	r.mu.RUnlock()
	sortVersions(list)
	return list
}

func (r *Registry) Detail(version string) (*VersionDetail, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.details[version]
	return d, ok
}

// Reset drops everything cached so the next call negotiates again.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.versions = make(map[string]Version)
	r.details = make(map[string]*VersionDetail)
	r.selected = ""
	r.mu.Unlock()
	r.logger.FeatureEvent(featureName, "", "cache cleared")
}

func fetch[T any](ctx context.Context, r *Registry, url string) (T, error) {
	var zero T
	req := &client.Request{Method: http.MethodGet, Url: url}
	result, err := envelope.Exchange[T](ctx, r.executor, r.observers, req, uuid.NewString(), uuid.NewString())
	if err != nil {
		return zero, &DiscoveryError{Url: url, Err: err}
	}
	if !result.IsSuccess() {
		return zero, &DiscoveryError{Url: url, Err: fmt.Errorf("status %d/%d: %s", result.StatusCode, result.OcpiStatusCode, result.Message)}
	}
	return result.Data, nil
}
