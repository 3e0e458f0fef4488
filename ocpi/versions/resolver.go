package versions

import (
	"context"
	"emsp/internal"
	"fmt"
)

type Resolved struct {
	Version string
	Url     string
}

type Resolver struct {
	registry *Registry
	logger   internal.LogHandler
}

func NewResolver(registry *Registry, logger internal.LogHandler) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   internal.OrDiscard(logger),
	}
}

func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve finds the url of a module endpoint. ok is false when the remote party does
// not expose the module in that role or advertises no versions at all; err is only
// set when discovery itself failed.
func (r *Resolver) Resolve(ctx context.Context, version string, module ModuleId, role Role) (Resolved, bool, error) {
	selected, err := r.registry.SelectVersion(ctx, version)
	if err != nil {
		return Resolved{}, false, err
	}
	if selected == "" {
		return Resolved{}, false, nil
	}
	if err = r.registry.EnsureVersionDetail(ctx, selected); err != nil {
		return Resolved{}, false, err
	}
	detail, _ := r.registry.Detail(selected)
	url, ok := detail.Endpoint(module, role)
	if !ok {
		r.logger.FeatureEvent(featureName, selected, fmt.Sprintf("no %s endpoint for %s", role, module))
		return Resolved{Version: selected}, false, nil
	}
	return Resolved{Version: selected, Url: url}, true, nil
}
