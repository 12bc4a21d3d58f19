package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"socialid/internal/domain"
	"socialid/internal/port"
)

// Factory builds a provider for one registered app.
type Factory func(app *domain.SocialApp) (port.Provider, error)

// Registry resolves provider ids to providers, building them from the
// registered apps with the factory of the app's provider kind. Built providers
// are cached for ttl so app changes propagate.
type Registry struct {
	apps port.SocialAppRepository

	mu        sync.RWMutex
	factories map[string]Factory
	cache     *gocache.Cache
}

// NewRegistry creates a registry over apps.
func NewRegistry(apps port.SocialAppRepository, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Registry{
		apps:      apps,
		factories: make(map[string]Factory),
		cache:     gocache.New(ttl, 2*ttl),
	}
}

// RegisterFactory registers the factory for a provider kind.
func (r *Registry) RegisterFactory(kind string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Get returns the provider with the given id.
func (r *Registry) Get(ctx context.Context, providerID string) (port.Provider, error) {
	if p, ok := r.cache.Get(providerID); ok {
		return p.(port.Provider), nil
	}

	app, err := r.apps.GetByProvider(ctx, providerID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry.Get: %w", err)
	}
	p, err := r.build(app)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(providerID, p)
	return p, nil
}

// List returns every provider with a registered app.
func (r *Registry) List(ctx context.Context) ([]port.Provider, error) {
	apps, err := r.apps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry.List: %w", err)
	}
	out := make([]port.Provider, 0, len(apps))
	for i := range apps {
		p, err := r.Get(ctx, apps[i].InstanceID())
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Invalidate drops the cached provider for providerID.
func (r *Registry) Invalidate(providerID string) {
	r.cache.Delete(providerID)
}

func (r *Registry) build(app *domain.SocialApp) (port.Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[app.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: no factory for provider kind %q", app.Provider)
	}
	p, err := factory(app)
	if err != nil {
		return nil, fmt.Errorf("registry: building provider %s: %w", app.InstanceID(), err)
	}
	return p, nil
}

// Compile-time checks.
var (
	_ port.ProviderRegistry = (*Registry)(nil)
	_ port.ProviderCache    = (*Registry)(nil)
)
