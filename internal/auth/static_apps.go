package auth

import (
	"context"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/port"
)

// StaticAppRepository serves the apps declared in configuration.
type StaticAppRepository struct {
	apps []domain.SocialApp
}

// NewStaticAppRepository converts the configured apps. Later entries with the
// same provider id replace earlier ones.
func NewStaticAppRepository(cfgs []config.SocialAppConfig) *StaticAppRepository {
	r := &StaticAppRepository{}
	index := make(map[string]int)
	for _, c := range cfgs {
		app := domain.SocialApp{
			ID:         c.ProviderID,
			Provider:   c.Provider,
			ProviderID: c.ProviderID,
			Name:       c.Name,
			ClientID:   c.ClientID,
			Secret:     c.Secret,
			Key:        c.Key,
			Settings:   c.Settings,
		}
		if app.ID == "" {
			app.ID = app.Provider
		}
		if i, ok := index[app.InstanceID()]; ok {
			r.apps[i] = app
			continue
		}
		index[app.InstanceID()] = len(r.apps)
		r.apps = append(r.apps, app)
	}
	return r
}

func (r *StaticAppRepository) GetByProvider(_ context.Context, providerID string) (*domain.SocialApp, error) {
	for i := range r.apps {
		if r.apps[i].InstanceID() == providerID {
			app := r.apps[i]
			return &app, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *StaticAppRepository) List(_ context.Context) ([]domain.SocialApp, error) {
	out := make([]domain.SocialApp, len(r.apps))
	copy(out, r.apps)
	return out, nil
}

var _ port.SocialAppRepository = (*StaticAppRepository)(nil)
