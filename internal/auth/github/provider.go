package github

import (
	"context"
	"errors"

	"socialid/internal/auth"
	"socialid/internal/domain"
	"socialid/internal/port"
)

// Kind is the provider kind of GitHub apps.
const Kind = "github"

// Provider is GitHub. It only supports the redirect flow.
type Provider struct {
	auth.Base
}

// NewProvider creates a GitHub provider for app.
func NewProvider(app *domain.SocialApp) *Provider {
	return &Provider{Base: auth.NewBase(app, "GitHub")}
}

// Factory builds GitHub providers.
func Factory(app *domain.SocialApp) (port.Provider, error) {
	return NewProvider(app), nil
}

func (p *Provider) SupportsTokenAuthentication() bool { return false }

func (p *Provider) VerifyToken(context.Context, domain.ProviderToken) (*domain.SocialLogin, error) {
	return nil, errors.New("github: token authentication is not supported")
}

var _ port.Provider = (*Provider)(nil)
