package oidc

import (
	"context"
	"errors"

	"socialid/internal/auth"
	"socialid/internal/domain"
	"socialid/internal/port"
)

// Kind is the provider kind of generic OpenID Connect apps.
const Kind = "openid_connect"

// Provider authenticates against any OpenID Connect issuer. The issuer is the
// app's server_url setting.
type Provider struct {
	auth.Base
	verifier *Verifier
}

// New creates a provider for app.
func New(app *domain.SocialApp, opts ...Option) (*Provider, error) {
	issuer := app.Setting("server_url", "")
	if issuer == "" {
		return nil, errors.New("openid_connect app needs a server_url setting")
	}
	return &Provider{
		Base:     auth.NewBase(app, app.InstanceID()),
		verifier: NewVerifier(issuer, app.ClientID, opts...),
	}, nil
}

// Factory returns an auth.Factory building providers with opts.
func Factory(opts ...Option) auth.Factory {
	return func(app *domain.SocialApp) (port.Provider, error) {
		return New(app, opts...)
	}
}

func (p *Provider) SupportsTokenAuthentication() bool { return true }

func (p *Provider) VerifyToken(ctx context.Context, token domain.ProviderToken) (*domain.SocialLogin, error) {
	var (
		claims *Claims
		err    error
	)
	if token.IDToken != "" {
		claims, err = p.verifier.VerifyIDToken(ctx, token.IDToken)
	} else {
		claims, err = p.verifier.UserInfo(ctx, token.AccessToken)
	}
	if err != nil {
		return nil, err
	}
	return p.Login(claims.Identity()), nil
}

var _ port.Provider = (*Provider)(nil)
