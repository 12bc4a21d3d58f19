package port

import (
	"context"

	"socialid/internal/domain"
)

// Provider is a configured social identity provider.
type Provider interface {
	ID() string
	Name() string
	App() *domain.SocialApp
	SupportsTokenAuthentication() bool
	// VerifyToken checks a token obtained by a client SDK. Rejections are
	// reported as validator.ValidationError values.
	VerifyToken(ctx context.Context, token domain.ProviderToken) (*domain.SocialLogin, error)
}

// ProviderRegistry resolves provider ids to providers.
type ProviderRegistry interface {
	// Get returns domain.ErrProviderNotFound for unknown ids.
	Get(ctx context.Context, providerID string) (Provider, error)
	List(ctx context.Context) ([]Provider, error)
}

// ProviderCache drops built providers so app changes take effect.
type ProviderCache interface {
	Invalidate(providerID string)
}

// DisconnectGuard decides whether an account may be unlinked from its user.
type DisconnectGuard interface {
	ValidateDisconnect(ctx context.Context, account *domain.SocialAccount, accounts []domain.SocialAccount) error
}

// PendingLoginStore keeps social logins waiting for a signup form.
type PendingLoginStore interface {
	Save(ctx context.Context, login *domain.SocialLogin) (string, error)
	Get(ctx context.Context, key string) (*domain.SocialLogin, error)
	Delete(ctx context.Context, key string) error
}
