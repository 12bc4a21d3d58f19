package port

import (
	"context"

	"github.com/google/uuid"

	"socialid/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	// CreateWithAccount stores a new user and its first linked account atomically.
	CreateWithAccount(ctx context.Context, user *domain.User, account *domain.SocialAccount) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// SocialAccountRepository defines the contract for social account persistence.
type SocialAccountRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SocialAccount, error)
	GetByProviderUID(ctx context.Context, provider, uid string) (*domain.SocialAccount, error)
	Create(ctx context.Context, account *domain.SocialAccount) error
	Update(ctx context.Context, account *domain.SocialAccount) error
	Delete(ctx context.Context, userID, accountID uuid.UUID) error
}

// SocialAppRepository gives access to the registered provider applications.
type SocialAppRepository interface {
	GetByProvider(ctx context.Context, providerID string) (*domain.SocialApp, error)
	List(ctx context.Context) ([]domain.SocialApp, error)
}
