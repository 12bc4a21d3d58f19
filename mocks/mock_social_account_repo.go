package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"socialid/internal/domain"
)

// MockSocialAccountRepo is a mock implementation of port.SocialAccountRepository.
type MockSocialAccountRepo struct {
	mock.Mock
}

func (m *MockSocialAccountRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SocialAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepo) GetByProviderUID(ctx context.Context, provider, uid string) (*domain.SocialAccount, error) {
	args := m.Called(ctx, provider, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountRepo) Create(ctx context.Context, account *domain.SocialAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockSocialAccountRepo) Update(ctx context.Context, account *domain.SocialAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockSocialAccountRepo) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	args := m.Called(ctx, userID, accountID)
	return args.Error(0)
}
