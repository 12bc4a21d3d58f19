package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"socialid/internal/domain"
	"socialid/internal/service"
	"socialid/internal/validator"
)

// MockSocialAccountService is a mock implementation of service.SocialAccountService.
type MockSocialAccountService struct {
	mock.Mock
}

func (m *MockSocialAccountService) ProviderToken(ctx context.Context, user *domain.User, data validator.Data) (*service.SocialLoginOutput, error) {
	args := m.Called(ctx, user, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SocialLoginOutput), args.Error(1)
}

func (m *MockSocialAccountService) ProviderSignup(ctx context.Context, key string, data validator.Data) (*service.SocialLoginOutput, error) {
	args := m.Called(ctx, key, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SocialLoginOutput), args.Error(1)
}

func (m *MockSocialAccountService) ListAccounts(ctx context.Context, user *domain.User) ([]domain.SocialAccount, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountService) DisconnectAccount(ctx context.Context, user *domain.User, data validator.Data) ([]domain.SocialAccount, error) {
	args := m.Called(ctx, user, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SocialAccount), args.Error(1)
}

func (m *MockSocialAccountService) Providers(ctx context.Context) ([]domain.ProviderInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProviderInfo), args.Error(1)
}
