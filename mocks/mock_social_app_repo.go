package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"socialid/internal/domain"
)

// MockSocialAppRepo is a mock implementation of port.SocialAppRepository.
type MockSocialAppRepo struct {
	mock.Mock
}

func (m *MockSocialAppRepo) GetByProvider(ctx context.Context, providerID string) (*domain.SocialApp, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialApp), args.Error(1)
}

func (m *MockSocialAppRepo) List(ctx context.Context) ([]domain.SocialApp, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SocialApp), args.Error(1)
}
