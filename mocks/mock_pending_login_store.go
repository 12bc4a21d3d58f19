package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"socialid/internal/domain"
)

// MockPendingLoginStore is a mock implementation of port.PendingLoginStore.
type MockPendingLoginStore struct {
	mock.Mock
}

func (m *MockPendingLoginStore) Save(ctx context.Context, login *domain.SocialLogin) (string, error) {
	args := m.Called(ctx, login)
	return args.String(0), args.Error(1)
}

func (m *MockPendingLoginStore) Get(ctx context.Context, key string) (*domain.SocialLogin, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialLogin), args.Error(1)
}

func (m *MockPendingLoginStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
