package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"socialid/internal/domain"
	"socialid/internal/port"
)

// MockProvider is a mock implementation of port.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProvider) App() *domain.SocialApp {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.SocialApp)
}

func (m *MockProvider) SupportsTokenAuthentication() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockProvider) VerifyToken(ctx context.Context, token domain.ProviderToken) (*domain.SocialLogin, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialLogin), args.Error(1)
}

// MockProviderRegistry is a mock implementation of port.ProviderRegistry.
type MockProviderRegistry struct {
	mock.Mock
}

func (m *MockProviderRegistry) Get(ctx context.Context, providerID string) (port.Provider, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Provider), args.Error(1)
}

func (m *MockProviderRegistry) List(ctx context.Context) ([]port.Provider, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.Provider), args.Error(1)
}
