package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"socialid/internal/domain"
)

// MockDisconnectGuard is a mock implementation of port.DisconnectGuard.
type MockDisconnectGuard struct {
	mock.Mock
}

func (m *MockDisconnectGuard) ValidateDisconnect(ctx context.Context, account *domain.SocialAccount, accounts []domain.SocialAccount) error {
	args := m.Called(ctx, account, accounts)
	return args.Error(0)
}
