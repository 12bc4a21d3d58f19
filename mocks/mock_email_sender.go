package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendAccountConnected(ctx context.Context, toEmail, toName, providerName string) error {
	args := m.Called(ctx, toEmail, toName, providerName)
	return args.Error(0)
}

func (m *MockEmailSender) SendAccountDisconnected(ctx context.Context, toEmail, toName, providerName string) error {
	args := m.Called(ctx, toEmail, toName, providerName)
	return args.Error(0)
}
