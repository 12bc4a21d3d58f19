package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockProviderCache is a mock implementation of port.ProviderCache.
type MockProviderCache struct {
	mock.Mock
}

func (m *MockProviderCache) Invalidate(providerID string) {
	m.Called(providerID)
}
