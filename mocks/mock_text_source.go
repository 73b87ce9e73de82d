package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTextSource is a mock implementation of port.TextSource.
type MockTextSource struct {
	mock.Mock
}

func (m *MockTextSource) ExtractText(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}
