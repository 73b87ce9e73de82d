package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"itemize/internal/domain"
	"itemize/internal/port"
)

// MockUOMResolver is a mock implementation of port.UOMResolver.
type MockUOMResolver struct {
	mock.Mock
}

func (m *MockUOMResolver) ResolveBatch(ctx context.Context, reqs []port.LookupRequest, supplierName string) (map[int]domain.LookupResult, error) {
	args := m.Called(ctx, reqs, supplierName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]domain.LookupResult), args.Error(1)
}
