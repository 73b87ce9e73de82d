package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"itemize/internal/port"
)

// MockEscalationNotifier is a mock implementation of port.EscalationNotifier.
type MockEscalationNotifier struct {
	mock.Mock
}

func (m *MockEscalationNotifier) SendEscalationDigest(ctx context.Context, toEmail string, summaries []port.EscalationSummary) error {
	args := m.Called(ctx, toEmail, summaries)
	return args.Error(0)
}
