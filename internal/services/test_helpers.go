package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockReadinessChecker is a mock for the ReadinessChecker interface
type MockReadinessChecker struct {
	mock.Mock
}

func (m *MockReadinessChecker) Name() string {
	return m.Called().String(0)
}

func (m *MockReadinessChecker) Ready(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
