package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hilyte/internal/port"
)

// MockOCRAdapter is a mock implementation of port.OCRAdapter.
type MockOCRAdapter struct {
	mock.Mock
}

func (m *MockOCRAdapter) Extract(ctx context.Context, imageBytes []byte) (*port.OCRResult, error) {
	args := m.Called(ctx, imageBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.OCRResult), args.Error(1)
}
