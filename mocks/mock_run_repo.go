package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"hilyte/internal/domain"
)

// MockRunRepo is a mock implementation of port.RunRepository.
type MockRunRepo struct {
	mock.Mock
}

func (m *MockRunRepo) Create(ctx context.Context, run *domain.ExtractionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionRun), args.Error(1)
}

func (m *MockRunRepo) Finish(ctx context.Context, id uuid.UUID, status domain.RunStatus, itemCount int, runErr string) error {
	args := m.Called(ctx, id, status, itemCount, runErr)
	return args.Error(0)
}

func (m *MockRunRepo) SaveItems(ctx context.Context, items []domain.StoredItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockRunRepo) ListItems(ctx context.Context, runID uuid.UUID) ([]domain.StoredItem, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StoredItem), args.Error(1)
}
