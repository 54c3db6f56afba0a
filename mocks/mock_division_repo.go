package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"hilyte/internal/domain"
)

// MockDivisionRepo is a mock implementation of port.DivisionRepository.
type MockDivisionRepo struct {
	mock.Mock
}

func (m *MockDivisionRepo) Create(ctx context.Context, div *domain.Division) error {
	args := m.Called(ctx, div)
	return args.Error(0)
}

func (m *MockDivisionRepo) GetByCode(ctx context.Context, code string) (*domain.Division, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Division), args.Error(1)
}

func (m *MockDivisionRepo) ListActive(ctx context.Context) ([]domain.Division, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Division), args.Error(1)
}

func (m *MockDivisionRepo) Upsert(ctx context.Context, divs []domain.Division) (int, error) {
	args := m.Called(ctx, divs)
	return args.Int(0), args.Error(1)
}
