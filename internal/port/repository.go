package port

import (
	"context"

	"github.com/google/uuid"

	"hilyte/internal/domain"
)

// DivisionRepository defines the contract for the CSI division taxonomy table.
type DivisionRepository interface {
	Create(ctx context.Context, div *domain.Division) error
	GetByCode(ctx context.Context, code string) (*domain.Division, error)
	ListActive(ctx context.Context) ([]domain.Division, error)
	Upsert(ctx context.Context, divs []domain.Division) (int, error)
}

// RunRepository defines the contract for extraction run persistence.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ExtractionRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error)
	Finish(ctx context.Context, id uuid.UUID, status domain.RunStatus, itemCount int, runErr string) error
	SaveItems(ctx context.Context, items []domain.StoredItem) error
	ListItems(ctx context.Context, runID uuid.UUID) ([]domain.StoredItem, error)
}
