package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"hilyte/internal/domain"
	"hilyte/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.ExtractionRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extraction_runs (id, drawing_id, status, page_count, item_count, error, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.DrawingID, run.Status, run.PageCount, run.ItemCount, run.Error, run.StartedAt)
	return err
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	var run domain.ExtractionRun
	err := r.db.GetContext(ctx, &run,
		`SELECT id, drawing_id, status, page_count, item_count, error, started_at, finished_at
		 FROM extraction_runs
		 WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) Finish(ctx context.Context, id uuid.UUID, status domain.RunStatus, itemCount int, runErr string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE extraction_runs
		 SET status = $2, item_count = $3, error = $4, finished_at = $5
		 WHERE id = $1`,
		id, status, itemCount, runErr, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

func (r *runRepo) SaveItems(ctx context.Context, items []domain.StoredItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO extracted_items
		   (id, run_id, page, name, category, division_code, callout_id,
		    confidence, needs_review, region_x, region_y, region_w, region_h, created_at)
		 VALUES
		   (:id, :run_id, :page, :name, :category, :division_code, :callout_id,
		    :confidence, :needs_review, :region_x, :region_y, :region_w, :region_h, :created_at)`,
		items)
	return err
}

func (r *runRepo) ListItems(ctx context.Context, runID uuid.UUID) ([]domain.StoredItem, error) {
	var items []domain.StoredItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT id, run_id, page, name, category, division_code, callout_id,
		        confidence, needs_review, region_x, region_y, region_w, region_h, created_at
		 FROM extracted_items
		 WHERE run_id = $1
		 ORDER BY page, region_y, region_x`, runID)
	if err != nil {
		return nil, err
	}
	return items, nil
}
