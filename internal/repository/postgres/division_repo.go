package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"hilyte/internal/domain"
	"hilyte/internal/port"
)

type divisionRepo struct {
	db *sqlx.DB
}

// NewDivisionRepo creates a new PostgreSQL-backed DivisionRepository.
func NewDivisionRepo(db *sqlx.DB) port.DivisionRepository {
	return &divisionRepo{db: db}
}

func (r *divisionRepo) Create(ctx context.Context, div *domain.Division) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO construction_divisions (code, name, description, color, sort_order, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		div.Code, div.Name, div.Description, div.Color, div.SortOrder, div.IsActive,
	).Scan(&div.ID)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return domain.ErrDuplicateDivisionCode
	}
	return err
}

func (r *divisionRepo) GetByCode(ctx context.Context, code string) (*domain.Division, error) {
	var div domain.Division
	err := r.db.GetContext(ctx, &div,
		`SELECT id, code, name, description, color, sort_order, is_active
		 FROM construction_divisions
		 WHERE code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDivisionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &div, nil
}

func (r *divisionRepo) ListActive(ctx context.Context) ([]domain.Division, error) {
	var divs []domain.Division
	err := r.db.SelectContext(ctx, &divs,
		`SELECT id, code, name, description, color, sort_order, is_active
		 FROM construction_divisions
		 WHERE is_active = TRUE
		 ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	return divs, nil
}

func (r *divisionRepo) Upsert(ctx context.Context, divs []domain.Division) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	count := 0
	for _, div := range divs {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO construction_divisions (code, name, description, color, sort_order, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (code) DO UPDATE
			 SET name = EXCLUDED.name,
			     description = EXCLUDED.description,
			     color = EXCLUDED.color,
			     sort_order = EXCLUDED.sort_order,
			     is_active = EXCLUDED.is_active`,
			div.Code, div.Name, div.Description, div.Color, div.SortOrder, div.IsActive)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}
