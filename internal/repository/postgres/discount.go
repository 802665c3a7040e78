package postgres

import (
	"context"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/repository"
)

type discountRepository struct {
	db DBTX
}

func NewDiscountRepository(db DBTX) repository.DiscountRepository {
	return &discountRepository{db: db}
}

func (r *discountRepository) Create(ctx context.Context, d *domain.Discount) error {
	query := `INSERT INTO discounts (title_id, percentage_bp, start_date, end_date) VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, d.TitleID, d.PercentageBP, d.StartDate, d.EndDate).Scan(&d.ID)
	return mapError("create discount", err)
}

func (r *discountRepository) Update(ctx context.Context, d *domain.Discount) error {
	res, err := r.db.ExecContext(ctx, `UPDATE discounts SET percentage_bp = $1, end_date = $2 WHERE id = $3`,
		d.PercentageBP, d.EndDate, d.ID)
	if err != nil {
		return mapError("update discount", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mapError("update discount", domain.ErrNotFound)
	}
	return nil
}

// GetActive compares dates, so a discount ending today is still active.
func (r *discountRepository) GetActive(ctx context.Context, titleID int32, asOf time.Time) (*domain.Discount, error) {
	d := &domain.Discount{}
	query := `SELECT id, title_id, percentage_bp, start_date, end_date
	          FROM discounts
	          WHERE title_id = $1 AND end_date >= $2
	          ORDER BY start_date DESC, id DESC
	          LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, titleID, domain.DateOf(asOf)).Scan(&d.ID, &d.TitleID, &d.PercentageBP, &d.StartDate, &d.EndDate)
	if err != nil {
		return nil, mapError("get active discount", err)
	}
	return d, nil
}

func (r *discountRepository) ListByTitle(ctx context.Context, titleID int32) ([]domain.Discount, error) {
	query := `SELECT id, title_id, percentage_bp, start_date, end_date
	          FROM discounts WHERE title_id = $1 ORDER BY start_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, titleID)
	if err != nil {
		return nil, mapError("list discounts", err)
	}
	defer rows.Close()

	var out []domain.Discount
	for rows.Next() {
		var d domain.Discount
		if err := rows.Scan(&d.ID, &d.TitleID, &d.PercentageBP, &d.StartDate, &d.EndDate); err != nil {
			return nil, mapError("scan discount", err)
		}
		out = append(out, d)
	}
	return out, mapError("list discounts", rows.Err())
}
