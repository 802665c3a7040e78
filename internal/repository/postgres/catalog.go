package postgres

import (
	"context"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/repository"

	"github.com/lib/pq"
)

type catalogRepository struct {
	db DBTX
}

func NewCatalogRepository(db DBTX) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetRentalRate(ctx context.Context, titleID int32) (int32, error) {
	var rate int32
	err := r.db.QueryRowContext(ctx, `SELECT rental_rate_cents FROM titles WHERE id = $1`, titleID).Scan(&rate)
	if err != nil {
		return 0, mapError("get rental rate", err)
	}
	return rate, nil
}

func (r *catalogRepository) UpdateDetails(ctx context.Context, item *domain.CatalogItem) error {
	query := `UPDATE titles SET title=$1, description=$2, release_year=$3, rental_duration_days=$4,
	          rental_rate_cents=$5, replacement_cost_cents=$6, rating=$7, last_update=NOW()
	          WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query, item.Title, item.Description, item.ReleaseYear, item.RentalDurationDays,
		item.RentalRateCents, item.ReplacementCostCents, item.Rating, item.TitleID)
	if err != nil {
		return mapError("update title", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("update title", err)
	}
	if n == 0 {
		return mapError("update title", domain.ErrNotFound)
	}
	return nil
}

func (r *catalogRepository) SetCategory(ctx context.Context, titleID, categoryID int32) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM title_categories WHERE title_id = $1`, titleID); err != nil {
		return mapError("clear category", err)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO title_categories (title_id, category_id) VALUES ($1, $2)`, titleID, categoryID)
	return mapError("set category", err)
}

func (r *catalogRepository) ReplaceCast(ctx context.Context, titleID int32, actorIDs []int32) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM title_cast WHERE title_id = $1`, titleID); err != nil {
		return mapError("clear cast", err)
	}
	if len(actorIDs) == 0 {
		return nil
	}
	ids := make([]int64, len(actorIDs))
	for i, id := range actorIDs {
		ids[i] = int64(id)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO title_cast (title_id, actor_id) SELECT $1, unnest($2::int[])`,
		titleID, pq.Array(ids))
	return mapError("insert cast", err)
}
