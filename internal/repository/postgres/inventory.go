package postgres

import (
	"context"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository"
)

type inventoryRepository struct {
	db DBTX
}

func NewInventoryRepository(db DBTX) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) ListUnits(ctx context.Context, titleID, locationID int32) ([]domain.InventoryUnit, error) {
	query := `SELECT id, title_id, location_id, created_on, retired_on
	          FROM inventory_units
	          WHERE title_id = $1 AND location_id = $2 AND retired_on IS NULL
	          ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, titleID, locationID)
	if err != nil {
		return nil, mapError("list units", err)
	}
	defer rows.Close()

	var units []domain.InventoryUnit
	for rows.Next() {
		var u domain.InventoryUnit
		if err := rows.Scan(&u.ID, &u.TitleID, &u.LocationID, &u.CreatedOn, &u.RetiredOn); err != nil {
			return nil, mapError("scan unit", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list units", err)
	}
	return units, nil
}

func (r *inventoryRepository) CountUnits(ctx context.Context, titleID, locationID int32) (int, error) {
	var count int
	query := `SELECT count(*) FROM inventory_units WHERE title_id = $1 AND location_id = $2 AND retired_on IS NULL`
	if err := r.db.QueryRowContext(ctx, query, titleID, locationID).Scan(&count); err != nil {
		return 0, mapError("count units", err)
	}
	return count, nil
}

func (r *inventoryRepository) CreateUnits(ctx context.Context, titleID, locationID int32, count int) ([]int32, error) {
	logger.EnterMethod("inventoryRepository.CreateUnits", "titleID", titleID, "locationID", locationID, "count", count)

	query := `INSERT INTO inventory_units (title_id, location_id, created_on)
	          SELECT $1, $2, $3 FROM generate_series(1, $4)
	          RETURNING id`
	rows, err := r.db.QueryContext(ctx, query, titleID, locationID, time.Now(), count)
	if err != nil {
		logger.ExitMethodWithError("inventoryRepository.CreateUnits", err, "titleID", titleID)
		return nil, mapError("create units", err)
	}
	defer rows.Close()

	ids := make([]int32, 0, count)
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, mapError("scan unit id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("inventoryRepository.CreateUnits", err, "titleID", titleID)
		return nil, mapError("create units", err)
	}

	logger.ExitMethod("inventoryRepository.CreateUnits", "titleID", titleID, "created", len(ids))
	return ids, nil
}

func (r *inventoryRepository) LockUnit(ctx context.Context, unitID int32) (*domain.InventoryUnit, error) {
	u := &domain.InventoryUnit{}
	query := `SELECT id, title_id, location_id, created_on, retired_on FROM inventory_units WHERE id = $1 FOR UPDATE`
	err := r.db.QueryRowContext(ctx, query, unitID).Scan(&u.ID, &u.TitleID, &u.LocationID, &u.CreatedOn, &u.RetiredOn)
	if err != nil {
		return nil, mapError("lock unit", err)
	}
	return u, nil
}

func (r *inventoryRepository) ListRemovable(ctx context.Context, titleID, locationID int32, now time.Time, limit int) ([]repository.RemovableUnit, error) {
	logger.EnterMethod("inventoryRepository.ListRemovable", "titleID", titleID, "locationID", locationID, "limit", limit)

	// Units locked by a concurrent reservation are skipped, not waited on.
	query := `
		SELECT u.id, u.title_id, u.location_id, u.created_on, u.retired_on,
		       EXISTS (SELECT 1 FROM rental_agreements h WHERE h.unit_id = u.id) AS has_history
		FROM inventory_units u
		WHERE u.title_id = $1 AND u.location_id = $2 AND u.retired_on IS NULL
		  AND NOT EXISTS (
		      SELECT 1 FROM rental_agreements a
		      WHERE a.unit_id = u.id AND a.return_time IS NULL AND a.due_time > $3
		  )
		ORDER BY u.id DESC
		LIMIT $4
		FOR UPDATE OF u SKIP LOCKED
	`
	rows, err := r.db.QueryContext(ctx, query, titleID, locationID, now, limit)
	if err != nil {
		logger.ExitMethodWithError("inventoryRepository.ListRemovable", err, "titleID", titleID)
		return nil, mapError("list removable units", err)
	}
	defer rows.Close()

	var out []repository.RemovableUnit
	for rows.Next() {
		var ru repository.RemovableUnit
		if err := rows.Scan(&ru.Unit.ID, &ru.Unit.TitleID, &ru.Unit.LocationID, &ru.Unit.CreatedOn, &ru.Unit.RetiredOn, &ru.HasHistory); err != nil {
			return nil, mapError("scan removable unit", err)
		}
		out = append(out, ru)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list removable units", err)
	}

	logger.ExitMethod("inventoryRepository.ListRemovable", "titleID", titleID, "count", len(out))
	return out, nil
}

func (r *inventoryRepository) DeleteUnit(ctx context.Context, unitID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM inventory_units WHERE id = $1`, unitID)
	return mapError("delete unit", err)
}

func (r *inventoryRepository) RetireUnit(ctx context.Context, unitID int32, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE inventory_units SET retired_on = $1 WHERE id = $2`, at, unitID)
	return mapError("retire unit", err)
}
