package postgres

import (
	"context"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository"
)

const rentalColumns = `r.id, r.unit_id, r.customer_id, r.agent_id, r.start_time, r.due_time, r.return_time,
	r.state, r.amount_cents, r.booking_ref, r.created_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (domain.RentalAgreement, error) {
	var rt domain.RentalAgreement
	err := row.Scan(&rt.ID, &rt.UnitID, &rt.CustomerID, &rt.AgentID, &rt.StartTime, &rt.DueTime, &rt.ReturnTime,
		&rt.State, &rt.AmountCents, &rt.BookingRef, &rt.CreatedOn)
	return rt, err
}

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.RentalAgreement) error {
	logger.EnterMethod("rentalRepository.Create", "unitID", rt.UnitID, "customerID", rt.CustomerID, "bookingRef", rt.BookingRef)

	if rt.State == "" {
		rt.State = domain.RentalStateReserved
	}
	if rt.CreatedOn.IsZero() {
		rt.CreatedOn = time.Now()
	}
	query := `INSERT INTO rental_agreements (unit_id, customer_id, agent_id, start_time, due_time, state, amount_cents, booking_ref, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_on`
	err := r.db.QueryRowContext(ctx, query, rt.UnitID, rt.CustomerID, rt.AgentID, rt.StartTime, rt.DueTime,
		rt.State, rt.AmountCents, rt.BookingRef, rt.CreatedOn).Scan(&rt.ID, &rt.CreatedOn)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "unitID", rt.UnitID)
		return mapError("create rental", err)
	}

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.RentalAgreement, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_agreements r WHERE r.id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("get rental", err)
	}
	return &rt, nil
}

func (r *rentalRepository) ListOpenByTitle(ctx context.Context, titleID, locationID int32, since time.Time) ([]domain.RentalAgreement, error) {
	query := `SELECT ` + rentalColumns + `
	          FROM rental_agreements r
	          JOIN inventory_units u ON u.id = r.unit_id
	          WHERE u.title_id = $1 AND u.location_id = $2
	            AND r.due_time > $3 AND (r.return_time IS NULL OR r.return_time > $3)
	          ORDER BY r.due_time`
	return r.list(ctx, "list rentals by title", query, titleID, locationID, since)
}

func (r *rentalRepository) ListOpenByUnit(ctx context.Context, unitID int32, since time.Time) ([]domain.RentalAgreement, error) {
	query := `SELECT ` + rentalColumns + `
	          FROM rental_agreements r
	          WHERE r.unit_id = $1
	            AND r.due_time > $2 AND (r.return_time IS NULL OR r.return_time > $2)
	          ORDER BY r.due_time`
	return r.list(ctx, "list rentals by unit", query, unitID, since)
}

func (r *rentalRepository) ListOpenByCustomer(ctx context.Context, customerID, titleID int32, since time.Time) ([]domain.RentalAgreement, error) {
	query := `SELECT ` + rentalColumns + `
	          FROM rental_agreements r
	          JOIN inventory_units u ON u.id = r.unit_id
	          WHERE r.customer_id = $1 AND u.title_id = $2
	            AND r.return_time IS NULL AND r.due_time > $3
	          ORDER BY r.due_time`
	return r.list(ctx, "list rentals by customer", query, customerID, titleID, since)
}

func (r *rentalRepository) MarkCompleted(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rental_agreements SET state = $1 WHERE id = $2 AND state = $3`,
		domain.RentalStateCompleted, id, domain.RentalStateReserved)
	if err != nil {
		return mapError("complete rental", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("complete rental", err)
	}
	if n == 0 {
		return mapError("complete rental", domain.ErrNotFound)
	}
	return nil
}

func (r *rentalRepository) DeleteReserved(ctx context.Context, id int32) (bool, error) {
	logger.EnterMethod("rentalRepository.DeleteReserved", "rentalID", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM rental_agreements WHERE id = $1 AND state = $2`, id, domain.RentalStateReserved)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.DeleteReserved", err, "rentalID", id)
		return false, mapError("delete rental", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError("delete rental", err)
	}

	logger.ExitMethod("rentalRepository.DeleteReserved", "rentalID", id, "deleted", n > 0)
	return n > 0, nil
}

func (r *rentalRepository) ListStaleReserved(ctx context.Context, createdBefore time.Time) ([]domain.RentalAgreement, error) {
	query := `SELECT ` + rentalColumns + `
	          FROM rental_agreements r
	          WHERE r.state = $1 AND r.created_on < $2
	            AND NOT EXISTS (SELECT 1 FROM payments p WHERE p.rental_id = r.id)
	          ORDER BY r.created_on`
	return r.list(ctx, "list stale reservations", query, domain.RentalStateReserved, createdBefore)
}

func (r *rentalRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.RentalAgreement, error) {
	logger.DatabaseCall(op, query, "args", args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(op, 0, err)
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var rentals []domain.RentalAgreement
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		rentals = append(rentals, rt)
	}
	if err := rows.Err(); err != nil {
		logger.DatabaseResult(op, int64(len(rentals)), err)
		return nil, mapError(op, err)
	}
	logger.DatabaseResult(op, int64(len(rentals)), nil)
	return rentals, nil
}
