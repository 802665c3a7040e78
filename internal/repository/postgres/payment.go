package postgres

import (
	"context"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/repository"
)

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.PaymentTime.IsZero() {
		p.PaymentTime = time.Now()
	}
	query := `INSERT INTO payments (customer_id, agent_id, rental_id, amount_cents, payment_time)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, p.CustomerID, p.AgentID, p.RentalID, p.AmountCents, p.PaymentTime).Scan(&p.ID)
	return mapError("create payment", err)
}

func (r *paymentRepository) GetByRental(ctx context.Context, rentalID int32) (*domain.Payment, error) {
	p := &domain.Payment{}
	query := `SELECT id, customer_id, agent_id, rental_id, amount_cents, payment_time FROM payments WHERE rental_id = $1`
	err := r.db.QueryRowContext(ctx, query, rentalID).Scan(&p.ID, &p.CustomerID, &p.AgentID, &p.RentalID, &p.AmountCents, &p.PaymentTime)
	if err != nil {
		return nil, mapError("get payment", err)
	}
	return p, nil
}
