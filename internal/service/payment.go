package service

import (
	"context"
	"errors"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository"
)

type paymentRecorder struct {
	payments repository.PaymentRepository
	tx       repository.Transactor
	clock    Clock
}

func NewPaymentRecorder(payments repository.PaymentRepository, tx repository.Transactor, clock Clock) PaymentRecorder {
	return &paymentRecorder{
		payments: payments,
		tx:       tx,
		clock:    clock,
	}
}

// Record inserts the payment and completes the rental in one transaction.
func (p *paymentRecorder) Record(ctx context.Context, customerID, agentID, rentalID, amountCents int32) (int32, error) {
	if amountCents < 0 {
		return 0, domain.NewValidationError("amount", "must not be negative")
	}

	payment := &domain.Payment{
		CustomerID:  customerID,
		AgentID:     agentID,
		RentalID:    rentalID,
		AmountCents: amountCents,
		PaymentTime: p.clock.Now(),
	}
	err := p.tx.WithinTx(ctx, nil, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return repos.Rentals().MarkCompleted(ctx, rentalID)
	})
	if errors.Is(err, domain.ErrAlreadyPaid) {
		return 0, domain.ErrAlreadyPaid
	}
	if err != nil {
		return 0, domain.NewStorageError("record payment", err)
	}

	logger.Info("Payment recorded", "paymentID", payment.ID, "rentalID", rentalID, "amountCents", amountCents)
	return payment.ID, nil
}

func (p *paymentRecorder) ForRental(ctx context.Context, rentalID int32) (*domain.Payment, error) {
	pay, err := p.payments.GetByRental(ctx, rentalID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, domain.NewStorageError("get payment", err)
	}
	return pay, nil
}
