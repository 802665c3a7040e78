package service

import (
	"context"
	"errors"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository"
)

type rentalLedger struct {
	rentals repository.RentalRepository
	tx      repository.Transactor
	clock   Clock
}

func NewRentalLedger(rentals repository.RentalRepository, tx repository.Transactor, clock Clock) RentalLedger {
	return &rentalLedger{
		rentals: rentals,
		tx:      tx,
		clock:   clock,
	}
}

func (l *rentalLedger) HasActiveAgreement(ctx context.Context, customerID, titleID int32, start, end time.Time) (bool, error) {
	window := domain.NewInterval(start, end)
	open, err := l.rentals.ListOpenByCustomer(ctx, customerID, titleID, start)
	if err != nil {
		return false, domain.NewStorageError("list customer rentals", err)
	}
	for _, r := range open {
		if r.Occupied().Overlaps(window) {
			return true, nil
		}
	}
	return false, nil
}

func (l *rentalLedger) Create(ctx context.Context, rental *domain.RentalAgreement) (int32, error) {
	logger.EnterMethod("rentalLedger.Create", "unitID", rental.UnitID, "customerID", rental.CustomerID)

	window := domain.NewInterval(rental.StartTime, rental.DueTime)
	if !window.Valid() {
		err := domain.NewValidationError("interval", "start must be before due")
		logger.ExitMethodWithError("rentalLedger.Create", err)
		return 0, err
	}

	err := l.tx.WithinTx(ctx, nil, func(ctx context.Context, repos repository.Repositories) error {
		unit, err := repos.Inventory().LockUnit(ctx, rental.UnitID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnitTaken
		}
		if err != nil {
			return err
		}
		if unit.Retired() {
			return domain.ErrUnitTaken
		}

		open, err := repos.Rentals().ListOpenByUnit(ctx, rental.UnitID, rental.StartTime)
		if err != nil {
			return err
		}
		for _, existing := range open {
			if existing.Occupied().Overlaps(window) {
				return domain.ErrUnitTaken
			}
		}

		rental.State = domain.RentalStateReserved
		if rental.CreatedOn.IsZero() {
			rental.CreatedOn = l.clock.Now()
		}
		return repos.Rentals().Create(ctx, rental)
	})
	if errors.Is(err, domain.ErrUnitTaken) {
		logger.ExitMethod("rentalLedger.Create", "unitID", rental.UnitID, "taken", true)
		return 0, domain.ErrUnitTaken
	}
	if err != nil {
		err = domain.NewStorageError("reserve unit", err)
		logger.ExitMethodWithError("rentalLedger.Create", err)
		return 0, err
	}

	logger.ExitMethod("rentalLedger.Create", "rentalID", rental.ID)
	return rental.ID, nil
}

func (l *rentalLedger) Delete(ctx context.Context, rentalID int32) (bool, error) {
	deleted, err := l.rentals.DeleteReserved(ctx, rentalID)
	if err != nil {
		return false, domain.NewStorageError("delete rental", err)
	}
	if deleted {
		logger.Info("Reserved rental deleted", "rentalID", rentalID)
	}
	return deleted, nil
}

func (l *rentalLedger) Get(ctx context.Context, rentalID int32) (*domain.RentalAgreement, error) {
	r, err := l.rentals.GetByID(ctx, rentalID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, domain.NewStorageError("get rental", err)
	}
	return r, nil
}

func (l *rentalLedger) ListStaleReservations(ctx context.Context, olderThan time.Duration) ([]domain.RentalAgreement, error) {
	cutoff := l.clock.Now().Add(-olderThan)
	stale, err := l.rentals.ListStaleReserved(ctx, cutoff)
	if err != nil {
		return nil, domain.NewStorageError("list stale reservations", err)
	}
	return stale, nil
}
