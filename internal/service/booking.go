package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository"
	"mediarental-backend/internal/utils"
)

// errReservationGone is reported when compensation finds no RESERVED row to
// delete, which means the rental's state is unknown.
var errReservationGone = errors.New("reservation not found in RESERVED state")

// compensationTimeout bounds the release of a reservation after a failed
// charge. The release outlives the request's cancellation.
const compensationTimeout = 10 * time.Second

type bookingService struct {
	inventory InventoryPool
	discounts DiscountResolver
	ledger    RentalLedger
	payments  PaymentRecorder
	catalog   repository.CatalogRepository
	tx        repository.Transactor
	clock     Clock
	ids       IDGen
}

func NewBookingService(
	inventory InventoryPool,
	discounts DiscountResolver,
	ledger RentalLedger,
	payments PaymentRecorder,
	catalog repository.CatalogRepository,
	tx repository.Transactor,
	clock Clock,
	ids IDGen,
) BookingService {
	return &bookingService{
		inventory: inventory,
		discounts: discounts,
		ledger:    ledger,
		payments:  payments,
		catalog:   catalog,
		tx:        tx,
		clock:     clock,
		ids:       ids,
	}
}

// RentTitle books one unit of the title for the customer and charges for it.
// The reservation and the charge commit separately; a failed charge deletes
// the reservation again.
func (s *bookingService) RentTitle(ctx context.Context, req domain.RentRequest) (*domain.BookingResult, error) {
	if err := validateRentRequest(req); err != nil {
		return nil, err
	}

	start := req.Start
	if start.IsZero() {
		start = s.clock.Now()
	}
	due := utils.DueTime(start, req.Days)

	ref, err := s.ids.New()
	if err != nil {
		return nil, fmt.Errorf("generate booking reference: %w", err)
	}
	log := logger.WithBooking(ref)
	log.Debug("Checking", "titleID", req.TitleID, "locationID", req.LocationID,
		"customerID", req.CustomerID, "start", start, "due", due)

	dup, err := s.ledger.HasActiveAgreement(ctx, req.CustomerID, req.TitleID, start, due)
	if err != nil {
		return nil, err
	}
	if dup {
		log.Info("Duplicate rental rejected", "customerID", req.CustomerID, "titleID", req.TitleID)
		return nil, &domain.DuplicateRentalError{CustomerID: req.CustomerID, TitleID: req.TitleID}
	}

	free, err := s.inventory.CheckAvailability(ctx, req.TitleID, req.LocationID, start, due)
	if err != nil {
		return nil, err
	}
	if len(free) == 0 {
		return nil, s.noInventory(ctx, log, req)
	}

	baseRate, err := s.catalog.GetRentalRate(ctx, req.TitleID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("title %d: %w", req.TitleID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.NewStorageError("get rental rate", err)
	}
	rate, discount, err := s.discounts.EffectiveRate(ctx, baseRate, req.TitleID)
	if err != nil {
		return nil, err
	}
	amount, err := utils.RentalCost(rate, req.Days)
	if err != nil {
		return nil, domain.NewValidationError("days", err.Error())
	}

	log.Debug("Reserving", "candidates", len(free), "rateCents", rate, "amountCents", amount)
	rental, err := s.reserve(ctx, log, free, domain.RentalAgreement{
		CustomerID:  req.CustomerID,
		AgentID:     req.AgentID,
		StartTime:   start,
		DueTime:     due,
		AmountCents: amount,
		BookingRef:  ref,
	})
	if errors.Is(err, domain.ErrUnitTaken) {
		return nil, s.noInventory(ctx, log, req)
	}
	if err != nil {
		log.Error("Reservation failed", "error", err)
		return nil, err
	}

	log.Debug("Charging", "rentalID", rental.ID, "amountCents", amount)
	paymentID, chargeErr := s.payments.Record(ctx, req.CustomerID, req.AgentID, rental.ID, amount)
	if chargeErr != nil {
		return nil, s.compensate(ctx, log, rental.ID, chargeErr)
	}

	result := &domain.BookingResult{
		RentalID:    rental.ID,
		PaymentID:   paymentID,
		UnitID:      rental.UnitID,
		BookingRef:  ref,
		RateCents:   rate,
		AmountCents: amount,
		Start:       start,
		Due:         due,
		State:       domain.RentalStateCompleted,
	}
	if discount != nil {
		result.DiscountBP = discount.PercentageBP
	}
	log.Info("Rental completed", "rentalID", rental.ID, "paymentID", paymentID,
		"unitID", rental.UnitID, "amountCents", amount)
	return result, nil
}

func validateRentRequest(req domain.RentRequest) error {
	switch {
	case req.TitleID <= 0:
		return domain.NewValidationError("title_id", "must be positive")
	case req.LocationID <= 0:
		return domain.NewValidationError("location_id", "must be positive")
	case req.CustomerID <= 0:
		return domain.NewValidationError("customer_id", "must be positive")
	case req.AgentID <= 0:
		return domain.NewValidationError("agent_id", "must be positive")
	case req.Days <= 0:
		return domain.NewValidationError("days", "must be positive")
	}
	return nil
}

// reserve tries each free unit in order until the ledger accepts one.
func (s *bookingService) reserve(ctx context.Context, log *slog.Logger, free []domain.InventoryUnit, proto domain.RentalAgreement) (*domain.RentalAgreement, error) {
	for _, unit := range free {
		rental := proto
		rental.UnitID = unit.ID
		id, err := s.ledger.Create(ctx, &rental)
		if errors.Is(err, domain.ErrUnitTaken) {
			log.Debug("Unit taken, trying next", "unitID", unit.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		rental.ID = id
		return &rental, nil
	}
	return nil, domain.ErrUnitTaken
}

func (s *bookingService) compensate(ctx context.Context, log *slog.Logger, rentalID int32, chargeErr error) error {
	log.Warn("Charge failed, releasing reservation", "rentalID", rentalID, "error", chargeErr)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	deleted, err := s.ledger.Delete(ctx, rentalID)
	if err == nil && !deleted {
		err = errReservationGone
	}
	if err != nil {
		log.Error("Compensation failed, rental left reserved", "rentalID", rentalID,
			"chargeError", chargeErr, "compensateError", err)
		return &domain.CompensationFailure{RentalID: rentalID, ChargeErr: chargeErr, CompensateErr: err}
	}

	log.Info("Rolled back", "rentalID", rentalID)
	return &domain.ChargeFailedError{RentalID: rentalID, Err: chargeErr}
}

func (s *bookingService) noInventory(ctx context.Context, log *slog.Logger, req domain.RentRequest) error {
	next, err := s.inventory.NextAvailable(ctx, req.TitleID, req.LocationID)
	if err != nil {
		// The hint is optional; the NoInventoryError is still returned.
		log.Warn("Next available lookup failed", "error", err)
		next = nil
	}
	log.Info("No inventory", "titleID", req.TitleID, "locationID", req.LocationID)
	return &domain.NoInventoryError{TitleID: req.TitleID, LocationID: req.LocationID, NextAvailable: next}
}

// EditCatalogItem applies the descriptive edit, the category, the cast and
// the inventory target in a single transaction.
func (s *bookingService) EditCatalogItem(ctx context.Context, edit domain.CatalogEdit) (*domain.EditResult, error) {
	logger.EnterMethod("bookingService.EditCatalogItem", "titleID", edit.Item.TitleID,
		"locationID", edit.LocationID, "targetUnits", edit.TargetUnits)

	if err := validateCatalogEdit(edit); err != nil {
		logger.ExitMethodWithError("bookingService.EditCatalogItem", err)
		return nil, err
	}

	item := edit.Item
	var result domain.EditResult
	err := s.tx.WithinTx(ctx, nil, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Catalog().UpdateDetails(ctx, &item); err != nil {
			return err
		}
		if item.CategoryID > 0 {
			if err := repos.Catalog().SetCategory(ctx, item.TitleID, item.CategoryID); err != nil {
				return err
			}
		}
		if err := repos.Catalog().ReplaceCast(ctx, item.TitleID, item.ActorIDs); err != nil {
			return err
		}
		res, err := reconcileUnits(ctx, repos.Inventory(), s.clock.Now(), item.TitleID, edit.LocationID, edit.TargetUnits)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		err = fmt.Errorf("title %d: %w", item.TitleID, domain.ErrNotFound)
		logger.ExitMethodWithError("bookingService.EditCatalogItem", err)
		return nil, err
	}
	if err != nil {
		err = domain.NewStorageError("edit catalog item", err)
		logger.ExitMethodWithError("bookingService.EditCatalogItem", err)
		return nil, err
	}

	if result.Shortfall > 0 {
		logger.Warn("Inventory shrink fell short", "titleID", item.TitleID,
			"locationID", edit.LocationID, "shortfall", result.Shortfall)
	}
	logger.ExitMethod("bookingService.EditCatalogItem", "unitsBefore", result.UnitsBefore, "unitsAfter", result.UnitsAfter)
	return &result, nil
}

func validateCatalogEdit(edit domain.CatalogEdit) error {
	switch {
	case edit.Item.TitleID <= 0:
		return domain.NewValidationError("title_id", "must be positive")
	case edit.LocationID <= 0:
		return domain.NewValidationError("location_id", "must be positive")
	case edit.TargetUnits < 0:
		return domain.NewValidationError("target_units", "must not be negative")
	case edit.Item.RentalRateCents < 0:
		return domain.NewValidationError("rental_rate_cents", "must not be negative")
	}
	return nil
}

