package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes are stable identifiers for callers that translate failures
// into user-facing messages.
const (
	ErrCodeValidation          = "VALIDATION"
	ErrCodeDuplicateRental     = "DUPLICATE_RENTAL"
	ErrCodeNoInventory         = "NO_INVENTORY"
	ErrCodeStorage             = "STORAGE"
	ErrCodeChargeFailed        = "CHARGE_FAILED"
	ErrCodeCompensationFailure = "COMPENSATION_FAILURE"
	ErrCodeNotFound            = "NOT_FOUND"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrUnitTaken is returned when a unit was booked by someone else between
	// the availability check and the reservation.
	ErrUnitTaken = errors.New("unit already booked for the requested interval")
	// ErrAlreadyPaid is returned when a payment already exists for a rental.
	ErrAlreadyPaid = errors.New("rental already has a payment")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type DuplicateRentalError struct {
	CustomerID int32
	TitleID    int32
}

func (e *DuplicateRentalError) Error() string {
	return fmt.Sprintf("customer %d already holds an overlapping rental of title %d", e.CustomerID, e.TitleID)
}

type NoInventoryError struct {
	TitleID    int32
	LocationID int32
	// NextAvailable is a hint only; nil when nothing is due back.
	NextAvailable *time.Time
}

func (e *NoInventoryError) Error() string {
	if e.NextAvailable != nil {
		return fmt.Sprintf("no free unit of title %d at location %d, next due back %s",
			e.TitleID, e.LocationID, e.NextAvailable.Format(time.RFC3339))
	}
	return fmt.Sprintf("no free unit of title %d at location %d", e.TitleID, e.LocationID)
}

// StorageError wraps a persistence failure. It is never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err unless it is nil or already a StorageError.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// ChargeFailedError means the payment could not be recorded and the
// reservation was rolled back.
type ChargeFailedError struct {
	RentalID int32
	Err      error
}

func (e *ChargeFailedError) Error() string {
	return fmt.Sprintf("charge for rental %d failed, reservation released: %v", e.RentalID, e.Err)
}

func (e *ChargeFailedError) Unwrap() error {
	return e.Err
}

// CompensationFailure means the charge failed and the reservation could not
// be deleted either. The rental is left RESERVED and needs cleanup.
type CompensationFailure struct {
	RentalID      int32
	ChargeErr     error
	CompensateErr error
}

func (e *CompensationFailure) Error() string {
	return fmt.Sprintf("rental %d left reserved: charge failed (%v) and release failed (%v)",
		e.RentalID, e.ChargeErr, e.CompensateErr)
}

func (e *CompensationFailure) Unwrap() []error {
	return []error{e.ChargeErr, e.CompensateErr}
}

// ErrorCode maps an error from the engine to its stable code. Saga failures
// are matched first since they wrap the underlying cause.
func ErrorCode(err error) string {
	var (
		ve  *ValidationError
		de  *DuplicateRentalError
		ne  *NoInventoryError
		cf  *CompensationFailure
		cfe *ChargeFailedError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cf):
		return ErrCodeCompensationFailure
	case errors.As(err, &cfe):
		return ErrCodeChargeFailed
	case errors.As(err, &ve):
		return ErrCodeValidation
	case errors.As(err, &de):
		return ErrCodeDuplicateRental
	case errors.As(err, &ne):
		return ErrCodeNoInventory
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	default:
		return ErrCodeStorage
	}
}
