package repository

import (
	"context"
	"database/sql"
	"time"

	"mediarental-backend/internal/domain"
)

type InventoryRepository interface {
	ListUnits(ctx context.Context, titleID, locationID int32) ([]domain.InventoryUnit, error)
	CountUnits(ctx context.Context, titleID, locationID int32) (int, error)
	CreateUnits(ctx context.Context, titleID, locationID int32, count int) ([]int32, error)
	// LockUnit takes a row lock on the unit until the surrounding
	// transaction ends. Outside a transaction the lock is released at once.
	LockUnit(ctx context.Context, unitID int32) (*domain.InventoryUnit, error)
	// ListRemovable returns up to limit units that have no unreturned
	// agreement due after now, together with whether each has history.
	ListRemovable(ctx context.Context, titleID, locationID int32, now time.Time, limit int) ([]RemovableUnit, error)
	DeleteUnit(ctx context.Context, unitID int32) error
	RetireUnit(ctx context.Context, unitID int32, at time.Time) error
}

type RemovableUnit struct {
	Unit       domain.InventoryUnit
	HasHistory bool
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.RentalAgreement) error
	GetByID(ctx context.Context, id int32) (*domain.RentalAgreement, error)
	// ListOpenByTitle returns unreturned, or returned-after, agreements on
	// units of the title at the location whose due time is after since.
	ListOpenByTitle(ctx context.Context, titleID, locationID int32, since time.Time) ([]domain.RentalAgreement, error)
	ListOpenByUnit(ctx context.Context, unitID int32, since time.Time) ([]domain.RentalAgreement, error)
	ListOpenByCustomer(ctx context.Context, customerID, titleID int32, since time.Time) ([]domain.RentalAgreement, error)
	MarkCompleted(ctx context.Context, id int32) error
	// DeleteReserved removes the agreement only while it is still RESERVED.
	DeleteReserved(ctx context.Context, id int32) (bool, error)
	ListStaleReserved(ctx context.Context, createdBefore time.Time) ([]domain.RentalAgreement, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByRental(ctx context.Context, rentalID int32) (*domain.Payment, error)
}

type DiscountRepository interface {
	Create(ctx context.Context, discount *domain.Discount) error
	Update(ctx context.Context, discount *domain.Discount) error
	// GetActive returns the discount with the latest start date among rows
	// whose end date is on or after asOf, or domain.ErrNotFound.
	GetActive(ctx context.Context, titleID int32, asOf time.Time) (*domain.Discount, error)
	ListByTitle(ctx context.Context, titleID int32) ([]domain.Discount, error)
}

type CatalogRepository interface {
	GetRentalRate(ctx context.Context, titleID int32) (int32, error)
	UpdateDetails(ctx context.Context, item *domain.CatalogItem) error
	SetCategory(ctx context.Context, titleID, categoryID int32) error
	ReplaceCast(ctx context.Context, titleID int32, actorIDs []int32) error
}

// Repositories groups the repositories bound to one connection or one
// transaction.
type Repositories interface {
	Inventory() InventoryRepository
	Rentals() RentalRepository
	Payments() PaymentRepository
	Discounts() DiscountRepository
	Catalog() CatalogRepository
}

// Transactor runs fn inside one database transaction. fn receives
// repositories bound to that transaction; returning an error rolls back.
type Transactor interface {
	WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, repos Repositories) error) error
}
