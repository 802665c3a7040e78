package service

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"mediarental-backend/internal/domain"

	"github.com/oklog/ulid/v2"
)

type InventoryPool interface {
	CheckAvailability(ctx context.Context, titleID, locationID int32, start, end time.Time) ([]domain.InventoryUnit, error)
	NextAvailable(ctx context.Context, titleID, locationID int32) (*time.Time, error)
	Grow(ctx context.Context, titleID, locationID int32, count int) ([]int32, error)
	Shrink(ctx context.Context, titleID, locationID int32, count int) (int, error)
	CountUnits(ctx context.Context, titleID, locationID int32) (int, error)
}

type DiscountResolver interface {
	// ActiveDiscount returns nil without error when the title has none.
	ActiveDiscount(ctx context.Context, titleID int32) (*domain.Discount, error)
	Apply(ctx context.Context, titleID int32, percentage float64, endDate time.Time) (*domain.Discount, domain.DiscountOutcome, error)
	EffectiveRate(ctx context.Context, baseRateCents, titleID int32) (int32, *domain.Discount, error)
	ListDiscounts(ctx context.Context, titleID int32) ([]domain.Discount, error)
}

type RentalLedger interface {
	HasActiveAgreement(ctx context.Context, customerID, titleID int32, start, end time.Time) (bool, error)
	// Create reserves the unit for the agreement's interval and returns the
	// new rental id, or domain.ErrUnitTaken if the unit is no longer free.
	Create(ctx context.Context, rental *domain.RentalAgreement) (int32, error)
	Delete(ctx context.Context, rentalID int32) (bool, error)
	Get(ctx context.Context, rentalID int32) (*domain.RentalAgreement, error)
	ListStaleReservations(ctx context.Context, olderThan time.Duration) ([]domain.RentalAgreement, error)
}

type PaymentRecorder interface {
	Record(ctx context.Context, customerID, agentID, rentalID, amountCents int32) (int32, error)
	ForRental(ctx context.Context, rentalID int32) (*domain.Payment, error)
}

type BookingService interface {
	RentTitle(ctx context.Context, req domain.RentRequest) (*domain.BookingResult, error)
	EditCatalogItem(ctx context.Context, edit domain.CatalogEdit) (*domain.EditResult, error)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// RealClock returns the wall clock.
func RealClock() Clock {
	return realClock{}
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewULIDGen returns a generator of monotonic ULIDs, used as booking
// references.
func NewULIDGen() IDGen {
	return &ulidGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ulidGen) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
